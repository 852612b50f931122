package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/filmtrack/internal/track/entity"
	"github.com/bitfantasy/filmtrack/internal/track/repository"
	"github.com/google/uuid"
)

// ProductService 产品服务
// 产品在本系统里以读为主，规格(厚度/长度/宽度)是重量换算的输入
type ProductService struct {
	productRepo *repository.ProductRepository
	accountRepo *repository.AccountRepository
	plateRepo   *repository.PlateRepository
	woRepo      *repository.WorkOrderRepository
	cache       *ListCache
}

func NewProductService(
	productRepo *repository.ProductRepository,
	accountRepo *repository.AccountRepository,
	plateRepo *repository.PlateRepository,
	woRepo *repository.WorkOrderRepository,
	cache *ListCache,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		accountRepo: accountRepo,
		plateRepo:   plateRepo,
		woRepo:      woRepo,
		cache:       cache,
	}
}

type CreateProductInput struct {
	AccountID string  `json:"account_id" binding:"required"`
	Code      string  `json:"code" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Thickness float64 `json:"thickness"`
	Length    float64 `json:"length"`
	Width     float64 `json:"width"`
	PrintSide string  `json:"print_side"`
	Notes     string  `json:"notes"`
}

func (s *ProductService) Create(ctx context.Context, input CreateProductInput, userID string) (*entity.Product, error) {
	if input.PrintSide == "" {
		input.PrintSide = entity.PrintSideNone
	}
	if input.PrintSide != entity.PrintSideNone && input.PrintSide != entity.PrintSideSingle && input.PrintSide != entity.PrintSideDouble {
		return nil, fmt.Errorf("无效的印刷面: %s", input.PrintSide)
	}
	account, err := s.accountRepo.FindByID(ctx, input.AccountID)
	if err != nil {
		return nil, fmt.Errorf("客户不存在: %w", err)
	}
	p := &entity.Product{
		ID:        uuid.New().String()[:32],
		AccountID: account.ID,
		Code:      input.Code,
		Name:      input.Name,
		Thickness: input.Thickness,
		Length:    input.Length,
		Width:     input.Width,
		PrintSide: input.PrintSide,
		Notes:     input.Notes,
		CreatedBy: userID,
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("创建产品失败: %w", err)
	}
	s.cache.Invalidate(ctx, CacheProducts)
	return p, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *ProductService) List(ctx context.Context, params repository.ProductListParams) ([]entity.Product, int64, error) {
	return s.productRepo.List(ctx, params)
}

type UpdateProductInput struct {
	Name      *string  `json:"name"`
	Thickness *float64 `json:"thickness"`
	Length    *float64 `json:"length"`
	Width     *float64 `json:"width"`
	PrintSide *string  `json:"print_side"`
	Notes     *string  `json:"notes"`
	PlateIDs  []string `json:"plate_ids"`
}

func (s *ProductService) Update(ctx context.Context, id string, input UpdateProductInput) (*entity.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("产品不存在: %w", err)
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Thickness != nil {
		p.Thickness = *input.Thickness
	}
	if input.Length != nil {
		p.Length = *input.Length
	}
	if input.Width != nil {
		p.Width = *input.Width
	}
	if input.PrintSide != nil {
		side := *input.PrintSide
		if side != entity.PrintSideNone && side != entity.PrintSideSingle && side != entity.PrintSideDouble {
			return nil, fmt.Errorf("无效的印刷面: %s", side)
		}
		p.PrintSide = side
	}
	if input.Notes != nil {
		p.Notes = *input.Notes
	}
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("更新产品失败: %w", err)
	}
	if input.PlateIDs != nil {
		plates := make([]entity.Plate, 0, len(input.PlateIDs))
		for _, plateID := range input.PlateIDs {
			plate, perr := s.plateRepo.FindByID(ctx, plateID)
			if perr != nil {
				return nil, fmt.Errorf("铜版不存在: %s", plateID)
			}
			plates = append(plates, *plate)
		}
		if err := s.productRepo.ReplacePlates(ctx, p, plates); err != nil {
			return nil, fmt.Errorf("更新产品铜版关联失败: %w", err)
		}
	}
	s.cache.Invalidate(ctx, CacheProducts)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("产品不存在: %w", err)
	}
	count, err := s.woRepo.CountByProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("查询产品工单失败: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("产品下存在 %d 张工单，不可删除", count)
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除产品失败: %w", err)
	}
	s.cache.Invalidate(ctx, CacheProducts)
	return nil
}

package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/filmtrack/internal/track/entity"
	"github.com/bitfantasy/filmtrack/internal/track/repository"
	"github.com/google/uuid"
)

// PlateService 铜版服务
// "登记新铜版"建议被接受后由这里落地创建并挂接产品
type PlateService struct {
	plateRepo   *repository.PlateRepository
	productRepo *repository.ProductRepository
	cache       *ListCache
}

func NewPlateService(plateRepo *repository.PlateRepository, productRepo *repository.ProductRepository, cache *ListCache) *PlateService {
	return &PlateService{plateRepo: plateRepo, productRepo: productRepo, cache: cache}
}

type CreatePlateInput struct {
	Code       string   `json:"code" binding:"required"`
	Round      float64  `json:"round"`
	Length     float64  `json:"length"`
	Material   string   `json:"material"`
	Notes      string   `json:"notes"`
	ProductIDs []string `json:"product_ids"`
}

func (s *PlateService) Create(ctx context.Context, input CreatePlateInput, userID string) (*entity.Plate, error) {
	p := &entity.Plate{
		ID:        uuid.New().String()[:32],
		Code:      input.Code,
		Round:     input.Round,
		Length:    input.Length,
		Material:  input.Material,
		Notes:     input.Notes,
		CreatedBy: userID,
	}
	if err := s.plateRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("创建铜版失败: %w", err)
	}
	if len(input.ProductIDs) > 0 {
		products := make([]entity.Product, 0, len(input.ProductIDs))
		for _, productID := range input.ProductIDs {
			product, perr := s.productRepo.FindByID(ctx, productID)
			if perr != nil {
				return nil, fmt.Errorf("产品不存在: %s", productID)
			}
			products = append(products, *product)
		}
		if err := s.plateRepo.AttachProducts(ctx, p, products); err != nil {
			return nil, fmt.Errorf("挂接产品失败: %w", err)
		}
	}
	s.cache.Invalidate(ctx, CachePlates)
	return p, nil
}

func (s *PlateService) GetByID(ctx context.Context, id string) (*entity.Plate, error) {
	return s.plateRepo.FindByID(ctx, id)
}

func (s *PlateService) List(ctx context.Context, params repository.PlateListParams) ([]entity.Plate, int64, error) {
	return s.plateRepo.List(ctx, params)
}

type UpdatePlateInput struct {
	Round    *float64 `json:"round"`
	Length   *float64 `json:"length"`
	Material *string  `json:"material"`
	Notes    *string  `json:"notes"`
}

func (s *PlateService) Update(ctx context.Context, id string, input UpdatePlateInput) (*entity.Plate, error) {
	p, err := s.plateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("铜版不存在: %w", err)
	}
	if input.Round != nil {
		p.Round = *input.Round
	}
	if input.Length != nil {
		p.Length = *input.Length
	}
	if input.Material != nil {
		p.Material = *input.Material
	}
	if input.Notes != nil {
		p.Notes = *input.Notes
	}
	if err := s.plateRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("更新铜版失败: %w", err)
	}
	s.cache.Invalidate(ctx, CachePlates)
	return p, nil
}

func (s *PlateService) Delete(ctx context.Context, id string) error {
	if _, err := s.plateRepo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("铜版不存在: %w", err)
	}
	if err := s.plateRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除铜版失败: %w", err)
	}
	s.cache.Invalidate(ctx, CachePlates)
	return nil
}

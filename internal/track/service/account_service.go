package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/filmtrack/internal/track/entity"
	"github.com/bitfantasy/filmtrack/internal/track/repository"
	"github.com/google/uuid"
)

// AccountService 客户服务
type AccountService struct {
	repo  *repository.AccountRepository
	cache *ListCache
}

func NewAccountService(repo *repository.AccountRepository, cache *ListCache) *AccountService {
	return &AccountService{repo: repo, cache: cache}
}

type CreateAccountInput struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

func (s *AccountService) Create(ctx context.Context, input CreateAccountInput, userID string) (*entity.Account, error) {
	a := &entity.Account{
		ID:          uuid.New().String()[:32],
		Code:        input.Code,
		Name:        input.Name,
		ContactName: input.ContactName,
		Phone:       input.Phone,
		Address:     input.Address,
		Notes:       input.Notes,
		CreatedBy:   userID,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("创建客户失败: %w", err)
	}
	s.cache.Invalidate(ctx, CacheAccounts)
	return a, nil
}

func (s *AccountService) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *AccountService) List(ctx context.Context, params repository.AccountListParams) ([]entity.Account, int64, error) {
	return s.repo.List(ctx, params)
}

type UpdateAccountInput struct {
	Name        *string `json:"name"`
	ContactName *string `json:"contact_name"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Notes       *string `json:"notes"`
}

func (s *AccountService) Update(ctx context.Context, id string, input UpdateAccountInput) (*entity.Account, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("客户不存在: %w", err)
	}
	if input.Name != nil {
		a.Name = *input.Name
	}
	if input.ContactName != nil {
		a.ContactName = *input.ContactName
	}
	if input.Phone != nil {
		a.Phone = *input.Phone
	}
	if input.Address != nil {
		a.Address = *input.Address
	}
	if input.Notes != nil {
		a.Notes = *input.Notes
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("更新客户失败: %w", err)
	}
	s.cache.Invalidate(ctx, CacheAccounts)
	return a, nil
}

func (s *AccountService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("客户不存在: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除客户失败: %w", err)
	}
	s.cache.Invalidate(ctx, CacheAccounts)
	return nil
}

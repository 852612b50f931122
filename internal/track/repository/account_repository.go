package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/filmtrack/internal/track/entity"
	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	var a entity.Account
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) FindByCode(ctx context.Context, code string) (*entity.Account, error) {
	var a entity.Account
	err := r.db.WithContext(ctx).
		Where("code = ? AND deleted_at IS NULL", code).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) Update(ctx context.Context, a *entity.Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&entity.Account{}).
		Where("id = ?", id).Update("deleted_at", &now).Error
}

type AccountListParams struct {
	Keyword string
	Page    int
	Size    int
}

func (r *AccountRepository) List(ctx context.Context, params AccountListParams) ([]entity.Account, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Account{}).Where("deleted_at IS NULL")
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var accounts []entity.Account
	err := query.Order("name ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&accounts).Error
	return accounts, total, err
}

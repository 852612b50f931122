package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/filmtrack/internal/track/entity"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.db.WithContext(ctx).Preload("Account").Preload("Plates").
		Where("id = ? AND deleted_at IS NULL", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) FindByCode(ctx context.Context, code string) (*entity.Product, error) {
	var p entity.Product
	err := r.db.WithContext(ctx).
		Where("code = ? AND deleted_at IS NULL", code).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ?", id).Update("deleted_at", &now).Error
}

// ReplacePlates 重建产品与铜版的关联
func (r *ProductRepository) ReplacePlates(ctx context.Context, p *entity.Product, plates []entity.Plate) error {
	return r.db.WithContext(ctx).Model(p).Association("Plates").Replace(plates)
}

type ProductListParams struct {
	AccountID string
	PrintSide string
	Keyword   string
	Page      int
	Size      int
}

func (r *ProductRepository) List(ctx context.Context, params ProductListParams) ([]entity.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Product{}).Where("deleted_at IS NULL")
	if params.AccountID != "" {
		query = query.Where("account_id = ?", params.AccountID)
	}
	if params.PrintSide != "" {
		query = query.Where("print_side = ?", params.PrintSide)
	}
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
	var products []entity.Product
	err := query.Preload("Account").Order("code ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&products).Error
	return products, total, err
}

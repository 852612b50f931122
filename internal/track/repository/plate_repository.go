package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/filmtrack/internal/track/entity"
	"gorm.io/gorm"
)

type PlateRepository struct {
	db *gorm.DB
}

func NewPlateRepository(db *gorm.DB) *PlateRepository {
	return &PlateRepository{db: db}
}

func (r *PlateRepository) Create(ctx context.Context, p *entity.Plate) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PlateRepository) FindByID(ctx context.Context, id string) (*entity.Plate, error) {
	var p entity.Plate
	err := r.db.WithContext(ctx).Preload("Products").
		Where("id = ? AND deleted_at IS NULL", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlateRepository) Update(ctx context.Context, p *entity.Plate) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PlateRepository) Delete(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&entity.Plate{}).
		Where("id = ?", id).Update("deleted_at", &now).Error
}

// AttachProducts 追加铜版与产品的关联
func (r *PlateRepository) AttachProducts(ctx context.Context, p *entity.Plate, products []entity.Product) error {
	return r.db.WithContext(ctx).Model(p).Association("Products").Append(products)
}

type PlateListParams struct {
	ProductID string
	Material  string
	Keyword   string
	Page      int
	Size      int
}

func (r *PlateRepository) List(ctx context.Context, params PlateListParams) ([]entity.Plate, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Plate{}).Where("track_plates.deleted_at IS NULL")
	if params.ProductID != "" {
		query = query.
			Joins("JOIN track_product_plates pp ON pp.plate_id = track_plates.id").
			Where("pp.product_id = ?", params.ProductID)
	}
	if params.Material != "" {
		query = query.Where("material = ?", params.Material)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("code ILIKE ?", kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var plates []entity.Plate
	err := query.Order("code ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&plates).Error
	return plates, total, err
}

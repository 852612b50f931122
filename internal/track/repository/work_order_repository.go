package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/filmtrack/internal/track/entity"
	"gorm.io/gorm"
)

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func (r *WorkOrderRepository) Create(ctx context.Context, wo *entity.WorkOrder) error {
	return r.db.WithContext(ctx).Create(wo).Error
}

func (r *WorkOrderRepository) FindByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.WithContext(ctx).Preload("Product").
		Where("id = ? AND deleted_at IS NULL", id).First(&wo).Error
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *WorkOrderRepository) Update(ctx context.Context, wo *entity.WorkOrder) error {
	return r.db.WithContext(ctx).Save(wo).Error
}

// UpdateFields 按字段更新，用于需要原子落库的联动字段
// (完工三元组、铜版状态+就绪标记等)
func (r *WorkOrderRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&entity.WorkOrder{}).
		Where("id = ?", id).Updates(fields).Error
}

func (r *WorkOrderRepository) Delete(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&entity.WorkOrder{}).
		Where("id = ?", id).Update("deleted_at", &now).Error
}

type WOListParams struct {
	AccountID        string
	ProductID        string
	Status           string
	PlateStatus      string
	Keyword          string
	DeliverFrom      *time.Time
	DeliverTo        *time.Time
	IncludeCompleted bool
	Page             int
	Size             int
}

func (r *WorkOrderRepository) List(ctx context.Context, params WOListParams) ([]entity.WorkOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.WorkOrder{}).Where("deleted_at IS NULL")
	if params.AccountID != "" {
		query = query.Where("account_id = ?", params.AccountID)
	}
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.Status != "" {
		query = query.Where("work_order_status = ?", params.Status)
	} else if !params.IncludeCompleted {
		query = query.Where("work_order_status <> ?", entity.WOStatusCompleted)
	}
	if params.PlateStatus != "" {
		query = query.Where("plate_status = ?", params.PlateStatus)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("wo_code ILIKE ? OR account_name ILIKE ? OR product_name ILIKE ?", kw, kw, kw)
	}
	if params.DeliverFrom != nil {
		query = query.Where("deliver_by >= ?", *params.DeliverFrom)
	}
	if params.DeliverTo != nil {
		query = query.Where("deliver_by <= ?", *params.DeliverTo)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var wos []entity.WorkOrder
	err := query.Preload("Product").Order("deliver_by ASC, wo_code ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&wos).Error
	return wos, total, err
}

// CountByProduct 统计产品下未删除的工单数
func (r *WorkOrderRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.WorkOrder{}).
		Where("product_id = ? AND deleted_at IS NULL", productID).Count(&total).Error
	return total, err
}

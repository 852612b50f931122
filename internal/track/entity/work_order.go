package entity

import "time"

// WorkOrderStatus 工单生产状态
const (
	WOStatusNotStarted = "NOT_STARTED" // 未开始
	WOStatusExtruding  = "EXTRUDING"   // 压出中
	WOStatusPrinting   = "PRINTING"    // 印刷中
	WOStatusCutting    = "CUTTING"     // 裁切中
	WOStatusCompleted  = "COMPLETED"   // 已完成
)

// PlateStatus 铜版状态，CONFIRM为终态
const (
	PlateStatusNew     = "NEW"     // 新版
	PlateStatusUpdate  = "UPDATE"  // 改版
	PlateStatusConfirm = "CONFIRM" // 确认
)

// DeliveryMethod 出货方式
const (
	DeliveryTBD     = "TBD"     // 待定
	DeliveryCourier = "COURIER" // 快递
	DeliveryDirect  = "DIRECT"  // 直送
	DeliveryExpress = "EXPRESS" // 加急
)

// WorkOrder 生产工单
type WorkOrder struct {
	ID     string `json:"id" gorm:"primaryKey;size:32"`
	WOCode string `json:"wo_code" gorm:"size:50;not null;uniqueIndex"`

	AccountID   string `json:"account_id" gorm:"size:32;not null;index"`
	AccountName string `json:"account_name" gorm:"size:128"`
	ProductID   string `json:"product_id" gorm:"size:32;not null;index"`
	ProductCode string `json:"product_code" gorm:"size:64"`
	ProductName string `json:"product_name" gorm:"size:128"`

	OrderedAt   time.Time  `json:"ordered_at"`
	DeliverBy   time.Time  `json:"deliver_by" gorm:"index"`
	CompletedAt *time.Time `json:"completed_at"`
	DeliveredAt *time.Time `json:"delivered_at"`

	OrderQuantity     int  `json:"order_quantity" gorm:"not null"`
	DeliveryQuantity  int  `json:"delivery_quantity" gorm:"default:0"`
	CompletedQuantity *int `json:"completed_quantity"`
	DeliveredQuantity *int `json:"delivered_quantity"`

	IsUrgent         bool `json:"is_urgent" gorm:"default:false"`
	ShouldBePunctual bool `json:"should_be_punctual" gorm:"default:false"`
	ShouldDeliverAll bool `json:"should_deliver_all" gorm:"default:false"`

	PlateStatus  string `json:"plate_status" gorm:"size:10;not null;default:NEW"`
	IsPlateReady bool   `json:"is_plate_ready" gorm:"default:false"`

	DeliveryMethod  string `json:"delivery_method" gorm:"size:10;not null;default:TBD"`
	WorkOrderStatus string `json:"work_order_status" gorm:"size:20;not null;default:NOT_STARTED;index"`

	Notes     string     `json:"notes" gorm:"type:text"`
	CreatedBy string     `json:"created_by" gorm:"size:64"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (WorkOrder) TableName() string {
	return "track_work_orders"
}

// IsCompleted 工单是否已进入终态
func (w *WorkOrder) IsCompleted() bool {
	return w.WorkOrderStatus == WOStatusCompleted
}

// ValidWorkOrderStatus 校验生产状态取值
func ValidWorkOrderStatus(s string) bool {
	switch s {
	case WOStatusNotStarted, WOStatusExtruding, WOStatusPrinting, WOStatusCutting, WOStatusCompleted:
		return true
	}
	return false
}

// ValidPlateStatus 校验铜版状态取值
func ValidPlateStatus(s string) bool {
	switch s {
	case PlateStatusNew, PlateStatusUpdate, PlateStatusConfirm:
		return true
	}
	return false
}

// ValidDeliveryMethod 校验出货方式取值
func ValidDeliveryMethod(s string) bool {
	switch s {
	case DeliveryTBD, DeliveryCourier, DeliveryDirect, DeliveryExpress:
		return true
	}
	return false
}

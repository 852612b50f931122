package entity

import "time"

// PrintSide 印刷面
const (
	PrintSideNone   = "NONE"   // 无印刷
	PrintSideSingle = "SINGLE" // 单面
	PrintSideDouble = "DOUBLE" // 双面
)

// Product 产品（胶片规格），归属一个客户
type Product struct {
	ID        string     `json:"id" gorm:"primaryKey;size:32"`
	AccountID string     `json:"account_id" gorm:"size:32;not null;index"`
	Code      string     `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name      string     `json:"name" gorm:"size:128;not null"`
	Thickness float64    `json:"thickness" gorm:"type:decimal(8,3);default:0"`
	Length    float64    `json:"length" gorm:"type:decimal(10,2);default:0"`
	Width     float64    `json:"width" gorm:"type:decimal(10,2);default:0"`
	PrintSide string     `json:"print_side" gorm:"size:10;not null;default:NONE"`
	Notes     string     `json:"notes" gorm:"type:text"`
	CreatedBy string     `json:"created_by" gorm:"size:64"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	Account *Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
	Plates  []Plate  `json:"plates,omitempty" gorm:"many2many:track_product_plates"`
}

func (Product) TableName() string {
	return "track_products"
}

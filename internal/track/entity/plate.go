package entity

import "time"

// Plate 印刷铜版，可在多个产品间共用
type Plate struct {
	ID        string     `json:"id" gorm:"primaryKey;size:32"`
	Code      string     `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Round     float64    `json:"round" gorm:"type:decimal(10,2);default:0"`
	Length    float64    `json:"length" gorm:"type:decimal(10,2);default:0"`
	Material  string     `json:"material" gorm:"size:32"`
	Notes     string     `json:"notes" gorm:"type:text"`
	CreatedBy string     `json:"created_by" gorm:"size:64"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	Products []Product `json:"products,omitempty" gorm:"many2many:track_product_plates"`
}

func (Plate) TableName() string {
	return "track_plates"
}

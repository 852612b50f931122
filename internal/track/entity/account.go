package entity

import "time"

// Account 客户（下单方）
type Account struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	Code        string     `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Name        string     `json:"name" gorm:"size:128;not null"`
	ContactName string     `json:"contact_name" gorm:"size:64"`
	Phone       string     `json:"phone" gorm:"size:32"`
	Address     string     `json:"address" gorm:"size:256"`
	Notes       string     `json:"notes" gorm:"type:text"`
	CreatedBy   string     `json:"created_by" gorm:"size:64"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:AccountID"`
}

func (Account) TableName() string {
	return "track_accounts"
}

package repository

import "gorm.io/gorm"

// Repositories 仓储集合
type Repositories struct {
	Account   *AccountRepository
	Product   *ProductRepository
	Plate     *PlateRepository
	WorkOrder *WorkOrderRepository
}

// NewRepositories 创建仓储集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Account:   NewAccountRepository(db),
		Product:   NewProductRepository(db),
		Plate:     NewPlateRepository(db),
		WorkOrder: NewWorkOrderRepository(db),
	}
}

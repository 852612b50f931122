package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/filmtrack/internal/track/entity"
	"github.com/bitfantasy/filmtrack/internal/track/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 每行的插入各自独立成一条语句，行要么完整提交并计入成功数，
// 要么未提交并带原因返回，重试不会造成重复创建

func classifyCreateError(err error) string {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "编号重复"
	}
	return fmt.Sprintf("写入失败: %v", err)
}

// ---------- 客户 ----------

type AccountRow struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

// AccountBulkCreator 客户批量创建后端
type AccountBulkCreator struct {
	repo   *repository.AccountRepository
	userID string
}

func NewAccountBulkCreator(repo *repository.AccountRepository, userID string) *AccountBulkCreator {
	return &AccountBulkCreator{repo: repo, userID: userID}
}

func (c *AccountBulkCreator) EntityName() string { return CacheAccounts }

func (c *AccountBulkCreator) CreateMany(ctx context.Context, rows []json.RawMessage) (int, []FailedRow, error) {
	created := 0
	var failed []FailedRow
	for _, raw := range rows {
		var row AccountRow
		if err := json.Unmarshal(raw, &row); err != nil {
			failed = append(failed, FailedRow{Row: raw, Reason: "数据格式错误"})
			continue
		}
		if row.Code == "" || row.Name == "" {
			failed = append(failed, FailedRow{Row: raw, Reason: "编号与名称不能为空"})
			continue
		}
		a := &entity.Account{
			ID:          uuid.New().String()[:32],
			Code:        row.Code,
			Name:        row.Name,
			ContactName: row.ContactName,
			Phone:       row.Phone,
			Address:     row.Address,
			Notes:       row.Notes,
			CreatedBy:   c.userID,
		}
		if err := c.repo.Create(ctx, a); err != nil {
			failed = append(failed, FailedRow{Row: raw, Reason: classifyCreateError(err)})
			continue
		}
		created++
	}
	return created, failed, nil
}

// ---------- 产品 ----------

type ProductRow struct {
	AccountCode string  `json:"account_code"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Thickness   float64 `json:"thickness"`
	Length      float64 `json:"length"`
	Width       float64 `json:"width"`
	PrintSide   string  `json:"print_side"`
	Notes       string  `json:"notes"`
}

// ProductBulkCreator 产品批量创建后端
// 按客户编号挂接客户，客户尚不存在的行带原因返回，
// 与客户放在同一次导入时可在下一轮自动补挂成功
type ProductBulkCreator struct {
	accountRepo *repository.AccountRepository
	productRepo *repository.ProductRepository
	userID      string
}

func NewProductBulkCreator(accountRepo *repository.AccountRepository, productRepo *repository.ProductRepository, userID string) *ProductBulkCreator {
	return &ProductBulkCreator{accountRepo: accountRepo, productRepo: productRepo, userID: userID}
}

func (c *ProductBulkCreator) EntityName() string { return CacheProducts }

func (c *ProductBulkCreator) CreateMany(ctx context.Context, rows []json.RawMessage) (int, []FailedRow, error) {
	created := 0
	var failed []FailedRow
	for _, raw := range rows {
		var row ProductRow
		if err := json.Unmarshal(raw, &row); err != nil {
			failed = append(failed, FailedRow{Row: raw, Reason: "数据格式错误"})
			continue
		}
		if row.Code == "" || row.Name == "" {
			failed = append(failed, FailedRow{Row: raw, Reason: "编号与名称不能为空"})
			continue
		}
		if row.PrintSide == "" {
			row.PrintSide = entity.PrintSideNone
		}
		if row.PrintSide != entity.PrintSideNone && row.PrintSide != entity.PrintSideSingle && row.PrintSide != entity.PrintSideDouble {
			failed = append(failed, FailedRow{Row: raw, Reason: fmt.Sprintf("无效的印刷面: %s", row.PrintSide)})
			continue
		}
		account, err := c.accountRepo.FindByCode(ctx, row.AccountCode)
		if err != nil {
			failed = append(failed, FailedRow{Row: raw, Reason: fmt.Sprintf("客户不存在: %s", row.AccountCode)})
			continue
		}
		p := &entity.Product{
			ID:        uuid.New().String()[:32],
			AccountID: account.ID,
			Code:      row.Code,
			Name:      row.Name,
			Thickness: row.Thickness,
			Length:    row.Length,
			Width:     row.Width,
			PrintSide: row.PrintSide,
			Notes:     row.Notes,
			CreatedBy: c.userID,
		}
		if err := c.productRepo.Create(ctx, p); err != nil {
			failed = append(failed, FailedRow{Row: raw, Reason: classifyCreateError(err)})
			continue
		}
		created++
	}
	return created, failed, nil
}

// ---------- 工单 ----------

type WorkOrderRow struct {
	ProductCode      string `json:"product_code"`
	OrderedAt        string `json:"ordered_at"`
	DeliverBy        string `json:"deliver_by"`
	OrderQuantity    int    `json:"order_quantity"`
	DeliveryQuantity int    `json:"delivery_quantity"`
	IsUrgent         bool   `json:"is_urgent"`
	ShouldBePunctual bool   `json:"should_be_punctual"`
	ShouldDeliverAll bool   `json:"should_deliver_all"`
	PlateStatus      string `json:"plate_status"`
	DeliveryMethod   string `json:"delivery_method"`
	Notes            string `json:"notes"`
}

// WorkOrderBulkCreator 工单批量创建后端
type WorkOrderBulkCreator struct {
	accountRepo *repository.AccountRepository
	productRepo *repository.ProductRepository
	woRepo      *repository.WorkOrderRepository
	userID      string
}

func NewWorkOrderBulkCreator(accountRepo *repository.AccountRepository, productRepo *repository.ProductRepository, woRepo *repository.WorkOrderRepository, userID string) *WorkOrderBulkCreator {
	return &WorkOrderBulkCreator{accountRepo: accountRepo, productRepo: productRepo, woRepo: woRepo, userID: userID}
}

func (c *WorkOrderBulkCreator) EntityName() string { return CacheWorkOrders }

func (c *WorkOrderBulkCreator) CreateMany(ctx context.Context, rows []json.RawMessage) (int, []FailedRow, error) {
	created := 0
	var failed []FailedRow
	for _, raw := range rows {
		var row WorkOrderRow
		if err := json.Unmarshal(raw, &row); err != nil {
			failed = append(failed, FailedRow{Row: raw, Reason: "数据格式错误"})
			continue
		}
		if row.OrderQuantity < 1 {
			failed = append(failed, FailedRow{Row: raw, Reason: "订购数量必须不小于1"})
			continue
		}
		deliverBy, err := time.Parse("2006-01-02", row.DeliverBy)
		if err != nil {
			failed = append(failed, FailedRow{Row: raw, Reason: fmt.Sprintf("交期格式错误: %s", row.DeliverBy)})
			continue
		}
		if row.PlateStatus == "" {
			row.PlateStatus = entity.PlateStatusNew
		}
		if !entity.ValidPlateStatus(row.PlateStatus) {
			failed = append(failed, FailedRow{Row: raw, Reason: fmt.Sprintf("无效的铜版状态: %s", row.PlateStatus)})
			continue
		}
		if row.DeliveryMethod == "" {
			row.DeliveryMethod = entity.DeliveryTBD
		}
		if !entity.ValidDeliveryMethod(row.DeliveryMethod) {
			failed = append(failed, FailedRow{Row: raw, Reason: fmt.Sprintf("无效的出货方式: %s", row.DeliveryMethod)})
			continue
		}
		product, err := c.productRepo.FindByCode(ctx, row.ProductCode)
		if err != nil {
			failed = append(failed, FailedRow{Row: raw, Reason: fmt.Sprintf("产品不存在: %s", row.ProductCode)})
			continue
		}
		account, err := c.accountRepo.FindByID(ctx, product.AccountID)
		if err != nil {
			failed = append(failed, FailedRow{Row: raw, Reason: fmt.Sprintf("产品 %s 未挂接客户", row.ProductCode)})
			continue
		}

		orderedAt := time.Now()
		if row.OrderedAt != "" {
			if t, perr := time.Parse("2006-01-02", row.OrderedAt); perr == nil {
				orderedAt = t
			}
		}
		deliveryQty := row.DeliveryQuantity
		if deliveryQty <= 0 {
			deliveryQty = row.OrderQuantity
		}

		wo := &entity.WorkOrder{
			ID:               uuid.New().String()[:32],
			WOCode:           newWOCode(),
			AccountID:        account.ID,
			AccountName:      account.Name,
			ProductID:        product.ID,
			ProductCode:      product.Code,
			ProductName:      product.Name,
			OrderedAt:        orderedAt,
			DeliverBy:        deliverBy,
			OrderQuantity:    row.OrderQuantity,
			DeliveryQuantity: deliveryQty,
			IsUrgent:         row.IsUrgent,
			ShouldBePunctual: row.ShouldBePunctual,
			ShouldDeliverAll: row.ShouldDeliverAll,
			PlateStatus:      row.PlateStatus,
			IsPlateReady:     row.PlateStatus == entity.PlateStatusConfirm,
			DeliveryMethod:   row.DeliveryMethod,
			WorkOrderStatus:  entity.WOStatusNotStarted,
			Notes:            row.Notes,
			CreatedBy:        c.userID,
		}
		if err := c.woRepo.Create(ctx, wo); err != nil {
			failed = append(failed, FailedRow{Row: raw, Reason: classifyCreateError(err)})
			continue
		}
		created++
	}
	return created, failed, nil
}

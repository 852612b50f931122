package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/filmtrack/internal/track/entity"
	"github.com/bitfantasy/filmtrack/internal/track/repository"
	"github.com/bitfantasy/filmtrack/internal/track/sse"
	"github.com/google/uuid"
)

// WorkOrderService 工单服务
// 负责工单生命周期: 创建、状态流转、完工、出货确认、铜版状态联动
type WorkOrderService struct {
	woRepo       *repository.WorkOrderRepository
	productRepo  *repository.ProductRepository
	accountRepo  *repository.AccountRepository
	cache        *ListCache
	hub          *sse.Hub
	imminentDays int
}

func NewWorkOrderService(
	woRepo *repository.WorkOrderRepository,
	productRepo *repository.ProductRepository,
	accountRepo *repository.AccountRepository,
	cache *ListCache,
	hub *sse.Hub,
	imminentDays int,
) *WorkOrderService {
	if imminentDays <= 0 {
		imminentDays = 3
	}
	return &WorkOrderService{
		woRepo:       woRepo,
		productRepo:  productRepo,
		accountRepo:  accountRepo,
		cache:        cache,
		hub:          hub,
		imminentDays: imminentDays,
	}
}

// WorkOrderView 工单视图
// 重量与交期分类为派生值，每次展示重新计算，不落库
type WorkOrderView struct {
	entity.WorkOrder
	OrderWeight         string   `json:"order_weight"`
	DeliveryWeight      string   `json:"delivery_weight"`
	CompletedWeight     string   `json:"completed_weight,omitempty"`
	DeadlineClass       string   `json:"deadline_class"`
	DeadlineHint        string   `json:"deadline_hint"`
	StatusLabel         string   `json:"status_label"`
	PlateStatusLabel    string   `json:"plate_status_label"`
	DeliveryMethodLabel string   `json:"delivery_method_label"`
	StatusOptions       []string `json:"status_options"`
}

// View 构造工单视图
func (s *WorkOrderService) View(wo *entity.WorkOrder) *WorkOrderView {
	return buildView(wo, time.Now(), s.imminentDays)
}

func buildView(wo *entity.WorkOrder, today time.Time, imminentDays int) *WorkOrderView {
	v := &WorkOrderView{WorkOrder: *wo}
	printSide := entity.PrintSideNone
	if wo.Product != nil {
		printSide = wo.Product.PrintSide
		v.OrderWeight = ProductWeightKg(wo.Product, wo.OrderQuantity)
		v.DeliveryWeight = ProductWeightKg(wo.Product, wo.DeliveryQuantity)
		if wo.CompletedQuantity != nil {
			v.CompletedWeight = ProductWeightKg(wo.Product, *wo.CompletedQuantity)
		}
	} else {
		v.OrderWeight = "0.0"
		v.DeliveryWeight = "0.0"
	}
	v.DeadlineClass, v.DeadlineHint = ClassifyDeadline(today, wo.DeliverBy, wo.CompletedAt != nil, imminentDays)
	v.StatusLabel = StatusLabel(wo.WorkOrderStatus)
	v.PlateStatusLabel = PlateStatusLabel(wo.PlateStatus)
	v.DeliveryMethodLabel = DeliveryMethodLabel(wo.DeliveryMethod)
	v.StatusOptions = StatusOptions(printSide)
	return v
}

type CreateWorkOrderRequest struct {
	ProductID        string `json:"product_id" binding:"required"`
	OrderedAt        string `json:"ordered_at"`                    // YYYY-MM-DD，缺省为今天
	DeliverBy        string `json:"deliver_by" binding:"required"` // YYYY-MM-DD
	OrderQuantity    int    `json:"order_quantity" binding:"required,gte=1"`
	DeliveryQuantity int    `json:"delivery_quantity"`
	IsUrgent         bool   `json:"is_urgent"`
	ShouldBePunctual bool   `json:"should_be_punctual"`
	ShouldDeliverAll bool   `json:"should_deliver_all"`
	PlateStatus      string `json:"plate_status"`
	DeliveryMethod   string `json:"delivery_method"`
	Notes            string `json:"notes"`
}

func (s *WorkOrderService) Create(ctx context.Context, req CreateWorkOrderRequest, userID string) (*entity.WorkOrder, error) {
	if req.PlateStatus == "" {
		req.PlateStatus = entity.PlateStatusNew
	}
	if !entity.ValidPlateStatus(req.PlateStatus) {
		return nil, fmt.Errorf("无效的铜版状态: %s", req.PlateStatus)
	}
	if req.DeliveryMethod == "" {
		req.DeliveryMethod = entity.DeliveryTBD
	}
	if !entity.ValidDeliveryMethod(req.DeliveryMethod) {
		return nil, fmt.Errorf("无效的出货方式: %s", req.DeliveryMethod)
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("产品不存在: %w", err)
	}
	account, err := s.accountRepo.FindByID(ctx, product.AccountID)
	if err != nil {
		return nil, fmt.Errorf("客户不存在: %w", err)
	}

	deliverBy, err := time.Parse("2006-01-02", req.DeliverBy)
	if err != nil {
		return nil, fmt.Errorf("交期格式错误: %w", err)
	}
	orderedAt := time.Now()
	if req.OrderedAt != "" {
		if t, perr := time.Parse("2006-01-02", req.OrderedAt); perr == nil {
			orderedAt = t
		}
	}

	deliveryQty := req.DeliveryQuantity
	if deliveryQty <= 0 {
		deliveryQty = req.OrderQuantity
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
		OrderQuantity:    req.OrderQuantity,
		DeliveryQuantity: deliveryQty,
		IsUrgent:         req.IsUrgent,
		ShouldBePunctual: req.ShouldBePunctual,
		ShouldDeliverAll: req.ShouldDeliverAll,
		PlateStatus:      req.PlateStatus,
		IsPlateReady:     req.PlateStatus == entity.PlateStatusConfirm,
		DeliveryMethod:   req.DeliveryMethod,
		WorkOrderStatus:  entity.WOStatusNotStarted,
		Notes:            req.Notes,
		CreatedBy:        userID,
	}
	if err := s.woRepo.Create(ctx, wo); err != nil {
		return nil, fmt.Errorf("创建工单失败: %w", err)
	}
	s.cache.Invalidate(ctx, CacheWorkOrders)
	wo.Product = product
	return wo, nil
}

// 尾缀取随机uuid片段而非时间戳，批量导入在同一时刻建多张工单
// 也不会在wo_code唯一索引上自撞
func newWOCode() string {
	return fmt.Sprintf("WO-%s-%s", time.Now().Format("20060102"), uuid.New().String()[:8])
}

func (s *WorkOrderService) GetByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return s.woRepo.FindByID(ctx, id)
}

func (s *WorkOrderService) List(ctx context.Context, params repository.WOListParams) ([]entity.WorkOrder, int64, error) {
	return s.woRepo.List(ctx, params)
}

type UpdateWorkOrderRequest struct {
	DeliverBy        *string `json:"deliver_by"`
	OrderQuantity    *int    `json:"order_quantity"`
	DeliveryQuantity *int    `json:"delivery_quantity"`
	IsUrgent         *bool   `json:"is_urgent"`
	ShouldBePunctual *bool   `json:"should_be_punctual"`
	ShouldDeliverAll *bool   `json:"should_deliver_all"`
	DeliveryMethod   *string `json:"delivery_method"`
	Notes            *string `json:"notes"`
}

// Update 工单一般字段编辑
// 状态、完工、铜版字段有各自的操作入口，这里一律不收
func (s *WorkOrderService) Update(ctx context.Context, id string, req UpdateWorkOrderRequest) (*entity.WorkOrder, error) {
	wo, err := s.woRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("工单不存在: %w", err)
	}
	if wo.IsCompleted() {
		return nil, fmt.Errorf("工单 %s 已完成，不可修改", wo.WOCode)
	}
	if req.DeliverBy != nil {
		t, perr := time.Parse("2006-01-02", *req.DeliverBy)
		if perr != nil {
			return nil, fmt.Errorf("交期格式错误: %w", perr)
		}
		wo.DeliverBy = t
	}
	if req.OrderQuantity != nil {
		if *req.OrderQuantity < 1 {
			return nil, fmt.Errorf("订购数量必须不小于1")
		}
		wo.OrderQuantity = *req.OrderQuantity
	}
	if req.DeliveryQuantity != nil {
		wo.DeliveryQuantity = *req.DeliveryQuantity
	}
	if req.IsUrgent != nil {
		wo.IsUrgent = *req.IsUrgent
	}
	if req.ShouldBePunctual != nil {
		wo.ShouldBePunctual = *req.ShouldBePunctual
	}
	if req.ShouldDeliverAll != nil {
		wo.ShouldDeliverAll = *req.ShouldDeliverAll
	}
	if req.DeliveryMethod != nil {
		if !entity.ValidDeliveryMethod(*req.DeliveryMethod) {
			return nil, fmt.Errorf("无效的出货方式: %s", *req.DeliveryMethod)
		}
		wo.DeliveryMethod = *req.DeliveryMethod
	}
	if req.Notes != nil {
		wo.Notes = *req.Notes
	}
	if err := s.woRepo.Update(ctx, wo); err != nil {
		return nil, fmt.Errorf("更新工单失败: %w", err)
	}
	s.cache.Invalidate(ctx, CacheWorkOrders)
	return wo, nil
}

func (s *WorkOrderService) Delete(ctx context.Context, id string) error {
	wo, err := s.woRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("工单不存在: %w", err)
	}
	if wo.IsCompleted() {
		return fmt.Errorf("工单 %s 已完成，不可删除", wo.WOCode)
	}
	if err := s.woRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除工单失败: %w", err)
	}
	s.cache.Invalidate(ctx, CacheWorkOrders)
	return nil
}

// validateStatusChange 状态流转规则
// 允许操作员回退状态纠错(如 CUTTING→PRINTING)，仅有两条硬规则:
// COMPLETED 只能经完工操作进入；已完成的工单不再接受任何状态变更
func validateStatusChange(wo *entity.WorkOrder, newStatus, printSide string) error {
	if !entity.ValidWorkOrderStatus(newStatus) {
		return fmt.Errorf("无效的工单状态: %s", newStatus)
	}
	if wo.IsCompleted() {
		return fmt.Errorf("工单 %s 已完成，状态不可变更", wo.WOCode)
	}
	if newStatus == entity.WOStatusCompleted {
		return fmt.Errorf("工单 %s 完工请使用完工操作", wo.WOCode)
	}
	if newStatus == entity.WOStatusPrinting && printSide == entity.PrintSideNone {
		return fmt.Errorf("工单 %s 的产品无印刷，不可进入印刷状态", wo.WOCode)
	}
	return nil
}

// UpdateStatus 变更工单生产状态
// 校验不通过时不产生任何落库变更，错误信息携带工单号
func (s *WorkOrderService) UpdateStatus(ctx context.Context, id, newStatus, userID string) (*entity.WorkOrder, error) {
	wo, err := s.woRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("工单不存在: %w", err)
	}
	printSide := entity.PrintSideNone
	if wo.Product != nil {
		printSide = wo.Product.PrintSide
	}
	if err := validateStatusChange(wo, newStatus, printSide); err != nil {
		return nil, err
	}
	if err := s.woRepo.UpdateFields(ctx, id, map[string]interface{}{
		"work_order_status": newStatus,
	}); err != nil {
		return nil, fmt.Errorf("工单 %s 状态变更失败: %w", wo.WOCode, err)
	}
	wo.WorkOrderStatus = newStatus
	s.cache.Invalidate(ctx, CacheWorkOrders)
	return wo, nil
}

// validateComplete 完工前置校验
func validateComplete(wo *entity.WorkOrder, completedQty int) error {
	if wo.IsCompleted() {
		return fmt.Errorf("工单 %s 已完成", wo.WOCode)
	}
	if wo.WorkOrderStatus != entity.WOStatusCutting {
		return fmt.Errorf("工单 %s 仅裁切中可完工，当前状态: %s", wo.WOCode, wo.WorkOrderStatus)
	}
	if completedQty < 1 {
		return fmt.Errorf("工单 %s 完工数量必须不小于1", wo.WOCode)
	}
	return nil
}

// Complete 完工
// 状态、完工时间、完工数量三个字段一次UPDATE落库，对调用方是原子操作
func (s *WorkOrderService) Complete(ctx context.Context, id string, completedQty int, completedAt time.Time, userID string) (*entity.WorkOrder, error) {
	wo, err := s.woRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("工单不存在: %w", err)
	}
	if err := validateComplete(wo, completedQty); err != nil {
		return nil, err
	}
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	if err := s.woRepo.UpdateFields(ctx, id, map[string]interface{}{
		"work_order_status":  entity.WOStatusCompleted,
		"completed_at":       completedAt,
		"completed_quantity": completedQty,
	}); err != nil {
		return nil, fmt.Errorf("工单 %s 完工失败: %w", wo.WOCode, err)
	}
	wo.WorkOrderStatus = entity.WOStatusCompleted
	wo.CompletedAt = &completedAt
	wo.CompletedQuantity = &completedQty
	s.cache.Invalidate(ctx, CacheWorkOrders)
	return wo, nil
}

// Deliver 出货确认，仅已完成的工单可出货
// 出货时间与出货数量成对落库
func (s *WorkOrderService) Deliver(ctx context.Context, id string, deliveredQty int, deliveredAt time.Time) (*entity.WorkOrder, error) {
	wo, err := s.woRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("工单不存在: %w", err)
	}
	if !wo.IsCompleted() {
		return nil, fmt.Errorf("工单 %s 尚未完工，不可出货", wo.WOCode)
	}
	if deliveredQty < 1 {
		return nil, fmt.Errorf("工单 %s 出货数量必须不小于1", wo.WOCode)
	}
	if deliveredAt.IsZero() {
		deliveredAt = time.Now()
	}
	if err := s.woRepo.UpdateFields(ctx, id, map[string]interface{}{
		"delivered_at":       deliveredAt,
		"delivered_quantity": deliveredQty,
	}); err != nil {
		return nil, fmt.Errorf("工单 %s 出货确认失败: %w", wo.WOCode, err)
	}
	wo.DeliveredAt = &deliveredAt
	wo.DeliveredQuantity = &deliveredQty
	s.cache.Invalidate(ctx, CacheWorkOrders)
	return wo, nil
}

// AdvancePlateStatus 变更铜版状态
// 推进到CONFIRM时同一次UPDATE联动置位is_plate_ready，两者不存在中间态；
// 此前状态为NEW且本次推进到CONFIRM时，向操作人发出一次性"登记新铜版"建议
func (s *WorkOrderService) AdvancePlateStatus(ctx context.Context, id, newPlateStatus, userID string) (*entity.WorkOrder, bool, error) {
	if !entity.ValidPlateStatus(newPlateStatus) {
		return nil, false, fmt.Errorf("无效的铜版状态: %s", newPlateStatus)
	}
	wo, err := s.woRepo.FindByID(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("工单不存在: %w", err)
	}
	if wo.IsCompleted() {
		return nil, false, fmt.Errorf("工单 %s 已完成，铜版状态不可变更", wo.WOCode)
	}

	suggest := wo.PlateStatus == entity.PlateStatusNew &&
		newPlateStatus == entity.PlateStatusConfirm

	ready := newPlateStatus == entity.PlateStatusConfirm
	if err := s.woRepo.UpdateFields(ctx, id, map[string]interface{}{
		"plate_status":   newPlateStatus,
		"is_plate_ready": ready,
	}); err != nil {
		return nil, false, fmt.Errorf("工单 %s 铜版状态变更失败: %w", wo.WOCode, err)
	}
	wo.PlateStatus = newPlateStatus
	wo.IsPlateReady = ready
	s.cache.Invalidate(ctx, CacheWorkOrders)

	if suggest && s.hub != nil {
		s.hub.PublishPlateSuggestion(userID, wo.ID, wo.ProductID)
	}
	return wo, suggest, nil
}

// MarkPlateReady 显式"标记铜版就绪"
// 与推进到CONFIRM是同一条路径，保证两个字段永远成对变化
func (s *WorkOrderService) MarkPlateReady(ctx context.Context, id, userID string) (*entity.WorkOrder, bool, error) {
	return s.AdvancePlateStatus(ctx, id, entity.PlateStatusConfirm, userID)
}

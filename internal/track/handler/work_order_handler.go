package handler

import (
	"encoding/json"
	"time"

	"github.com/bitfantasy/filmtrack/internal/track/entity"
	"github.com/bitfantasy/filmtrack/internal/track/repository"
	"github.com/bitfantasy/filmtrack/internal/track/service"
	"github.com/gin-gonic/gin"
)

type WorkOrderHandler struct {
	svc   *service.WorkOrderService
	cache *service.ListCache
}

func NewWorkOrderHandler(svc *service.WorkOrderService, cache *service.ListCache) *WorkOrderHandler {
	return &WorkOrderHandler{svc: svc, cache: cache}
}

func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req service.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, 10001, err.Error())
		return
	}
	wo, err := h.svc.Create(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		respondBadRequest(c, 10004, err.Error())
		return
	}
	respondOK(c, h.svc.View(wo))
}

func (h *WorkOrderHandler) Get(c *gin.Context) {
	wo, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondNotFound(c, "工单不存在")
		return
	}
	respondOK(c, h.svc.View(wo))
}

// List 工单列表，分页并携带派生展示字段
// filter_sig供勾选集协调器识别过滤条件变化
func (h *WorkOrderHandler) List(c *gin.Context) {
	querySig := c.Request.URL.RawQuery

	if cached := h.cache.Get(c.Request.Context(), service.CacheWorkOrders, querySig); cached != nil {
		c.Data(200, "application/json", cached)
		return
	}

	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 20)
	params := repository.WOListParams{
		AccountID:        c.Query("account_id"),
		ProductID:        c.Query("product_id"),
		Status:           c.Query("status"),
		PlateStatus:      c.Query("plate_status"),
		Keyword:          c.Query("keyword"),
		IncludeCompleted: c.Query("include_completed") == "true",
		Page:             page,
		Size:             size,
	}
	if v := c.Query("deliver_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			params.DeliverFrom = &t
		}
	}
	if v := c.Query("deliver_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			params.DeliverTo = &t
		}
	}

	wos, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		respondInternal(c, err.Error())
		return
	}
	views := make([]*service.WorkOrderView, 0, len(wos))
	for i := range wos {
		views = append(views, h.svc.View(&wos[i]))
	}
	body, _ := json.Marshal(gin.H{
		"code": 0, "message": "success",
		"data": gin.H{
			"items":      views,
			"total":      total,
			"page":       page,
			"size":       size,
			"has_more":   int64(page*size) < total,
			"filter_sig": querySig,
		},
	})
	h.cache.Set(c.Request.Context(), service.CacheWorkOrders, querySig, body)
	c.Data(200, "application/json", body)
}

func (h *WorkOrderHandler) Update(c *gin.Context) {
	var req service.UpdateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, 10001, err.Error())
		return
	}
	wo, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondBadRequest(c, 10004, err.Error())
		return
	}
	respondOK(c, h.svc.View(wo))
}

func (h *WorkOrderHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondBadRequest(c, 10004, err.Error())
		return
	}
	respondOK(c, nil)
}

// StatusOptions 按产品印刷面返回可选生产状态
func (h *WorkOrderHandler) StatusOptions(c *gin.Context) {
	wo, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondNotFound(c, "工单不存在")
		return
	}
	printSide := entity.PrintSideNone
	if wo.Product != nil {
		printSide = wo.Product.PrintSide
	}
	options := service.StatusOptions(printSide)
	labels := make(map[string]string, len(options))
	for _, opt := range options {
		labels[opt] = service.StatusLabel(opt)
	}
	respondOK(c, gin.H{"options": options, "labels": labels})
}

func (h *WorkOrderHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, 10001, err.Error())
		return
	}
	wo, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, GetUserID(c))
	if err != nil {
		respondBadRequest(c, 10004, err.Error())
		return
	}
	respondOK(c, h.svc.View(wo))
}

func (h *WorkOrderHandler) Complete(c *gin.Context) {
	var req struct {
		CompletedQuantity int    `json:"completed_quantity" binding:"required,gte=1"`
		CompletedAt       string `json:"completed_at"` // YYYY-MM-DD
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, 10001, err.Error())
		return
	}
	completedAt := time.Time{}
	if req.CompletedAt != "" {
		t, err := time.Parse("2006-01-02", req.CompletedAt)
		if err != nil {
			respondBadRequest(c, 10001, "完工时间格式错误")
			return
		}
		completedAt = t
	}
	wo, err := h.svc.Complete(c.Request.Context(), c.Param("id"), req.CompletedQuantity, completedAt, GetUserID(c))
	if err != nil {
		respondBadRequest(c, 10004, err.Error())
		return
	}
	respondOK(c, h.svc.View(wo))
}

func (h *WorkOrderHandler) Deliver(c *gin.Context) {
	var req struct {
		DeliveredQuantity int    `json:"delivered_quantity" binding:"required,gte=1"`
		DeliveredAt       string `json:"delivered_at"` // YYYY-MM-DD
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, 10001, err.Error())
		return
	}
	deliveredAt := time.Time{}
	if req.DeliveredAt != "" {
		t, err := time.Parse("2006-01-02", req.DeliveredAt)
		if err != nil {
			respondBadRequest(c, 10001, "出货时间格式错误")
			return
		}
		deliveredAt = t
	}
	wo, err := h.svc.Deliver(c.Request.Context(), c.Param("id"), req.DeliveredQuantity, deliveredAt)
	if err != nil {
		respondBadRequest(c, 10004, err.Error())
		return
	}
	respondOK(c, h.svc.View(wo))
}

// UpdatePlateStatus 变更铜版状态
// 响应中的suggest_new_plate提示前端弹出"登记新铜版"确认
func (h *WorkOrderHandler) UpdatePlateStatus(c *gin.Context) {
	var req struct {
		PlateStatus string `json:"plate_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, 10001, err.Error())
		return
	}
	wo, suggest, err := h.svc.AdvancePlateStatus(c.Request.Context(), c.Param("id"), req.PlateStatus, GetUserID(c))
	if err != nil {
		respondBadRequest(c, 10004, err.Error())
		return
	}
	respondOK(c, gin.H{"work_order": h.svc.View(wo), "suggest_new_plate": suggest})
}

func (h *WorkOrderHandler) MarkPlateReady(c *gin.Context) {
	wo, suggest, err := h.svc.MarkPlateReady(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		respondBadRequest(c, 10004, err.Error())
		return
	}
	respondOK(c, gin.H{"work_order": h.svc.View(wo), "suggest_new_plate": suggest})
}

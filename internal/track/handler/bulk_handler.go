package handler

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/bitfantasy/filmtrack/internal/track/repository"
	"github.com/bitfantasy/filmtrack/internal/track/service"
	"github.com/gin-gonic/gin"
)

// BulkHandler 批量导入入口
// 行内容由前端从Excel解析为JSON后提交，文件解析不在本服务内
type BulkHandler struct {
	svc   *service.BulkService
	repos *repository.Repositories
}

func NewBulkHandler(svc *service.BulkService, repos *repository.Repositories) *BulkHandler {
	return &BulkHandler{svc: svc, repos: repos}
}

type bulkRequest struct {
	Rows []json.RawMessage `json:"rows" binding:"required"`
}

func (h *BulkHandler) run(c *gin.Context, creator service.BulkCreator) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, 10001, err.Error())
		return
	}
	if len(req.Rows) == 0 {
		respondBadRequest(c, 10001, "导入行不能为空")
		return
	}
	result, err := h.svc.BulkCreate(c.Request.Context(), creator, req.Rows, GetUserID(c))
	if err != nil {
		respondInternal(c, err.Error())
		return
	}
	respondOK(c, result)
}

func (h *BulkHandler) CreateAccounts(c *gin.Context) {
	h.run(c, service.NewAccountBulkCreator(h.repos.Account, GetUserID(c)))
}

func (h *BulkHandler) CreateProducts(c *gin.Context) {
	h.run(c, service.NewProductBulkCreator(h.repos.Account, h.repos.Product, GetUserID(c)))
}

func (h *BulkHandler) CreateWorkOrders(c *gin.Context) {
	h.run(c, service.NewWorkOrderBulkCreator(h.repos.Account, h.repos.Product, h.repos.WorkOrder, GetUserID(c)))
}

// ExportFailures 导出失败明细为xlsx
// 配置了MinIO时同时归档，归档对象名放在响应头
func (h *BulkHandler) ExportFailures(c *gin.Context) {
	var req struct {
		Entity     string              `json:"entity" binding:"required"`
		FailedList []service.FailedRow `json:"failed_list" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, 10001, err.Error())
		return
	}
	f, objectName, err := h.svc.ExportFailures(c.Request.Context(), req.Entity, req.FailedList)
	if err != nil {
		respondInternal(c, err.Error())
		return
	}
	// 先整体生成再落响应，避免流式写一半后无法回头报错
	buf, err := f.WriteToBuffer()
	if err != nil {
		respondInternal(c, fmt.Sprintf("导出失败: %v", err))
		return
	}
	filename := fmt.Sprintf("%s_失败明细_%s.xlsx", req.Entity, time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	if objectName != "" {
		c.Header("X-Archive-Object", objectName)
	}
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/bitfantasy/filmtrack/internal/track/repository"
	"github.com/bitfantasy/filmtrack/internal/track/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Account   *AccountHandler
	Product   *ProductHandler
	Plate     *PlateHandler
	WorkOrder *WorkOrderHandler
	Bulk      *BulkHandler
	Selection *SelectionHandler
	SSE       *SSEHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, repos *repository.Repositories) *Handlers {
	return &Handlers{
		Account:   NewAccountHandler(svc.Account, svc.Cache),
		Product:   NewProductHandler(svc.Product, svc.Cache),
		Plate:     NewPlateHandler(svc.Plate, svc.Cache),
		WorkOrder: NewWorkOrderHandler(svc.WorkOrder, svc.Cache),
		Bulk:      NewBulkHandler(svc.Bulk, repos),
		Selection: NewSelectionHandler(svc.Selection),
		SSE:       NewSSEHandler(svc.Hub),
	}
}

// GetUserID 取当前登录用户ID
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if s, ok := userID.(string); ok {
			return s
		}
	}
	return ""
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": data})
}

func respondBadRequest(c *gin.Context, code int, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"code": code, "message": message})
}

func respondNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": message})
}

func respondInternal(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": message})
}

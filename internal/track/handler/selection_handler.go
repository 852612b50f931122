package handler

import (
	"github.com/bitfantasy/filmtrack/internal/track/service"
	"github.com/gin-gonic/gin"
)

// SelectionHandler 勾选集接口
// 全选只作用于请求携带的可见id集合，不会扩大到整个过滤结果集
type SelectionHandler struct {
	svc *service.SelectionService
}

func NewSelectionHandler(svc *service.SelectionService) *SelectionHandler {
	return &SelectionHandler{svc: svc}
}

const defaultScope = "work_orders"

func scopeOf(s string) string {
	if s == "" {
		return defaultScope
	}
	return s
}

func (h *SelectionHandler) Toggle(c *gin.Context) {
	var req struct {
		Scope     string `json:"scope"`
		FilterSig string `json:"filter_sig"`
		ID        string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, 10001, err.Error())
		return
	}
	userID := GetUserID(c)
	h.svc.Toggle(userID, scopeOf(req.Scope), req.FilterSig, req.ID)
	respondOK(c, h.svc.State(userID, scopeOf(req.Scope), req.FilterSig, nil))
}

func (h *SelectionHandler) SelectAll(c *gin.Context) {
	var req struct {
		Scope      string   `json:"scope"`
		FilterSig  string   `json:"filter_sig"`
		VisibleIDs []string `json:"visible_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, 10001, err.Error())
		return
	}
	userID := GetUserID(c)
	h.svc.SelectAll(userID, scopeOf(req.Scope), req.FilterSig, req.VisibleIDs)
	respondOK(c, h.svc.State(userID, scopeOf(req.Scope), req.FilterSig, req.VisibleIDs))
}

func (h *SelectionHandler) State(c *gin.Context) {
	userID := GetUserID(c)
	scope := scopeOf(c.Query("scope"))
	filterSig := c.Query("filter_sig")
	visibleIDs := c.QueryArray("visible_ids")
	respondOK(c, h.svc.State(userID, scope, filterSig, visibleIDs))
}

func (h *SelectionHandler) Clear(c *gin.Context) {
	h.svc.Clear(GetUserID(c), scopeOf(c.Query("scope")))
	respondOK(c, nil)
}

// CompleteBatch 对勾选集批量完工，逐单独立成败
func (h *SelectionHandler) CompleteBatch(c *gin.Context) {
	var req struct {
		Scope string                   `json:"scope"`
		Items []service.CompletionItem `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, 10001, err.Error())
		return
	}
	results := h.svc.CompleteBatch(c.Request.Context(), GetUserID(c), scopeOf(req.Scope), req.Items)
	succeeded := 0
	for _, r := range results {
		if r.OK {
			succeeded++
		}
	}
	respondOK(c, gin.H{"results": results, "succeeded": succeeded, "failed": len(results) - succeeded})
}

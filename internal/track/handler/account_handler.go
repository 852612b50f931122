package handler

import (
	"encoding/json"

	"github.com/bitfantasy/filmtrack/internal/track/repository"
	"github.com/bitfantasy/filmtrack/internal/track/service"
	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	svc   *service.AccountService
	cache *service.ListCache
}

func NewAccountHandler(svc *service.AccountService, cache *service.ListCache) *AccountHandler {
	return &AccountHandler{svc: svc, cache: cache}
}

func (h *AccountHandler) Create(c *gin.Context) {
	var input service.CreateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, 10001, err.Error())
		return
	}
	a, err := h.svc.Create(c.Request.Context(), input, GetUserID(c))
	if err != nil {
		respondBadRequest(c, 10004, err.Error())
		return
	}
	respondOK(c, a)
}

func (h *AccountHandler) Get(c *gin.Context) {
	a, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondNotFound(c, "客户不存在")
		return
	}
	respondOK(c, a)
}

func (h *AccountHandler) List(c *gin.Context) {
	querySig := c.Request.URL.RawQuery
	if cached := h.cache.Get(c.Request.Context(), service.CacheAccounts, querySig); cached != nil {
		c.Data(200, "application/json", cached)
		return
	}

	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 20)
	accounts, total, err := h.svc.List(c.Request.Context(), repository.AccountListParams{
		Keyword: c.Query("keyword"),
		Page:    page,
		Size:    size,
	})
	if err != nil {
		respondInternal(c, err.Error())
		return
	}
	body, _ := json.Marshal(gin.H{
		"code": 0, "message": "success",
		"data": gin.H{
			"items":    accounts,
			"total":    total,
			"page":     page,
			"size":     size,
			"has_more": int64(page*size) < total,
		},
	})
	h.cache.Set(c.Request.Context(), service.CacheAccounts, querySig, body)
	c.Data(200, "application/json", body)
}

func (h *AccountHandler) Update(c *gin.Context) {
	var input service.UpdateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, 10001, err.Error())
		return
	}
	a, err := h.svc.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondBadRequest(c, 10004, err.Error())
		return
	}
	respondOK(c, a)
}

func (h *AccountHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondBadRequest(c, 10004, err.Error())
		return
	}
	respondOK(c, nil)
}

package handler

import (
	"encoding/json"

	"github.com/bitfantasy/filmtrack/internal/track/repository"
	"github.com/bitfantasy/filmtrack/internal/track/service"
	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	svc   *service.ProductService
	cache *service.ListCache
}

func NewProductHandler(svc *service.ProductService, cache *service.ListCache) *ProductHandler {
	return &ProductHandler{svc: svc, cache: cache}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var input service.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, 10001, err.Error())
		return
	}
	p, err := h.svc.Create(c.Request.Context(), input, GetUserID(c))
	if err != nil {
		respondBadRequest(c, 10004, err.Error())
		return
	}
	respondOK(c, p)
}

func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondNotFound(c, "产品不存在")
		return
	}
	respondOK(c, p)
}

func (h *ProductHandler) List(c *gin.Context) {
	querySig := c.Request.URL.RawQuery
	if cached := h.cache.Get(c.Request.Context(), service.CacheProducts, querySig); cached != nil {
		c.Data(200, "application/json", cached)
		return
	}

	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 20)
	products, total, err := h.svc.List(c.Request.Context(), repository.ProductListParams{
		AccountID: c.Query("account_id"),
		PrintSide: c.Query("print_side"),
		Keyword:   c.Query("keyword"),
		Page:      page,
		Size:      size,
	})
	if err != nil {
		respondInternal(c, err.Error())
		return
	}
	body, _ := json.Marshal(gin.H{
		"code": 0, "message": "success",
		"data": gin.H{
			"items":    products,
			"total":    total,
			"page":     page,
			"size":     size,
			"has_more": int64(page*size) < total,
		},
	})
	h.cache.Set(c.Request.Context(), service.CacheProducts, querySig, body)
	c.Data(200, "application/json", body)
}

func (h *ProductHandler) Update(c *gin.Context) {
	var input service.UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, 10001, err.Error())
		return
	}
	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondBadRequest(c, 10004, err.Error())
		return
	}
	respondOK(c, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondBadRequest(c, 10004, err.Error())
		return
	}
	respondOK(c, nil)
}

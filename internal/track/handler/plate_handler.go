package handler

import (
	"encoding/json"

	"github.com/bitfantasy/filmtrack/internal/track/repository"
	"github.com/bitfantasy/filmtrack/internal/track/service"
	"github.com/gin-gonic/gin"
)

type PlateHandler struct {
	svc   *service.PlateService
	cache *service.ListCache
}

func NewPlateHandler(svc *service.PlateService, cache *service.ListCache) *PlateHandler {
	return &PlateHandler{svc: svc, cache: cache}
}

func (h *PlateHandler) Create(c *gin.Context) {
	var input service.CreatePlateInput
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

func (h *PlateHandler) Get(c *gin.Context) {
	p, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondNotFound(c, "铜版不存在")
		return
	}
	respondOK(c, p)
}

func (h *PlateHandler) List(c *gin.Context) {
	querySig := c.Request.URL.RawQuery
	if cached := h.cache.Get(c.Request.Context(), service.CachePlates, querySig); cached != nil {
		c.Data(200, "application/json", cached)
		return
	}

	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 20)
	plates, total, err := h.svc.List(c.Request.Context(), repository.PlateListParams{
		ProductID: c.Query("product_id"),
		Material:  c.Query("material"),
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
			"items":    plates,
			"total":    total,
			"page":     page,
			"size":     size,
			"has_more": int64(page*size) < total,
		},
	})
	h.cache.Set(c.Request.Context(), service.CachePlates, querySig, body)
	c.Data(200, "application/json", body)
}

func (h *PlateHandler) Update(c *gin.Context) {
	var input service.UpdatePlateInput
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

func (h *PlateHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondBadRequest(c, 10004, err.Error())
		return
	}
	respondOK(c, nil)
}

package handler

import (
	"net/http"

	"github.com/dSumitabha/multi-tenant/internal/dto"
	"github.com/dSumitabha/multi-tenant/internal/middleware"

	"github.com/gin-gonic/gin"
)

// ProductsHandler resolves the tenant backend per request; nothing is cached
// on the handler itself.
type ProductsHandler struct{}

func NewProductsHandler() *ProductsHandler { return &ProductsHandler{} }

func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}

	t := middleware.GetTenant(c)
	resp, err := t.Products.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProductsHandler) List(c *gin.Context) {
	t := middleware.GetTenant(c)
	resp, err := t.Products.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

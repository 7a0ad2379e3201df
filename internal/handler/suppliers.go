package handler

import (
	"net/http"

	"github.com/dSumitabha/multi-tenant/internal/dto"
	"github.com/dSumitabha/multi-tenant/internal/middleware"

	"github.com/gin-gonic/gin"
)

type SuppliersHandler struct{}

func NewSuppliersHandler() *SuppliersHandler { return &SuppliersHandler{} }

func (h *SuppliersHandler) Create(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if !bindAndValidate(c, &req) {
		return
	}

	t := middleware.GetTenant(c)
	resp, err := t.Suppliers.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SuppliersHandler) List(c *gin.Context) {
	t := middleware.GetTenant(c)
	resp, err := t.Suppliers.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

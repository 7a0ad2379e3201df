package handler

import (
	"net/http"

	"github.com/dSumitabha/multi-tenant/internal/apierror"
	"github.com/dSumitabha/multi-tenant/internal/dto"
	"github.com/dSumitabha/multi-tenant/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesOrdersHandler struct{}

func NewSalesOrdersHandler() *SalesOrdersHandler { return &SalesOrdersHandler{} }

func (h *SalesOrdersHandler) Create(c *gin.Context) {
	var req dto.CreateSalesOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}

	t := middleware.GetTenant(c)
	resp, err := t.SalesOrders.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SalesOrdersHandler) List(c *gin.Context) {
	t := middleware.GetTenant(c)
	resp, err := t.SalesOrders.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesOrdersHandler) Advance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid order id"))
		return
	}

	var req dto.AdvanceOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}

	t := middleware.GetTenant(c)
	status, err := t.SalesOrders.Advance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AdvanceOrderResponse{Success: true, Status: string(status)})
}

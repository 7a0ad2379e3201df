package handler

import (
	"net/http"

	"github.com/dSumitabha/multi-tenant/internal/apierror"
	"github.com/dSumitabha/multi-tenant/internal/dto"
	"github.com/dSumitabha/multi-tenant/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PurchaseOrdersHandler struct{}

func NewPurchaseOrdersHandler() *PurchaseOrdersHandler { return &PurchaseOrdersHandler{} }

func (h *PurchaseOrdersHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}

	t := middleware.GetTenant(c)
	resp, err := t.PurchaseOrders.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PurchaseOrdersHandler) List(c *gin.Context) {
	t := middleware.GetTenant(c)
	resp, err := t.PurchaseOrders.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Advance moves the order one step along its status flow. Receiving is the
// heavyweight step: stock-IN per line plus the status write, all in one
// transaction.
func (h *PurchaseOrdersHandler) Advance(c *gin.Context) {
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
	status, err := t.PurchaseOrders.Advance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AdvanceOrderResponse{Success: true, Status: string(status)})
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/dSumitabha/multi-tenant/internal/apierror"
	"github.com/dSumitabha/multi-tenant/internal/dto"
	"github.com/dSumitabha/multi-tenant/internal/middleware"
	"github.com/dSumitabha/multi-tenant/internal/model"
	"github.com/dSumitabha/multi-tenant/internal/repository"
	"github.com/dSumitabha/multi-tenant/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct{}

func NewInventoryHandler() *InventoryHandler { return &InventoryHandler{} }

// Adjust applies a manual stock correction outside any order flow.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product_id"))
		return
	}
	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid variant_id"))
		return
	}

	t := middleware.GetTenant(c)
	result, err := t.Inventory.ApplyStockChange(c.Request.Context(), service.ApplyStockChangeInput{
		ProductID:      productID,
		VariantID:      variantID,
		Direction:      model.MovementDirection(req.Direction),
		Quantity:       req.Quantity,
		Reason:         model.ReasonAdjustment,
		SourceType:     model.SourceManual,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StockChangeResponse{
		Success:      true,
		Skipped:      result.Skipped,
		CurrentStock: result.CurrentStock,
	})
}

// ListMovements pages through the stock ledger, newest first.
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	filter := repository.StockMovementFilter{
		Page:  parseIntQuery(c, "page", 1),
		Limit: parseIntQuery(c, "limit", 20),
	}
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid product_id"))
			return
		}
		filter.ProductID = &id
	}
	if raw := c.Query("variant_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid variant_id"))
			return
		}
		filter.VariantID = &id
	}

	t := middleware.GetTenant(c)
	resp, err := t.Inventory.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Summary serves the dashboard inventory aggregation.
func (h *InventoryHandler) Summary(c *gin.Context) {
	t := middleware.GetTenant(c)
	resp, err := t.Inventory.GetInventorySummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

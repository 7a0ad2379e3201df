package dto

import "github.com/shopspring/decimal"

// ─── Manual adjustment ───────────────────────────────────────────────────────

type AdjustStockRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Direction string `json:"direction"  validate:"required,oneof=IN OUT"`
	Quantity  int    `json:"quantity"   validate:"required,gt=0"`
	// Optional: suppliers of the key get at-most-once application on retry.
	IdempotencyKey string `json:"idempotency_key" validate:"omitempty,max=128"`
}

type StockChangeResponse struct {
	Success      bool `json:"success"`
	Skipped      bool `json:"skipped,omitempty"`
	CurrentStock int  `json:"current_stock"`
}

// ─── Dashboard summary ───────────────────────────────────────────────────────

type InventorySummaryItem struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	VariantID      string          `json:"variant_id"`
	SKU            string          `json:"sku"`
	AvailableQty   int             `json:"available_qty"`
	PendingPOQty   int             `json:"pending_po_qty"`
	PendingSOQty   int             `json:"pending_so_qty"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
}

type InventorySummaryResponse struct {
	Items               []InventorySummaryItem `json:"items"`
	TotalInventoryValue decimal.Decimal        `json:"total_inventory_value"`
}

// ─── Movement listing ────────────────────────────────────────────────────────

type MovementProductInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MovementVariantInfo struct {
	ID    string          `json:"id"`
	SKU   string          `json:"sku"`
	Price decimal.Decimal `json:"price"`
}

type MovementSourceInfo struct {
	Type         string  `json:"type"`
	ID           string  `json:"id"`
	SupplierName *string `json:"supplier_name,omitempty"`
	CustomerName *string `json:"customer_name,omitempty"`
	Status       string  `json:"status,omitempty"`
}

type StockMovementResponse struct {
	ID         string               `json:"id"`
	ProductID  string               `json:"product_id"`
	VariantID  string               `json:"variant_id"`
	Direction  string               `json:"direction"`
	Quantity   int                  `json:"quantity"`
	Reason     string               `json:"reason"`
	SourceType string               `json:"source_type"`
	SourceID   *string              `json:"source_id"`
	CreatedAt  string               `json:"created_at"`
	Product    *MovementProductInfo `json:"product,omitempty"`
	Variant    *MovementVariantInfo `json:"variant,omitempty"`
	Source     *MovementSourceInfo  `json:"source,omitempty"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

package dto

import "github.com/shopspring/decimal"

// ─── Purchase orders ─────────────────────────────────────────────────────────

type PurchaseOrderItemRequest struct {
	ProductID  string          `json:"product_id"  validate:"required,uuid"`
	VariantID  string          `json:"variant_id"  validate:"required,uuid"`
	OrderedQty int             `json:"ordered_qty" validate:"required,gt=0"`
	UnitPrice  decimal.Decimal `json:"unit_price"  validate:"min=0"`
}

type CreatePurchaseOrderRequest struct {
	SupplierID string                     `json:"supplier_id" validate:"required,uuid"`
	Items      []PurchaseOrderItemRequest `json:"items"       validate:"required,min=1,dive"`
}

type PurchaseOrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	VariantID   string          `json:"variant_id"`
	OrderedQty  int             `json:"ordered_qty"`
	ReceivedQty int             `json:"received_qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type PurchaseOrderResponse struct {
	ID           string                      `json:"id"`
	SupplierID   string                      `json:"supplier_id"`
	SupplierName *string                     `json:"supplier_name,omitempty"`
	Status       string                      `json:"status"`
	Items        []PurchaseOrderItemResponse `json:"items"`
	Total        decimal.Decimal             `json:"total"`
	CreatedAt    string                      `json:"created_at"`
}

// ─── Sales orders ────────────────────────────────────────────────────────────

type SalesOrderItemRequest struct {
	ProductID  string          `json:"product_id"  validate:"required,uuid"`
	VariantID  string          `json:"variant_id"  validate:"required,uuid"`
	OrderedQty int             `json:"ordered_qty" validate:"required,gt=0"`
	UnitPrice  decimal.Decimal `json:"unit_price"  validate:"min=0"`
}

type CreateSalesOrderRequest struct {
	CustomerName string                  `json:"customer_name" validate:"required,min=2,max=120"`
	Items        []SalesOrderItemRequest `json:"items"         validate:"required,min=1,dive"`
}

type SalesOrderItemResponse struct {
	ProductID    string          `json:"product_id"`
	VariantID    string          `json:"variant_id"`
	OrderedQty   int             `json:"ordered_qty"`
	FulfilledQty int             `json:"fulfilled_qty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

type SalesOrderResponse struct {
	ID           string                   `json:"id"`
	CustomerName string                   `json:"customer_name"`
	Status       string                   `json:"status"`
	Items        []SalesOrderItemResponse `json:"items"`
	Total        decimal.Decimal          `json:"total"`
	CreatedAt    string                   `json:"created_at"`
}

// AdvanceOrderRequest is the body of both status endpoints; the only action
// is NEXT (single-step forward).
type AdvanceOrderRequest struct {
	Action string `json:"action" validate:"required,eq=NEXT"`
}

type AdvanceOrderResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

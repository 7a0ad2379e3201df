package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ProductAttributeDTO struct {
	Name   string   `json:"name"   validate:"required"`
	Values []string `json:"values" validate:"required,min=1"`
}

type CreateVariantRequest struct {
	SKU          string            `json:"sku"           validate:"required,min=1,max=64"`
	Attributes   map[string]string `json:"attributes"`
	Price        decimal.Decimal   `json:"price"         validate:"min=0"`
	Stock        int               `json:"stock"         validate:"min=0"`
	ReorderLevel int               `json:"reorder_level" validate:"min=0"`
}

type CreateProductRequest struct {
	Name        string                 `json:"name"        validate:"required,min=2,max=120"`
	Description *string                `json:"description"`
	Attributes  []ProductAttributeDTO  `json:"attributes"`
	Variants    []CreateVariantRequest `json:"variants"    validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VariantResponse struct {
	ID           string            `json:"id"`
	SKU          string            `json:"sku"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	Price        decimal.Decimal   `json:"price"`
	Stock        int               `json:"stock"`
	ReorderLevel int               `json:"reorder_level"`
	IsActive     bool              `json:"is_active"`
}

type ProductResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description *string               `json:"description"`
	Attributes  []ProductAttributeDTO `json:"attributes,omitempty"`
	Variants    []VariantResponse     `json:"variants"`
	IsActive    bool                  `json:"is_active"`
}

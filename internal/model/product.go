package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductAttribute is an option set declared on the product, e.g.
// {Name: "size", Values: ["S", "M", "L"]}. Variants pick one value per set.
type ProductAttribute struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Product owns its variants by composition: a variant has no lifecycle of its
// own and is never referenced outside its parent's transaction boundary.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"index;not null"`
	Description *string
	Attributes  []ProductAttribute `gorm:"serializer:json"`
	IsActive    bool               `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Variants []Variant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (Product) TableName() string { return "products" }

// IDs are assigned here rather than by a database default so the schema
// migrates identically on every supported engine.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Variant carries the authoritative stock counter. Variant.Stock is the single
// source of truth for current quantity; stock_snapshots is a derived cache.
type Variant struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey"`
	ProductID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	SKU          string            `gorm:"column:sku;not null;index"`
	Attributes   map[string]string `gorm:"serializer:json"`
	Price        decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	Stock        int               `gorm:"not null;default:0"`
	ReorderLevel int               `gorm:"not null;default:0"`
	IsActive     bool              `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Variant) TableName() string { return "variants" }

func (v *Variant) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// FindVariant returns the embedded variant with the given id, or nil.
func (p *Product) FindVariant(variantID uuid.UUID) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}

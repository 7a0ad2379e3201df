package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementDirection marks whether a movement adds to or removes from stock.
type MovementDirection string

const (
	DirectionIn  MovementDirection = "IN"
	DirectionOut MovementDirection = "OUT"
)

func (d MovementDirection) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// MovementReason classifies why stock changed.
type MovementReason string

const (
	ReasonPurchase   MovementReason = "PURCHASE"
	ReasonSale       MovementReason = "SALE"
	ReasonReturn     MovementReason = "RETURN"
	ReasonAdjustment MovementReason = "ADJUSTMENT"
)

// MovementSource identifies the document kind a movement originated from.
type MovementSource string

const (
	SourcePurchaseOrder MovementSource = "PO"
	SourceSalesOrder    MovementSource = "SO"
	SourceManual        MovementSource = "MANUAL"
)

// StockMovement is the append-only ledger entry recording one quantity change
// to one variant. Rows are never updated or deleted. The unique index on
// IdempotencyKey is the commit-time guard against double application: two
// concurrent transactions carrying the same key cannot both insert — the loser
// aborts with a unique violation. NULL keys are exempt (Postgres unique
// indexes permit multiple NULLs), so unkeyed manual adjustments coexist freely.
type StockMovement struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey"`
	ProductID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	VariantID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	Direction      MovementDirection `gorm:"type:varchar(3);not null"`
	Quantity       int               `gorm:"not null"` // always > 0; Direction carries the sign
	Reason         MovementReason    `gorm:"type:varchar(12);not null"`
	SourceType     MovementSource    `gorm:"type:varchar(8);not null"`
	SourceID       *uuid.UUID        `gorm:"type:uuid"`
	IdempotencyKey *string           `gorm:"uniqueIndex:uni_stock_movements_idempotency_key"`
	CreatedAt      time.Time
}

func (StockMovement) TableName() string { return "stock_movements" }

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

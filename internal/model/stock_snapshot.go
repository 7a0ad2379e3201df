package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockSnapshot is a denormalized per-(product, variant) copy of the variant's
// current stock, maintained by the stock applier for fast read-side
// aggregation. It is a cache, not a ledger: always upserted to the live value,
// never independently authoritative.
type StockSnapshot struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_snapshots_product_variant"`
	VariantID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_snapshots_product_variant"`
	AvailableQty int       `gorm:"not null"`
	UpdatedAt    time.Time
}

func (StockSnapshot) TableName() string { return "stock_snapshots" }

func (s *StockSnapshot) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

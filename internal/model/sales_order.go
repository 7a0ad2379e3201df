package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SOStatus is the closed sales-order lifecycle enum.
type SOStatus string

const (
	SOStatusDraft     SOStatus = "DRAFT"
	SOStatusConfirmed SOStatus = "CONFIRMED"
	SOStatusFulfilled SOStatus = "FULFILLED"
	SOStatusReturned  SOStatus = "RETURNED"
	// SOStatusCancelled has no lifecycle transition; administrative path only.
	SOStatusCancelled SOStatus = "CANCELLED"
)

// Next returns the single forward transition for the ADVANCE action.
// RETURNED is a terminal forward state: a returned order cannot move again.
func (s SOStatus) Next() (next SOStatus, ok bool) {
	switch s {
	case SOStatusDraft:
		return SOStatusConfirmed, true
	case SOStatusConfirmed:
		return SOStatusFulfilled, true
	case SOStatusFulfilled:
		return SOStatusReturned, true
	case SOStatusReturned, SOStatusCancelled:
		return "", false
	default:
		return "", false
	}
}

func (s SOStatus) Valid() bool {
	switch s {
	case SOStatusDraft, SOStatusConfirmed, SOStatusFulfilled, SOStatusReturned, SOStatusCancelled:
		return true
	}
	return false
}

// SalesOrder represents intent to ship stock to a customer. Confirmation is a
// commitment, not a physical movement: stock moves OUT on CONFIRMED→FULFILLED
// and back IN on FULFILLED→RETURNED.
type SalesOrder struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerName string    `gorm:"not null"`
	Status       SOStatus  `gorm:"type:varchar(12);not null;default:'DRAFT'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Items []SalesOrderItem `gorm:"foreignKey:SalesOrderID;constraint:OnDelete:CASCADE"`
}

func (SalesOrder) TableName() string { return "sales_orders" }

func (so *SalesOrder) BeforeCreate(*gorm.DB) error {
	if so.ID == uuid.Nil {
		so.ID = uuid.New()
	}
	return nil
}

type SalesOrderItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SalesOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null"`
	VariantID    uuid.UUID       `gorm:"type:uuid;not null"`
	OrderedQty   int             `gorm:"not null"`
	FulfilledQty int             `gorm:"not null;default:0"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (SalesOrderItem) TableName() string { return "sales_order_items" }

func (i *SalesOrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// POStatus is the closed purchase-order lifecycle enum. Transitions are
// expressed by Next, an exhaustive function: adding a state without teaching
// Next about it makes the omission visible here, not a silent runtime
// fallthrough.
type POStatus string

const (
	POStatusDraft     POStatus = "DRAFT"
	POStatusSent      POStatus = "SENT"
	POStatusConfirmed POStatus = "CONFIRMED"
	POStatusReceived  POStatus = "RECEIVED"
	// POStatusCancelled is reachable only through an administrative path;
	// the lifecycle engine defines no transition into or out of it.
	POStatusCancelled POStatus = "CANCELLED"
)

// Next returns the single forward transition for the ADVANCE action.
// Terminal and unrecognized states return ok=false.
func (s POStatus) Next() (next POStatus, ok bool) {
	switch s {
	case POStatusDraft:
		return POStatusSent, true
	case POStatusSent:
		return POStatusConfirmed, true
	case POStatusConfirmed:
		return POStatusReceived, true
	case POStatusReceived, POStatusCancelled:
		return "", false
	default:
		return "", false
	}
}

func (s POStatus) Valid() bool {
	switch s {
	case POStatusDraft, POStatusSent, POStatusConfirmed, POStatusReceived, POStatusCancelled:
		return true
	}
	return false
}

// PurchaseOrder represents intent to receive stock from a supplier.
// Stock moves only on the CONFIRMED→RECEIVED transition.
type PurchaseOrder struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status     POStatus  `gorm:"type:varchar(12);not null;default:'DRAFT'"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Items    []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
	Supplier *Supplier           `gorm:"foreignKey:SupplierID"`
}

func (PurchaseOrder) TableName() string { return "purchase_orders" }

func (po *PurchaseOrder) BeforeCreate(*gorm.DB) error {
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	return nil
}

type PurchaseOrderItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null"`
	VariantID       uuid.UUID       `gorm:"type:uuid;not null"`
	OrderedQty      int             `gorm:"not null"`
	ReceivedQty     int             `gorm:"not null;default:0"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (PurchaseOrderItem) TableName() string { return "purchase_order_items" }

func (i *PurchaseOrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

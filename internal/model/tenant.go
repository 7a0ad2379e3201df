package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

// Tenant is a master-database directory entry. Each tenant's operational data
// lives in its own database named DBName; nothing tenant-scoped is ever stored
// in the master database besides this row and the user accounts.
type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Slug      string    `gorm:"uniqueIndex;not null"`
	DBName    string    `gorm:"column:db_name;uniqueIndex;not null"`
	Status    string    `gorm:"type:varchar(12);not null;default:'active'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Tenant) TableName() string { return "tenants" }

func (t *Tenant) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

package infra

import (
	"fmt"

	"github.com/dSumitabha/multi-tenant/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewMasterDatabase connects to the shared master database holding the tenant
// directory and user accounts, and migrates its schema.
func NewMasterDatabase(dsn string) (*gorm.DB, error) {
	db, err := open(dsn)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.Tenant{}, &model.User{}); err != nil {
		return nil, fmt.Errorf("master AutoMigrate: %w", err)
	}
	return db, nil
}

// NewTenantDatabase connects to one tenant's isolated database and migrates
// the operational schema. Tenant databases are provisioned lazily on first
// use, so migration runs on every new connection — AutoMigrate is idempotent.
func NewTenantDatabase(dsn string) (*gorm.DB, error) {
	db, err := open(dsn)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&model.Product{},
		&model.Variant{},
		&model.Supplier{},
		&model.StockMovement{},
		&model.StockSnapshot{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.SalesOrder{},
		&model.SalesOrderItem{},
	); err != nil {
		return nil, fmt.Errorf("tenant AutoMigrate: %w", err)
	}
	return db, nil
}

func open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// Close releases the underlying connection pool of a GORM handle.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package service

import (
	"context"
	"testing"

	"github.com/dSumitabha/multi-tenant/internal/model"
	"github.com/dSumitabha/multi-tenant/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The in-memory stubs pass nil transactions through, so they can prove what a
// transition writes but not what a failed transition rolls back. These tests
// run the order state machines against a real database so an abort partway
// through a multi-line transition demonstrably reverts the lines already
// applied.

type dbFixture struct {
	db        *gorm.DB
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	snapshots repository.StockSnapshotRepository
	suppliers repository.SupplierRepository
	pos       repository.PurchaseOrderRepository
	sos       repository.SalesOrderRepository
	inventory InventoryService
}

func newDBFixture(t *testing.T) *dbFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A second pool connection would see its own empty :memory: database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Supplier{},
		&model.Product{},
		&model.Variant{},
		&model.StockMovement{},
		&model.StockSnapshot{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.SalesOrder{},
		&model.SalesOrderItem{},
	))

	f := &dbFixture{
		db:        db,
		products:  repository.NewProductRepository(db),
		movements: repository.NewStockMovementRepository(db),
		snapshots: repository.NewStockSnapshotRepository(db),
		suppliers: repository.NewSupplierRepository(db),
		pos:       repository.NewPurchaseOrderRepository(db),
		sos:       repository.NewSalesOrderRepository(db),
	}
	f.inventory = NewInventoryService(f.products, f.movements, f.snapshots, f.pos, f.sos, f.suppliers, nil)
	return f
}

func (f *dbFixture) seedVariant(t *testing.T, name string, stock int, active bool) (*model.Product, *model.Variant) {
	t.Helper()
	p := &model.Product{
		Name:     name,
		IsActive: true,
		Variants: []model.Variant{{
			SKU:      name + "-STD",
			Stock:    stock,
			IsActive: active,
		}},
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p, &p.Variants[0]
}

func (f *dbFixture) variantStock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var v model.Variant
	require.NoError(t, f.db.First(&v, "id = ?", id).Error)
	return v.Stock
}

func (f *dbFixture) countRows(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func TestSalesOrderAdvance_SecondLineFailureRevertsFirstLine(t *testing.T) {
	f := newDBFixture(t)
	svc := NewSalesOrderService(f.sos, f.inventory, nil)

	p1, v1 := f.seedVariant(t, "WIDGET", 10, true)
	p2, v2 := f.seedVariant(t, "GADGET", 1, true)

	so := &model.SalesOrder{
		CustomerName: "Jordan Blake",
		Status:       model.SOStatusConfirmed,
		Items: []model.SalesOrderItem{
			{ProductID: p1.ID, VariantID: v1.ID, OrderedQty: 4},
			{ProductID: p2.ID, VariantID: v2.ID, OrderedQty: 5},
		},
	}
	require.NoError(t, f.sos.Create(context.Background(), so))

	_, err := svc.Advance(context.Background(), so.ID)
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, v2.ID, insufficient.VariantID)

	// Line 1 had already deducted, upserted its snapshot, and appended its
	// movement before line 2 failed; all of it must be gone.
	assert.Equal(t, 10, f.variantStock(t, v1.ID))
	assert.Equal(t, 1, f.variantStock(t, v2.ID))
	assert.EqualValues(t, 0, f.countRows(t, &model.StockMovement{}))
	assert.EqualValues(t, 0, f.countRows(t, &model.StockSnapshot{}))

	reloaded, ferr := f.sos.FindByID(context.Background(), so.ID)
	require.NoError(t, ferr)
	assert.Equal(t, model.SOStatusConfirmed, reloaded.Status)
	for _, item := range reloaded.Items {
		assert.Zero(t, item.FulfilledQty)
	}
}

func TestPurchaseOrderAdvance_ReceiveLineFailureRevertsWholeTransition(t *testing.T) {
	f := newDBFixture(t)
	svc := NewPurchaseOrderService(f.pos, f.suppliers, f.inventory, nil)

	supplier := &model.Supplier{Name: "Acme Wholesale", IsActive: true}
	require.NoError(t, f.suppliers.Create(context.Background(), supplier))

	p1, v1 := f.seedVariant(t, "WIDGET", 0, true)
	p2, v2 := f.seedVariant(t, "GADGET", 0, false)

	po := &model.PurchaseOrder{
		SupplierID: supplier.ID,
		Status:     model.POStatusConfirmed,
		Items: []model.PurchaseOrderItem{
			{ProductID: p1.ID, VariantID: v1.ID, OrderedQty: 7},
			{ProductID: p2.ID, VariantID: v2.ID, OrderedQty: 3},
		},
	}
	require.NoError(t, f.pos.Create(context.Background(), po))

	_, err := svc.Advance(context.Background(), po.ID)
	var inactive *InactiveEntityError
	require.ErrorAs(t, err, &inactive)

	// Line 1's stock-IN must not survive the aborted transition.
	assert.Equal(t, 0, f.variantStock(t, v1.ID))
	assert.Equal(t, 0, f.variantStock(t, v2.ID))
	assert.EqualValues(t, 0, f.countRows(t, &model.StockMovement{}))
	assert.EqualValues(t, 0, f.countRows(t, &model.StockSnapshot{}))

	reloaded, ferr := f.pos.FindByID(context.Background(), po.ID)
	require.NoError(t, ferr)
	assert.Equal(t, model.POStatusConfirmed, reloaded.Status)
	for _, item := range reloaded.Items {
		assert.Zero(t, item.ReceivedQty)
	}
}

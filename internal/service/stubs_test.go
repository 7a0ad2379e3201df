package service

import (
	"context"

	"github.com/dSumitabha/multi-tenant/internal/model"
	"github.com/dSumitabha/multi-tenant/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ── In-memory repository stubs ───────────────────────────────────────────────
// DB() returns nil so runTx calls the transaction body directly. Not-found is
// always gorm.ErrRecordNotFound, matching what the GORM implementations
// surface.

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	// beforeDeduct, when set, runs just before the guarded deduction —
	// lets a test emulate a concurrent OUT committing between the service's
	// availability read and its write.
	beforeDeduct func()
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Variants {
		if p.Variants[i].ID == uuid.Nil {
			p.Variants[i].ID = uuid.New()
		}
		p.Variants[i].ProductID = p.ID
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.add(p)
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubProductRepo) ListActive(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindVariantTx(_ *gorm.DB, variantID uuid.UUID) (*model.Variant, error) {
	for _, p := range r.products {
		if v := p.FindVariant(variantID); v != nil {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) AddVariantStockTx(_ *gorm.DB, variantID uuid.UUID, qty int) error {
	v, err := r.FindVariantTx(nil, variantID)
	if err != nil {
		return err
	}
	v.Stock += qty
	return nil
}

func (r *stubProductRepo) DeductVariantStockTx(_ *gorm.DB, variantID uuid.UUID, qty int) (bool, error) {
	if r.beforeDeduct != nil {
		r.beforeDeduct()
	}
	v, err := r.FindVariantTx(nil, variantID)
	if err != nil {
		return false, err
	}
	if v.Stock < qty {
		return false, nil
	}
	v.Stock -= qty
	return true, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

type stubMovementRepo struct {
	movements []*model.StockMovement
	byKey     map[string]*model.StockMovement
	// hidden emulates a row committed by a concurrent transaction after our
	// in-tx key check: invisible to FindByIdempotencyKeyTx, but colliding at
	// insert time and visible to the post-abort FindByIdempotencyKey re-read.
	hidden map[string]*model.StockMovement
}

func newStubMovementRepo() *stubMovementRepo {
	return &stubMovementRepo{
		byKey:  make(map[string]*model.StockMovement),
		hidden: make(map[string]*model.StockMovement),
	}
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.IdempotencyKey != nil {
		_, dup := r.byKey[*m.IdempotencyKey]
		_, race := r.hidden[*m.IdempotencyKey]
		if dup || race {
			// Mirror the unique index on the idempotency column.
			return &pgconn.PgError{Code: "23505", ConstraintName: "uni_stock_movements_idempotency_key"}
		}
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, m)
	if m.IdempotencyKey != nil {
		r.byKey[*m.IdempotencyKey] = m
	}
	return nil
}

func (r *stubMovementRepo) FindByIdempotencyKey(_ context.Context, key string) (*model.StockMovement, error) {
	if m, ok := r.hidden[key]; ok {
		return m, nil
	}
	return r.FindByIdempotencyKeyTx(nil, key)
}

func (r *stubMovementRepo) FindByIdempotencyKeyTx(_ *gorm.DB, key string) (*model.StockMovement, error) {
	m, ok := r.byKey[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.VariantID != nil && m.VariantID != *filter.VariantID {
			continue
		}
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

type stubSnapshotRepo struct {
	byVariant map[uuid.UUID]*model.StockSnapshot
}

func newStubSnapshotRepo() *stubSnapshotRepo {
	return &stubSnapshotRepo{byVariant: make(map[uuid.UUID]*model.StockSnapshot)}
}

func (r *stubSnapshotRepo) UpsertTx(_ *gorm.DB, productID, variantID uuid.UUID, qty int) error {
	if snap, ok := r.byVariant[variantID]; ok {
		snap.AvailableQty = qty
		return nil
	}
	r.byVariant[variantID] = &model.StockSnapshot{
		ID: uuid.New(), ProductID: productID, VariantID: variantID, AvailableQty: qty,
	}
	return nil
}

func (r *stubSnapshotRepo) ListAll(_ context.Context) ([]model.StockSnapshot, error) {
	var out []model.StockSnapshot
	for _, s := range r.byVariant {
		out = append(out, *s)
	}
	return out, nil
}

type stubPurchaseOrderRepo struct {
	orders map[uuid.UUID]*model.PurchaseOrder
}

func newStubPurchaseOrderRepo() *stubPurchaseOrderRepo {
	return &stubPurchaseOrderRepo{orders: make(map[uuid.UUID]*model.PurchaseOrder)}
}

func (r *stubPurchaseOrderRepo) Create(_ context.Context, po *model.PurchaseOrder) error {
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	for i := range po.Items {
		po.Items[i].PurchaseOrderID = po.ID
	}
	r.orders[po.ID] = po
	return nil
}

func (r *stubPurchaseOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubPurchaseOrderRepo) List(_ context.Context, status model.POStatus) ([]model.PurchaseOrder, error) {
	var out []model.PurchaseOrder
	for _, po := range r.orders {
		if status == "" || po.Status == status {
			out = append(out, *po)
		}
	}
	return out, nil
}

func (r *stubPurchaseOrderRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error) {
	po, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return po, nil
}

func (r *stubPurchaseOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status model.POStatus) error {
	po, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	po.Status = status
	return nil
}

func (r *stubPurchaseOrderRepo) MarkItemsReceivedTx(_ *gorm.DB, id uuid.UUID) error {
	po, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range po.Items {
		po.Items[i].ReceivedQty = po.Items[i].OrderedQty
	}
	return nil
}

func (r *stubPurchaseOrderRepo) PendingQtyByVariant(_ context.Context) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int)
	for _, po := range r.orders {
		if po.Status != model.POStatusSent && po.Status != model.POStatusConfirmed {
			continue
		}
		for _, item := range po.Items {
			out[item.VariantID] += item.OrderedQty - item.ReceivedQty
		}
	}
	return out, nil
}

func (r *stubPurchaseOrderRepo) DB() *gorm.DB { return nil }

type stubSalesOrderRepo struct {
	orders map[uuid.UUID]*model.SalesOrder
}

func newStubSalesOrderRepo() *stubSalesOrderRepo {
	return &stubSalesOrderRepo{orders: make(map[uuid.UUID]*model.SalesOrder)}
}

func (r *stubSalesOrderRepo) Create(_ context.Context, so *model.SalesOrder) error {
	if so.ID == uuid.Nil {
		so.ID = uuid.New()
	}
	for i := range so.Items {
		so.Items[i].SalesOrderID = so.ID
	}
	r.orders[so.ID] = so
	return nil
}

func (r *stubSalesOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SalesOrder, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubSalesOrderRepo) List(_ context.Context, status model.SOStatus) ([]model.SalesOrder, error) {
	var out []model.SalesOrder
	for _, so := range r.orders {
		if status == "" || so.Status == status {
			out = append(out, *so)
		}
	}
	return out, nil
}

func (r *stubSalesOrderRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.SalesOrder, error) {
	so, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return so, nil
}

func (r *stubSalesOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status model.SOStatus) error {
	so, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	so.Status = status
	return nil
}

func (r *stubSalesOrderRepo) MarkItemsFulfilledTx(_ *gorm.DB, id uuid.UUID) error {
	so, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range so.Items {
		so.Items[i].FulfilledQty = so.Items[i].OrderedQty
	}
	return nil
}

func (r *stubSalesOrderRepo) PendingQtyByVariant(_ context.Context) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int)
	for _, so := range r.orders {
		if so.Status != model.SOStatusConfirmed {
			continue
		}
		for _, item := range so.Items {
			out[item.VariantID] += item.OrderedQty - item.FulfilledQty
		}
	}
	return out, nil
}

func (r *stubSalesOrderRepo) DB() *gorm.DB { return nil }

type stubSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{suppliers: make(map[uuid.UUID]*model.Supplier)}
}

func (r *stubSupplierRepo) add(s *model.Supplier) *model.Supplier {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.suppliers[s.ID] = s
	return s
}

func (r *stubSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	r.add(s)
	return nil
}

func (r *stubSupplierRepo) FindActiveByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok || !s.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSupplierRepo) List(_ context.Context) ([]model.Supplier, error) {
	var out []model.Supplier
	for _, s := range r.suppliers {
		out = append(out, *s)
	}
	return out, nil
}

// ── Shared fixture ───────────────────────────────────────────────────────────

type fixture struct {
	products  *stubProductRepo
	movements *stubMovementRepo
	snapshots *stubSnapshotRepo
	pos       *stubPurchaseOrderRepo
	sos       *stubSalesOrderRepo
	suppliers *stubSupplierRepo

	inventory InventoryService
}

func newFixture() *fixture {
	f := &fixture{
		products:  newStubProductRepo(),
		movements: newStubMovementRepo(),
		snapshots: newStubSnapshotRepo(),
		pos:       newStubPurchaseOrderRepo(),
		sos:       newStubSalesOrderRepo(),
		suppliers: newStubSupplierRepo(),
	}
	f.inventory = NewInventoryService(f.products, f.movements, f.snapshots, f.pos, f.sos, f.suppliers, nil)
	return f
}

func (f *fixture) seedProduct(name string, stock, reorderLevel int) (*model.Product, *model.Variant) {
	p := f.products.add(&model.Product{
		Name:     name,
		IsActive: true,
		Variants: []model.Variant{{
			SKU:          name + "-STD",
			Stock:        stock,
			ReorderLevel: reorderLevel,
			IsActive:     true,
		}},
	})
	return p, &p.Variants[0]
}

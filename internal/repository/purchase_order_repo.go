package repository

import (
	"context"

	"github.com/dSumitabha/multi-tenant/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *model.PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	List(ctx context.Context, status model.POStatus) ([]model.PurchaseOrder, error)

	// Used inside the advance transaction.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.POStatus) error
	MarkItemsReceivedTx(tx *gorm.DB, id uuid.UUID) error

	// PendingQtyByVariant sums ordered minus received quantities per variant
	// across orders in SENT or CONFIRMED status (inbound stock not yet here).
	PendingQtyByVariant(ctx context.Context) (map[uuid.UUID]int, error)

	DB() *gorm.DB
}

type purchaseOrderRepo struct{ db *gorm.DB }

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{db: db}
}

func (r *purchaseOrderRepo) Create(ctx context.Context, po *model.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *purchaseOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.WithContext(ctx).Preload("Items").Preload("Supplier").
		First(&po, "id = ?", id).Error
	return &po, err
}

func (r *purchaseOrderRepo) List(ctx context.Context, status model.POStatus) ([]model.PurchaseOrder, error) {
	q := r.db.WithContext(ctx).Preload("Items").Preload("Supplier")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var orders []model.PurchaseOrder
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *purchaseOrderRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := tx.Preload("Items").First(&po, "id = ?", id).Error
	return &po, err
}

func (r *purchaseOrderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.POStatus) error {
	return tx.Model(&model.PurchaseOrder{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *purchaseOrderRepo) MarkItemsReceivedTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.PurchaseOrderItem{}).
		Where("purchase_order_id = ?", id).
		Update("received_qty", gorm.Expr("ordered_qty")).Error
}

func (r *purchaseOrderRepo) PendingQtyByVariant(ctx context.Context) (map[uuid.UUID]int, error) {
	type row struct {
		VariantID uuid.UUID
		Pending   int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("purchase_order_items").
		Select("purchase_order_items.variant_id AS variant_id, SUM(purchase_order_items.ordered_qty - purchase_order_items.received_qty) AS pending").
		Joins("JOIN purchase_orders ON purchase_orders.id = purchase_order_items.purchase_order_id").
		Where("purchase_orders.status IN ?", []model.POStatus{model.POStatusSent, model.POStatusConfirmed}).
		Group("purchase_order_items.variant_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	pending := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		pending[r.VariantID] = r.Pending
	}
	return pending, nil
}

func (r *purchaseOrderRepo) DB() *gorm.DB { return r.db }

package repository

import (
	"context"

	"github.com/dSumitabha/multi-tenant/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SalesOrderRepository interface {
	Create(ctx context.Context, so *model.SalesOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SalesOrder, error)
	List(ctx context.Context, status model.SOStatus) ([]model.SalesOrder, error)

	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.SalesOrder, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.SOStatus) error
	MarkItemsFulfilledTx(tx *gorm.DB, id uuid.UUID) error

	// PendingQtyByVariant sums ordered minus fulfilled quantities per variant
	// across CONFIRMED orders (committed outbound stock not yet shipped).
	PendingQtyByVariant(ctx context.Context) (map[uuid.UUID]int, error)

	DB() *gorm.DB
}

type salesOrderRepo struct{ db *gorm.DB }

func NewSalesOrderRepository(db *gorm.DB) SalesOrderRepository {
	return &salesOrderRepo{db: db}
}

func (r *salesOrderRepo) Create(ctx context.Context, so *model.SalesOrder) error {
	return r.db.WithContext(ctx).Create(so).Error
}

func (r *salesOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SalesOrder, error) {
	var so model.SalesOrder
	err := r.db.WithContext(ctx).Preload("Items").First(&so, "id = ?", id).Error
	return &so, err
}

func (r *salesOrderRepo) List(ctx context.Context, status model.SOStatus) ([]model.SalesOrder, error) {
	q := r.db.WithContext(ctx).Preload("Items")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var orders []model.SalesOrder
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *salesOrderRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.SalesOrder, error) {
	var so model.SalesOrder
	err := tx.Preload("Items").First(&so, "id = ?", id).Error
	return &so, err
}

func (r *salesOrderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.SOStatus) error {
	return tx.Model(&model.SalesOrder{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *salesOrderRepo) MarkItemsFulfilledTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.SalesOrderItem{}).
		Where("sales_order_id = ?", id).
		Update("fulfilled_qty", gorm.Expr("ordered_qty")).Error
}

func (r *salesOrderRepo) PendingQtyByVariant(ctx context.Context) (map[uuid.UUID]int, error) {
	type row struct {
		VariantID uuid.UUID
		Pending   int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("sales_order_items").
		Select("sales_order_items.variant_id AS variant_id, SUM(sales_order_items.ordered_qty - sales_order_items.fulfilled_qty) AS pending").
		Joins("JOIN sales_orders ON sales_orders.id = sales_order_items.sales_order_id").
		Where("sales_orders.status = ?", model.SOStatusConfirmed).
		Group("sales_order_items.variant_id").
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

func (r *salesOrderRepo) DB() *gorm.DB { return r.db }

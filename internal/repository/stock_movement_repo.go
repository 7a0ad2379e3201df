package repository

import (
	"context"

	"github.com/dSumitabha/multi-tenant/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockMovementFilter narrows the movement listing.
type StockMovementFilter struct {
	ProductID *uuid.UUID
	VariantID *uuid.UUID
	Page      int
	Limit     int
}

// StockMovementRepository is append-only by construction: there is no update
// or delete method, matching the ledger's immutability invariant.
type StockMovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
	FindByIdempotencyKey(ctx context.Context, key string) (*model.StockMovement, error)
	FindByIdempotencyKeyTx(tx *gorm.DB, key string) (*model.StockMovement, error)
	List(ctx context.Context, filter StockMovementFilter) ([]model.StockMovement, int64, error)
}

type stockMovementRepo struct{ db *gorm.DB }

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockMovementRepo) FindByIdempotencyKey(ctx context.Context, key string) (*model.StockMovement, error) {
	var m model.StockMovement
	err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&m).Error
	return &m, err
}

func (r *stockMovementRepo) FindByIdempotencyKeyTx(tx *gorm.DB, key string) (*model.StockMovement, error) {
	var m model.StockMovement
	err := tx.Where("idempotency_key = ?", key).First(&m).Error
	return &m, err
}

func (r *stockMovementRepo) List(ctx context.Context, filter StockMovementFilter) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{})
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.VariantID != nil {
		q = q.Where("variant_id = ?", *filter.VariantID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movements []model.StockMovement
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&movements).Error
	return movements, total, err
}

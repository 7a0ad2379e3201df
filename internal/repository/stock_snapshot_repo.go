package repository

import (
	"context"

	"github.com/dSumitabha/multi-tenant/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockSnapshotRepository interface {
	// UpsertTx sets the snapshot for (productID, variantID) to qty, creating
	// the row if absent. Always an overwrite: the snapshot is a cache of the
	// variant's live stock, never an independent ledger.
	UpsertTx(tx *gorm.DB, productID, variantID uuid.UUID, qty int) error
	ListAll(ctx context.Context) ([]model.StockSnapshot, error)
}

type stockSnapshotRepo struct{ db *gorm.DB }

func NewStockSnapshotRepository(db *gorm.DB) StockSnapshotRepository {
	return &stockSnapshotRepo{db: db}
}

func (r *stockSnapshotRepo) UpsertTx(tx *gorm.DB, productID, variantID uuid.UUID, qty int) error {
	snap := model.StockSnapshot{
		ProductID:    productID,
		VariantID:    variantID,
		AvailableQty: qty,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "variant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"available_qty", "updated_at"}),
	}).Create(&snap).Error
}

func (r *stockSnapshotRepo) ListAll(ctx context.Context) ([]model.StockSnapshot, error) {
	var snaps []model.StockSnapshot
	err := r.db.WithContext(ctx).Find(&snaps).Error
	return snaps, err
}

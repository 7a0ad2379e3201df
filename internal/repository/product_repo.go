package repository

import (
	"context"

	"github.com/dSumitabha/multi-tenant/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for products and their
// embedded variants. Services depend on this interface, not on the concrete
// GORM implementation, enabling clean unit testing via stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListActive(ctx context.Context) ([]model.Product, error)

	// Used inside transactions — callers must pass the tx instance.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	FindVariantTx(tx *gorm.DB, variantID uuid.UUID) (*model.Variant, error)

	// AddVariantStockTx increments stock unconditionally (IN movements).
	AddVariantStockTx(tx *gorm.DB, variantID uuid.UUID, qty int) error

	// DeductVariantStockTx decrements stock only when the row still holds at
	// least qty units (guarded UPDATE ... WHERE stock >= qty). Returns false
	// when the guard rejected the write, which under concurrency means another
	// transaction depleted the stock after our earlier read.
	DeductVariantStockTx(tx *gorm.DB, variantID uuid.UUID, qty int) (bool, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Variants").First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) ListActive(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Variants").
		Where("is_active = true").Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Preload("Variants").First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindVariantTx(tx *gorm.DB, variantID uuid.UUID) (*model.Variant, error) {
	var v model.Variant
	err := tx.First(&v, "id = ?", variantID).Error
	return &v, err
}

func (r *productRepo) AddVariantStockTx(tx *gorm.DB, variantID uuid.UUID, qty int) error {
	return tx.Model(&model.Variant{}).Where("id = ?", variantID).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}

func (r *productRepo) DeductVariantStockTx(tx *gorm.DB, variantID uuid.UUID, qty int) (bool, error) {
	res := tx.Model(&model.Variant{}).
		Where("id = ? AND stock >= ?", variantID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) DB() *gorm.DB { return r.db }

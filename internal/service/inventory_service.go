package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dSumitabha/multi-tenant/internal/dto"
	"github.com/dSumitabha/multi-tenant/internal/model"
	"github.com/dSumitabha/multi-tenant/internal/repository"
	"github.com/dSumitabha/multi-tenant/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ApplyStockChangeInput is one requested quantity delta against one variant.
type ApplyStockChangeInput struct {
	ProductID  uuid.UUID
	VariantID  uuid.UUID
	Direction  model.MovementDirection
	Quantity   int
	Reason     model.MovementReason
	SourceType model.MovementSource
	SourceID   *uuid.UUID
	// IdempotencyKey deduplicates logically-identical requests; empty means
	// no deduplication (plain manual adjustments).
	IdempotencyKey string
}

// StockChangeResult reports the outcome of one applied (or skipped) change.
type StockChangeResult struct {
	CurrentStock int
	Skipped      bool
	// Alert is non-nil when an OUT movement left the variant at or below its
	// reorder level. The caller dispatches it after commit — never inside the
	// transaction.
	Alert *worker.LowStockAlert
}

// InventoryService owns the stock ledger: every quantity change to a variant
// goes through ApplyStockChange (or its in-transaction form), which mutates
// the variant counter, refreshes the snapshot cache, and appends to the
// movement log as one atomic unit.
type InventoryService interface {
	ApplyStockChange(ctx context.Context, in ApplyStockChangeInput) (*StockChangeResult, error)
	// ApplyStockChangeTx runs the same sequence inside a caller-owned
	// transaction — used by the order state machines so that every line item
	// plus the final status write commits or aborts together.
	ApplyStockChangeTx(tx *gorm.DB, in ApplyStockChangeInput) (*StockChangeResult, error)
	GetInventorySummary(ctx context.Context) (*dto.InventorySummaryResponse, error)
	ListMovements(ctx context.Context, filter repository.StockMovementFilter) (*dto.StockMovementListResponse, error)
}

type inventoryService struct {
	products       repository.ProductRepository
	movements      repository.StockMovementRepository
	snapshots      repository.StockSnapshotRepository
	purchaseOrders repository.PurchaseOrderRepository
	salesOrders    repository.SalesOrderRepository
	suppliers      repository.SupplierRepository
	dispatcher     *worker.Dispatcher
}

func NewInventoryService(
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	snapshots repository.StockSnapshotRepository,
	purchaseOrders repository.PurchaseOrderRepository,
	salesOrders repository.SalesOrderRepository,
	suppliers repository.SupplierRepository,
	dispatcher *worker.Dispatcher,
) InventoryService {
	return &inventoryService{
		products:       products,
		movements:      movements,
		snapshots:      snapshots,
		purchaseOrders: purchaseOrders,
		salesOrders:    salesOrders,
		suppliers:      suppliers,
		dispatcher:     dispatcher,
	}
}

func (in ApplyStockChangeInput) validate() error {
	if in.ProductID == uuid.Nil || in.VariantID == uuid.Nil {
		return &InvalidRequestError{Reason: "productId and variantId are required"}
	}
	if in.Quantity <= 0 {
		return &InvalidRequestError{Reason: "quantity must be a positive integer"}
	}
	if !in.Direction.Valid() {
		return &InvalidRequestError{Reason: fmt.Sprintf("unknown direction %q", in.Direction)}
	}
	switch in.Reason {
	case model.ReasonPurchase, model.ReasonSale, model.ReasonReturn, model.ReasonAdjustment:
	default:
		return &InvalidRequestError{Reason: fmt.Sprintf("unknown reason %q", in.Reason)}
	}
	switch in.SourceType {
	case model.SourcePurchaseOrder, model.SourceSalesOrder, model.SourceManual:
	default:
		return &InvalidRequestError{Reason: fmt.Sprintf("unknown source type %q", in.SourceType)}
	}
	return nil
}

func (s *inventoryService) ApplyStockChange(ctx context.Context, in ApplyStockChangeInput) (*StockChangeResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var res *StockChangeResult
	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		r, err := s.applyTx(tx, in)
		res = r
		return err
	})
	if txErr != nil {
		return s.recoverApplyError(ctx, in, txErr)
	}

	if res.Alert != nil && s.dispatcher != nil {
		if err := s.dispatcher.EnqueueLowStockAlert(ctx, *res.Alert); err != nil {
			log.Warn().Err(err).
				Str("variant_id", in.VariantID.String()).
				Msg("failed to enqueue low-stock alert")
		}
	}
	return res, nil
}

func (s *inventoryService) ApplyStockChangeTx(tx *gorm.DB, in ApplyStockChangeInput) (*StockChangeResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.applyTx(tx, in)
}

// applyTx is the transactional unit of every stock change: idempotency check,
// guarded variant mutation, snapshot upsert, movement append. Callers own the
// surrounding transaction; a returned error must abort it wholesale.
func (s *inventoryService) applyTx(tx *gorm.DB, in ApplyStockChangeInput) (*StockChangeResult, error) {
	// Idempotent replay: an existing movement with this key means the change
	// was already applied — report the current stock and touch nothing.
	if in.IdempotencyKey != "" {
		_, err := s.movements.FindByIdempotencyKeyTx(tx, in.IdempotencyKey)
		switch {
		case err == nil:
			current := 0
			if v, verr := s.products.FindVariantTx(tx, in.VariantID); verr == nil {
				current = v.Stock
			}
			return &StockChangeResult{CurrentStock: current, Skipped: true}, nil
		case !isNotFound(err):
			return nil, err
		}
	}

	product, err := s.products.FindByIDTx(tx, in.ProductID)
	if err != nil {
		if isNotFound(err) {
			return nil, &NotFoundError{Entity: "product", ID: in.ProductID.String()}
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, &NotFoundError{Entity: "product", ID: in.ProductID.String()}
	}
	variant := product.FindVariant(in.VariantID)
	if variant == nil {
		return nil, &NotFoundError{Entity: "variant", ID: in.VariantID.String()}
	}
	if !variant.IsActive {
		return nil, &InactiveEntityError{Entity: "variant", ID: in.VariantID.String()}
	}

	switch in.Direction {
	case model.DirectionIn:
		if err := s.products.AddVariantStockTx(tx, in.VariantID, in.Quantity); err != nil {
			return nil, err
		}
	case model.DirectionOut:
		if variant.Stock < in.Quantity {
			return nil, &InsufficientStockError{
				VariantID: in.VariantID,
				Available: variant.Stock,
				Requested: in.Quantity,
			}
		}
		// The guard re-checks stock >= qty at write time: a concurrent OUT
		// committed after our read must not push the counter negative.
		applied, err := s.products.DeductVariantStockTx(tx, in.VariantID, in.Quantity)
		if err != nil {
			return nil, err
		}
		if !applied {
			fresh, ferr := s.products.FindVariantTx(tx, in.VariantID)
			available := 0
			if ferr == nil {
				available = fresh.Stock
			}
			return nil, &InsufficientStockError{
				VariantID: in.VariantID,
				Available: available,
				Requested: in.Quantity,
			}
		}
	}

	// Re-read for the authoritative post-mutation value; the snapshot must
	// mirror it exactly.
	updated, err := s.products.FindVariantTx(tx, in.VariantID)
	if err != nil {
		return nil, err
	}
	newStock := updated.Stock

	if err := s.snapshots.UpsertTx(tx, in.ProductID, in.VariantID, newStock); err != nil {
		return nil, err
	}

	movement := &model.StockMovement{
		ProductID:  in.ProductID,
		VariantID:  in.VariantID,
		Direction:  in.Direction,
		Quantity:   in.Quantity,
		Reason:     in.Reason,
		SourceType: in.SourceType,
		SourceID:   in.SourceID,
	}
	if in.IdempotencyKey != "" {
		key := in.IdempotencyKey
		movement.IdempotencyKey = &key
	}
	if err := s.movements.CreateTx(tx, movement); err != nil {
		return nil, err
	}

	res := &StockChangeResult{CurrentStock: newStock}
	if in.Direction == model.DirectionOut && newStock <= updated.ReorderLevel {
		res.Alert = &worker.LowStockAlert{
			ProductID:    in.ProductID.String(),
			VariantID:    in.VariantID.String(),
			ProductName:  product.Name,
			SKU:          updated.SKU,
			Stock:        newStock,
			ReorderLevel: updated.ReorderLevel,
		}
	}
	return res, nil
}

// recoverApplyError maps a failed apply transaction to the caller-facing
// taxonomy. A unique violation on the idempotency index means we lost a race
// with a concurrent holder of the same key: when the committed movement
// records the same change this call is a duplicate submission (skip), when it
// records a different one the key was misused (conflict).
func (s *inventoryService) recoverApplyError(ctx context.Context, in ApplyStockChangeInput, txErr error) (*StockChangeResult, error) {
	if isDomainError(txErr) {
		return nil, txErr
	}

	if in.IdempotencyKey != "" && isUniqueViolation(txErr, "uni_stock_movements_idempotency_key") {
		existing, err := s.movements.FindByIdempotencyKey(ctx, in.IdempotencyKey)
		if err != nil {
			return nil, &TransientStorageError{Err: txErr}
		}
		if existing.Direction == in.Direction &&
			existing.Quantity == in.Quantity &&
			existing.Reason == in.Reason {
			current := 0
			if p, perr := s.products.FindByID(ctx, in.ProductID); perr == nil {
				if v := p.FindVariant(in.VariantID); v != nil {
					current = v.Stock
				}
			}
			return &StockChangeResult{CurrentStock: current, Skipped: true}, nil
		}
		return nil, &ConflictError{Key: in.IdempotencyKey}
	}

	if isRetryableTxError(txErr) {
		return nil, &TransientStorageError{Err: txErr}
	}
	return nil, txErr
}

// isDomainError reports whether err already belongs to the core taxonomy.
func isDomainError(err error) bool {
	var (
		nf  *NotFoundError
		ia  *InactiveEntityError
		is  *InsufficientStockError
		ir  *InvalidRequestError
		nt  *NoTransitionError
		cf  *ConflictError
		tse *TransientStorageError
	)
	return errors.As(err, &nf) || errors.As(err, &ia) || errors.As(err, &is) ||
		errors.As(err, &ir) || errors.As(err, &nt) || errors.As(err, &cf) ||
		errors.As(err, &tse)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dSumitabha/multi-tenant/internal/dto"
	"github.com/dSumitabha/multi-tenant/internal/model"
	"github.com/dSumitabha/multi-tenant/internal/repository"
	"github.com/dSumitabha/multi-tenant/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseOrderService governs the PO lifecycle. Advance is the sole status
// mutator: DRAFT→SENT→CONFIRMED→RECEIVED, with stock-IN applied per line on
// the transition into RECEIVED.
type PurchaseOrderService interface {
	Create(ctx context.Context, req dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error)
	List(ctx context.Context, status string) ([]dto.PurchaseOrderResponse, error)
	Advance(ctx context.Context, id uuid.UUID) (model.POStatus, error)
}

type purchaseOrderService struct {
	repo       repository.PurchaseOrderRepository
	suppliers  repository.SupplierRepository
	inventory  InventoryService
	dispatcher *worker.Dispatcher
}

func NewPurchaseOrderService(
	repo repository.PurchaseOrderRepository,
	suppliers repository.SupplierRepository,
	inventory InventoryService,
	dispatcher *worker.Dispatcher,
) PurchaseOrderService {
	return &purchaseOrderService{
		repo:       repo,
		suppliers:  suppliers,
		inventory:  inventory,
		dispatcher: dispatcher,
	}
}

// purchaseReceiptKey makes receiving idempotent per line: replaying the
// RECEIVED transition can never double-apply stock for the same item.
func purchaseReceiptKey(orderID, productID, variantID uuid.UUID) string {
	return fmt.Sprintf("po:%s:%s:%s", orderID, productID, variantID)
}

func (s *purchaseOrderService) Create(ctx context.Context, req dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, &InvalidRequestError{Reason: "invalid supplierId"}
	}
	if len(req.Items) == 0 {
		return nil, &InvalidRequestError{Reason: "at least one item is required"}
	}

	if _, err := s.suppliers.FindActiveByID(ctx, supplierID); err != nil {
		if isNotFound(err) {
			return nil, &NotFoundError{Entity: "supplier", ID: req.SupplierID}
		}
		return nil, err
	}

	po := model.PurchaseOrder{
		SupplierID: supplierID,
		Status:     model.POStatusDraft,
	}
	for _, item := range req.Items {
		productID, perr := uuid.Parse(item.ProductID)
		variantID, verr := uuid.Parse(item.VariantID)
		if perr != nil || verr != nil {
			return nil, &InvalidRequestError{Reason: "invalid productId or variantId in items"}
		}
		po.Items = append(po.Items, model.PurchaseOrderItem{
			ProductID:  productID,
			VariantID:  variantID,
			OrderedQty: item.OrderedQty,
			UnitPrice:  item.UnitPrice,
		})
	}

	if err := s.repo.Create(ctx, &po); err != nil {
		return nil, err
	}
	return purchaseOrderToResponse(&po), nil
}

func (s *purchaseOrderService) List(ctx context.Context, status string) ([]dto.PurchaseOrderResponse, error) {
	var filter model.POStatus
	if status != "" {
		filter = model.POStatus(status)
		if !filter.Valid() {
			return nil, &InvalidRequestError{Reason: fmt.Sprintf("unknown status %q", status)}
		}
	}
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PurchaseOrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, *purchaseOrderToResponse(&orders[i]))
	}
	return out, nil
}

// Advance moves the order one state forward. The whole transition — every
// line's stock application plus the status write — is one transaction, and
// the status is written last: a failure partway through leaves the order in
// its prior status, safe to retry (retries are idempotent per line).
func (s *purchaseOrderService) Advance(ctx context.Context, id uuid.UUID) (model.POStatus, error) {
	var next model.POStatus
	var alerts []worker.LowStockAlert

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		po, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			if isNotFound(err) {
				return &NotFoundError{Entity: "purchase order", ID: id.String()}
			}
			return err
		}

		n, ok := po.Status.Next()
		if !ok {
			return &NoTransitionError{Status: string(po.Status)}
		}

		if n == model.POStatusReceived {
			for _, item := range po.Items {
				res, err := s.inventory.ApplyStockChangeTx(tx, ApplyStockChangeInput{
					ProductID:      item.ProductID,
					VariantID:      item.VariantID,
					Direction:      model.DirectionIn,
					Quantity:       item.OrderedQty,
					Reason:         model.ReasonPurchase,
					SourceType:     model.SourcePurchaseOrder,
					SourceID:       &po.ID,
					IdempotencyKey: purchaseReceiptKey(po.ID, item.ProductID, item.VariantID),
				})
				if err != nil {
					return err
				}
				if res.Alert != nil {
					alerts = append(alerts, *res.Alert)
				}
			}
			if err := s.repo.MarkItemsReceivedTx(tx, po.ID); err != nil {
				return err
			}
		}

		next = n
		return s.repo.UpdateStatusTx(tx, po.ID, n)
	})
	if txErr != nil {
		return "", classifyTransitionError(txErr)
	}

	s.dispatchAlerts(ctx, alerts)
	return next, nil
}

func (s *purchaseOrderService) dispatchAlerts(ctx context.Context, alerts []worker.LowStockAlert) {
	if s.dispatcher == nil {
		return
	}
	for _, a := range alerts {
		if err := s.dispatcher.EnqueueLowStockAlert(ctx, a); err != nil {
			log.Warn().Err(err).Str("sku", a.SKU).Msg("failed to enqueue low-stock alert")
		}
	}
}

// classifyTransitionError maps a failed transition transaction onto the core
// taxonomy. A unique violation on the movement key here means a concurrent
// advance of the same order won the race — the caller retries and lands on
// the idempotent skip path.
func classifyTransitionError(err error) error {
	if isDomainError(err) {
		return err
	}
	if isUniqueViolation(err, "uni_stock_movements_idempotency_key") || isRetryableTxError(err) {
		return &TransientStorageError{Err: err}
	}
	return err
}

func purchaseOrderToResponse(po *model.PurchaseOrder) *dto.PurchaseOrderResponse {
	items := make([]dto.PurchaseOrderItemResponse, 0, len(po.Items))
	orderTotal := decimal.Zero
	for _, item := range po.Items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.OrderedQty)))
		orderTotal = orderTotal.Add(lineTotal)
		items = append(items, dto.PurchaseOrderItemResponse{
			ProductID:   item.ProductID.String(),
			VariantID:   item.VariantID.String(),
			OrderedQty:  item.OrderedQty,
			ReceivedQty: item.ReceivedQty,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotal,
		})
	}
	resp := &dto.PurchaseOrderResponse{
		ID:        po.ID.String(),
		Status:    string(po.Status),
		Items:     items,
		Total:     orderTotal,
		CreatedAt: po.CreatedAt.Format(time.RFC3339),
	}
	resp.SupplierID = po.SupplierID.String()
	if po.Supplier != nil {
		resp.SupplierName = &po.Supplier.Name
	}
	return resp
}

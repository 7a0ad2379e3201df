package service

import (
	"context"
	"fmt"
	"strings"
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

// SalesOrderService governs the SO lifecycle: DRAFT→CONFIRMED→FULFILLED→
// RETURNED. Fulfillment applies stock-OUT per line; a return applies the
// matching stock-IN under a distinct idempotency key so the two can never
// collide.
type SalesOrderService interface {
	Create(ctx context.Context, req dto.CreateSalesOrderRequest) (*dto.SalesOrderResponse, error)
	List(ctx context.Context, status string) ([]dto.SalesOrderResponse, error)
	Advance(ctx context.Context, id uuid.UUID) (model.SOStatus, error)
}

type salesOrderService struct {
	repo       repository.SalesOrderRepository
	inventory  InventoryService
	dispatcher *worker.Dispatcher
}

func NewSalesOrderService(
	repo repository.SalesOrderRepository,
	inventory InventoryService,
	dispatcher *worker.Dispatcher,
) SalesOrderService {
	return &salesOrderService{repo: repo, inventory: inventory, dispatcher: dispatcher}
}

func salesFulfillKey(orderID, productID, variantID uuid.UUID) string {
	return fmt.Sprintf("so:%s:%s:%s:fulfill", orderID, productID, variantID)
}

func salesReturnKey(orderID, productID, variantID uuid.UUID) string {
	return fmt.Sprintf("so:%s:%s:%s:return", orderID, productID, variantID)
}

func (s *salesOrderService) Create(ctx context.Context, req dto.CreateSalesOrderRequest) (*dto.SalesOrderResponse, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, &InvalidRequestError{Reason: "customerName is required"}
	}
	if len(req.Items) == 0 {
		return nil, &InvalidRequestError{Reason: "at least one item is required"}
	}

	so := model.SalesOrder{
		CustomerName: strings.TrimSpace(req.CustomerName),
		Status:       model.SOStatusDraft,
	}
	for _, item := range req.Items {
		productID, perr := uuid.Parse(item.ProductID)
		variantID, verr := uuid.Parse(item.VariantID)
		if perr != nil || verr != nil {
			return nil, &InvalidRequestError{Reason: "invalid productId or variantId in items"}
		}
		so.Items = append(so.Items, model.SalesOrderItem{
			ProductID:  productID,
			VariantID:  variantID,
			OrderedQty: item.OrderedQty,
			UnitPrice:  item.UnitPrice,
		})
	}

	if err := s.repo.Create(ctx, &so); err != nil {
		return nil, err
	}
	return salesOrderToResponse(&so), nil
}

func (s *salesOrderService) List(ctx context.Context, status string) ([]dto.SalesOrderResponse, error) {
	var filter model.SOStatus
	if status != "" {
		filter = model.SOStatus(status)
		if !filter.Valid() {
			return nil, &InvalidRequestError{Reason: fmt.Sprintf("unknown status %q", status)}
		}
	}
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SalesOrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, *salesOrderToResponse(&orders[i]))
	}
	return out, nil
}

// Advance moves the order one state forward inside a single transaction,
// status written last. DRAFT→CONFIRMED carries no stock side effect:
// confirmation is a commitment, not a physical movement.
func (s *salesOrderService) Advance(ctx context.Context, id uuid.UUID) (model.SOStatus, error) {
	var next model.SOStatus
	var alerts []worker.LowStockAlert

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		so, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			if isNotFound(err) {
				return &NotFoundError{Entity: "sales order", ID: id.String()}
			}
			return err
		}

		n, ok := so.Status.Next()
		if !ok {
			return &NoTransitionError{Status: string(so.Status)}
		}

		switch n {
		case model.SOStatusFulfilled:
			for _, item := range so.Items {
				res, err := s.inventory.ApplyStockChangeTx(tx, ApplyStockChangeInput{
					ProductID:      item.ProductID,
					VariantID:      item.VariantID,
					Direction:      model.DirectionOut,
					Quantity:       item.OrderedQty,
					Reason:         model.ReasonSale,
					SourceType:     model.SourceSalesOrder,
					SourceID:       &so.ID,
					IdempotencyKey: salesFulfillKey(so.ID, item.ProductID, item.VariantID),
				})
				if err != nil {
					return err
				}
				if res.Alert != nil {
					alerts = append(alerts, *res.Alert)
				}
			}
			if err := s.repo.MarkItemsFulfilledTx(tx, so.ID); err != nil {
				return err
			}
		case model.SOStatusReturned:
			for _, item := range so.Items {
				if _, err := s.inventory.ApplyStockChangeTx(tx, ApplyStockChangeInput{
					ProductID:      item.ProductID,
					VariantID:      item.VariantID,
					Direction:      model.DirectionIn,
					Quantity:       item.OrderedQty,
					Reason:         model.ReasonReturn,
					SourceType:     model.SourceSalesOrder,
					SourceID:       &so.ID,
					IdempotencyKey: salesReturnKey(so.ID, item.ProductID, item.VariantID),
				}); err != nil {
					return err
				}
			}
		}

		next = n
		return s.repo.UpdateStatusTx(tx, so.ID, n)
	})
	if txErr != nil {
		return "", classifyTransitionError(txErr)
	}

	if s.dispatcher != nil {
		for _, a := range alerts {
			if err := s.dispatcher.EnqueueLowStockAlert(ctx, a); err != nil {
				log.Warn().Err(err).Str("sku", a.SKU).Msg("failed to enqueue low-stock alert")
			}
		}
	}
	return next, nil
}

func salesOrderToResponse(so *model.SalesOrder) *dto.SalesOrderResponse {
	items := make([]dto.SalesOrderItemResponse, 0, len(so.Items))
	orderTotal := decimal.Zero
	for _, item := range so.Items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.OrderedQty)))
		orderTotal = orderTotal.Add(lineTotal)
		items = append(items, dto.SalesOrderItemResponse{
			ProductID:    item.ProductID.String(),
			VariantID:    item.VariantID.String(),
			OrderedQty:   item.OrderedQty,
			FulfilledQty: item.FulfilledQty,
			UnitPrice:    item.UnitPrice,
			LineTotal:    lineTotal,
		})
	}
	return &dto.SalesOrderResponse{
		ID:           so.ID.String(),
		CustomerName: so.CustomerName,
		Status:       string(so.Status),
		Items:        items,
		Total:        orderTotal,
		CreatedAt:    so.CreatedAt.Format(time.RFC3339),
	}
}

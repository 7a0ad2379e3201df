package service

import (
	"context"
	"time"

	"github.com/dSumitabha/multi-tenant/internal/dto"
	"github.com/dSumitabha/multi-tenant/internal/model"
	"github.com/dSumitabha/multi-tenant/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type variantRef struct {
	product *model.Product
	variant *model.Variant
}

// GetInventorySummary joins the snapshot cache with live product data and
// outstanding order quantities. Pure read side: it reports whatever is visible
// at read time and writes nothing.
func (s *inventoryService) GetInventorySummary(ctx context.Context) (*dto.InventorySummaryResponse, error) {
	snaps, err := s.snapshots.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	products, err := s.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	// Index active variants by id. Snapshots whose product or variant no
	// longer resolves (deleted or deactivated after the snapshot was written)
	// are skipped, never fatal.
	refs := make(map[uuid.UUID]variantRef)
	for i := range products {
		p := &products[i]
		for j := range p.Variants {
			v := &p.Variants[j]
			if v.IsActive {
				refs[v.ID] = variantRef{product: p, variant: v}
			}
		}
	}

	poPending, err := s.purchaseOrders.PendingQtyByVariant(ctx)
	if err != nil {
		return nil, err
	}
	soPending, err := s.salesOrders.PendingQtyByVariant(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.InventorySummaryItem, 0, len(snaps))
	total := decimal.Zero
	for _, snap := range snaps {
		ref, ok := refs[snap.VariantID]
		if !ok || ref.product.ID != snap.ProductID {
			continue
		}
		value := ref.variant.Price.Mul(decimal.NewFromInt(int64(snap.AvailableQty)))
		total = total.Add(value)
		items = append(items, dto.InventorySummaryItem{
			ProductID:      snap.ProductID.String(),
			ProductName:    ref.product.Name,
			VariantID:      snap.VariantID.String(),
			SKU:            ref.variant.SKU,
			AvailableQty:   snap.AvailableQty,
			PendingPOQty:   poPending[snap.VariantID],
			PendingSOQty:   soPending[snap.VariantID],
			UnitPrice:      ref.variant.Price,
			InventoryValue: value,
		})
	}

	return &dto.InventorySummaryResponse{
		Items:               items,
		TotalInventoryValue: total,
	}, nil
}

// ListMovements returns the paginated ledger, newest first, enriched with
// product, variant, and source-document context for display.
func (s *inventoryService) ListMovements(ctx context.Context, filter repository.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	movements, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	productCache := make(map[uuid.UUID]*model.Product)
	data := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		resp := dto.StockMovementResponse{
			ID:         m.ID.String(),
			ProductID:  m.ProductID.String(),
			VariantID:  m.VariantID.String(),
			Direction:  string(m.Direction),
			Quantity:   m.Quantity,
			Reason:     string(m.Reason),
			SourceType: string(m.SourceType),
			CreatedAt:  m.CreatedAt.Format(time.RFC3339),
		}
		if m.SourceID != nil {
			id := m.SourceID.String()
			resp.SourceID = &id
		}

		product, ok := productCache[m.ProductID]
		if !ok {
			if p, perr := s.products.FindByID(ctx, m.ProductID); perr == nil {
				product = p
			}
			productCache[m.ProductID] = product
		}
		if product != nil {
			resp.Product = &dto.MovementProductInfo{ID: product.ID.String(), Name: product.Name}
			if v := product.FindVariant(m.VariantID); v != nil {
				resp.Variant = &dto.MovementVariantInfo{
					ID:    v.ID.String(),
					SKU:   v.SKU,
					Price: v.Price,
				}
			}
		}

		resp.Source = s.movementSource(ctx, &m)
		data = append(data, resp)
	}

	return &dto.StockMovementListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *inventoryService) movementSource(ctx context.Context, m *model.StockMovement) *dto.MovementSourceInfo {
	if m.SourceID == nil {
		return nil
	}
	switch m.SourceType {
	case model.SourcePurchaseOrder:
		po, err := s.purchaseOrders.FindByID(ctx, *m.SourceID)
		if err != nil {
			return nil
		}
		info := &dto.MovementSourceInfo{
			Type:   string(model.SourcePurchaseOrder),
			ID:     m.SourceID.String(),
			Status: string(po.Status),
		}
		if po.Supplier != nil {
			info.SupplierName = &po.Supplier.Name
		} else if sup, serr := s.suppliers.FindByID(ctx, po.SupplierID); serr == nil {
			info.SupplierName = &sup.Name
		}
		return info
	case model.SourceSalesOrder:
		so, err := s.salesOrders.FindByID(ctx, *m.SourceID)
		if err != nil {
			return nil
		}
		return &dto.MovementSourceInfo{
			Type:         string(model.SourceSalesOrder),
			ID:           m.SourceID.String(),
			CustomerName: &so.CustomerName,
			Status:       string(so.Status),
		}
	}
	return nil
}

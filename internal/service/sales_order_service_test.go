package service

import (
	"context"
	"testing"

	"github.com/dSumitabha/multi-tenant/internal/dto"
	"github.com/dSumitabha/multi-tenant/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSOService(f *fixture) SalesOrderService {
	return NewSalesOrderService(f.sos, f.inventory, nil)
}

func seedSO(f *fixture, status model.SOStatus, items ...model.SalesOrderItem) *model.SalesOrder {
	so := &model.SalesOrder{CustomerName: "Jordan Blake", Status: status, Items: items}
	_ = f.sos.Create(context.Background(), so)
	return so
}

func TestSalesOrderCreate_StartsInDraft(t *testing.T) {
	f := newFixture()
	svc := newSOService(f)
	p, v := f.seedProduct("WIDGET", 10, 0)

	resp, err := svc.Create(context.Background(), dto.CreateSalesOrderRequest{
		CustomerName: "  Jordan Blake  ",
		Items: []dto.SalesOrderItemRequest{{
			ProductID: p.ID.String(), VariantID: v.ID.String(), OrderedQty: 3,
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.SOStatusDraft), resp.Status)
	assert.Equal(t, "Jordan Blake", resp.CustomerName)
	// Creating an order commits nothing physically.
	assert.Equal(t, 10, v.Stock)
}

func TestSalesOrderAdvance_ConfirmHasNoStockEffect(t *testing.T) {
	f := newFixture()
	svc := newSOService(f)
	p, v := f.seedProduct("WIDGET", 10, 0)
	so := seedSO(f, model.SOStatusDraft, model.SalesOrderItem{
		ProductID: p.ID, VariantID: v.ID, OrderedQty: 4,
	})

	got, err := svc.Advance(context.Background(), so.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SOStatusConfirmed, got)
	assert.Equal(t, 10, v.Stock)
	assert.Empty(t, f.movements.movements)
}

func TestSalesOrderAdvance_FulfillDeductsAndMarksItems(t *testing.T) {
	f := newFixture()
	svc := newSOService(f)
	p, v := f.seedProduct("WIDGET", 10, 0)
	so := seedSO(f, model.SOStatusConfirmed, model.SalesOrderItem{
		ProductID: p.ID, VariantID: v.ID, OrderedQty: 4,
	})

	got, err := svc.Advance(context.Background(), so.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SOStatusFulfilled, got)
	assert.Equal(t, 6, v.Stock)
	assert.Equal(t, 4, so.Items[0].FulfilledQty)

	require.Len(t, f.movements.movements, 1)
	m := f.movements.movements[0]
	assert.Equal(t, model.DirectionOut, m.Direction)
	assert.Equal(t, model.ReasonSale, m.Reason)
	assert.Equal(t, model.SourceSalesOrder, m.SourceType)
}

func TestSalesOrderAdvance_FulfillWithInsufficientStockLeavesStatus(t *testing.T) {
	f := newFixture()
	svc := newSOService(f)
	p, v := f.seedProduct("WIDGET", 2, 0)
	so := seedSO(f, model.SOStatusConfirmed, model.SalesOrderItem{
		ProductID: p.ID, VariantID: v.ID, OrderedQty: 5,
	})

	_, err := svc.Advance(context.Background(), so.ID)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	// Status is written last: a failed fulfillment leaves the order retryable.
	assert.Equal(t, model.SOStatusConfirmed, so.Status)
	assert.Equal(t, 2, v.Stock)
}

func TestSalesOrderAdvance_ReturnRestoresStockUnderDistinctKey(t *testing.T) {
	f := newFixture()
	svc := newSOService(f)
	p, v := f.seedProduct("WIDGET", 10, 0)
	so := seedSO(f, model.SOStatusConfirmed, model.SalesOrderItem{
		ProductID: p.ID, VariantID: v.ID, OrderedQty: 4,
	})

	_, err := svc.Advance(context.Background(), so.ID) // CONFIRMED → FULFILLED
	require.NoError(t, err)
	assert.Equal(t, 6, v.Stock)

	got, err := svc.Advance(context.Background(), so.ID) // FULFILLED → RETURNED
	require.NoError(t, err)
	assert.Equal(t, model.SOStatusReturned, got)
	assert.Equal(t, 10, v.Stock)

	// The fulfill OUT and the return IN are separate ledger entries with
	// separate keys; the return must never collide with the fulfillment.
	require.Len(t, f.movements.movements, 2)
	fulfillKey := salesFulfillKey(so.ID, p.ID, v.ID)
	returnKey := salesReturnKey(so.ID, p.ID, v.ID)
	assert.NotEqual(t, fulfillKey, returnKey)
	assert.Equal(t, fulfillKey, *f.movements.movements[0].IdempotencyKey)
	assert.Equal(t, returnKey, *f.movements.movements[1].IdempotencyKey)
	assert.Equal(t, model.ReasonReturn, f.movements.movements[1].Reason)
}

func TestSalesOrderAdvance_ReturnedIsTerminal(t *testing.T) {
	f := newFixture()
	svc := newSOService(f)
	p, v := f.seedProduct("WIDGET", 10, 0)
	so := seedSO(f, model.SOStatusReturned, model.SalesOrderItem{
		ProductID: p.ID, VariantID: v.ID, OrderedQty: 4,
	})

	_, err := svc.Advance(context.Background(), so.ID)
	var noTransition *NoTransitionError
	require.ErrorAs(t, err, &noTransition)
	assert.Equal(t, 10, v.Stock)
}

package service

import (
	"context"
	"testing"

	"github.com/dSumitabha/multi-tenant/internal/dto"
	"github.com/dSumitabha/multi-tenant/internal/model"
	"github.com/dSumitabha/multi-tenant/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductCreate_WithVariants(t *testing.T) {
	f := newFixture()
	svc := NewProductService(f.products)

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "  Classic Tee ",
		Attributes: []dto.ProductAttributeDTO{
			{Name: "size", Values: []string{"S", "M"}},
		},
		Variants: []dto.CreateVariantRequest{
			{SKU: "TEE-S", Attributes: map[string]string{"size": "S"}, Price: decimal.NewFromInt(15), Stock: 3, ReorderLevel: 1},
			{SKU: "TEE-M", Attributes: map[string]string{"size": "M"}, Price: decimal.NewFromInt(15), Stock: 5, ReorderLevel: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Classic Tee", resp.Name)
	assert.True(t, resp.IsActive)
	require.Len(t, resp.Variants, 2)
	assert.Equal(t, "TEE-S", resp.Variants[0].SKU)
	assert.Equal(t, 3, resp.Variants[0].Stock)
}

func TestProductCreate_Rejections(t *testing.T) {
	f := newFixture()
	svc := NewProductService(f.products)

	cases := map[string]dto.CreateProductRequest{
		"blank name": {
			Name:     "   ",
			Variants: []dto.CreateVariantRequest{{SKU: "X", Price: decimal.NewFromInt(1)}},
		},
		"no variants": {
			Name: "Tee",
		},
		"blank sku": {
			Name:     "Tee",
			Variants: []dto.CreateVariantRequest{{SKU: " ", Price: decimal.NewFromInt(1)}},
		},
		"negative price": {
			Name:     "Tee",
			Variants: []dto.CreateVariantRequest{{SKU: "X", Price: decimal.NewFromInt(-1)}},
		},
		"negative stock": {
			Name:     "Tee",
			Variants: []dto.CreateVariantRequest{{SKU: "X", Price: decimal.NewFromInt(1), Stock: -2}},
		},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), req)
			var invalid *InvalidRequestError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestProductList_OnlyActive(t *testing.T) {
	f := newFixture()
	svc := NewProductService(f.products)
	f.seedProduct("VISIBLE", 0, 0)
	hidden, _ := f.seedProduct("HIDDEN", 0, 0)
	hidden.IsActive = false

	out, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "VISIBLE", out[0].Name)
}

func TestListMovements_EnrichesSourceDocuments(t *testing.T) {
	f := newFixture()
	poSvc := newPOService(f)
	p, v := f.seedProduct("WIDGET", 0, 0)
	po := seedPO(f, model.POStatusConfirmed, model.PurchaseOrderItem{
		ProductID: p.ID, VariantID: v.ID, OrderedQty: 5,
	})

	_, err := poSvc.Advance(context.Background(), po.ID)
	require.NoError(t, err)

	pid := p.ID
	resp, err := f.inventory.ListMovements(context.Background(), repository.StockMovementFilter{
		ProductID: &pid, Page: 1, Limit: 20,
	})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)

	m := resp.Data[0]
	assert.Equal(t, "IN", m.Direction)
	require.NotNil(t, m.Product)
	assert.Equal(t, "WIDGET", m.Product.Name)
	require.NotNil(t, m.Variant)
	assert.Equal(t, v.SKU, m.Variant.SKU)
	require.NotNil(t, m.Source)
	assert.Equal(t, "PO", m.Source.Type)
	assert.Equal(t, string(model.POStatusReceived), m.Source.Status)
	require.NotNil(t, m.Source.SupplierName)
	assert.Equal(t, "Acme Wholesale", *m.Source.SupplierName)
}

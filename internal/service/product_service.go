package service

import (
	"context"
	"strings"

	"github.com/dSumitabha/multi-tenant/internal/dto"
	"github.com/dSumitabha/multi-tenant/internal/model"
	"github.com/dSumitabha/multi-tenant/internal/repository"
)

// ProductService covers the product catalog: creation with embedded variants
// and the active-product listing. Stock on a variant is only ever touched by
// the inventory service after creation.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	List(ctx context.Context) ([]dto.ProductResponse, error)
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, &InvalidRequestError{Reason: "name is required"}
	}
	if len(req.Variants) == 0 {
		return nil, &InvalidRequestError{Reason: "at least one variant is required"}
	}

	product := model.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsActive:    true,
	}
	for _, attr := range req.Attributes {
		product.Attributes = append(product.Attributes, model.ProductAttribute{
			Name:   attr.Name,
			Values: attr.Values,
		})
	}
	for _, v := range req.Variants {
		if strings.TrimSpace(v.SKU) == "" {
			return nil, &InvalidRequestError{Reason: "variant sku is required"}
		}
		if v.Price.IsNegative() {
			return nil, &InvalidRequestError{Reason: "variant price must not be negative"}
		}
		if v.Stock < 0 {
			return nil, &InvalidRequestError{Reason: "variant stock must not be negative"}
		}
		product.Variants = append(product.Variants, model.Variant{
			SKU:          strings.TrimSpace(v.SKU),
			Attributes:   v.Attributes,
			Price:        v.Price,
			Stock:        v.Stock,
			ReorderLevel: v.ReorderLevel,
			IsActive:     true,
		})
	}

	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, err
	}
	return productToResponse(&product), nil
}

func (s *productService) List(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}
	return out, nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	attrs := make([]dto.ProductAttributeDTO, 0, len(p.Attributes))
	for _, a := range p.Attributes {
		attrs = append(attrs, dto.ProductAttributeDTO{Name: a.Name, Values: a.Values})
	}
	variants := make([]dto.VariantResponse, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, dto.VariantResponse{
			ID:           v.ID.String(),
			SKU:          v.SKU,
			Attributes:   v.Attributes,
			Price:        v.Price,
			Stock:        v.Stock,
			ReorderLevel: v.ReorderLevel,
			IsActive:     v.IsActive,
		})
	}
	return &dto.ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Attributes:  attrs,
		Variants:    variants,
		IsActive:    p.IsActive,
	}
}

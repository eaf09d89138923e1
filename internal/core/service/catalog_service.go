package service

import (
	"context"
	"strings"

	"github.com/mgarrido/wms/internal/core/domain"
	"github.com/mgarrido/wms/internal/port"
)

const defaultCategory = "General"

// CatalogService handles product registration and lookups. Products
// are append-only in practice: a SKU, once registered, never changes.
type CatalogService struct {
	catalog port.CatalogRepository
}

func NewCatalogService(catalog port.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) Register(ctx context.Context, p domain.Product) error {
	p.SKU = strings.TrimSpace(p.SKU)
	p.Name = strings.TrimSpace(p.Name)
	if p.SKU == "" || p.Name == "" {
		return domain.ErrInvalidProduct
	}
	if p.Category == "" {
		p.Category = defaultCategory
	}
	return s.catalog.CreateProduct(ctx, p)
}

func (s *CatalogService) Get(ctx context.Context, sku string) (domain.Product, error) {
	p, err := s.catalog.GetProduct(ctx, sku)
	if err != nil {
		return domain.Product{}, err
	}
	if p == nil {
		return domain.Product{}, domain.ErrUnknownProduct
	}
	return *p, nil
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	return s.catalog.ListProducts(ctx)
}

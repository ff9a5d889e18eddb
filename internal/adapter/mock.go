package adapter

import (
	"context"

	"voyage-bff/internal/model"
)

// Mock implements Catalog for testing.
// Each method can be configured via function fields.
type Mock struct {
	ListProductsFunc       func(ctx context.Context, limit int) ([]model.Product, error)
	GetProductFunc         func(ctx context.Context, id string) (*model.Product, error)
	ListCollectionsFunc    func(ctx context.Context) ([]model.Collection, error)
	CollectionProductsFunc func(ctx context.Context, handle string) ([]model.Product, error)
	SearchProductsFunc     func(ctx context.Context, query string) ([]model.Product, error)
	LensOptionsFunc        func(ctx context.Context) (*model.LensOptions, error)
	ShopInfoFunc           func(ctx context.Context) (*model.Shop, error)
}

// ListProducts calls the configured ListProductsFunc or returns an empty list.
func (m *Mock) ListProducts(ctx context.Context, limit int) ([]model.Product, error) {
	if m.ListProductsFunc != nil {
		return m.ListProductsFunc(ctx, limit)
	}
	return []model.Product{}, nil
}

// GetProduct calls the configured GetProductFunc or returns a not found error.
func (m *Mock) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("product")
}

// ListCollections calls the configured ListCollectionsFunc or returns an empty list.
func (m *Mock) ListCollections(ctx context.Context) ([]model.Collection, error) {
	if m.ListCollectionsFunc != nil {
		return m.ListCollectionsFunc(ctx)
	}
	return []model.Collection{}, nil
}

// CollectionProducts calls the configured CollectionProductsFunc or returns a not found error.
func (m *Mock) CollectionProducts(ctx context.Context, handle string) ([]model.Product, error) {
	if m.CollectionProductsFunc != nil {
		return m.CollectionProductsFunc(ctx, handle)
	}
	return nil, model.NewNotFoundError("collection")
}

// SearchProducts calls the configured SearchProductsFunc or returns an empty list.
func (m *Mock) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	if m.SearchProductsFunc != nil {
		return m.SearchProductsFunc(ctx, query)
	}
	return []model.Product{}, nil
}

// LensOptions calls the configured LensOptionsFunc or returns empty groups.
func (m *Mock) LensOptions(ctx context.Context) (*model.LensOptions, error) {
	if m.LensOptionsFunc != nil {
		return m.LensOptionsFunc(ctx)
	}
	opts := model.NewLensOptions()
	return &opts, nil
}

// ShopInfo calls the configured ShopInfoFunc or returns an internal error.
func (m *Mock) ShopInfo(ctx context.Context) (*model.Shop, error) {
	if m.ShopInfoFunc != nil {
		return m.ShopInfoFunc(ctx)
	}
	return nil, model.NewInternalError(nil)
}

// Ensure Mock implements Catalog
var _ Catalog = (*Mock)(nil)

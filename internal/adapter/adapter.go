// Package adapter defines the interface for storefront catalog integrations.
// Adapters translate platform-specific APIs to the client-facing storefront shapes.
package adapter

import (
	"context"

	"voyage-bff/internal/model"
)

// DefaultProductLimit is used when a caller does not ask for a page size.
const DefaultProductLimit = 50

// Catalog abstracts read-only storefront catalog operations.
// Each platform provides its own implementation; caching layers wrap it.
//
// All methods return model types ready for API serialization.
// Platform-specific error handling is encapsulated within each implementation.
type Catalog interface {
	// ListProducts returns up to limit products.
	// Implementations may serve a bundled fallback catalog when the platform is unreachable.
	ListProducts(ctx context.Context, limit int) ([]model.Product, error)

	// GetProduct returns a single product or a NotFoundError.
	GetProduct(ctx context.Context, id string) (*model.Product, error)

	// ListCollections returns every collection the platform exposes.
	ListCollections(ctx context.Context) ([]model.Collection, error)

	// CollectionProducts resolves a collection by handle and returns its products.
	// Returns a NotFoundError if no collection has that handle.
	CollectionProducts(ctx context.Context, handle string) ([]model.Product, error)

	// SearchProducts returns products whose title matches query.
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)

	// LensOptions returns lens products grouped by category.
	LensOptions(ctx context.Context) (*model.LensOptions, error)

	// ShopInfo returns the storefront summary.
	ShopInfo(ctx context.Context) (*model.Shop, error)
}

package shopify

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"voyage-bff/internal/adapter"
	"voyage-bff/internal/model"
)

//go:embed demo_products.json
var demoProductsJSON []byte

// DemoProducts returns the bundled catalog served when the store is unreachable.
func DemoProducts() ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(demoProductsJSON, &products); err != nil {
		return nil, fmt.Errorf("parsing demo products: %w", err)
	}
	return products, nil
}

// Adapter implements adapter.Catalog on top of the Admin API client.
type Adapter struct {
	client *Client
	logger *slog.Logger
}

// NewAdapter wraps a client as a catalog.
func NewAdapter(client *Client, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{client: client, logger: logger}
}

// ListProducts returns up to limit products, or the bundled demo catalog
// when the store cannot be reached.
func (a *Adapter) ListProducts(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = adapter.DefaultProductLimit
	}

	products, err := a.client.Products(ctx, limit)
	if err != nil {
		a.logger.Warn("product fetch failed, serving demo products",
			slog.String("error", err.Error()),
		)
		demo, demoErr := DemoProducts()
		if demoErr != nil {
			return nil, model.NewInternalError(demoErr)
		}
		return TransformProducts(demo), nil
	}
	return TransformProducts(products), nil
}

// GetProduct returns a single product.
func (a *Adapter) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := a.client.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	out := TransformProduct(*p)
	return &out, nil
}

// ListCollections returns custom and smart collections.
func (a *Adapter) ListCollections(ctx context.Context) ([]model.Collection, error) {
	collections, err := a.client.Collections(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.Collection, 0, len(collections))
	for _, c := range collections {
		out = append(out, TransformCollection(c))
	}
	return out, nil
}

// CollectionProducts finds the first collection with the given handle and
// returns its products.
func (a *Adapter) CollectionProducts(ctx context.Context, handle string) ([]model.Product, error) {
	collections, err := a.client.Collections(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range collections {
		if c.Handle != handle {
			continue
		}
		products, err := a.client.CollectionProducts(ctx, c.ID.String())
		if err != nil {
			return nil, err
		}
		return TransformProducts(products), nil
	}
	return nil, model.NewNotFoundError("Collection")
}

// SearchProducts returns products whose title matches query.
func (a *Adapter) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	products, err := a.client.SearchProducts(ctx, query)
	if err != nil {
		return nil, err
	}
	return TransformProducts(products), nil
}

// LensOptions returns lens products grouped by category. Never fails:
// an unreachable store yields empty groups.
func (a *Adapter) LensOptions(ctx context.Context) (*model.LensOptions, error) {
	opts := GroupLenses(a.client.Lenses(ctx))
	return &opts, nil
}

// ShopInfo returns the storefront summary.
func (a *Adapter) ShopInfo(ctx context.Context) (*model.Shop, error) {
	shop, err := a.client.Shop(ctx)
	if err != nil {
		return nil, err
	}
	return &model.Shop{
		Name:          shop.Name,
		Description:   shop.Description,
		PrimaryDomain: shop.Domain,
		CurrencyCode:  shop.Currency,
	}, nil
}

// Ensure Adapter implements Catalog
var _ adapter.Catalog = (*Adapter)(nil)

// Package cart keeps server-side shopping carts keyed by a client-held id.
// Storage is pluggable: a bounded in-memory store for single instances and
// a Redis store when carts must be shared between replicas.
package cart

import (
	"context"
	"errors"
	"fmt"

	"voyage-bff/internal/model"
)

// ErrCartNotFound is returned by stores when no cart exists for an id.
var ErrCartNotFound = errors.New("cart not found")

// ErrConflict is returned when an update lost too many races for the same cart.
var ErrConflict = errors.New("cart update conflict")

// MutateFunc modifies a cart in place. Returning an error aborts the update.
type MutateFunc func(c *model.Cart) error

// Store persists carts. Update must run fn atomically with respect to other
// Updates on the same id: no concurrent mutation of one cart is ever lost.
type Store interface {
	// Get returns the cart or ErrCartNotFound.
	Get(ctx context.Context, id string) (*model.Cart, error)

	// Update loads the cart, applies fn, and saves the result.
	// If the cart does not exist it is created empty when create is true,
	// otherwise ErrCartNotFound is returned.
	Update(ctx context.Context, id string, create bool, fn MutateFunc) (*model.Cart, error)

	// Delete removes the cart. Deleting a missing cart is not an error.
	Delete(ctx context.Context, id string) error
}

func cacheKey(id string) string {
	return fmt.Sprintf("cart:%s", id)
}

// clone returns a copy whose item slice can be changed without touching c.
func clone(c *model.Cart) *model.Cart {
	out := &model.Cart{ID: c.ID, Items: make([]model.LineItem, len(c.Items))}
	copy(out.Items, c.Items)
	return out
}

package cart

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"voyage-bff/internal/model"
)

// Service implements cart operations on top of a Store.
// Input is validated before any mutation; store errors are mapped to APIError.
type Service struct {
	store  Store
	logger *slog.Logger
	newID  func() string
}

// NewService creates a cart service backed by store.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// AddItem appends one line item, creating the cart if needed.
// An empty cartID starts a new cart under a generated id.
func (s *Service) AddItem(ctx context.Context, cartID string, in model.ItemInput) (*model.Cart, error) {
	if in.VariantID == "" {
		return nil, model.NewValidationError("variantId", "is required")
	}
	if in.Quantity == nil || *in.Quantity == 0 {
		return nil, model.NewValidationError("quantity", "is required")
	}
	if *in.Quantity < 0 {
		return nil, model.NewValidationError("quantity", "must be positive")
	}

	if cartID == "" {
		cartID = s.newID()
	}

	item := s.newLineItem(in.VariantID, *in.Quantity, in.Properties)
	c, err := s.store.Update(ctx, cartID, true, func(c *model.Cart) error {
		c.Items = append(c.Items, item)
		return nil
	})
	if err != nil {
		return nil, s.storeError(err)
	}
	return c, nil
}

// AddItems appends several line items in one atomic update.
// Missing or zero quantities default to 1.
func (s *Service) AddItems(ctx context.Context, cartID string, items []model.ItemInput) (*model.Cart, error) {
	if items == nil {
		return nil, model.NewValidationError("items", "array is required")
	}

	lines := make([]model.LineItem, 0, len(items))
	for _, in := range items {
		if in.VariantID == "" {
			return nil, model.NewValidationError("variantId", "is required for every item")
		}
		qty := 1
		if in.Quantity != nil && *in.Quantity != 0 {
			qty = *in.Quantity
		}
		if qty < 0 {
			return nil, model.NewValidationError("quantity", "must be positive")
		}
		lines = append(lines, s.newLineItem(in.VariantID, qty, in.Properties))
	}

	if cartID == "" {
		cartID = s.newID()
	}

	c, err := s.store.Update(ctx, cartID, true, func(c *model.Cart) error {
		c.Items = append(c.Items, lines...)
		return nil
	})
	if err != nil {
		return nil, s.storeError(err)
	}
	return c, nil
}

// UpdateItem sets the quantity of a line item. An unknown line item leaves
// the cart unchanged; an unknown cart is a NotFoundError.
func (s *Service) UpdateItem(ctx context.Context, cartID, lineItemID string, quantity *int) (*model.Cart, error) {
	if cartID == "" {
		return nil, model.NewValidationError("cartId", "is required")
	}
	if lineItemID == "" {
		return nil, model.NewValidationError("lineItemId", "is required")
	}
	if quantity == nil {
		return nil, model.NewValidationError("quantity", "is required")
	}
	if *quantity < 0 {
		return nil, model.NewValidationError("quantity", "must not be negative")
	}

	c, err := s.store.Update(ctx, cartID, false, func(c *model.Cart) error {
		for i := range c.Items {
			if c.Items[i].ID == lineItemID {
				c.Items[i].Quantity = *quantity
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.storeError(err)
	}
	return c, nil
}

// RemoveItem drops a line item. An unknown line item leaves the cart
// unchanged; an unknown cart is a NotFoundError.
func (s *Service) RemoveItem(ctx context.Context, cartID, lineItemID string) (*model.Cart, error) {
	if cartID == "" {
		return nil, model.NewValidationError("cartId", "is required")
	}
	if lineItemID == "" {
		return nil, model.NewValidationError("lineItemId", "is required")
	}

	c, err := s.store.Update(ctx, cartID, false, func(c *model.Cart) error {
		kept := c.Items[:0]
		for _, it := range c.Items {
			if it.ID != lineItemID {
				kept = append(kept, it)
			}
		}
		c.Items = kept
		return nil
	})
	if err != nil {
		return nil, s.storeError(err)
	}
	return c, nil
}

// GetCart returns the cart for cartID. It never fails for a missing cart:
// no id yields {id: null, items: []}, an unknown id yields an empty cart
// carrying that id.
func (s *Service) GetCart(ctx context.Context, cartID string) (*model.Cart, error) {
	if cartID == "" {
		return model.NewCart(""), nil
	}

	c, err := s.store.Get(ctx, cartID)
	if errors.Is(err, ErrCartNotFound) {
		return model.NewCart(cartID), nil
	}
	if err != nil {
		return nil, s.storeError(err)
	}
	return c, nil
}

// Exists reports whether a cart is stored under cartID.
func (s *Service) Exists(ctx context.Context, cartID string) (bool, error) {
	if cartID == "" {
		return false, nil
	}
	_, err := s.store.Get(ctx, cartID)
	if errors.Is(err, ErrCartNotFound) {
		return false, nil
	}
	if err != nil {
		return false, s.storeError(err)
	}
	return true, nil
}

// ClearCart deletes the cart. Clearing without an id is a no-op.
func (s *Service) ClearCart(ctx context.Context, cartID string) error {
	if cartID == "" {
		return nil
	}
	if err := s.store.Delete(ctx, cartID); err != nil {
		return s.storeError(err)
	}
	return nil
}

func (s *Service) newLineItem(variantID string, qty int, props map[string]any) model.LineItem {
	if props == nil {
		props = map[string]any{}
	}
	return model.LineItem{
		ID:         s.newID(),
		VariantID:  variantID,
		Quantity:   qty,
		Properties: props,
	}
}

// storeError maps store failures to API errors.
func (s *Service) storeError(err error) error {
	var apiErr *model.APIError
	switch {
	case errors.As(err, &apiErr):
		return err
	case errors.Is(err, ErrCartNotFound):
		return model.NewNotFoundError("Cart")
	default:
		s.logger.Error("cart store failed", slog.String("error", err.Error()))
		return model.NewInternalError(err)
	}
}

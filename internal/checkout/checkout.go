// Package checkout hands a cart off to an external checkout.
//
// Both flows are placeholders: they validate the cart and return synthetic
// references without creating a Shopify draft order or calling the GoKwik
// API. Replace CreateCheckout with a draft-order call and
// CreateGoKwikCheckout with a GoKwik order-create call when integrating.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"voyage-bff/internal/model"
)

const (
	DefaultGoKwikURL   = "https://gokwik.co/checkout"
	DefaultOrderPrefix = "VYG"
)

// CartChecker reports whether a cart exists. Satisfied by *cart.Service.
type CartChecker interface {
	Exists(ctx context.Context, cartID string) (bool, error)
}

// Config holds checkout destinations.
type Config struct {
	// StorefrontURL is the hosted checkout URL returned by CreateCheckout.
	StorefrontURL string
	// GoKwikURL is the base URL for gateway checkouts; the order id is appended.
	GoKwikURL   string
	OrderPrefix string
}

// Service creates synthetic checkout references.
type Service struct {
	carts  CartChecker
	cfg    Config
	logger *slog.Logger
	newID  func() string
}

// NewService creates a checkout service.
func NewService(carts CartChecker, cfg Config, logger *slog.Logger) *Service {
	if cfg.GoKwikURL == "" {
		cfg.GoKwikURL = DefaultGoKwikURL
	}
	if cfg.OrderPrefix == "" {
		cfg.OrderPrefix = DefaultOrderPrefix
	}
	cfg.GoKwikURL = strings.TrimSuffix(cfg.GoKwikURL, "/")
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{carts: carts, cfg: cfg, logger: logger, newID: uuid.NewString}
}

// CreateCheckout returns the storefront checkout URL with a fresh checkout id.
func (s *Service) CreateCheckout(ctx context.Context, cartID string) (*model.CheckoutSession, error) {
	if cartID == "" {
		return nil, model.NewValidationError("cartId", "is required")
	}
	if err := s.requireCart(ctx, cartID); err != nil {
		return nil, err
	}

	session := &model.CheckoutSession{
		CheckoutURL: s.cfg.StorefrontURL,
		CheckoutID:  s.newID(),
	}
	s.logger.Info("checkout created",
		slog.String("cart_id", cartID),
		slog.String("checkout_id", session.CheckoutID),
	)
	return session, nil
}

// CreateGoKwikCheckout returns a gateway checkout URL and order id.
// customerInfo is required but not inspected.
func (s *Service) CreateGoKwikCheckout(ctx context.Context, cartID string, customerInfo model.CustomerInfo) (*model.GatewayOrder, error) {
	if cartID == "" {
		return nil, model.NewValidationError("cartId", "is required")
	}
	if customerInfo == nil {
		return nil, model.NewValidationError("customerInfo", "is required")
	}
	if err := s.requireCart(ctx, cartID); err != nil {
		return nil, err
	}

	ref := s.newID()
	order := &model.GatewayOrder{
		CheckoutURL: fmt.Sprintf("%s/%s", s.cfg.GoKwikURL, ref),
		OrderID:     fmt.Sprintf("%s-%s", s.cfg.OrderPrefix, ref),
	}
	s.logger.Info("gateway checkout created",
		slog.String("cart_id", cartID),
		slog.String("order_id", order.OrderID),
	)
	return order, nil
}

func (s *Service) requireCart(ctx context.Context, cartID string) error {
	ok, err := s.carts.Exists(ctx, cartID)
	if err != nil {
		return err
	}
	if !ok {
		return model.NewNotFoundError("Cart")
	}
	return nil
}

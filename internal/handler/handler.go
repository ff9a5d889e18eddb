// Package handler provides the HTTP handlers for the storefront API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"voyage-bff/internal/adapter"
	"voyage-bff/internal/cart"
	"voyage-bff/internal/checkout"
	"voyage-bff/internal/model"
)

// CartIDHeader carries the client's cart id on cart routes.
const CartIDHeader = "cart-id"

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	catalog     adapter.Catalog
	carts       *cart.Service
	checkout    *checkout.Service
	storeDomain string
	logger      *slog.Logger
}

// New creates a new Handler. storeDomain is reported by the health check.
func New(catalog adapter.Catalog, carts *cart.Service, checkoutSvc *checkout.Service, storeDomain string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		catalog:     catalog,
		carts:       carts,
		checkout:    checkoutSvc,
		storeDomain: storeDomain,
		logger:      logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)

	// Catalog
	mux.HandleFunc("GET /api/shopify/products", h.handleListProducts)
	mux.HandleFunc("GET /api/shopify/products/{id}", h.handleGetProduct)
	mux.HandleFunc("GET /api/shopify/products/collection/{handle}", h.handleCollectionProducts)
	mux.HandleFunc("GET /api/shopify/collections", h.handleListCollections)
	mux.HandleFunc("GET /api/shopify/search", h.handleSearch)
	mux.HandleFunc("GET /api/shopify/shop", h.handleShop)
	mux.HandleFunc("GET /api/shopify/theme-sections", h.handleThemeSections)
	mux.HandleFunc("GET /api/shopify/lens-options", h.handleLensOptions)

	// Cart
	mux.HandleFunc("POST /api/shopify/cart/add", h.handleCartAdd)
	mux.HandleFunc("POST /api/shopify/cart/add-multiple", h.handleCartAddMultiple)
	mux.HandleFunc("POST /api/shopify/cart/update", h.handleCartUpdate)
	mux.HandleFunc("POST /api/shopify/cart/remove", h.handleCartRemove)
	mux.HandleFunc("GET /api/shopify/cart", h.handleGetCart)
	mux.HandleFunc("POST /api/shopify/cart/clear", h.handleCartClear)

	// Checkout
	mux.HandleFunc("POST /api/shopify/checkout/create", h.handleCreateCheckout)
	mux.HandleFunc("POST /api/shopify/checkout/gokwik", h.handleGoKwikCheckout)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	mux.HandleFunc("/", h.handleNotFound)
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError if present.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError

	if !errors.As(err, &apiErr) {
		apiErr = &model.APIError{
			Code:       "INTERNAL_ERROR",
			Message:    "an internal error occurred",
			StatusCode: http.StatusInternalServerError,
		}
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Success: false,
		Message: apiErr.Message,
		Code:    apiErr.Code,
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// handleNotFound answers any path no other route claims.
func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusNotFound, errorResponse{Success: false, Message: "Route not found"})
}

// MaxRequestBodySize limits JSON request bodies to 1MB to prevent DoS.
const MaxRequestBodySize = 1 << 20 // 1MB

// decodeJSON reads JSON from request body into v.
// Limits body size to MaxRequestBodySize to prevent memory exhaustion.
// Returns an APIError if decoding fails.
func decodeJSON(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Don't expose internal error details to client
		return model.NewValidationError("body", "invalid JSON")
	}
	return nil
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"voyage-bff/internal/model"
)

type cartResponse struct {
	Success bool        `json:"success"`
	Cart    *model.Cart `json:"cart"`
	CartID  string      `json:"cartId,omitempty"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type addMultipleRequest struct {
	Items json.RawMessage `json:"items"`
}

type lineItemRequest struct {
	LineItemID string `json:"lineItemId"`
	Quantity   *int   `json:"quantity"`
}

func cartID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(CartIDHeader))
}

// handleCartAdd appends one line item, creating the cart when needed.
// POST /api/shopify/cart/add
func (h *Handler) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	var req model.ItemInput
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	c, err := h.carts.AddItem(r.Context(), cartID(r), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cartResponse{Success: true, Cart: c, CartID: c.ID})
}

// handleCartAddMultiple appends several line items at once.
// POST /api/shopify/cart/add-multiple
func (h *Handler) handleCartAddMultiple(w http.ResponseWriter, r *http.Request) {
	var req addMultipleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	raw := strings.TrimSpace(string(req.Items))
	if !strings.HasPrefix(raw, "[") {
		h.writeError(w, model.NewValidationError("items", "array is required"))
		return
	}
	var items []model.ItemInput
	if err := json.Unmarshal(req.Items, &items); err != nil {
		h.writeError(w, model.NewValidationError("items", "each item must be an object"))
		return
	}

	c, err := h.carts.AddItems(r.Context(), cartID(r), items)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.DebugContext(r.Context(), "items added",
		slog.String("cart_id", c.ID),
		slog.Int("count", len(items)),
	)
	h.writeJSON(w, http.StatusOK, cartResponse{Success: true, Cart: c, CartID: c.ID})
}

// POST /api/shopify/cart/update
func (h *Handler) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	var req lineItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	c, err := h.carts.UpdateItem(r.Context(), cartID(r), req.LineItemID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cartResponse{Success: true, Cart: c})
}

// POST /api/shopify/cart/remove
func (h *Handler) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	var req lineItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	c, err := h.carts.RemoveItem(r.Context(), cartID(r), req.LineItemID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cartResponse{Success: true, Cart: c})
}

// handleGetCart returns the cart named by the cart-id header, or an empty one.
// GET /api/shopify/cart
func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.GetCart(r.Context(), cartID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cartResponse{Success: true, Cart: c})
}

// POST /api/shopify/cart/clear
func (h *Handler) handleCartClear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.ClearCart(r.Context(), cartID(r)); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Cart cleared"})
}

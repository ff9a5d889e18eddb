package handler

import (
	"net/http"

	"voyage-bff/internal/model"
)

type createCheckoutRequest struct {
	CartID string `json:"cartId"`
}

type goKwikCheckoutRequest struct {
	CartID       string             `json:"cartId"`
	CustomerInfo model.CustomerInfo `json:"customerInfo"`
}

type checkoutResponse struct {
	Success bool `json:"success"`
	model.CheckoutSession
}

type gatewayOrderResponse struct {
	Success bool `json:"success"`
	model.GatewayOrder
}

// handleCreateCheckout hands the cart off to the storefront checkout.
// POST /api/shopify/checkout/create
func (h *Handler) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req createCheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	session, err := h.checkout.CreateCheckout(r.Context(), req.CartID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, checkoutResponse{Success: true, CheckoutSession: *session})
}

// handleGoKwikCheckout creates a payment-gateway order reference.
// POST /api/shopify/checkout/gokwik
func (h *Handler) handleGoKwikCheckout(w http.ResponseWriter, r *http.Request) {
	var req goKwikCheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	order, err := h.checkout.CreateGoKwikCheckout(r.Context(), req.CartID, req.CustomerInfo)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, gatewayOrderResponse{Success: true, GatewayOrder: *order})
}

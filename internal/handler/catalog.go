package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"voyage-bff/internal/adapter"
	"voyage-bff/internal/model"
)

type productsResponse struct {
	Success  bool            `json:"success"`
	Products []model.Product `json:"products"`
}

type productResponse struct {
	Success bool           `json:"success"`
	Product *model.Product `json:"product"`
}

type collectionsResponse struct {
	Success     bool               `json:"success"`
	Collections []model.Collection `json:"collections"`
}

type searchResponse struct {
	Success bool            `json:"success"`
	Results []model.Product `json:"results"`
}

type shopResponse struct {
	Success bool `json:"success"`
	model.Shop
}

type lensOptionsResponse struct {
	Success bool `json:"success"`
	model.LensOptions
}

// handleListProducts lists products.
// GET /api/shopify/products?limit=N
func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	limit := adapter.DefaultProductLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	products, err := h.catalog.ListProducts(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, productsResponse{Success: true, Products: nonNil(products)})
}

// handleGetProduct returns one product.
// GET /api/shopify/products/{id}
func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.logger.InfoContext(r.Context(), "product lookup failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, productResponse{Success: true, Product: product})
}

// GET /api/shopify/collections
func (h *Handler) handleListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.catalog.ListCollections(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if collections == nil {
		collections = []model.Collection{}
	}
	h.writeJSON(w, http.StatusOK, collectionsResponse{Success: true, Collections: collections})
}

// GET /api/shopify/products/collection/{handle}
func (h *Handler) handleCollectionProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.CollectionProducts(r.Context(), r.PathValue("handle"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, productsResponse{Success: true, Products: nonNil(products)})
}

// handleSearch matches products by title.
// GET /api/shopify/search?q=
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	results, err := h.catalog.SearchProducts(r.Context(), query)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, searchResponse{Success: true, Results: nonNil(results)})
}

// GET /api/shopify/shop
func (h *Handler) handleShop(w http.ResponseWriter, r *http.Request) {
	shop, err := h.catalog.ShopInfo(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, shopResponse{Success: true, Shop: *shop})
}

// handleLensOptions returns lenses grouped by category. Never fails.
// GET /api/shopify/lens-options
func (h *Handler) handleLensOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.catalog.LensOptions(r.Context())
	if err != nil || opts == nil {
		if err != nil {
			h.logger.WarnContext(r.Context(), "lens options unavailable", slog.String("error", err.Error()))
		}
		empty := model.NewLensOptions()
		opts = &empty
	}
	h.writeJSON(w, http.StatusOK, lensOptionsResponse{Success: true, LensOptions: *opts})
}

func nonNil(products []model.Product) []model.Product {
	if products == nil {
		return []model.Product{}
	}
	return products
}

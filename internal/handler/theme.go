package handler

import "net/http"

type genderCategory struct {
	Title    string  `json:"title"`
	Handle   string  `json:"handle"`
	ImageURL *string `json:"imageUrl"`
}

type themeSectionsResponse struct {
	Success             bool             `json:"success"`
	HeroSlides          []any            `json:"heroSlides"`
	GenderCategories    []genderCategory `json:"genderCategories"`
	FeaturedCollections []any            `json:"featuredCollections"`
}

// handleThemeSections returns the static home-page layout.
// GET /api/shopify/theme-sections
func (h *Handler) handleThemeSections(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, themeSectionsResponse{
		Success:    true,
		HeroSlides: []any{},
		GenderCategories: []genderCategory{
			{Title: "Men", Handle: "mens"},
			{Title: "Women", Handle: "womens"},
			{Title: "Kids", Handle: "kids"},
		},
		FeaturedCollections: []any{},
	})
}

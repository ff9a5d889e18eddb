// Package shopify implements the catalog adapter for Shopify stores using the Admin REST API.
// All Shopify-specific types, transforms, lens heuristics, and HTTP client logic live here.
package shopify

import (
	"bytes"
	"encoding/json"
	"strings"
)

// === Shopify Admin API Response Types ===

// Product represents a Shopify product resource.
type Product struct {
	ID          Scalar    `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	BodyHTML    string    `json:"body_html"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Tags        Tags      `json:"tags"`
	Images      []Image   `json:"images"`
	Image       *Image    `json:"image"` // featured image
	Variants    []Variant `json:"variants"`

	// Not part of the Admin API; present in bundled demo data only.
	AvailableForSale *bool `json:"availableForSale,omitempty"`
}

// Variant represents a Shopify product variant.
type Variant struct {
	ID                Scalar `json:"id"`
	Title             string `json:"title"`
	Price             Scalar `json:"price"`            // "99.00" - string decimal
	CompareAtPrice    Scalar `json:"compare_at_price"` // null or "" when not discounted
	InventoryQuantity int    `json:"inventory_quantity"`
	SKU               string `json:"sku"`
}

// Image represents a product or collection image.
type Image struct {
	Src string `json:"src"`
}

// Collection represents a custom or smart collection.
type Collection struct {
	ID            Scalar `json:"id"`
	Title         string `json:"title"`
	Handle        string `json:"handle"`
	BodyHTML      string `json:"body_html"`
	Image         *Image `json:"image"`
	ProductsCount int    `json:"products_count"`
}

// Shop represents the /shop.json resource.
type Shop struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Domain      string `json:"domain"`
	Currency    string `json:"currency"`
}

// === Envelopes ===

type productsResponse struct {
	Products []Product `json:"products"`
}

type productResponse struct {
	Product Product `json:"product"`
}

type customCollectionsResponse struct {
	CustomCollections []Collection `json:"custom_collections"`
}

type smartCollectionsResponse struct {
	SmartCollections []Collection `json:"smart_collections"`
}

type shopResponse struct {
	Shop Shop `json:"shop"`
}

// errorResponse is Shopify's error body. Errors is either a string or an
// object of field → messages, so it is kept raw.
type errorResponse struct {
	Errors json.RawMessage `json:"errors"`
}

// === Flexible JSON scalars ===

// Scalar is a JSON string or number decoded as its textual form.
// Shopify sends ids as numbers; bundled data and some proxies send strings.
type Scalar string

// UnmarshalJSON handles "string", number, and null formats.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}

	// Try string first
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = Scalar(str)
		return nil
	}

	// Number, kept verbatim so large ids keep their precision
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return err
	}
	*s = Scalar(n.String())
	return nil
}

// String returns the textual form.
func (s Scalar) String() string {
	return string(s)
}

// Tags holds product tags. The Admin API sends a comma-joined string;
// other sources send an array. Both decode to a list of trimmed tags.
type Tags []string

// UnmarshalJSON handles "a, b" and ["a", "b"] formats.
func (t *Tags) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = SplitTags(s)
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	*t = arr
	return nil
}

// SplitTags splits a comma-joined tag string, trimming each piece.
// An empty string yields no tags.
func SplitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

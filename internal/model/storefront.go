// Package model defines the client-facing storefront types and shared errors.
// These shapes are what the mobile and web clients consume; upstream
// platform types live with their adapters.
package model

import (
	"encoding/json"
	"errors"
)

// === Catalog ===

// Amount wraps a decimal money string as {"amount": "..."}.
type Amount struct {
	Amount string `json:"amount"`
}

// Image is a product image reference.
type Image struct {
	URL string `json:"url"`
}

// PriceRange carries the min/max variant prices of a product.
type PriceRange struct {
	MinVariantPrice Amount `json:"minVariantPrice"`
	MaxVariantPrice Amount `json:"maxVariantPrice"`
}

// CompareAtPriceRange carries the pre-discount price, when one exists.
type CompareAtPriceRange struct {
	MinVariantPrice Amount `json:"minVariantPrice"`
}

// Variant is a purchasable option of a Product.
type Variant struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Price             Amount            `json:"price"`
	CompareAtPrice    *Amount           `json:"compareAtPrice"`
	AvailableForSale  bool              `json:"availableForSale"`
	QuantityAvailable int               `json:"quantityAvailable"`
	SKU               string            `json:"sku"`
	SelectedOptions   map[string]string `json:"selectedOptions"`
}

// Product is the normalized catalog product.
type Product struct {
	ID                  string               `json:"id"`
	Title               string               `json:"title"`
	Handle              string               `json:"handle"`
	Description         string               `json:"description"`
	Images              []Image              `json:"images"`
	PriceRange          PriceRange           `json:"priceRange"`
	CompareAtPriceRange *CompareAtPriceRange `json:"compareAtPriceRange"`
	Variants            []Variant            `json:"variants"`
	AvailableForSale    bool                 `json:"availableForSale"`
	Tags                []string             `json:"tags"`
	Vendor              string               `json:"vendor"`
}

// Collection is the normalized product collection.
type Collection struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Handle        string  `json:"handle"`
	Description   string  `json:"description"`
	Image         *string `json:"image"`
	ProductsCount int     `json:"productsCount"`
}

// Shop is the storefront summary returned by /shop.
type Shop struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	PrimaryDomain string `json:"primaryDomain"`
	CurrencyCode  string `json:"currencyCode"`
}

// === Lenses ===

// LensCategory classifies a lens product. Values are matched in the order
// declared; the first match wins.
type LensCategory string

const (
	LensAntiGlare LensCategory = "antiglare"
	LensBlueBlock LensCategory = "blueblock"
	LensColour    LensCategory = "colour"
	LensGeneral   LensCategory = "general"
)

// Lens is a lens product flattened for the lens picker.
type Lens struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Price       float64      `json:"price"`
	Description string       `json:"description"`
	Features    []string     `json:"features"`
	Category    LensCategory `json:"category"`
	VariantID   string       `json:"variantId"`
	ImageURL    *string      `json:"imageUrl"`
}

// LensOptions groups lenses by category. AllLenses holds every lens,
// including general ones that appear in no other group.
type LensOptions struct {
	AntiGlareLenses []Lens `json:"antiGlareLenses"`
	BlueBlockLenses []Lens `json:"blueBlockLenses"`
	ColourLenses    []Lens `json:"colourLenses"`
	AllLenses       []Lens `json:"allLenses"`
}

// NewLensOptions returns LensOptions with every group non-nil.
func NewLensOptions() LensOptions {
	return LensOptions{
		AntiGlareLenses: []Lens{},
		BlueBlockLenses: []Lens{},
		ColourLenses:    []Lens{},
		AllLenses:       []Lens{},
	}
}

// === Cart ===

// LineItem is a single cart entry.
type LineItem struct {
	ID         string         `json:"id"`
	VariantID  string         `json:"variantId"`
	Quantity   int            `json:"quantity"`
	Properties map[string]any `json:"properties"`
}

// Cart is a server-side shopping cart keyed by a client-held id.
// An empty ID marshals as null, matching the response for unknown carts.
type Cart struct {
	ID    string     `json:"id"`
	Items []LineItem `json:"items"`
}

// NewCart returns an empty cart with the given id.
func NewCart(id string) *Cart {
	return &Cart{ID: id, Items: []LineItem{}}
}

// MarshalJSON emits null for an empty id and [] for no items.
func (c Cart) MarshalJSON() ([]byte, error) {
	var id *string
	if c.ID != "" {
		id = &c.ID
	}
	items := c.Items
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(struct {
		ID    *string    `json:"id"`
		Items []LineItem `json:"items"`
	}{ID: id, Items: items})
}

// ItemInput is a requested addition to a cart.
// Quantity is a pointer so a missing value can be told apart from zero.
type ItemInput struct {
	VariantID  string         `json:"variantId"`
	Quantity   *int           `json:"quantity"`
	Properties map[string]any `json:"properties,omitempty"`
}

// UnmarshalJSON accepts variantId as a string or a number; Shopify variant
// ids are numeric and clients send either form. Numbers keep their digits.
func (in *ItemInput) UnmarshalJSON(data []byte) error {
	type plain ItemInput
	var raw struct {
		plain
		VariantID json.RawMessage `json:"variantId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*in = ItemInput(raw.plain)
	in.VariantID = ""

	if len(raw.VariantID) == 0 || string(raw.VariantID) == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(raw.VariantID, &str); err == nil {
		in.VariantID = str
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(raw.VariantID, &num); err != nil {
		return errors.New("variantId must be a string or number")
	}
	in.VariantID = num.String()
	return nil
}

// === Checkout ===

// CheckoutSession is the synthetic reference returned by the standard checkout.
type CheckoutSession struct {
	CheckoutURL string `json:"checkoutUrl"`
	CheckoutID  string `json:"checkoutId"`
}

// GatewayOrder is the synthetic reference returned by the payment-gateway checkout.
type GatewayOrder struct {
	CheckoutURL string `json:"checkoutUrl"`
	OrderID     string `json:"orderId"`
}

// CustomerInfo is passed through to the payment gateway untouched.
type CustomerInfo map[string]any

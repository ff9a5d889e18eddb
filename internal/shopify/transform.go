package shopify

import (
	"voyage-bff/internal/model"
)

// TransformProduct converts a Shopify product to the storefront product shape.
// The price range is taken from the first variant only; availability follows
// the first variant's inventory, falling back to the product-level flag when
// there are no variants.
func TransformProduct(p Product) model.Product {
	var first *Variant
	if len(p.Variants) > 0 {
		first = &p.Variants[0]
	}

	price := "0"
	var compareAt *model.CompareAtPriceRange
	available := p.AvailableForSale != nil && *p.AvailableForSale
	if first != nil {
		price = first.Price.String()
		if first.CompareAtPrice != "" {
			compareAt = &model.CompareAtPriceRange{
				MinVariantPrice: model.Amount{Amount: first.CompareAtPrice.String()},
			}
		}
		available = first.InventoryQuantity > 0
	}

	images := make([]model.Image, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, model.Image{URL: img.Src})
	}

	variants := make([]model.Variant, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, transformVariant(v))
	}

	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}

	return model.Product{
		ID:          p.ID.String(),
		Title:       p.Title,
		Handle:      p.Handle,
		Description: p.BodyHTML,
		Images:      images,
		PriceRange: model.PriceRange{
			MinVariantPrice: model.Amount{Amount: price},
			MaxVariantPrice: model.Amount{Amount: price},
		},
		CompareAtPriceRange: compareAt,
		Variants:            variants,
		AvailableForSale:    available,
		Tags:                tags,
		Vendor:              p.Vendor,
	}
}

func transformVariant(v Variant) model.Variant {
	var compareAt *model.Amount
	if v.CompareAtPrice != "" {
		compareAt = &model.Amount{Amount: v.CompareAtPrice.String()}
	}

	qty := v.InventoryQuantity
	if qty < 0 {
		qty = 0
	}

	return model.Variant{
		ID:                v.ID.String(),
		Title:             v.Title,
		Price:             model.Amount{Amount: v.Price.String()},
		CompareAtPrice:    compareAt,
		AvailableForSale:  v.InventoryQuantity > 0,
		QuantityAvailable: qty,
		SKU:               v.SKU,
		SelectedOptions:   map[string]string{},
	}
}

// TransformProducts converts a slice, never returning nil.
func TransformProducts(products []Product) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		out = append(out, TransformProduct(p))
	}
	return out
}

// TransformCollection converts a Shopify collection to the storefront shape.
func TransformCollection(c Collection) model.Collection {
	var image *string
	if c.Image != nil && c.Image.Src != "" {
		src := c.Image.Src
		image = &src
	}

	return model.Collection{
		ID:            c.ID.String(),
		Title:         c.Title,
		Handle:        c.Handle,
		Description:   c.BodyHTML,
		Image:         image,
		ProductsCount: c.ProductsCount,
	}
}

package shopify

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"voyage-bff/internal/model"
)

// Feature segments must be strictly longer than 5 and shorter than 100 characters.
const (
	maxFeatures      = 5
	minFeatureLength = 5
	maxFeatureLength = 100
)

// categoryRule matches a lens category against lowercased product text.
type categoryRule struct {
	category model.LensCategory
	match    func(text string) bool
}

// categoryRules are evaluated in order; the first match wins.
var categoryRules = []categoryRule{
	{model.LensAntiGlare, containsAny("anti-glare", "antiglare", "anti glare", "ar coating")},
	{model.LensBlueBlock, func(text string) bool {
		return (strings.Contains(text, "blue") && strings.Contains(text, "block")) ||
			containsAny("blueblock", "blue cut", "blue light", "blu ray")(text)
	}},
	{model.LensColour, containsAny("color", "colour", "tint", "mirror", "gradient", "polarized")},
}

func containsAny(needles ...string) func(string) bool {
	return func(text string) bool {
		for _, n := range needles {
			if strings.Contains(text, n) {
				return true
			}
		}
		return false
	}
}

// Categorize classifies a lens product from its title, tags and description.
func Categorize(p Product) model.LensCategory {
	text := strings.ToLower(p.Title + " " + strings.Join(p.Tags, ", ") + " " + p.BodyHTML)
	for _, rule := range categoryRules {
		if rule.match(text) {
			return rule.category
		}
	}
	return model.LensGeneral
}

// TransformLens flattens a lens product for the lens picker.
func TransformLens(p Product) model.Lens {
	lens := model.Lens{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.BodyHTML,
		Features:    ExtractFeatures(p.BodyHTML),
		Category:    Categorize(p),
		VariantID:   p.ID.String(),
	}

	if len(p.Variants) > 0 {
		v := p.Variants[0]
		lens.Price = model.ParsePrice(v.Price.String())
		lens.VariantID = v.ID.String()
	}

	if p.Image != nil && p.Image.Src != "" {
		src := p.Image.Src
		lens.ImageURL = &src
	}

	return lens
}

// ExtractFeatures pulls short bullet-style phrases out of an HTML description.
// Text is split on bullets, newlines and hyphens; segments between 6 and 99
// characters are kept in order, at most five.
func ExtractFeatures(description string) []string {
	features := []string{}
	if description == "" {
		return features
	}

	segments := strings.FieldsFunc(stripTags(description), func(r rune) bool {
		return r == '•' || r == '\n' || r == '-'
	})

	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		n := utf8.RuneCountInString(seg)
		if n <= minFeatureLength || n >= maxFeatureLength {
			continue
		}
		features = append(features, seg)
		if len(features) == maxFeatures {
			break
		}
	}
	return features
}

// stripTags returns the text content of an HTML fragment.
// Malformed markup never leaks tag fragments into the output.
func stripTags(fragment string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way the text so far is complete
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// GroupLenses transforms lens products and groups them by category.
// Every lens is placed in AllLenses; general lenses appear only there.
func GroupLenses(products []Product) model.LensOptions {
	opts := model.NewLensOptions()
	for _, p := range products {
		lens := TransformLens(p)
		opts.AllLenses = append(opts.AllLenses, lens)

		switch lens.Category {
		case model.LensAntiGlare:
			opts.AntiGlareLenses = append(opts.AntiGlareLenses, lens)
		case model.LensBlueBlock:
			opts.BlueBlockLenses = append(opts.BlueBlockLenses, lens)
		case model.LensColour:
			opts.ColourLenses = append(opts.ColourLenses, lens)
		}
	}
	return opts
}

package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice converts a decimal price string to a float for client display.
// Shopify returns all money fields as strings in major units.
// Examples: "99.00" → 99, "1234.56" → 1234.56, "" → 0, "abc" → 0
func ParsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

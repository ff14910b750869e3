// Package product defines the normalized product record emitted by the
// ingestion pipeline and the read-side helpers a storefront grid needs.
package product

import "strings"

// Product is one normalized catalog entry. It is built once per valid
// data row during a pipeline run and never mutated; a new load cycle
// replaces the whole list.
type Product struct {
	// ID is unique within one pipeline run. Synthesized when the
	// catalog has no id column; never blank.
	ID string `json:"id"`

	// Name is mandatory; rows without a resolvable name are rejected
	// or given a synthesized name depending on the configured policy.
	Name string `json:"name"`

	// Price is non-negative; 0 when the column is missing or
	// unparsable.
	Price float64 `json:"price"`

	Description string `json:"description"`

	// Image and Image2 are resolved URLs or local asset paths; never
	// empty, defaulting to the placeholder sentinel.
	Image  string `json:"image"`
	Image2 string `json:"image2"`

	Category string `json:"category"`
	Currency string `json:"currency"`

	// Stock is nil when the catalog does not say -- "unknown or
	// unlimited", which is distinct from an explicit 0 (out of stock).
	Stock *int `json:"stock,omitempty"`

	Featured bool `json:"featured,omitempty"`
}

// Valid reports whether a candidate satisfies the required-field rules:
// a non-blank name and a finite, non-negative price. Everything else
// passes through regardless of content.
func Valid(p Product) bool {
	if strings.TrimSpace(p.Name) == "" {
		return false
	}
	if p.Price < 0 || p.Price != p.Price || p.Price > maxFinite || p.Price < -maxFinite {
		return false
	}
	return true
}

// maxFinite guards against Inf sneaking through arithmetic upstream.
const maxFinite = 1.7976931348623157e308

// InStock reports whether the product can be offered: stock is either
// unknown (nil, treated as unlimited) or positive.
func (p Product) InStock() bool {
	return p.Stock == nil || *p.Stock > 0
}

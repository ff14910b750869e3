package product

// catalog.go provides the read-side operations the storefront layer
// performs on a loaded product list: text search, category filtering and
// deterministic sorting. All functions return fresh slices and leave the
// input untouched, matching the batch-replace lifecycle of the list.

import (
	"sort"
	"strings"
)

// SortKey selects a product list ordering.
type SortKey string

const (
	// SortRelevance keeps the source row order.
	SortRelevance SortKey = "relevance"
	// SortLatest orders newest first, by id descending.
	SortLatest SortKey = "latest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
)

// AllCategories is the filter value that matches every product.
const AllCategories = "All"

// Search returns the products whose name, description or category
// contains the query, case-insensitively. A blank query matches
// everything.
func Search(products []Product, query string) []Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return append([]Product(nil), products...)
	}

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Description), query) ||
			strings.Contains(strings.ToLower(p.Category), query) {
			out = append(out, p)
		}
	}
	return out
}

// ByCategory returns the products in the given category. AllCategories
// (or blank) passes everything through.
func ByCategory(products []Product, category string) []Product {
	if category == "" || category == AllCategories {
		return append([]Product(nil), products...)
	}

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// Featured returns the products flagged as featured, in source order.
func Featured(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// SortBy returns a copy of the list in the requested order. Sorts are
// stable, so equal keys keep their source row order and repeated runs
// on identical input produce identical output.
func SortBy(products []Product, key SortKey) []Product {
	out := append([]Product(nil), products...)

	switch key {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortLatest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	case SortRelevance:
		// Source order.
	}

	return out
}

// Categories returns the distinct category labels in first-seen order.
func Categories(products []Product) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}

// PriceRange summarizes the prices of a product list. Zero-priced
// products are excluded from min/avg the way a storefront displays
// "price on request" items.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// Stats describes a loaded catalog for diagnostics and the results
// counter.
type Stats struct {
	Total      int        `json:"total"`
	WithImages int        `json:"withImages"`
	Categories []string   `json:"categories"`
	Prices     PriceRange `json:"priceRange"`
}

// Summarize computes catalog statistics. Products whose image is still
// the given placeholder sentinel do not count as having an image.
func Summarize(products []Product, placeholder string) Stats {
	s := Stats{
		Total:      len(products),
		Categories: Categories(products),
	}

	var sum float64
	var priced int
	for _, p := range products {
		if p.Image != "" && p.Image != placeholder {
			s.WithImages++
		}
		if p.Price <= 0 {
			continue
		}
		if priced == 0 || p.Price < s.Prices.Min {
			s.Prices.Min = p.Price
		}
		if p.Price > s.Prices.Max {
			s.Prices.Max = p.Price
		}
		sum += p.Price
		priced++
	}
	if priced > 0 {
		s.Prices.Avg = sum / float64(priced)
	}

	return s
}

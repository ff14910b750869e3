package product

import (
	"reflect"
	"testing"
)

func sample() []Product {
	return []Product{
		{ID: "1", Name: "Remera Premium", Price: 1200, Category: "Ropa", Image: "images/remera.jpg"},
		{ID: "2", Name: "Zapatilla Urbana", Price: 4500, Category: "Calzado", Image: "images/placeholder.jpg", Featured: true},
		{ID: "3", Name: "Gorra Estampada", Price: 800, Category: "Accesorios", Description: "de verano", Image: "images/gorra.jpg"},
		{ID: "4", Name: "Consulta", Price: 0, Category: "Ropa", Image: "images/placeholder.jpg"},
	}
}

func names(ps []Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"matches name", "remera", []string{"Remera Premium"}},
		{"matches description", "verano", []string{"Gorra Estampada"}},
		{"matches category", "calzado", []string{"Zapatilla Urbana"}},
		{"case insensitive", "REMERA", []string{"Remera Premium"}},
		{"blank query matches all", "  ", []string{"Remera Premium", "Zapatilla Urbana", "Gorra Estampada", "Consulta"}},
		{"no match", "bicicleta", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Search(sample(), tt.query))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestByCategory(t *testing.T) {
	if got := names(ByCategory(sample(), "Ropa")); !reflect.DeepEqual(got, []string{"Remera Premium", "Consulta"}) {
		t.Errorf("ByCategory(Ropa) = %v", got)
	}
	if got := ByCategory(sample(), AllCategories); len(got) != 4 {
		t.Errorf("ByCategory(All) returned %d products, want 4", len(got))
	}
}

func TestFeatured(t *testing.T) {
	if got := names(Featured(sample())); !reflect.DeepEqual(got, []string{"Zapatilla Urbana"}) {
		t.Errorf("Featured = %v", got)
	}
}

func TestSortBy(t *testing.T) {
	tests := []struct {
		name string
		key  SortKey
		want []string
	}{
		{"relevance keeps source order", SortRelevance, []string{"Remera Premium", "Zapatilla Urbana", "Gorra Estampada", "Consulta"}},
		{"price ascending", SortPriceAsc, []string{"Consulta", "Gorra Estampada", "Remera Premium", "Zapatilla Urbana"}},
		{"price descending", SortPriceDesc, []string{"Zapatilla Urbana", "Remera Premium", "Gorra Estampada", "Consulta"}},
		{"latest by id descending", SortLatest, []string{"Consulta", "Gorra Estampada", "Zapatilla Urbana", "Remera Premium"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sample()
			got := names(SortBy(in, tt.key))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SortBy(%s) = %v, want %v", tt.key, got, tt.want)
			}
			// Input must be untouched.
			if in[0].Name != "Remera Premium" {
				t.Error("SortBy mutated its input")
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample(), "images/placeholder.jpg")

	if s.Total != 4 {
		t.Errorf("Total = %d, want 4", s.Total)
	}
	if s.WithImages != 2 {
		t.Errorf("WithImages = %d, want 2", s.WithImages)
	}
	if !reflect.DeepEqual(s.Categories, []string{"Ropa", "Calzado", "Accesorios"}) {
		t.Errorf("Categories = %v", s.Categories)
	}
	// Zero-priced product excluded from the range.
	if s.Prices.Min != 800 || s.Prices.Max != 4500 {
		t.Errorf("Prices = %+v, want min 800 max 4500", s.Prices)
	}
	wantAvg := (1200.0 + 4500 + 800) / 3
	if s.Prices.Avg != wantAvg {
		t.Errorf("Avg = %v, want %v", s.Prices.Avg, wantAvg)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, "images/placeholder.jpg")
	if s.Total != 0 || s.WithImages != 0 || s.Prices.Max != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero stats", s)
	}
}

package pipeline

import (
	"fmt"
	"strings"

	"github.com/estore-app/sheetfeed/internal/config"
	"github.com/estore-app/sheetfeed/internal/csv"
	"github.com/estore-app/sheetfeed/internal/header"
	"github.com/estore-app/sheetfeed/internal/normalize"
	"github.com/estore-app/sheetfeed/internal/product"
)

// Mapper turns one raw data row into a Product, applying the
// configured defaults and fallback policies. Missing cells never fail
// a row; only a blank name under the reject policy or a product that
// fails validation does.
type Mapper struct {
	defaults      config.DefaultsConfig
	norm          *normalize.Normalizer
	nameFallback  string
	guessFromName bool
}

// NewMapper builds a mapper from the run configuration.
func NewMapper(cfg *config.Config) *Mapper {
	return &Mapper{
		defaults: cfg.Defaults,
		norm: normalize.New(normalize.Config{
			Placeholder:         cfg.Image.Placeholder,
			AssetDir:            cfg.Image.AssetDir,
			ProxyTemplate:       cfg.Image.ProxyTemplate,
			ExternalImage2Reuse: cfg.Image.ExternalImage2Reuse,
		}),
		nameFallback:  cfg.Mapping.NameFallback,
		guessFromName: cfg.Image.GuessFromName,
	}
}

// MapRow maps the data row at 1-based index rowIndex using the
// resolved column map. ids synthesizes identifiers for rows without an
// id cell.
func (m *Mapper) MapRow(cols header.Map, row []string, rowIndex int, ids *normalize.IDSequence) (product.Product, error) {
	cell := func(f header.Field) string {
		idx, ok := cols[f]
		if !ok || idx >= len(row) {
			return ""
		}
		return csv.CleanCell(row[idx])
	}

	name := cell(header.FieldName)
	if name == "" {
		if m.nameFallback == config.NameFallbackReject {
			return product.Product{}, &ValidationError{Row: rowIndex, Field: "name", Reason: "blank name"}
		}
		name = fmt.Sprintf("Product %d", rowIndex)
	}

	id := cell(header.FieldID)
	if id == "" {
		id = ids.Next(rowIndex)
	}

	category := cell(header.FieldCategory)
	if category == "" {
		category = m.defaults.Category
	}
	currency := cell(header.FieldCurrency)
	if currency == "" {
		currency = m.defaults.Currency
	}

	var image string
	switch {
	case cell(header.FieldImage) != "":
		image = m.norm.ImageURL(cell(header.FieldImage))
	case !cols.Has(header.FieldImage) && m.guessFromName:
		image = m.norm.GuessedImage(name)
	default:
		image = m.norm.Placeholder()
	}

	image2 := cell(header.FieldImage2)
	if image2 != "" {
		image2 = m.norm.ImageURL(image2)
	} else {
		image2 = m.norm.SecondaryImage(image)
	}

	var stock *int
	if cols.Has(header.FieldStock) {
		stock = m.norm.Stock(cell(header.FieldStock))
	}

	p := product.Product{
		ID:          id,
		Name:        name,
		Price:       m.norm.Price(cell(header.FieldPrice)),
		Description: cell(header.FieldDescription),
		Image:       image,
		Image2:      image2,
		Category:    category,
		Currency:    currency,
		Stock:       stock,
		Featured:    parseFeatured(cell(header.FieldFeatured)),
	}

	if !product.Valid(p) {
		return product.Product{}, &ValidationError{Row: rowIndex, Reason: "product failed validation"}
	}
	return p, nil
}

// parseFeatured accepts the truthy spellings that show up in real
// sheets. Anything else, including blank, is false.
func parseFeatured(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "si", "sí", "x":
		return true
	}
	return false
}

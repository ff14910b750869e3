// Package header maps free-form spreadsheet column headings onto the
// fixed set of product fields.
//
// Real catalogs arrive with headers in Spanish, English, mixed case and
// with accents ("Descripción", "PRECIO", "Imagen URL"). Matching is
// case-insensitive, diacritic-insensitive and whitespace-insensitive,
// against a static alias table per canonical field.
package header

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field is a canonical product attribute name that header aliases
// resolve to.
type Field string

const (
	FieldID          Field = "id"
	FieldName        Field = "name"
	FieldPrice       Field = "price"
	FieldImage       Field = "image"
	FieldImage2      Field = "image2"
	FieldDescription Field = "description"
	FieldCategory    Field = "category"
	FieldCurrency    Field = "currency"
	FieldStock       Field = "stock"
	FieldFeatured    Field = "featured"
)

// claimOrder is the resolution priority when one header column matches
// the alias sets of two fields. Earlier fields claim the column and
// later fields skip it.
var claimOrder = []Field{
	FieldID,
	FieldName,
	FieldPrice,
	FieldImage,
	FieldImage2,
	FieldDescription,
	FieldCategory,
	FieldCurrency,
	FieldStock,
	FieldFeatured,
}

// aliases maps each canonical field to the header spellings observed
// across catalog spreadsheets. All entries are pre-normalized (lowercase,
// no accents, no spaces).
var aliases = map[Field][]string{
	FieldID:          {"id", "codigo", "sku"},
	FieldName:        {"nombre", "name", "producto", "productos", "product", "title", "titulo"},
	FieldPrice:       {"precio", "price", "costo", "cost", "valor", "value"},
	FieldImage:       {"imagen", "image", "foto", "photo", "url", "link", "imagenurl", "imageurl", "img"},
	FieldImage2:      {"imagen2", "image2", "foto2", "photo2", "url2", "link2", "imagen_alt", "image_alt"},
	FieldDescription: {"descripcion", "description", "desc", "detalle", "detail"},
	FieldCategory:    {"categoria", "category", "tipo", "type", "clase", "class", "cat"},
	FieldCurrency:    {"moneda", "currency", "divisa"},
	FieldStock:       {"stock", "cantidad", "inventory"},
	FieldFeatured:    {"featured", "destacado"},
}

// Map assigns a column index to each canonical field found in the header
// row. A field with no matching column is simply absent; consumers treat
// that as "use the default".
type Map map[Field]int

// Has reports whether the field resolved to a column.
func (m Map) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// stripMarks removes combining marks after NFD decomposition, folding
// accented Latin letters to their base letter.
var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize canonicalizes one header token: lowercase, diacritics folded,
// all whitespace removed.
func Normalize(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if folded, _, err := transform.String(stripMarks, h); err == nil {
		h = folded
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, h)
}

// Resolve builds the field-to-column map for one header row.
//
// Per field, the leftmost column whose normalized text matches one of the
// field's aliases wins. A column already claimed by a higher-priority
// field is skipped, so two fields never share an index.
func Resolve(headerRow []string) Map {
	normalized := make([]string, len(headerRow))
	for i, h := range headerRow {
		normalized[i] = Normalize(h)
	}

	m := make(Map, len(claimOrder))
	claimed := make(map[int]bool, len(headerRow))

	for _, field := range claimOrder {
		idx := findColumn(normalized, aliases[field], claimed)
		if idx < 0 {
			continue
		}
		m[field] = idx
		claimed[idx] = true
	}

	return m
}

// findColumn returns the leftmost unclaimed column matching any alias,
// or -1.
func findColumn(normalized []string, names []string, claimed map[int]bool) int {
	for i, col := range normalized {
		if col == "" || claimed[i] {
			continue
		}
		for _, name := range names {
			if col == name {
				return i
			}
		}
	}
	return -1
}

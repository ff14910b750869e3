// Package normalize converts raw catalog cell values into product field
// values.
//
// These functions handle the messy reality of seller-maintained
// spreadsheets: currency symbols and locale-dependent separators in
// prices, Google Drive share links and GitHub web URLs pasted into image
// columns, bare filenames where URLs were expected. A Normalizer is
// constructed with the catalog configuration and holds no other state.
package normalize

import (
	"fmt"
	"math"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Default sentinels, overridable through Config.
const (
	DefaultPlaceholder   = "images/placeholder.jpg"
	DefaultAssetDir      = "images/"
	DefaultProxyTemplate = "https://images.weserv.nl/?url=drive.google.com/uc%3Fexport%3Dview%26id%3D{id}"
)

// driveIDPatterns extract a Drive file id from the share-link formats
// sellers paste, tried in order.
var driveIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/open\?id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`),
}

// bareDriveID matches a raw Drive file identifier pasted without any URL
// around it. Real ids are well over 25 characters.
var bareDriveID = regexp.MustCompile(`^[a-zA-Z0-9_-]{25,}$`)

var priceStrip = regexp.MustCompile(`[^0-9.,\-]`)

// Config holds the catalog-level settings the normalizers depend on.
type Config struct {
	// Placeholder is the sentinel image path used when a value cannot
	// be resolved.
	Placeholder string

	// AssetDir is the local image directory prefixed onto bare
	// filenames, with trailing slash.
	AssetDir string

	// ProxyTemplate is the image-proxy URL for Drive-hosted images.
	// The literal "{id}" is replaced with the extracted file id.
	ProxyTemplate string

	// ExternalImage2Reuse controls secondary-image derivation for
	// external primaries: reuse the URL verbatim rather than mutating
	// an opaque path.
	ExternalImage2Reuse bool
}

func (c Config) withDefaults() Config {
	if c.Placeholder == "" {
		c.Placeholder = DefaultPlaceholder
	}
	if c.AssetDir == "" {
		c.AssetDir = DefaultAssetDir
	}
	if !strings.HasSuffix(c.AssetDir, "/") {
		c.AssetDir += "/"
	}
	if c.ProxyTemplate == "" {
		c.ProxyTemplate = DefaultProxyTemplate
	}
	return c
}

// Normalizer converts raw cell values into product field values.
type Normalizer struct {
	cfg Config
}

// New returns a Normalizer for the given configuration, applying
// defaults for unset values.
func New(cfg Config) *Normalizer {
	return &Normalizer{cfg: cfg.withDefaults()}
}

// Placeholder returns the configured placeholder sentinel.
func (n *Normalizer) Placeholder() string {
	return n.cfg.Placeholder
}

// Price parses a price cell into a non-negative amount.
//
// Everything except digits, separators and a sign is stripped first, so
// "$ 1,234.50" and "1.234,50 ARS" both work. When both separators are
// present, whichever occurs last is the decimal separator; a single
// comma alone is a decimal comma. Unparsable or negative values collapse
// to 0.
func (n *Normalizer) Price(s string) float64 {
	s = priceStrip.ReplaceAllString(strings.TrimSpace(s), "")
	if s == "" {
		return 0
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		// Comma-decimal locale: periods are thousands separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastComma >= 0 && lastDot < 0 && strings.Count(s, ",") == 1:
		s = strings.Replace(s, ",", ".", 1)
	}
	// Any commas still present are thousands separators.
	s = strings.ReplaceAll(s, ",", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// Stock parses a stock cell into a count. Unparsable or negative values
// mean "unknown", returned as nil -- distinct from an explicit 0, which
// is out of stock.
func (n *Normalizer) Stock(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// ImageURL resolves an image cell to a usable URL or local path.
//
// Resolution order: Drive share links and bare Drive file ids rewrite to
// the image proxy; GitHub blob web URLs rewrite to the raw-content host;
// any other absolute http/https URL passes through; everything else is
// treated as a filename under the asset directory. Values that resolve
// to nothing yield the placeholder sentinel.
func (n *Normalizer) ImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return n.cfg.Placeholder
	}

	if id, ok := n.driveFileID(raw); ok {
		return strings.ReplaceAll(n.cfg.ProxyTemplate, "{id}", id)
	}

	if rewritten, ok := rewriteGitHubBlob(raw); ok {
		return rewritten
	}

	if u, err := url.Parse(raw); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return raw
	}

	// Anything that still looks like a URL but did not parse as an
	// absolute http(s) one is unusable.
	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "//") {
		return n.cfg.Placeholder
	}

	return n.prefixAsset(raw)
}

// SecondaryImage derives the second product image when the catalog has
// no explicit value. Local primaries get an "a" suffix before the
// extension (images/shoe.jpg -> images/shoea.jpg); external URLs are
// opaque, so the primary is reused verbatim when configured, otherwise
// the placeholder stands in.
func (n *Normalizer) SecondaryImage(primary string) string {
	if primary == "" || primary == n.cfg.Placeholder {
		return n.cfg.Placeholder
	}

	if isExternal(primary) {
		if n.cfg.ExternalImage2Reuse {
			return primary
		}
		return n.cfg.Placeholder
	}

	ext := path.Ext(primary)
	if ext == "" {
		return n.cfg.Placeholder
	}
	return strings.TrimSuffix(primary, ext) + "a" + ext
}

// GuessedImage builds the name-derived local image path used when a row
// has no usable image value and the guess policy is enabled.
func (n *Normalizer) GuessedImage(name string) string {
	slug := Slugify(name)
	if slug == "" {
		return n.cfg.Placeholder
	}
	return n.cfg.AssetDir + slug + ".jpg"
}

func (n *Normalizer) prefixAsset(p string) string {
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, "./") || strings.HasPrefix(p, n.cfg.AssetDir) {
		return p
	}
	return n.cfg.AssetDir + p
}

// driveFileID extracts a Google Drive file id from a share link or a
// bare pasted id.
func (n *Normalizer) driveFileID(raw string) (string, bool) {
	if bareDriveID.MatchString(raw) {
		return raw, true
	}
	if !strings.Contains(raw, "drive.google.com") {
		return "", false
	}
	for _, p := range driveIDPatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// rewriteGitHubBlob turns a GitHub blob web URL into its raw-content
// equivalent: host swaps to raw.githubusercontent.com and the "/blob"
// path segment is dropped.
func rewriteGitHubBlob(raw string) (string, bool) {
	if !strings.Contains(raw, "github.com/") || strings.Contains(raw, "raw.githubusercontent.com") {
		return "", false
	}
	if !strings.Contains(raw, "/blob/") {
		return "", false
	}
	out := strings.Replace(raw, "github.com", "raw.githubusercontent.com", 1)
	out = strings.Replace(out, "/blob/", "/", 1)
	return out, true
}

// isExternal reports whether an image value is a remote URL rather than
// a local asset path.
func isExternal(s string) bool {
	return strings.Contains(s, "://") || strings.HasPrefix(s, "//")
}

// Slugify lowercases a product name and collapses whitespace runs into
// hyphens, producing the filename stem used for name-derived images.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), "-")
}

// IDSequence synthesizes row identifiers that are unique within one
// pipeline run: a per-batch token plus the row ordinal. Catalogs with a
// real id column never touch this.
type IDSequence struct {
	batch string
}

// NewIDSequence starts a sequence with a fresh batch token.
func NewIDSequence() *IDSequence {
	return &IDSequence{batch: uuid.NewString()[:8]}
}

// Next returns the synthesized id for a row ordinal.
func (s *IDSequence) Next(rowIndex int) string {
	return fmt.Sprintf("%s-%d", s.batch, rowIndex)
}

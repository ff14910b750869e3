package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/estore-app/sheetfeed/internal/config"
	"github.com/estore-app/sheetfeed/internal/header"
	"github.com/estore-app/sheetfeed/internal/normalize"
	"github.com/estore-app/sheetfeed/internal/source"
)

func testConfig() *config.Config {
	return &config.Config{
		Defaults: config.DefaultsConfig{Currency: "$", Category: "Sin categoría"},
		Image: config.ImageConfig{
			Placeholder:         "images/placeholder.jpg",
			AssetDir:            "images/",
			ProxyTemplate:       normalize.DefaultProxyTemplate,
			ExternalImage2Reuse: true,
		},
		Fetch:   config.FetchConfig{Timeout: 5 * time.Second, MaxRetries: 1},
		Mapping: config.MappingConfig{TrimFields: true, NameFallback: config.NameFallbackSynthesize},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
}

// ----------------------------------------------------------------------------
// MapRow Tests
// ----------------------------------------------------------------------------

func TestMapRowFullRow(t *testing.T) {
	m := NewMapper(testConfig())
	cols := header.Map{
		header.FieldID:       0,
		header.FieldName:     1,
		header.FieldPrice:    2,
		header.FieldCategory: 3,
		header.FieldImage:    4,
		header.FieldStock:    5,
		header.FieldFeatured: 6,
	}
	row := []string{"sku-1", "Zapatilla Roja", "$1,500.00", "Calzado", "zapatilla.jpg", "12", "sí"}

	p, err := m.MapRow(cols, row, 1, normalize.NewIDSequence())
	if err != nil {
		t.Fatalf("MapRow() error = %v", err)
	}
	if p.ID != "sku-1" {
		t.Errorf("ID = %q, want %q", p.ID, "sku-1")
	}
	if p.Name != "Zapatilla Roja" {
		t.Errorf("Name = %q, want %q", p.Name, "Zapatilla Roja")
	}
	if p.Price != 1500 {
		t.Errorf("Price = %v, want 1500", p.Price)
	}
	if p.Image != "images/zapatilla.jpg" {
		t.Errorf("Image = %q, want %q", p.Image, "images/zapatilla.jpg")
	}
	if p.Image2 != "images/zapatillaa.jpg" {
		t.Errorf("Image2 = %q, want derived secondary image", p.Image2)
	}
	if p.Stock == nil || *p.Stock != 12 {
		t.Errorf("Stock = %v, want 12", p.Stock)
	}
	if !p.Featured {
		t.Error("Featured = false, want true for sí")
	}
	if p.Currency != "$" {
		t.Errorf("Currency = %q, want default", p.Currency)
	}
}

func TestMapRowSynthesizesName(t *testing.T) {
	m := NewMapper(testConfig())
	cols := header.Map{header.FieldName: 0, header.FieldPrice: 1}

	p, err := m.MapRow(cols, []string{"", "2000"}, 2, normalize.NewIDSequence())
	if err != nil {
		t.Fatalf("MapRow() error = %v", err)
	}
	if p.Name != "Product 2" {
		t.Errorf("Name = %q, want positional fallback %q", p.Name, "Product 2")
	}
}

func TestMapRowRejectPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.Mapping.NameFallback = config.NameFallbackReject
	m := NewMapper(cfg)
	cols := header.Map{header.FieldName: 0, header.FieldPrice: 1}

	_, err := m.MapRow(cols, []string{"", "2000"}, 2, normalize.NewIDSequence())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("MapRow() error = %v, want *ValidationError", err)
	}
	if ve.Row != 2 || ve.Field != "name" {
		t.Errorf("ValidationError = %+v, want row 2 field name", ve)
	}
}

func TestMapRowShortRow(t *testing.T) {
	// The price column exists in the header but this row ends early.
	m := NewMapper(testConfig())
	cols := header.Map{header.FieldName: 0, header.FieldPrice: 3}

	p, err := m.MapRow(cols, []string{"Gorra"}, 1, normalize.NewIDSequence())
	if err != nil {
		t.Fatalf("MapRow() error = %v", err)
	}
	if p.Price != 0 {
		t.Errorf("Price = %v, want 0 for missing cell", p.Price)
	}
	if p.Category != "Sin categoría" {
		t.Errorf("Category = %q, want default", p.Category)
	}
}

func TestMapRowStockAbsentColumn(t *testing.T) {
	m := NewMapper(testConfig())
	cols := header.Map{header.FieldName: 0}

	p, err := m.MapRow(cols, []string{"Gorra"}, 1, normalize.NewIDSequence())
	if err != nil {
		t.Fatalf("MapRow() error = %v", err)
	}
	if p.Stock != nil {
		t.Errorf("Stock = %v, want nil when no stock column exists", *p.Stock)
	}
}

func TestMapRowGuessFromName(t *testing.T) {
	cfg := testConfig()
	cfg.Image.GuessFromName = true
	m := NewMapper(cfg)
	cols := header.Map{header.FieldName: 0}

	p, err := m.MapRow(cols, []string{"Zapatilla Roja"}, 1, normalize.NewIDSequence())
	if err != nil {
		t.Fatalf("MapRow() error = %v", err)
	}
	if p.Image != "images/zapatilla-roja.jpg" {
		t.Errorf("Image = %q, want name-derived guess", p.Image)
	}
}

func TestMapRowSynthesizedID(t *testing.T) {
	m := NewMapper(testConfig())
	cols := header.Map{header.FieldName: 0}
	ids := normalize.NewIDSequence()

	p1, _ := m.MapRow(cols, []string{"Gorra"}, 1, ids)
	p2, _ := m.MapRow(cols, []string{"Remera"}, 2, ids)
	if p1.ID == "" || p2.ID == "" {
		t.Fatal("synthesized ids must not be blank")
	}
	if p1.ID == p2.ID {
		t.Errorf("ids collide: %q", p1.ID)
	}
}

// ----------------------------------------------------------------------------
// Run Tests
// ----------------------------------------------------------------------------

func serveCSV(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunEndToEnd(t *testing.T) {
	srv := serveCSV(t, "Nombre,Precio,Categoria\nZapatilla Roja,1500,Calzado\n,2000,Ropa\n")

	p := New(testConfig())
	products, report, err := p.Run(context.Background(), source.Descriptor{Kind: source.KindCSVURL, URL: srv.URL})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(products) != 2 {
		t.Fatalf("Run() = %d products, want 2", len(products))
	}
	if products[0].Name != "Zapatilla Roja" || products[0].Price != 1500 || products[0].Category != "Calzado" {
		t.Errorf("first product = %+v", products[0])
	}
	if products[1].Name != "Product 2" {
		t.Errorf("second product Name = %q, want synthesized %q", products[1].Name, "Product 2")
	}
	if products[0].Image != "images/placeholder.jpg" {
		t.Errorf("Image = %q, want placeholder with no image column", products[0].Image)
	}
	if products[0].Currency != "$" {
		t.Errorf("Currency = %q, want default", products[0].Currency)
	}

	if report.TotalRows != 2 || report.Accepted != 2 || !report.Clean() {
		t.Errorf("report = %+v, want 2/2 clean", report)
	}
	if report.RunID == "" {
		t.Error("report.RunID is blank")
	}
}

func TestRunRejectPolicySkipsRows(t *testing.T) {
	srv := serveCSV(t, "Nombre,Precio\nZapatilla,1500\n,2000\n")

	cfg := testConfig()
	cfg.Mapping.NameFallback = config.NameFallbackReject
	products, report, err := New(cfg).Run(context.Background(), source.Descriptor{Kind: source.KindCSVURL, URL: srv.URL})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(products) != 1 {
		t.Fatalf("Run() = %d products, want 1", len(products))
	}
	if report.SkippedCount() != 1 {
		t.Fatalf("SkippedCount() = %d, want 1", report.SkippedCount())
	}
	if sk := report.Skipped[0]; sk.Row != 2 || sk.Field != "name" {
		t.Errorf("skipped = %+v, want row 2 field name", sk)
	}
}

func TestRunSkipsBlankRows(t *testing.T) {
	srv := serveCSV(t, "Nombre,Precio\nZapatilla,1500\n,\n\"\",\"\"\n")

	products, report, err := New(testConfig()).Run(context.Background(), source.Descriptor{Kind: source.KindCSVURL, URL: srv.URL})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(products) != 1 {
		t.Errorf("Run() = %d products, want 1 (blank rows dropped)", len(products))
	}
	if report.TotalRows != 1 {
		t.Errorf("TotalRows = %d, want blank rows uncounted", report.TotalRows)
	}
}

func TestRunNoRecognizedHeader(t *testing.T) {
	srv := serveCSV(t, "Foo,Bar\n1,2\n")

	_, _, err := New(testConfig()).Run(context.Background(), source.Descriptor{Kind: source.KindCSVURL, URL: srv.URL})
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Run() error = %v, want *ParseError", err)
	}
}

func TestRunBadDescriptor(t *testing.T) {
	_, _, err := New(testConfig()).Run(context.Background(), source.Descriptor{})
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("Run() error = %v, want *ConfigurationError", err)
	}
}

func TestRunFetchErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Fetch.ProxyTemplate = "" // no fallback
	_, _, err := New(cfg).Run(context.Background(), source.Descriptor{Kind: source.KindCSVURL, URL: srv.URL})

	var fe *source.FetchError
	if !errors.As(err, &fe) || fe.Kind != source.ErrHTTPStatus {
		t.Fatalf("Run() error = %v, want FetchError{http_status}", err)
	}
}

func TestRunRepeatable(t *testing.T) {
	srv := serveCSV(t, "Nombre,Precio\nZapatilla,1500\nGorra,500\n")

	p := New(testConfig())
	first, _, err := p.Run(context.Background(), source.Descriptor{Kind: source.KindCSVURL, URL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := p.Run(context.Background(), source.Descriptor{Kind: source.KindCSVURL, URL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("runs produced %d vs %d products", len(first), len(second))
	}
	// Synthesized ids differ per run; everything observable stays equal.
	for i := range first {
		if first[i].Name != second[i].Name || first[i].Price != second[i].Price {
			t.Errorf("run divergence at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

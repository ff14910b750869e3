// Command sheetfeed fetches one or more product sheet sources, runs
// them through the normalization pipeline, and writes the resulting
// catalog as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/estore-app/sheetfeed/internal/config"
	"github.com/estore-app/sheetfeed/internal/logging"
	"github.com/estore-app/sheetfeed/internal/pipeline"
	"github.com/estore-app/sheetfeed/internal/product"
	"github.com/estore-app/sheetfeed/internal/source"
)

// output is the JSON document written at the end of a run.
type output struct {
	Products []product.Product  `json:"products"`
	Reports  []*pipeline.Report `json:"reports"`
}

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	var (
		csvURL        = flag.String("url", "", "direct CSV export URL")
		spreadsheetID = flag.String("sheet", "", "Google spreadsheet id")
		gid           = flag.String("gid", "0", "sheet tab gid, used with -sheet")
		feedID        = flag.String("feed", "", "spreadsheet id fetched through the values/entry feed")
		filePath      = flag.String("file", "", "local CSV or XLSX file")
		sourcesPath   = flag.String("sources", "", "YAML file listing sources (overrides SOURCES_FILE)")
		outPath       = flag.String("out", "", "write catalog JSON to this file instead of stdout")
	)
	flag.Parse()

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"fetch_timeout", cfg.Fetch.Timeout,
		"name_fallback", cfg.Mapping.NameFallback,
		"trim_fields", cfg.Mapping.TrimFields,
	)

	descs, err := resolveSources(cfg, *csvURL, *spreadsheetID, *gid, *feedID, *filePath, *sourcesPath)
	if err != nil {
		slog.Error("no usable source", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg)
	out := output{Products: []product.Product{}}

	for _, desc := range descs {
		products, report, err := p.Run(ctx, desc)
		if err != nil {
			slog.Error("run failed", "source", desc.String(), "error", err)
			os.Exit(1)
		}
		out.Products = append(out.Products, products...)
		out.Reports = append(out.Reports, report)
	}

	if err := writeOutput(out, *outPath); err != nil {
		slog.Error("failed to write catalog", "error", err)
		os.Exit(1)
	}

	slog.Info("catalog written",
		"products", len(out.Products),
		"sources", len(out.Reports),
	)
}

// resolveSources builds the descriptor list from flags first, then the
// sources file. Exactly one origin flag may be set.
func resolveSources(cfg *config.Config, csvURL, sheetID, gid, feedID, filePath, sourcesPath string) ([]source.Descriptor, error) {
	var descs []source.Descriptor
	if csvURL != "" {
		descs = append(descs, source.Descriptor{Kind: source.KindCSVURL, URL: csvURL})
	}
	if sheetID != "" {
		descs = append(descs, source.Descriptor{Kind: source.KindSpreadsheet, SpreadsheetID: sheetID, GID: gid})
	}
	if feedID != "" {
		descs = append(descs, source.Descriptor{Kind: source.KindFeedAPI, SpreadsheetID: feedID, GID: gid})
	}
	if filePath != "" {
		descs = append(descs, source.Descriptor{Kind: source.KindLocalFile, Path: filePath})
	}

	switch len(descs) {
	case 1:
		return descs, nil
	case 0:
	default:
		return nil, errTooManySources
	}

	path := sourcesPath
	if path == "" {
		path = cfg.Sources.File
	}
	if path == "" {
		return nil, errNoSource
	}
	return config.LoadSources(path)
}

var (
	errNoSource       = &pipeline.ConfigurationError{Reason: "no source given: pass -url, -sheet, -feed, -file, or -sources"}
	errTooManySources = &pipeline.ConfigurationError{Reason: "more than one source flag given"}
)

func writeOutput(out output, path string) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

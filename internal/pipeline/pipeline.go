// Package pipeline runs the full feed-to-catalog transformation: fetch
// a source, split it into rows, resolve the header, map each data row
// to a product, and validate the result. Bad rows are logged and
// skipped; only fetch, parse, and configuration problems abort a run.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/estore-app/sheetfeed/internal/config"
	"github.com/estore-app/sheetfeed/internal/csv"
	"github.com/estore-app/sheetfeed/internal/header"
	"github.com/estore-app/sheetfeed/internal/logging"
	"github.com/estore-app/sheetfeed/internal/normalize"
	"github.com/estore-app/sheetfeed/internal/product"
	"github.com/estore-app/sheetfeed/internal/source"
)

// Pipeline wires the source adapter, splitter, and mapper for one
// configuration. It is safe to run multiple sources through the same
// pipeline sequentially.
type Pipeline struct {
	adapter  *source.Adapter
	splitter *csv.Splitter
	mapper   *Mapper
}

// New builds a pipeline from the run configuration.
func New(cfg *config.Config) *Pipeline {
	proxy := cfg.Fetch.ProxyTemplate
	if cfg.Fetch.MaxRetries == 0 {
		proxy = ""
	}
	return &Pipeline{
		adapter: source.NewAdapter(source.Options{
			Timeout:           cfg.Fetch.Timeout,
			ProxyTemplate:     proxy,
			AttemptsPerSecond: cfg.Fetch.AttemptsPerSecond,
		}),
		splitter: csv.NewSplitter(cfg.Mapping.TrimFields),
		mapper:   NewMapper(cfg),
	}
}

// Run fetches the descriptor and maps it into products. The returned
// report is non-nil whenever the run got far enough to have a row
// count, even if some rows were skipped.
func (p *Pipeline) Run(ctx context.Context, desc source.Descriptor) ([]product.Product, *Report, error) {
	ctx, runID := logging.WithRun(ctx)
	logger := logging.WithFields(ctx, "source", desc.String())

	report := &Report{
		RunID:     runID,
		Source:    desc.String(),
		StartedAt: time.Now(),
	}

	if err := desc.Validate(); err != nil {
		return nil, nil, &ConfigurationError{Reason: "unusable source descriptor", Err: err}
	}

	logger.Info("run started")

	table, err := p.adapter.Table(ctx, desc, p.splitter)
	if err != nil {
		var fe *source.FetchError
		if errors.As(err, &fe) {
			logger.Error("fetch failed", "kind", string(fe.Kind), "error", err)
			return nil, nil, err
		}
		return nil, nil, &ParseError{Source: desc.String(), Reason: "payload could not be decoded", Err: err}
	}
	if len(table) == 0 {
		return nil, nil, &ParseError{Source: desc.String(), Reason: "no rows"}
	}

	cols := header.Resolve(table[0])
	if len(cols) == 0 {
		return nil, nil, &ParseError{Source: desc.String(), Reason: "no recognized header columns"}
	}
	logger.Debug("header resolved", "columns", len(cols), "rows", len(table)-1)

	ids := normalize.NewIDSequence()
	products := make([]product.Product, 0, len(table)-1)

	for i, row := range table[1:] {
		rowIndex := i + 1
		if blankRow(row) {
			continue
		}
		report.TotalRows++

		prod, err := p.mapper.MapRow(cols, row, rowIndex, ids)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				logger.Warn("row skipped", "row", ve.Row, "field", ve.Field, "reason", ve.Reason)
				report.Skipped = append(report.Skipped, SkippedRow{Row: ve.Row, Field: ve.Field, Reason: ve.Reason})
				continue
			}
			return nil, nil, err
		}
		products = append(products, prod)
	}

	report.Accepted = len(products)
	report.Duration = time.Since(report.StartedAt)

	logger.Info("run finished",
		"total_rows", report.TotalRows,
		"accepted", report.Accepted,
		"skipped", report.SkippedCount(),
		"duration", report.Duration,
	)
	return products, report, nil
}

// blankRow reports whether every cell in the row is empty once
// cleaned. Blank rows are not counted or reported.
func blankRow(row []string) bool {
	for _, cell := range row {
		if csv.CleanCell(cell) != "" {
			return false
		}
	}
	return true
}

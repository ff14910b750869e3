// Package logging provides structured logging configuration using log/slog.
//
// Every pipeline run gets a run id; WithRun stores a run-scoped logger
// in the context so all log entries for one run can be correlated.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Use "json" format in production for machine parsing (ELK, CloudWatch, etc.)
// Use "text" format in development for human readability.
func Setup(level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type ctxKey struct{}

// WithRun returns a context carrying a logger tagged with a fresh
// run_id, plus the id itself.
//
// Usage:
//
//	ctx, runID := logging.WithRun(ctx)
//	logger := logging.FromContext(ctx)
//	logger.Info("run started", "source", desc.String())
func WithRun(ctx context.Context) (context.Context, string) {
	runID := uuid.NewString()
	logger := slog.Default().With("run_id", runID)
	return context.WithValue(ctx, ctxKey{}, logger), runID
}

// FromContext returns the run-scoped logger stored by WithRun, or the
// default logger when the context has none.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithFields returns a logger with additional structured fields.
//
// This is useful for creating operation-specific loggers that carry
// consistent context through a multi-step process.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}

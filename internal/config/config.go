// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast
// on misconfiguration.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Defaults DefaultsConfig
	Image    ImageConfig
	Fetch    FetchConfig
	Mapping  MappingConfig
	Logging  LoggingConfig
	Sources  SourcesConfig
}

// DefaultsConfig holds the fallback values applied to fields a source
// row does not provide.
type DefaultsConfig struct {
	// Currency is used when a row has no currency column (default: $)
	Currency string `env:"DEFAULT_CURRENCY" default:"$"`

	// Category is used when a row has no category column
	Category string `env:"DEFAULT_CATEGORY" default:"Sin categoría"`
}

// ImageConfig holds image URL normalization settings.
type ImageConfig struct {
	// Placeholder is the local path substituted for missing or
	// unusable image references (default: images/placeholder.jpg)
	Placeholder string `env:"IMAGE_PLACEHOLDER" default:"images/placeholder.jpg"`

	// AssetDir is the prefix applied to bare filenames (default: images/)
	AssetDir string `env:"IMAGE_ASSET_DIR" default:"images/"`

	// ProxyTemplate rewrites Google Drive file ids into a fetchable
	// image URL; "{id}" is replaced with the file id
	ProxyTemplate string `env:"IMAGE_PROXY_TEMPLATE" default:"https://images.weserv.nl/?url=drive.google.com/uc%3Fexport%3Dview%26id%3D{id}"`

	// ExternalImage2Reuse controls whether an external primary image
	// is reused as the secondary one instead of the placeholder
	// (default: true)
	ExternalImage2Reuse bool `env:"EXTERNAL_IMAGE2_REUSE" default:"true"`

	// GuessFromName derives an image path from the product name slug
	// when no image column exists at all (default: false)
	GuessFromName bool `env:"NAME_IMAGE_GUESS" default:"false"`
}

// FetchConfig holds source fetching settings.
type FetchConfig struct {
	// Timeout bounds a single network attempt (default: 10s)
	Timeout time.Duration `env:"FETCH_TIMEOUT" default:"10s"`

	// ProxyTemplate rewrites a failed URL for the single proxy retry;
	// "{url}" is replaced with the origin URL. Empty disables the
	// fallback.
	ProxyTemplate string `env:"FETCH_PROXY_TEMPLATE" default:"https://corsproxy.io/?{url}"`

	// AttemptsPerSecond paces fetch attempts across a run
	// (default: 0, unpaced)
	AttemptsPerSecond float64 `env:"FETCH_ATTEMPTS_PER_SECOND" default:"0"`

	// MaxRetries is the number of fallback attempts after a failed
	// direct fetch; the origin is never retried more than once, so
	// only 0 and 1 are valid (default: 1)
	MaxRetries int `env:"FETCH_MAX_RETRIES" default:"1"`
}

// MappingConfig holds row-to-product mapping policies.
type MappingConfig struct {
	// TrimFields trims surrounding whitespace from every cell during
	// splitting (default: true)
	TrimFields bool `env:"TRIM_FIELDS" default:"true"`

	// NameFallback decides what happens to a row whose name cell is
	// blank: "synthesize" invents a positional name, "reject" skips
	// the row (default: synthesize)
	NameFallback string `env:"NAME_FALLBACK" default:"synthesize"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// SourcesConfig points at the catalog sources file.
type SourcesConfig struct {
	// File is a YAML file listing source descriptors; optional when a
	// source is given on the command line
	File string `env:"SOURCES_FILE"`
}

// Name fallback policies accepted by MappingConfig.NameFallback.
const (
	NameFallbackSynthesize = "synthesize"
	NameFallbackReject     = "reject"
)

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Defaults.Currency == "" {
		errs = append(errs, "DEFAULT_CURRENCY must not be empty")
	}
	if c.Defaults.Category == "" {
		errs = append(errs, "DEFAULT_CATEGORY must not be empty")
	}

	if c.Image.Placeholder == "" {
		errs = append(errs, "IMAGE_PLACEHOLDER must not be empty")
	}
	if c.Image.AssetDir != "" && !strings.HasSuffix(c.Image.AssetDir, "/") {
		errs = append(errs, fmt.Sprintf("IMAGE_ASSET_DIR (%q) must end with a slash", c.Image.AssetDir))
	}
	if c.Image.ProxyTemplate != "" && !strings.Contains(c.Image.ProxyTemplate, "{id}") {
		errs = append(errs, "IMAGE_PROXY_TEMPLATE must contain the {id} slot")
	}

	if c.Fetch.Timeout <= 0 {
		errs = append(errs, "FETCH_TIMEOUT must be positive")
	}
	if c.Fetch.ProxyTemplate != "" && !strings.Contains(c.Fetch.ProxyTemplate, "{url}") {
		errs = append(errs, "FETCH_PROXY_TEMPLATE must contain the {url} slot")
	}
	if c.Fetch.AttemptsPerSecond < 0 {
		errs = append(errs, "FETCH_ATTEMPTS_PER_SECOND must be non-negative")
	}
	if c.Fetch.MaxRetries < 0 || c.Fetch.MaxRetries > 1 {
		errs = append(errs, fmt.Sprintf("FETCH_MAX_RETRIES (%d) must be 0 or 1", c.Fetch.MaxRetries))
	}

	switch c.Mapping.NameFallback {
	case NameFallbackSynthesize, NameFallbackReject:
	default:
		errs = append(errs, fmt.Sprintf("NAME_FALLBACK (%q) must be one of: synthesize, reject", c.Mapping.NameFallback))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Defaults: {Currency: %q, Category: %q}, ",
		c.Defaults.Currency, c.Defaults.Category))
	b.WriteString(fmt.Sprintf("Image: {Placeholder: %q, AssetDir: %q, ExternalImage2Reuse: %v, GuessFromName: %v}, ",
		c.Image.Placeholder, c.Image.AssetDir, c.Image.ExternalImage2Reuse, c.Image.GuessFromName))
	b.WriteString(fmt.Sprintf("Fetch: {Timeout: %s, AttemptsPerSecond: %g}, ",
		c.Fetch.Timeout, c.Fetch.AttemptsPerSecond))
	b.WriteString(fmt.Sprintf("Mapping: {TrimFields: %v, NameFallback: %q}, ",
		c.Mapping.TrimFields, c.Mapping.NameFallback))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

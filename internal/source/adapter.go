package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/estore-app/sheetfeed/internal/csv"
)

const (
	// DefaultTimeout bounds a single network attempt.
	DefaultTimeout = 10 * time.Second
	// DefaultProxyTemplate wraps a blocked URL in a public proxy.
	// "{url}" is replaced with the query-escaped origin URL.
	DefaultProxyTemplate = "https://corsproxy.io/?{url}"
)

// Options configures an Adapter. Zero values fall back to defaults.
type Options struct {
	Timeout time.Duration
	// ProxyTemplate rewrites a failed URL for the single retry. An
	// empty string disables the proxy fallback entirely.
	ProxyTemplate string
	// AttemptsPerSecond paces fetch attempts across a run. Zero means
	// no pacing.
	AttemptsPerSecond float64
	Client            *http.Client
	Logger            *slog.Logger
}

// Adapter fetches catalog data for a Descriptor and exposes it as a
// raw row table.
type Adapter struct {
	client        *http.Client
	proxyTemplate string
	limiter       *rate.Limiter
	log           *slog.Logger
}

// NewAdapter builds an adapter from opts.
func NewAdapter(opts Options) *Adapter {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.AttemptsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.AttemptsPerSecond), 1)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{
		client:        client,
		proxyTemplate: opts.ProxyTemplate,
		limiter:       limiter,
		log:           log,
	}
}

// Table fetches the descriptor's payload and decodes it into a raw row
// table using sp for CSV text.
func (a *Adapter) Table(ctx context.Context, d Descriptor, sp *csv.Splitter) (csv.RawTable, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if d.Kind == KindLocalFile {
		return a.readLocal(d.Path, sp)
	}

	data, err := a.Fetch(ctx, d)
	if err != nil {
		return nil, err
	}
	if d.Kind == KindFeedAPI {
		return DecodeFeed(data)
	}
	return sp.Parse(string(data)), nil
}

// Fetch retrieves the raw payload for a network descriptor. A direct
// attempt that fails on transport or status is retried exactly once
// through the proxy rewrite; an empty body is never retried.
func (a *Adapter) Fetch(ctx context.Context, d Descriptor) ([]byte, error) {
	target := d.FetchURL()
	if target == "" {
		return nil, fmt.Errorf("descriptor %s has no fetch URL", d)
	}

	data, err := a.attempt(ctx, target)
	if err == nil {
		return data, nil
	}

	var fe *FetchError
	if a.proxyTemplate == "" || !errors.As(err, &fe) || !retryable(fe.Kind) {
		return nil, err
	}

	proxied := strings.ReplaceAll(a.proxyTemplate, "{url}", target)
	a.log.Warn("direct fetch failed, retrying through proxy",
		"source", d.String(),
		"kind", string(fe.Kind),
		"proxy_url", proxied,
	)
	data, proxyErr := a.attempt(ctx, proxied)
	if proxyErr != nil {
		// The direct error names the real origin and is the more
		// useful one to surface.
		return nil, err
	}
	return data, nil
}

// retryable reports whether a failure kind may be a cross-origin or
// transport restriction the proxy can route around.
func retryable(kind FetchErrorKind) bool {
	return kind == ErrNetwork || kind == ErrHTTPStatus
}

func (a *Adapter) attempt(ctx context.Context, target string) ([]byte, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Kind: ErrNetwork, URL: target, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{Kind: ErrNetwork, URL: target, Err: err}
	}

	resp, err := a.client.Do(req)
	if err != nil {
		kind := ErrNetwork
		if isTimeout(err) {
			kind = ErrTimeout
		}
		return nil, &FetchError{Kind: kind, URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Kind: ErrHTTPStatus, URL: target, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		kind := ErrNetwork
		if isTimeout(err) {
			kind = ErrTimeout
		}
		return nil, &FetchError{Kind: kind, URL: target, Err: err}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, &FetchError{Kind: ErrEmptyBody, URL: target}
	}
	return data, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	if errors.As(err, &t) && t.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func (a *Adapter) readLocal(path string, sp *csv.Splitter) (csv.RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSX(data)
	}
	return sp.Parse(string(data)), nil
}

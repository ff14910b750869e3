package source

import "fmt"

// FetchErrorKind classifies why a fetch failed.
type FetchErrorKind string

const (
	// ErrNetwork covers DNS, connection and transport failures.
	ErrNetwork FetchErrorKind = "network"
	// ErrHTTPStatus means the origin answered with a non-2xx status.
	ErrHTTPStatus FetchErrorKind = "http_status"
	// ErrEmptyBody means the origin answered 2xx with no usable body.
	ErrEmptyBody FetchErrorKind = "empty_body"
	// ErrTimeout means the attempt exceeded the configured deadline.
	ErrTimeout FetchErrorKind = "timeout"
)

// FetchError describes a failed fetch attempt against one origin.
type FetchError struct {
	Kind   FetchErrorKind
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case ErrHTTPStatus:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	case ErrEmptyBody:
		return fmt.Sprintf("fetch %s: empty response body", e.URL)
	case ErrTimeout:
		return fmt.Sprintf("fetch %s: timed out", e.URL)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

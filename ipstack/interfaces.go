package ipstack

import (
	"context"
	"net/http"
	"net/url"
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Lookuper is implemented by Client and by its caching decorator.
type Lookuper interface {
	Lookup(ctx context.Context, address string, params url.Values, opts ...RequestOption) (*StandardResponse, error)
	BulkLookup(ctx context.Context, addresses []string, params url.Values, opts ...RequestOption) ([]StandardResponse, error)
	LookupTarget(ctx context.Context, target Target, params url.Values, opts ...RequestOption) ([]StandardResponse, error)
}

// Logger is a sink for events happening in request pipeline. Errors are
// returned to callers anyway, logger is only for observability.
type Logger interface {
	MethodNotAllowed(method string)
	Retry(url string, statusCode int)
	RetryFailed(url string, statusCode int, text string)
	DecodeFailure(url string, statusCode int, err error)
	EnvelopeFailure(url string)
	APIFailure(url string, code int, message string)
	NetworkFailure(url string, err error)
}

type noopLogger struct{}

func (noopLogger) MethodNotAllowed(string)          {}
func (noopLogger) Retry(string, int)                {}
func (noopLogger) RetryFailed(string, int, string)  {}
func (noopLogger) DecodeFailure(string, int, error) {}
func (noopLogger) EnvelopeFailure(string)           {}
func (noopLogger) APIFailure(string, int, string)   {}
func (noopLogger) NetworkFailure(string, error)     {}

// NewNoopLogger returns a logger which drops everything.
func NewNoopLogger() Logger {
	return noopLogger{}
}

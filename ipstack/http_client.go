package ipstack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultHTTPTimeout                   = 10 * time.Second
	DefaultUserAgent                     = "ipstack-go"
	DefaultRateLimitInterval             = 10 * time.Millisecond
	DefaultRateLimitBurst                = 10
	DefaultCircuitBreakerOpenThreshold   = 5
	DefaultCircuitBreakerHalfOpenTimeout = 30 * time.Second
	DefaultCircuitBreakerResetTimeout    = time.Minute
)

var errServerFault = errors.New("server has responded with 5xx")

type httpClient struct {
	userAgent      string
	client         *http.Client
	rateLimiter    *rate.Limiter
	circuitBreaker *circuitBreaker
}

func (h httpClient) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.circuitBreaker.Do(req.Context(), func(ctx context.Context) (*http.Response, error) {
		if err := h.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCircuitBreakerIgnore, err)
		}

		resp, err := h.client.Do(req.WithContext(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerFault
		}

		return resp, nil
	})

	if errors.Is(err, errServerFault) {
		return resp, nil
	}

	if err != nil && resp != nil {
		flushResponse(resp.Body)
	}

	if err != nil {
		return nil, err
	}

	return resp, nil
}

// CloseIdleConnections releases connections kept by underlying
// http.Client.
func (h httpClient) CloseIdleConnections() {
	h.client.CloseIdleConnections()
}

// NewHTTPClient prepares a new HTTP client, wraps it with rate limiter,
// circuit breaker, sets a user agent etc.
//
// Please see https://pkg.go.dev/golang.org/x/time/rate to get a meaning
// of rate limiter parameters.
//
// Circuit breaker counts network errors and 5xx responses as failures.
// 5xx responses are still returned to a caller, so Engine can retry
// them. A meaning of circuit breaker parameters:
//
// circuitBreakerOpenThreshold - a number of failures after which
// circuit breaker becomes OPEN and rejects all requests with
// ErrCircuitBreakerOpened.
//
// circuitBreakerHalfOpenTimeout - OPEN circuit breaker goes into
// HALF_OPEN state after this time period. Within this state it allows 1
// attempt. If this attempt fails, then it goes into OPEN state again. If
// succeed - goes to CLOSED.
//
// circuitBreakerResetFailuresTimeout - a period after which a failure
// counter of CLOSED circuit breaker is reset.
func NewHTTPClient(client *http.Client,
	userAgent string,
	rateLimiterInterval time.Duration,
	rateLimitBurst int,
	circuitBreakerOpenThreshold uint32,
	circuitBreakerHalfOpenTimeout, circuitBreakerResetFailuresTimeout time.Duration) HTTPClient {
	limit := rate.Inf
	if rateLimiterInterval > 0 {
		limit = rate.Every(rateLimiterInterval)
	}

	return httpClient{
		userAgent:   userAgent,
		client:      client,
		rateLimiter: rate.NewLimiter(limit, rateLimitBurst),
		circuitBreaker: newCircuitBreaker(circuitBreakerOpenThreshold,
			circuitBreakerHalfOpenTimeout,
			circuitBreakerResetFailuresTimeout),
	}
}

// NewDefaultHTTPClient returns a client which is used by NewClient if
// nothing else is given.
func NewDefaultHTTPClient() HTTPClient {
	return NewHTTPClient(&http.Client{Timeout: DefaultHTTPTimeout},
		DefaultUserAgent,
		DefaultRateLimitInterval,
		DefaultRateLimitBurst,
		DefaultCircuitBreakerOpenThreshold,
		DefaultCircuitBreakerHalfOpenTimeout,
		DefaultCircuitBreakerResetTimeout)
}

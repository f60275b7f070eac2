// This package is a client for ipstack (https://ipstack.com), a service
// which resolves geolocation data for IP addresses.
//
// Client is a main entity of the package. It builds endpoints for single
// and bulk lookups, sends them through Engine and decodes responses into
// StandardResponse records.
//
// Engine is a request pipeline: it injects an access key, sends requests
// via Transport, retries once on 5xx responses and turns failed
// responses into typed errors (APIError, TransportError,
// MethodNotAllowedError).
//
// Transport is a thin adapter over HTTPClient which does a single round
// trip. NewHTTPClient returns an HTTPClient with rate limiter and circuit
// breaker which is used by default.
package ipstack

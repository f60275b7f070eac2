package ipstack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultBaseURL = "http://api.ipstack.com"

	accessKeyParam = "access_key"
)

// AllowedMethods is a list of HTTP methods which can be used in
// non-forced requests. ipstack is read-only API.
var AllowedMethods = []string{http.MethodGet}

// Engine is a request pipeline of ipstack client. It injects access key
// into each request, retries once on 5xx responses and converts failed
// responses into errors.
//
// Engine has no mutable state and can be used concurrently. Each call
// makes at most 2 sequential round trips.
type Engine struct {
	accessKey string
	baseURL   string
	transport *Transport
	logger    Logger
}

func (e *Engine) AccessKey() string {
	return e.accessKey
}

func (e *Engine) BaseURL() string {
	return e.baseURL
}

// Get sends GET request to baseURL + endpoint and returns a body of
// successful response.
func (e *Engine) Get(ctx context.Context,
	endpoint string,
	params url.Values,
	opts ...RequestOption) (json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}

	return e.Request(ctx, http.MethodGet, e.baseURL+endpoint, params, opts...)
}

// Request sends a request and classifies a response.
//
// 1. If method is not allowed, MethodNotAllowedError is returned and
// nothing is sent.
//
// 2. If response has 5xx status code, request is retried exactly once.
// If retried response is not 2xx, TransportError is returned.
//
// 3. Otherwise, a body is parsed as JSON. If it is not JSON or it is an
// envelope with success=false, APIError is returned.
//
// A body of successful response is returned as is.
func (e *Engine) Request(ctx context.Context,
	method, rawURL string,
	params url.Values,
	opts ...RequestOption) (json.RawMessage, error) {
	if !e.isAllowedMethod(method) {
		e.logger.MethodNotAllowed(method)

		return nil, &MethodNotAllowedError{
			Method:  method,
			Allowed: AllowedMethods,
		}
	}

	resp, err := e.ForceRequest(ctx, method, rawURL, params, opts...)
	if err != nil {
		e.logger.NetworkFailure(rawURL, err)

		return nil, err
	}

	if isServerFault(resp.StatusCode) {
		e.logger.Retry(rawURL, resp.StatusCode)

		if resp, err = e.retry(ctx, method, rawURL, params, opts...); err != nil {
			return nil, err
		}
	}

	return e.decode(rawURL, resp)
}

// ForceRequest sends a request ignoring AllowedMethods and returns
// a response as is, without any classification.
func (e *Engine) ForceRequest(ctx context.Context,
	method, rawURL string,
	params url.Values,
	opts ...RequestOption) (*Response, error) {
	return e.transport.Send(ctx, method, rawURL, e.withAccessKey(params), opts...)
}

// Close releases connections of underlying transport.
func (e *Engine) Close() {
	e.transport.Close()
}

func (e *Engine) retry(ctx context.Context,
	method, rawURL string,
	params url.Values,
	opts ...RequestOption) (*Response, error) {
	resp, err := e.ForceRequest(ctx, method, rawURL, params, opts...)
	if err != nil {
		e.logger.NetworkFailure(rawURL, err)

		return nil, &TransportError{URL: rawURL, err: err}
	}

	if !resp.OK() {
		e.logger.RetryFailed(rawURL, resp.StatusCode, resp.Text())

		return nil, &TransportError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Text:       resp.Text(),
		}
	}

	return resp, nil
}

func (e *Engine) decode(rawURL string, resp *Response) (json.RawMessage, error) {
	body := json.RawMessage{}

	if err := resp.JSON(&body); err != nil {
		e.logger.DecodeFailure(rawURL, resp.StatusCode, err)

		return nil, e.apiError(rawURL, resp.StatusCode, resp.Text())
	}

	env, err := parseEnvelope(body)
	if err != nil {
		e.logger.EnvelopeFailure(rawURL)

		return nil, e.apiError(rawURL, resp.StatusCode, resp.Text())
	}

	if env.IsSuccess() {
		return body, nil
	}

	code, message, ok := env.Details()
	if !ok {
		e.logger.EnvelopeFailure(rawURL)

		code = resp.StatusCode
		message = resp.Text()
	}

	return nil, e.apiError(rawURL, code, message)
}

func (e *Engine) apiError(rawURL string, code int, message string) error {
	e.logger.APIFailure(rawURL, code, message)

	return &APIError{
		Code:    code,
		Message: message,
	}
}

func (e *Engine) isAllowedMethod(method string) bool {
	method = strings.ToUpper(method)

	for _, v := range AllowedMethods {
		if v == method {
			return true
		}
	}

	return false
}

func (e *Engine) withAccessKey(params url.Values) url.Values {
	rv := make(url.Values, len(params)+1)

	for k, v := range params {
		rv[k] = append([]string(nil), v...)
	}

	rv.Set(accessKeyParam, e.accessKey)

	return rv
}

func isServerFault(statusCode int) bool {
	return statusCode >= http.StatusInternalServerError && statusCode < 600
}

// NewEngine creates a new request pipeline. Empty baseURL means
// DefaultBaseURL, nil client means NewDefaultHTTPClient and nil logger
// drops all events.
func NewEngine(accessKey, baseURL string, client HTTPClient, logger Logger) (*Engine, error) {
	if accessKey == "" {
		return nil, ErrAccessKeyIsRequired
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if client == nil {
		client = NewDefaultHTTPClient()
	}

	if logger == nil {
		logger = NewNoopLogger()
	}

	return &Engine{
		accessKey: accessKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: NewTransport(client),
		logger:    logger,
	}, nil
}

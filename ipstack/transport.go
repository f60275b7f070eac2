package ipstack

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header

	body []byte
}

func (r *Response) Text() string {
	return string(r.body)
}

func (r *Response) Bytes() []byte {
	return r.body
}

// JSON decodes a body into v. If body is not a valid JSON, then
// DecodeError is returned.
func (r *Response) JSON(v interface{}) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return &DecodeError{Body: r.body, err: err}
	}

	return nil
}

// OK tells if status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

type requestOptions struct {
	header  http.Header
	timeout time.Duration
}

// RequestOption tunes a single request. These are passed to transport
// as is, request pipeline does not interpret them.
type RequestOption func(*requestOptions)

func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.header.Add(key, value)
	}
}

// WithTimeout limits a time of a single round trip. Retried request
// gets its own timeout.
func WithTimeout(timeout time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.timeout = timeout
	}
}

// Transport does exactly one network round trip per Send. It has no
// idea about retries or ipstack envelopes.
type Transport struct {
	client    HTTPClient
	closeOnce sync.Once
}

func (t *Transport) Send(ctx context.Context,
	method, rawURL string,
	params url.Values,
	opts ...RequestOption) (*Response, error) {
	options := requestOptions{
		header: http.Header{},
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, options.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build a request: %w", err)
	}

	if len(params) > 0 {
		query := req.URL.Query()

		for k, v := range params {
			query[k] = append([]string(nil), v...)
		}

		req.URL.RawQuery = query.Encode()
	}

	req.Header.Set("Accept", "application/json")

	for k, v := range options.header {
		req.Header[k] = v
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	body, err := ioutil.ReadAll(bufio.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("cannot read a response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		body:       body,
	}, nil
}

// Close releases idle connections of underlying client if it supports
// that. It is safe to call it many times.
func (t *Transport) Close() {
	t.closeOnce.Do(func() {
		if closer, ok := t.client.(interface{ CloseIdleConnections() }); ok {
			closer.CloseIdleConnections()
		}
	})
}

func NewTransport(client HTTPClient) *Transport {
	return &Transport{
		client: client,
	}
}

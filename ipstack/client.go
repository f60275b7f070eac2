package ipstack

import (
	"context"
	"net/url"
)

type clientOptions struct {
	baseURL    string
	httpClient HTTPClient
	logger     Logger
}

type ClientOption func(*clientOptions)

// WithBaseURL overrides DefaultBaseURL, for example, to use https.
func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

func WithHTTPClient(client HTTPClient) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

func WithLogger(logger Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// Client is ipstack API client. It is safe for concurrent use, but each
// call is sequential: it blocks until response is received and decoded.
type Client struct {
	engine *Engine
}

func (c *Client) Engine() *Engine {
	return c.engine
}

// Lookup resolves a single IP address or hostname.
func (c *Client) Lookup(ctx context.Context,
	address string,
	params url.Values,
	opts ...RequestOption) (*StandardResponse, error) {
	return c.lookupOne(ctx, SingleTarget(address), params, opts...)
}

// BulkLookup resolves a list of IP addresses with a single request.
// Results have the same order as addresses.
func (c *Client) BulkLookup(ctx context.Context,
	addresses []string,
	params url.Values,
	opts ...RequestOption) ([]StandardResponse, error) {
	return c.LookupTarget(ctx, BulkTargets(addresses...), params, opts...)
}

// Check resolves IP address of the requester.
func (c *Client) Check(ctx context.Context,
	params url.Values,
	opts ...RequestOption) (*StandardResponse, error) {
	return c.lookupOne(ctx, RequesterTarget(), params, opts...)
}

// LookupTarget resolves any target. Non-bulk targets always give
// exactly one record.
func (c *Client) LookupTarget(ctx context.Context,
	target Target,
	params url.Values,
	opts ...RequestOption) ([]StandardResponse, error) {
	endpoint, err := target.Endpoint()
	if err != nil {
		return nil, err
	}

	body, err := c.engine.Get(ctx, endpoint, params, opts...)
	if err != nil {
		return nil, err
	}

	if target.IsBulk() {
		rv := []StandardResponse{}

		if err := decodeRecord("[]StandardResponse", body, &rv); err != nil {
			return nil, err
		}

		return rv, nil
	}

	rv := StandardResponse{}

	if err := decodeRecord("StandardResponse", body, &rv); err != nil {
		return nil, err
	}

	return []StandardResponse{rv}, nil
}

// Close releases connections. Client should not be used after that.
func (c *Client) Close() {
	c.engine.Close()
}

func (c *Client) lookupOne(ctx context.Context,
	target Target,
	params url.Values,
	opts ...RequestOption) (*StandardResponse, error) {
	rv, err := c.LookupTarget(ctx, target, params, opts...)
	if err != nil {
		return nil, err
	}

	return &rv[0], nil
}

func NewClient(accessKey string, opts ...ClientOption) (*Client, error) {
	options := clientOptions{}

	for _, opt := range opts {
		opt(&options)
	}

	engine, err := NewEngine(accessKey, options.baseURL, options.httpClient, options.logger)
	if err != nil {
		return nil, err
	}

	return &Client{
		engine: engine,
	}, nil
}

package ipstack

import (
	"context"
	"net/url"
	"time"

	"github.com/dgraph-io/ristretto"
)

// CachingClient caches results of single lookups. Bulk lookups and
// requester lookups always go to ipstack. Each call gets its own deep
// copy of a cached record, so it is safe to modify it.
type CachingClient struct {
	Lookuper

	cache *ristretto.Cache
	ttl   time.Duration
}

func (c *CachingClient) Lookup(ctx context.Context,
	address string,
	params url.Values,
	opts ...RequestOption) (*StandardResponse, error) {
	rv, err := c.LookupTarget(ctx, SingleTarget(address), params, opts...)
	if err != nil {
		return nil, err
	}

	return &rv[0], nil
}

func (c *CachingClient) LookupTarget(ctx context.Context,
	target Target,
	params url.Values,
	opts ...RequestOption) ([]StandardResponse, error) {
	if target.kind != targetSingle {
		return c.Lookuper.LookupTarget(ctx, target, params, opts...)
	}

	cacheKey := target.String() + "?" + params.Encode()

	if value, ok := c.cache.Get(cacheKey); ok {
		result := value.(StandardResponse)

		return []StandardResponse{result.clone()}, nil
	}

	rv, err := c.Lookuper.LookupTarget(ctx, target, params, opts...)
	if err != nil {
		return nil, err
	}

	c.cache.SetWithTTL(cacheKey, rv[0].clone(), 1, c.ttl)

	return rv, nil
}

// Close stops cache goroutines. Wrapped client is not closed.
func (c *CachingClient) Close() {
	c.cache.Close()
}

func NewCachingClient(client Lookuper, itemsCount uint, ttl time.Duration) (*CachingClient, error) {
	cacheConfig := &ristretto.Config{
		MaxCost:     int64(itemsCount),
		NumCounters: 10 * int64(itemsCount),
		Metrics:     false,
		BufferItems: 64,
	}

	cache, err := ristretto.NewCache(cacheConfig)
	if err != nil {
		return nil, err
	}

	return &CachingClient{
		Lookuper: client,
		cache:    cache,
		ttl:      ttl,
	}, nil
}

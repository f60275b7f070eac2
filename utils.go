package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/errors"

	"github.com/9seconds/ipstack/ipstack"
)

type manyResult struct {
	Address  string                    `json:"address"`
	Response *ipstack.StandardResponse `json:"response,omitempty"`
	Error    string                    `json:"error,omitempty"`
}

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

func makeNewHTTPClient(conf *config) ipstack.HTTPClient {
	httpClient := &http.Client{
		Timeout: conf.GetHTTPTimeout(),
	}

	return ipstack.NewHTTPClient(httpClient,
		conf.GetUserAgent(),
		conf.GetRateLimitInterval(),
		conf.GetRateLimitBurst(),
		conf.CircuitBreaker.GetOpenThreshold(),
		conf.CircuitBreaker.GetHalfOpenTimeout(),
		conf.CircuitBreaker.GetResetFailuresTimeout())
}

func makeClient(conf *config, logger ipstack.Logger) (*ipstack.Client, error) {
	client, err := ipstack.NewClient(conf.AccessKey,
		ipstack.WithBaseURL(conf.GetBaseURL()),
		ipstack.WithHTTPClient(makeNewHTTPClient(conf)),
		ipstack.WithLogger(logger))
	if err != nil {
		return nil, errors.Annotate(err, "cannot create ipstack client")
	}

	return client, nil
}

// makeLookuper wraps client into a cache if it is enabled. Returned
// function releases cache resources.
func makeLookuper(conf *config, client *ipstack.Client) (ipstack.Lookuper, func(), error) {
	if !conf.Cache.Enabled() {
		return client, func() {}, nil
	}

	cached, err := ipstack.NewCachingClient(client, conf.Cache.Size, conf.Cache.GetTTL())
	if err != nil {
		return nil, nil, errors.Annotate(err, "cannot create cache")
	}

	return cached, cached.Close, nil
}

func makeParams(conf *config) url.Values {
	params := ipstack.NewParams()

	for k, v := range conf.GetParams() {
		params.Set(k, v)
	}

	return params.Values()
}

func makeManyResults(results []ipstack.LookupResult) []manyResult {
	rv := make([]manyResult, len(results))

	for i, v := range results {
		rv[i].Address = v.Address
		rv[i].Response = v.Response

		if v.Err != nil {
			rv[i].Error = v.Err.Error()
		}
	}

	return rv
}

func printJSON(w io.Writer, value interface{}) error {
	encoder := json.NewEncoder(w)

	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	return encoder.Encode(value)
}

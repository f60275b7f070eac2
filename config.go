package main

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hjson/hjson-go"
	"github.com/juju/errors"

	"github.com/9seconds/ipstack/ipstack"
)

const (
	DefaultCacheTTL = 10 * time.Minute
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))

	return
}

type config struct {
	AccessKey         string            `json:"access_key" toml:"access_key"`
	BaseURL           string            `json:"base_url" toml:"base_url"`
	UserAgent         string            `json:"user_agent" toml:"user_agent"`
	HTTPTimeout       duration          `json:"http_timeout" toml:"http_timeout"`
	RateLimitInterval duration          `json:"rate_limit_interval" toml:"rate_limit_interval"`
	RateLimitBurst    uint              `json:"rate_limit_burst" toml:"rate_limit_burst"`
	WorkerPoolSize    uint              `json:"worker_pool_size" toml:"worker_pool_size"`
	CircuitBreaker    configBreaker     `json:"circuit_breaker" toml:"circuit_breaker"`
	Cache             configCache       `json:"cache" toml:"cache"`
	Params            map[string]string `json:"params" toml:"params"`
}

func (c config) GetBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}

	return ipstack.DefaultBaseURL
}

func (c config) GetUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}

	return "ipstack-cli/" + version
}

func (c config) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeout.Duration == 0 {
		return ipstack.DefaultHTTPTimeout
	}

	return c.HTTPTimeout.Duration
}

func (c config) GetRateLimitInterval() time.Duration {
	if c.RateLimitInterval.Duration == 0 {
		return ipstack.DefaultRateLimitInterval
	}

	return c.RateLimitInterval.Duration
}

func (c config) GetRateLimitBurst() int {
	if c.RateLimitBurst == 0 {
		return ipstack.DefaultRateLimitBurst
	}

	return int(c.RateLimitBurst)
}

func (c config) GetWorkerPoolSize() int {
	if c.WorkerPoolSize == 0 {
		return ipstack.DefaultWorkerPoolSize
	}

	return int(c.WorkerPoolSize)
}

func (c config) GetParams() map[string]string {
	if c.Params == nil {
		return map[string]string{}
	}

	return c.Params
}

type configBreaker struct {
	OpenThreshold        uint     `json:"open_threshold" toml:"open_threshold"`
	HalfOpenTimeout      duration `json:"half_open_timeout" toml:"half_open_timeout"`
	ResetFailuresTimeout duration `json:"reset_failures_timeout" toml:"reset_failures_timeout"`
}

func (c configBreaker) GetOpenThreshold() uint32 {
	if c.OpenThreshold == 0 {
		return ipstack.DefaultCircuitBreakerOpenThreshold
	}

	return uint32(c.OpenThreshold)
}

func (c configBreaker) GetHalfOpenTimeout() time.Duration {
	if c.HalfOpenTimeout.Duration == 0 {
		return ipstack.DefaultCircuitBreakerHalfOpenTimeout
	}

	return c.HalfOpenTimeout.Duration
}

func (c configBreaker) GetResetFailuresTimeout() time.Duration {
	if c.ResetFailuresTimeout.Duration == 0 {
		return ipstack.DefaultCircuitBreakerResetTimeout
	}

	return c.ResetFailuresTimeout.Duration
}

// configCache is disabled if size is 0.
type configCache struct {
	Size uint     `json:"size" toml:"size"`
	TTL  duration `json:"ttl" toml:"ttl"`
}

func (c configCache) Enabled() bool {
	return c.Size > 0
}

func (c configCache) GetTTL() time.Duration {
	if c.TTL.Duration == 0 {
		return DefaultCacheTTL
	}

	return c.TTL.Duration
}

func parseConfig(path string) (*config, error) {
	conf := &config{}

	if path == "" {
		return conf, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotate(err, "cannot read config file")
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(content), conf); err != nil {
			return nil, errors.Annotate(err, "cannot parse toml")
		}
	} else if err := decodeHJSON(content, conf); err != nil {
		return nil, errors.Annotate(err, "cannot parse hjson")
	}

	if err := validateConfig(conf); err != nil {
		return nil, errors.Annotate(err, "invalid config")
	}

	return conf, nil
}

func decodeHJSON(content []byte, conf *config) error {
	rawMap := map[string]interface{}{}

	if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return err
	}

	rawBytes, err := json.Marshal(rawMap)
	if err != nil {
		return err
	}

	return json.Unmarshal(rawBytes, conf)
}

func validateConfig(conf *config) error {
	if conf.BaseURL != "" {
		parsed, err := url.Parse(conf.BaseURL)
		if err != nil {
			return errors.Annotatef(err, "incorrect base url %s", conf.BaseURL)
		}

		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return errors.Errorf("unsupported scheme of base url %s", conf.BaseURL)
		}

		if parsed.Host == "" {
			return errors.Errorf("no host in base url %s", conf.BaseURL)
		}
	}

	if conf.HTTPTimeout.Duration < 0 {
		return errors.Errorf("negative http timeout %v", conf.HTTPTimeout.Duration)
	}

	if conf.RateLimitInterval.Duration < 0 {
		return errors.Errorf("negative rate limit interval %v", conf.RateLimitInterval.Duration)
	}

	if conf.Cache.TTL.Duration < 0 {
		return errors.Errorf("negative cache ttl %v", conf.Cache.TTL.Duration)
	}

	return nil
}

package scraper

import (
	"strings"
	"time"

	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyURL               = "sources.scraper.url"
	KeyRequestsPerSecond = "sources.scraper.requests_per_second"
	KeyAPIKey            = "sources.scraper.api_key"
	KeyMaxRetries        = "sources.scraper.max_retries"
)

// Defaults.
const (
	DefaultRequestsPerSecond = 5.0
	DefaultMaxRetries        = 2
	DefaultRequestTimeout    = 10 * time.Second
)

// Config holds the settings for the scraper service source.
type Config struct {
	// URL is the service root; searches POST to URL + "/search".
	URL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// RequestsPerSecond throttles outgoing requests.
	RequestsPerSecond float64

	// MaxRetries bounds retries of a transient failure.
	MaxRetries int
}

// ParseConfig reads the source settings, applying defaults.
func ParseConfig(store driven.ConfigStore) Config {
	cfg := Config{
		RequestsPerSecond: DefaultRequestsPerSecond,
		MaxRetries:        DefaultMaxRetries,
	}
	if store == nil {
		return cfg
	}
	cfg.URL = strings.TrimRight(strings.TrimSpace(store.GetString(KeyURL)), "/")
	cfg.APIKey = store.GetString(KeyAPIKey)
	if rps := store.GetFloat(KeyRequestsPerSecond); rps > 0 {
		cfg.RequestsPerSecond = rps
	}
	if _, ok := store.Get(KeyMaxRetries); ok {
		if n := store.GetInt(KeyMaxRetries); n >= 0 {
			cfg.MaxRetries = n
		}
	}
	return cfg
}

// Enabled reports whether a service URL is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

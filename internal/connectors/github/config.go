package github

import (
	"os"
	"strings"

	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyToken     = "sources.github.token"
	KeyQualifier = "sources.github.query_qualifier"
	KeyBaseURL   = "sources.github.base_url"
	KeyChunks    = "sources.github.chunks"

	// EnvToken overrides KeyToken when set.
	EnvToken = "GITHUB_TOKEN"
)

// Config holds the settings for the GitHub code search source.
type Config struct {
	// Token is a personal access token or OAuth token.
	Token string

	// Qualifier is appended to every query, e.g. "org:acme" or "repo:acme/api".
	Qualifier string

	// BaseURL points at a GitHub Enterprise API root. Empty means api.github.com.
	BaseURL string

	// Chunks emits a code_chunk result per matched fragment in addition to the file.
	Chunks bool
}

// ParseConfig reads the source settings. GITHUB_TOKEN wins over the file value.
// Chunks defaults to true when unset.
func ParseConfig(store driven.ConfigStore) Config {
	cfg := Config{Chunks: true}
	if store != nil {
		cfg.Token = store.GetString(KeyToken)
		cfg.Qualifier = strings.TrimSpace(store.GetString(KeyQualifier))
		cfg.BaseURL = store.GetString(KeyBaseURL)
		if _, ok := store.Get(KeyChunks); ok {
			cfg.Chunks = store.GetBool(KeyChunks)
		}
	}
	if token := os.Getenv(EnvToken); token != "" {
		cfg.Token = token
	}
	return cfg
}

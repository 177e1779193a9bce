package services

import (
	"strings"
	"time"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

// Configuration keys read by LoadSearchConfig.
const (
	KeyDefaultLimit        = "search.default_limit"
	KeyMaxLimit            = "search.max_limit"
	KeyMaxQueryLength      = "search.max_query_length"
	KeySourceTimeoutMs     = "search.source_timeout_ms"
	KeySimilarityThreshold = "search.similarity_threshold"
	KeyPerSourceLimit      = "search.per_source_limit"
	KeyMaxConcurrency      = "search.max_concurrency"

	rankingPrefix           = "ranking."
	sourceReliabilityPrefix = "ranking.source_reliability."
	typeImportancePrefix    = "ranking.type_importance."
)

// LoadSearchConfig builds the pipeline configuration from store, falling back
// to DefaultSearchConfig for every missing key. A nil store yields the defaults.
func LoadSearchConfig(store driven.ConfigStore) domain.SearchConfig {
	cfg := domain.DefaultSearchConfig()
	if store == nil {
		return cfg
	}

	cfg.DefaultLimit = intOr(store, KeyDefaultLimit, cfg.DefaultLimit)
	cfg.MaxLimit = intOr(store, KeyMaxLimit, cfg.MaxLimit)
	cfg.MaxQueryLength = intOr(store, KeyMaxQueryLength, cfg.MaxQueryLength)
	cfg.PerSourceLimit = intOr(store, KeyPerSourceLimit, cfg.PerSourceLimit)
	cfg.MaxConcurrency = intOr(store, KeyMaxConcurrency, cfg.MaxConcurrency)
	// Out of (0,1] would merge unrelated results or disable deduplication.
	if t := floatOr(store, KeySimilarityThreshold, cfg.SimilarityThreshold); t > 0 && t <= 1 {
		cfg.SimilarityThreshold = t
	}
	if ms := intOr(store, KeySourceTimeoutMs, 0); ms > 0 {
		cfg.SourceTimeout = time.Duration(ms) * time.Millisecond
	}

	w := &cfg.Ranking
	w.Semantic = floatOr(store, rankingPrefix+"semantic", w.Semantic)
	w.Text = floatOr(store, rankingPrefix+"text", w.Text)
	w.Recency = floatOr(store, rankingPrefix+"recency", w.Recency)
	w.Quality = floatOr(store, rankingPrefix+"quality", w.Quality)
	w.Source = floatOr(store, rankingPrefix+"source", w.Source)
	w.ContentType = floatOr(store, rankingPrefix+"content_type", w.ContentType)
	w.TitleBoost = floatOr(store, rankingPrefix+"title_boost", w.TitleBoost)
	w.TitleThreshold = floatOr(store, rankingPrefix+"title_threshold", w.TitleThreshold)
	w.IntentBoost = floatOr(store, rankingPrefix+"intent_boost", w.IntentBoost)
	w.IntentThreshold = floatOr(store, rankingPrefix+"intent_threshold", w.IntentThreshold)
	w.MinRelevance = floatOr(store, rankingPrefix+"min_relevance", w.MinRelevance)

	for _, key := range store.Keys(sourceReliabilityPrefix) {
		id := strings.TrimPrefix(key, sourceReliabilityPrefix)
		w.SourceReliability[id] = store.GetFloat(key)
	}
	for _, key := range store.Keys(typeImportancePrefix) {
		ct, err := domain.ParseContentType(strings.TrimPrefix(key, typeImportancePrefix))
		if err != nil {
			continue
		}
		w.TypeImportance[ct] = store.GetFloat(key)
	}

	if cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = cfg.MaxLimit
	}

	return cfg
}

func intOr(store driven.ConfigStore, key string, def int) int {
	if _, ok := store.Get(key); !ok {
		return def
	}
	return store.GetInt(key)
}

func floatOr(store driven.ConfigStore, key string, def float64) float64 {
	if _, ok := store.Get(key); !ok {
		return def
	}
	return store.GetFloat(key)
}

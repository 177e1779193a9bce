package domain

import "time"

// Search defaults.
const (
	DefaultLimit               = 20
	DefaultMaxLimit            = 100
	DefaultMaxQueryLength      = 1000
	DefaultSourceTimeout       = 5 * time.Second
	DefaultSimilarityThreshold = 0.8
	DefaultPerSourceLimit      = 50
)

// RankingWeights controls how the final relevance is computed.
type RankingWeights struct {
	Semantic    float64
	Text        float64
	Recency     float64
	Quality     float64
	Source      float64
	ContentType float64

	// TitleBoost is added when the title/query token-Jaccard exceeds TitleThreshold.
	TitleBoost     float64
	TitleThreshold float64

	// IntentBoost is added when the intent keyword overlap exceeds IntentThreshold.
	IntentBoost     float64
	IntentThreshold float64

	// MinRelevance drops results scoring below it after ranking.
	MinRelevance float64

	// SourceReliability is keyed by source identifier. Unknown sources score DefaultTableScore.
	SourceReliability map[string]float64

	// TypeImportance is keyed by content type. Unknown types score DefaultTableScore.
	TypeImportance map[ContentType]float64
}

// DefaultTableScore is used for sources and content types missing from the lookup tables.
const DefaultTableScore = 0.5

// DefaultRankingWeights returns the stock ranking weights and lookup tables.
func DefaultRankingWeights() RankingWeights {
	return RankingWeights{
		Semantic:        0.35,
		Text:            0.25,
		Recency:         0.15,
		Quality:         0.10,
		Source:          0.08,
		ContentType:     0.05,
		TitleBoost:      0.2,
		TitleThreshold:  0.7,
		IntentBoost:     0.15,
		IntentThreshold: 0.7,
		MinRelevance:    0.1,
		SourceReliability: map[string]float64{
			SourceWiki:    0.9,
			SourceGitHub:  0.85,
			SourceMemory:  0.8,
			SourceKanban:  0.75,
			SourceScraper: 0.6,
		},
		TypeImportance: map[ContentType]float64{
			ContentTypeWikiPage:     0.9,
			ContentTypeCodeFile:     0.85,
			ContentTypeMemoryNote:   0.8,
			ContentTypeCodeChunk:    0.75,
			ContentTypeKanbanCard:   0.7,
			ContentTypeScrapedPage:  0.6,
			ContentTypeScrapedChunk: 0.5,
		},
	}
}

// Reliability looks up a source in the reliability table.
func (w RankingWeights) Reliability(source string) float64 {
	if v, ok := w.SourceReliability[source]; ok {
		return v
	}
	return DefaultTableScore
}

// Importance looks up a content type in the importance table.
func (w RankingWeights) Importance(t ContentType) float64 {
	if v, ok := w.TypeImportance[t]; ok {
		return v
	}
	return DefaultTableScore
}

// SearchConfig holds the tunables of the search pipeline.
type SearchConfig struct {
	DefaultLimit        int
	MaxLimit            int
	MaxQueryLength      int
	SourceTimeout       time.Duration
	SimilarityThreshold float64
	PerSourceLimit      int

	// MaxConcurrency caps concurrent backend calls. Zero means one goroutine per backend.
	MaxConcurrency int

	Ranking RankingWeights
}

// DefaultSearchConfig returns the stock pipeline configuration.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		DefaultLimit:        DefaultLimit,
		MaxLimit:            DefaultMaxLimit,
		MaxQueryLength:      DefaultMaxQueryLength,
		SourceTimeout:       DefaultSourceTimeout,
		SimilarityThreshold: DefaultSimilarityThreshold,
		PerSourceLimit:      DefaultPerSourceLimit,
		Ranking:             DefaultRankingWeights(),
	}
}

package domain

import "time"

// SearchRequest is the immutable input to a federated search.
type SearchRequest struct {
	// Query is the raw user query.
	Query string `json:"query"`

	// Filters restrict which results are acceptable.
	Filters SearchFilters `json:"filters"`

	// Page is the 1-based page number. Zero means the first page.
	Page int `json:"page"`

	// Limit is the page size. Zero means the configured default.
	Limit int `json:"limit"`

	// Offset, when non-zero, overrides Page for the slice start.
	Offset int `json:"offset,omitempty"`

	// Options toggles optional matching and presentation features.
	Options SearchOptions `json:"options"`
}

// SearchFilters restricts the accepted result set.
type SearchFilters struct {
	// ContentTypes keeps only results of these types. Empty means all types.
	ContentTypes []ContentType `json:"content_types,omitempty"`

	// DateRange keeps only results created inside the range.
	DateRange *DateRange `json:"date_range,omitempty"`

	// MinQuality drops results whose quality score is known and below this floor.
	MinQuality *float64 `json:"min_quality,omitempty"`
}

// DateRange is an inclusive creation-time window. Zero bounds are open.
type DateRange struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// AllowsType reports whether the content-type filter accepts t.
func (f SearchFilters) AllowsType(t ContentType) bool {
	if len(f.ContentTypes) == 0 {
		return true
	}
	for _, ct := range f.ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// AllowsAnyType reports whether the filter accepts at least one of types.
func (f SearchFilters) AllowsAnyType(types []ContentType) bool {
	if len(f.ContentTypes) == 0 {
		return true
	}
	for _, t := range types {
		if f.AllowsType(t) {
			return true
		}
	}
	return false
}

// SearchOptions toggles optional features of a search.
type SearchOptions struct {
	// Semantic asks sources for vector/semantic matching where supported.
	Semantic bool `json:"semantic,omitempty"`

	// Fuzzy asks sources for typo-tolerant matching where supported.
	Fuzzy bool `json:"fuzzy,omitempty"`

	// IncludePreview keeps preview text in the response.
	IncludePreview bool `json:"include_preview,omitempty"`

	// IncludeHighlights adds matched-sentence snippets to each result.
	IncludeHighlights bool `json:"include_highlights,omitempty"`
}

// SearchResult represents a single search hit.
// IDs are unique per source, not globally.
type SearchResult struct {
	ID         string         `json:"id"`
	Type       ContentType    `json:"type"`
	Title      string         `json:"title"`
	Preview    string         `json:"preview,omitempty"`
	URL        string         `json:"url,omitempty"`
	Score      Score          `json:"score"`
	Metadata   ResultMetadata `json:"metadata"`
	Highlights []string       `json:"highlights,omitempty"`
}

// Key returns an identifier that is unique across sources.
func (r SearchResult) Key() string {
	return r.Metadata.Source + ":" + r.ID
}

// Score holds the unified relevance and the optional signals it is derived from.
type Score struct {
	// Relevance is the final score in [0,1] after ranking.
	// Before ranking it holds the source's native relevance.
	Relevance float64 `json:"relevance"`

	SemanticSimilarity *float64 `json:"semantic_similarity,omitempty"`
	TextMatch          *float64 `json:"text_match,omitempty"`
	RecencyBoost       *float64 `json:"recency_boost,omitempty"`
	QualityScore       *float64 `json:"quality_score,omitempty"`
}

// ResultMetadata carries provenance and type-specific fields.
type ResultMetadata struct {
	CreatedAt time.Time         `json:"created_at,omitempty"`
	UpdatedAt time.Time         `json:"updated_at,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	Source    string            `json:"source"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Field returns a type-specific metadata field or "".
func (m ResultMetadata) Field(name string) string {
	if m.Fields == nil {
		return ""
	}
	return m.Fields[name]
}

// SourceOutcome is what one backend produced for one request.
// It is created once and never mutated afterwards.
type SourceOutcome struct {
	// Source is the backend identifier.
	Source string

	// Results are the backend's hits. Empty on failure.
	Results []SearchResult

	// Elapsed is how long the backend took (or the timeout, if it timed out).
	Elapsed time.Duration

	// Err is the failure cause, nil on success.
	Err error

	// TimedOut is true when Err is a timeout.
	TimedOut bool

	// Skipped is true when the content-type filter made the backend irrelevant.
	Skipped bool
}

// Success reports whether the backend completed without error.
func (o SourceOutcome) Success() bool {
	return o.Err == nil
}

// UnifiedResponse is the merged, ranked and paginated answer to a SearchRequest.
type UnifiedResponse struct {
	RequestID    string           `json:"request_id"`
	Results      []SearchResult   `json:"results"`
	TotalCount   int              `json:"total_count"`
	Pagination   PageInfo         `json:"pagination"`
	Aggregations Aggregations     `json:"aggregations"`
	Performance  PerformanceStats `json:"performance"`
	Suggestions  []string         `json:"suggestions"`
	Facets       *FacetCollection `json:"facets,omitempty"`

	// Degraded is true when the response was produced by the failure path.
	Degraded bool `json:"degraded,omitempty"`
}

// PageInfo echoes the pagination that was applied.
type PageInfo struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Aggregations are facet-free summary statistics over the deduplicated set.
type Aggregations struct {
	ByType       map[ContentType]int `json:"by_type"`
	ByDate       DateBuckets         `json:"by_date"`
	TopTags      []TagCount          `json:"top_tags"`
	Languages    []NamedCount        `json:"languages,omitempty"`
	Repositories []NamedCount        `json:"repositories,omitempty"`
}

// EmptyAggregations returns a well-formed zero-valued Aggregations.
func EmptyAggregations() Aggregations {
	return Aggregations{
		ByType:  map[ContentType]int{},
		TopTags: []TagCount{},
	}
}

// DateBuckets counts results by creation age. Buckets are exclusive.
type DateBuckets struct {
	Last24h int `json:"last_24h"`
	Last7d  int `json:"last_7d"`
	Last30d int `json:"last_30d"`
	Older   int `json:"older"`
}

// TagCount is a tag and how many results carry it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// NamedCount is a metadata value and how many results carry it.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PerformanceStats describes where the time went.
type PerformanceStats struct {
	TotalMs           int64         `json:"total_ms"`
	QueryProcessingMs int64         `json:"query_processing_ms"`
	SearchMs          int64         `json:"search_ms"`
	MergeMs           int64         `json:"merge_ms"`
	RankingMs         int64         `json:"ranking_ms"`
	SourcesQueried    int           `json:"sources_queried"`
	SourcesSucceeded  int           `json:"sources_succeeded"`
	SourcesFailed     int           `json:"sources_failed"`
	SourcesTimedOut   int           `json:"sources_timed_out"`
	SourcesSkipped    int           `json:"sources_skipped"`
	DocumentsSearched int           `json:"documents_searched"`
	CacheHit          bool          `json:"cache_hit"`
	Sources           []SourceStats `json:"sources,omitempty"`
}

// SourceStats is the per-backend slice of PerformanceStats.
type SourceStats struct {
	Source    string `json:"source"`
	Count     int    `json:"count"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Success   bool   `json:"success"`
	TimedOut  bool   `json:"timed_out,omitempty"`
	Skipped   bool   `json:"skipped,omitempty"`
	Error     string `json:"error,omitempty"`
}

// FacetCollection groups dynamically discovered facets.
type FacetCollection struct {
	Facets []Facet `json:"facets"`
}

// Facet is one dimension results can be narrowed by.
type Facet struct {
	Name   string       `json:"name"`
	Label  string       `json:"label"`
	Values []FacetValue `json:"values"`
}

// FacetValue is one selectable value of a Facet.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FacetOptions tunes facet generation.
type FacetOptions struct {
	// MaxValues caps the values per facet. Zero means the generator default.
	MaxValues int

	// MinCount drops values seen fewer times.
	MinCount int
}

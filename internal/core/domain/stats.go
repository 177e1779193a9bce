package domain

import "time"

// AnalyticsEvent is one completed search, recorded best-effort.
type AnalyticsEvent struct {
	ID              string
	RequestID       string
	Query           string
	NormalizedQuery string
	Intent          Intent
	UserID          string
	SessionID       string
	ResultCount     int
	TotalCount      int
	Duration        time.Duration
	CacheHit        bool
	SourcesFailed   int
	Degraded        bool
	CreatedAt       time.Time
}

// AnalyticsStats summarises recorded searches.
type AnalyticsStats struct {
	TotalSearches     int           `json:"total_searches"`
	AverageDurationMs float64       `json:"average_duration_ms"`
	CacheHitRate      float64       `json:"cache_hit_rate"`
	ZeroResultRate    float64       `json:"zero_result_rate"`
	DegradedCount     int           `json:"degraded_count"`
	TopQueries        []QueryCount  `json:"top_queries"`
	Since             time.Time     `json:"since,omitempty"`
	Window            time.Duration `json:"window,omitempty"`
}

// QueryCount is a normalized query and how often it was searched.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// CacheStats describes the response cache.
type CacheStats struct {
	Backend string  `json:"backend"`
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// ComputeHitRate fills HitRate from Hits and Misses.
func (s *CacheStats) ComputeHitRate() {
	total := s.Hits + s.Misses
	if total == 0 {
		s.HitRate = 0
		return
	}
	s.HitRate = float64(s.Hits) / float64(total)
}

// SourceInfo describes a registered backend.
type SourceInfo struct {
	ID           string        `json:"id"`
	ContentTypes []ContentType `json:"content_types"`
}

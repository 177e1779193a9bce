package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

// Ensure Analytics implements the interface.
var _ driven.AnalyticsGateway = (*Analytics)(nil)

// DefaultTopQueries is how many queries Stats reports.
const DefaultTopQueries = 10

// Analytics is an in-memory implementation of driven.AnalyticsGateway.
type Analytics struct {
	mu     sync.RWMutex
	events []domain.AnalyticsEvent
}

// NewAnalytics creates an empty in-memory analytics gateway.
func NewAnalytics() *Analytics {
	return &Analytics{}
}

// Record appends an event.
func (a *Analytics) Record(_ context.Context, event domain.AnalyticsEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}

// Events returns a copy of every recorded event.
func (a *Analytics) Events() []domain.AnalyticsEvent {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]domain.AnalyticsEvent, len(a.events))
	copy(out, a.events)
	return out
}

// Stats summarises every recorded event.
func (a *Analytics) Stats(_ context.Context) (domain.AnalyticsStats, error) {
	return Summarize(a.Events(), DefaultTopQueries), nil
}

// Summarize computes AnalyticsStats over events.
// Top queries are ordered by count, then by first appearance.
func Summarize(events []domain.AnalyticsEvent, topN int) domain.AnalyticsStats {
	stats := domain.AnalyticsStats{TopQueries: []domain.QueryCount{}}
	if len(events) == 0 {
		return stats
	}

	var (
		totalMs  float64
		hits     int
		zero     int
		counts   = make(map[string]int)
		order    []string
		earliest = events[0].CreatedAt
	)
	for _, e := range events {
		totalMs += float64(e.Duration.Milliseconds())
		if e.CacheHit {
			hits++
		}
		if e.TotalCount == 0 {
			zero++
		}
		if e.Degraded {
			stats.DegradedCount++
		}
		if e.CreatedAt.Before(earliest) {
			earliest = e.CreatedAt
		}
		q := e.NormalizedQuery
		if q == "" {
			q = e.Query
		}
		if _, seen := counts[q]; !seen {
			order = append(order, q)
		}
		counts[q]++
	}

	n := float64(len(events))
	stats.TotalSearches = len(events)
	stats.AverageDurationMs = totalMs / n
	stats.CacheHitRate = float64(hits) / n
	stats.ZeroResultRate = float64(zero) / n
	stats.Since = earliest

	top := make([]domain.QueryCount, 0, len(order))
	for _, q := range order {
		top = append(top, domain.QueryCount{Query: q, Count: counts[q]})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if topN > 0 && len(top) > topN {
		top = top[:topN]
	}
	stats.TopQueries = top
	return stats
}

package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/four-robots/unisearch/internal/core/domain"
)

func searchEvent(query string, total int, d time.Duration, at time.Time) domain.AnalyticsEvent {
	return domain.AnalyticsEvent{
		RequestID:       "req",
		Query:           query,
		NormalizedQuery: query,
		Intent:          domain.IntentGeneral,
		TotalCount:      total,
		ResultCount:     total,
		Duration:        d,
		CreatedAt:       at,
	}
}

func TestAnalytics_EmptyStats(t *testing.T) {
	stats, err := newTestStore(t).Analytics().Stats(context.Background())

	require.NoError(t, err)
	assert.Zero(t, stats.TotalSearches)
	assert.NotNil(t, stats.TopQueries)
}

func TestAnalytics_RecordAndStats(t *testing.T) {
	a := newTestStore(t).Analytics()
	ctx := context.Background()

	require.NoError(t, a.Record(ctx, searchEvent("deploy", 3, 100*time.Millisecond, baseTime)))
	require.NoError(t, a.Record(ctx, searchEvent("kafka", 0, 300*time.Millisecond, baseTime.Add(time.Minute))))
	hit := searchEvent("kafka", 0, 0, baseTime.Add(2*time.Minute))
	hit.CacheHit = true
	require.NoError(t, a.Record(ctx, hit))
	degraded := searchEvent("", 0, 200*time.Millisecond, baseTime.Add(3*time.Minute))
	degraded.Query = "Broken"
	degraded.Degraded = true
	require.NoError(t, a.Record(ctx, degraded))

	stats, err := a.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalSearches)
	assert.InDelta(t, 150.0, stats.AverageDurationMs, 1e-9)
	assert.InDelta(t, 0.25, stats.CacheHitRate, 1e-9)
	assert.InDelta(t, 0.75, stats.ZeroResultRate, 1e-9)
	assert.Equal(t, 1, stats.DegradedCount)
	assert.True(t, baseTime.Equal(stats.Since))
	assert.Equal(t, []domain.QueryCount{
		{Query: "kafka", Count: 2},
		{Query: "deploy", Count: 1},
		{Query: "Broken", Count: 1},
	}, stats.TopQueries)
}

func TestAnalytics_RecordFillsIDAndTimestamp(t *testing.T) {
	store := newTestStore(t)
	a := store.Analytics()
	a.now = func() time.Time { return baseTime }

	require.NoError(t, a.Record(context.Background(), domain.AnalyticsEvent{Query: "q"}))

	var id string
	var created int64
	require.NoError(t, store.db.QueryRow("SELECT id, created_at FROM search_events").Scan(&id, &created))
	assert.Len(t, id, 36)
	assert.Equal(t, baseTime.UnixMilli(), created)
}

func TestAnalytics_Window(t *testing.T) {
	a := newTestStore(t).Analytics().WithWindow(time.Hour)
	a.now = func() time.Time { return baseTime.Add(2 * time.Hour) }
	ctx := context.Background()

	require.NoError(t, a.Record(ctx, searchEvent("old", 1, 0, baseTime)))
	require.NoError(t, a.Record(ctx, searchEvent("new", 1, 0, baseTime.Add(90*time.Minute))))

	stats, err := a.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSearches)
	assert.Equal(t, time.Hour, stats.Window)
	assert.Equal(t, "new", stats.TopQueries[0].Query)
}

func TestAnalytics_DuplicateIDFails(t *testing.T) {
	a := newTestStore(t).Analytics()
	ctx := context.Background()
	e := searchEvent("q", 1, 0, baseTime)
	e.ID = "fixed"

	require.NoError(t, a.Record(ctx, e))
	assert.Error(t, a.Record(ctx, e))
}

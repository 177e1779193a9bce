package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

// DefaultTopQueries is how many queries Stats reports.
const DefaultTopQueries = 10

// Analytics implements driven.AnalyticsGateway over the search_events table.
type Analytics struct {
	db     *sql.DB
	window time.Duration
	now    func() time.Time
}

var _ driven.AnalyticsGateway = (*Analytics)(nil)

func newAnalytics(db *sql.DB) *Analytics {
	return &Analytics{db: db, now: time.Now}
}

// WithWindow limits Stats to events newer than window. Zero means all events.
func (a *Analytics) WithWindow(window time.Duration) *Analytics {
	a.window = window
	return a
}

// Record inserts one event. Missing IDs and timestamps are filled in.
func (a *Analytics) Record(ctx context.Context, event domain.AnalyticsEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = a.now()
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO search_events (id, request_id, query, normalized_query, intent, user_id, session_id,
			result_count, total_count, duration_ms, cache_hit, sources_failed, degraded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, event.RequestID, event.Query, event.NormalizedQuery, string(event.Intent),
		event.UserID, event.SessionID, event.ResultCount, event.TotalCount,
		event.Duration.Milliseconds(), boolInt(event.CacheHit), event.SourcesFailed,
		boolInt(event.Degraded), event.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("recording search event: %w", err)
	}
	return nil
}

// Stats summarises recorded events.
func (a *Analytics) Stats(ctx context.Context) (domain.AnalyticsStats, error) {
	stats := domain.AnalyticsStats{TopQueries: []domain.QueryCount{}, Window: a.window}

	var since int64
	if a.window > 0 {
		since = a.now().Add(-a.window).UnixMilli()
	}

	var (
		avgDuration, hitRate, zeroRate sql.NullFloat64
		degraded                       sql.NullInt64
		earliest                       sql.NullInt64
	)
	row := a.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			AVG(duration_ms),
			AVG(cache_hit),
			AVG(CASE WHEN total_count = 0 THEN 1.0 ELSE 0.0 END),
			SUM(degraded),
			MIN(created_at)
		FROM search_events WHERE created_at >= ?
	`, since)
	if err := row.Scan(&stats.TotalSearches, &avgDuration, &hitRate, &zeroRate, &degraded, &earliest); err != nil {
		return stats, fmt.Errorf("summarising search events: %w", err)
	}
	if stats.TotalSearches == 0 {
		return stats, nil
	}

	stats.AverageDurationMs = avgDuration.Float64
	stats.CacheHitRate = hitRate.Float64
	stats.ZeroResultRate = zeroRate.Float64
	stats.DegradedCount = int(degraded.Int64)
	if earliest.Valid {
		stats.Since = time.UnixMilli(earliest.Int64).UTC()
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT CASE WHEN normalized_query = '' THEN query ELSE normalized_query END AS q,
			COUNT(*) AS n, MIN(rowid) AS first_seen
		FROM search_events WHERE created_at >= ?
		GROUP BY q
		ORDER BY n DESC, first_seen
		LIMIT ?
	`, since, DefaultTopQueries)
	if err != nil {
		return stats, fmt.Errorf("querying top queries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			qc    domain.QueryCount
			first int64
		)
		if err := rows.Scan(&qc.Query, &qc.Count, &first); err != nil {
			return stats, fmt.Errorf("scanning top query: %w", err)
		}
		stats.TopQueries = append(stats.TopQueries, qc)
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterating top queries: %w", err)
	}
	return stats, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
	"github.com/four-robots/unisearch/internal/core/ports/driving"
	"github.com/four-robots/unisearch/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Search response statuses reported to SearchMetrics.
const (
	searchStatusOK       = "ok"
	searchStatusCached   = "cached"
	searchStatusDegraded = "degraded"
	searchStatusInvalid  = "invalid"
)

// backgroundTimeout bounds each cache or analytics write.
const backgroundTimeout = 5 * time.Second

// SearchService runs the federated search pipeline: validate, understand,
// consult the cache, fan out, merge, deduplicate, rank, aggregate, paginate.
type SearchService struct {
	ports         []driven.SourcePort
	understanding driven.QueryUnderstanding
	cache         driven.CacheGateway
	analytics     driven.AnalyticsGateway
	facets        driven.FacetGenerator
	metrics       driven.SearchMetrics
	dispatcher    *Dispatcher
	log           *zap.Logger
	now           func() time.Time

	mu  sync.RWMutex
	cfg domain.SearchConfig

	dedup  *ResultDeduplicator
	ranker *ResultRanker
}

// Option configures a SearchService.
type Option func(*SearchService)

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *SearchService) {
		s.log = logger.OrNop(log)
	}
}

// WithConfig sets the pipeline configuration. Default is domain.DefaultSearchConfig().
func WithConfig(cfg domain.SearchConfig) Option {
	return func(s *SearchService) {
		s.cfg = cfg
	}
}

// WithCache enables the response cache.
func WithCache(cache driven.CacheGateway) Option {
	return func(s *SearchService) {
		s.cache = cache
	}
}

// WithAnalytics enables search analytics.
func WithAnalytics(analytics driven.AnalyticsGateway) Option {
	return func(s *SearchService) {
		s.analytics = analytics
	}
}

// WithFacets enables facet generation.
func WithFacets(facets driven.FacetGenerator) Option {
	return func(s *SearchService) {
		s.facets = facets
	}
}

// WithMetrics enables pipeline instrumentation.
func WithMetrics(metrics driven.SearchMetrics) Option {
	return func(s *SearchService) {
		s.metrics = metrics
	}
}

// WithDispatcher runs cache and analytics writes on d.
// Without one each write gets its own goroutine.
func WithDispatcher(d *Dispatcher) Option {
	return func(s *SearchService) {
		s.dispatcher = d
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *SearchService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSearchService creates a search service over ports, queried in the given order.
// understanding may be nil, in which case queries get minimal processing.
func NewSearchService(
	ports []driven.SourcePort, understanding driven.QueryUnderstanding, opts ...Option,
) *SearchService {
	s := &SearchService{
		ports:         append([]driven.SourcePort(nil), ports...),
		understanding: understanding,
		log:           zap.NewNop(),
		now:           time.Now,
		cfg:           domain.DefaultSearchConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dedup = NewResultDeduplicator(s.log)
	s.ranker = NewResultRanker(s.log)
	return s
}

// UpdateConfig swaps the configuration used by subsequent searches.
func (s *SearchService) UpdateConfig(cfg domain.SearchConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	s.log.Info("search configuration updated",
		zap.Int("default_limit", cfg.DefaultLimit),
		zap.Duration("source_timeout", cfg.SourceTimeout))
}

// Config returns the configuration currently in effect.
func (s *SearchService) Config() domain.SearchConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Search runs one federated search. Only validation failures are returned as
// errors; any other failure yields an empty degraded response.
func (s *SearchService) Search(
	ctx context.Context, req domain.SearchRequest, userID, sessionID string,
) (resp domain.UnifiedResponse, err error) {
	start := s.now()
	cfg := s.Config()

	validated, err := req.Validate(cfg)
	if err != nil {
		s.log.Debug("search request rejected", zap.Error(err))
		s.observeSearch(searchStatusInvalid, s.now().Sub(start), 0)
		return domain.UnifiedResponse{}, err
	}

	requestID := uuid.NewString()
	log := s.log.With(zap.String("request_id", requestID))

	defer func() {
		if r := recover(); r != nil {
			elapsed := s.now().Sub(start)
			log.Error("search pipeline failed, returning degraded response",
				zap.Any("panic", r),
				zap.String("query", validated.Query))
			resp = degradedResponse(requestID, validated, elapsed)
			err = nil
			s.observeSearch(searchStatusDegraded, elapsed, 0)
			s.recordAnalytics(ctx, resp, validated, minimalQuery(validated), userID, sessionID)
		}
	}()

	return s.run(ctx, log, requestID, validated, cfg, start, userID, sessionID), nil
}

// run is the pipeline body. Panics escape to Search.
func (s *SearchService) run(
	ctx context.Context,
	log *zap.Logger,
	requestID string,
	req domain.SearchRequest,
	cfg domain.SearchConfig,
	start time.Time,
	userID, sessionID string,
) domain.UnifiedResponse {
	query := s.process(ctx, log, req)
	processedAt := s.now()

	fingerprint := Fingerprint(req)
	if cached, ok := s.lookup(ctx, log, fingerprint); ok {
		cached.RequestID = requestID
		cached.Performance.CacheHit = true
		cached.Performance.TotalMs = s.now().Sub(start).Milliseconds()
		s.observeSearch(searchStatusCached, s.now().Sub(start), cached.TotalCount)
		s.recordAnalytics(ctx, cached, req, query, userID, sessionID)
		log.Debug("search served from cache", zap.Int("total", cached.TotalCount))
		return cached
	}

	orchestrator := NewSearchOrchestrator(log, s.metrics, cfg.MaxConcurrency, cfg.PerSourceLimit)
	outcomes := orchestrator.Execute(ctx, query, req, s.ports, cfg.SourceTimeout)
	searchedAt := s.now()

	perf := summarizeOutcomes(outcomes)

	merged := mergeOutcomes(outcomes)
	filtered := enforceFilters(merged, req.Filters)
	if dropped := len(merged) - len(filtered); dropped > 0 {
		log.Debug("dropped results outside request filters", zap.Int("dropped", dropped))
	}
	deduped := s.dedup.Deduplicate(filtered, cfg.SimilarityThreshold)
	mergedAt := s.now()

	ranked := s.ranker.Rank(deduped, query, cfg.Ranking)
	rankedAt := s.now()

	aggregations := NewAggregationBuilder(s.now).Aggregate(ranked)
	page := Paginate(ranked, req.Page, req.Limit, req.Offset)
	page = decorate(page, query, req.Options)

	resp := domain.UnifiedResponse{
		RequestID:    requestID,
		Results:      page,
		TotalCount:   len(ranked),
		Pagination:   NewPageInfo(len(ranked), req.Page, req.Limit, req.Offset),
		Aggregations: aggregations,
		Suggestions:  buildSuggestions(query, ranked, req.Limit),
		Facets:       s.generateFacets(ctx, log, ranked, query),
	}

	perf.QueryProcessingMs = processedAt.Sub(start).Milliseconds()
	perf.SearchMs = searchedAt.Sub(processedAt).Milliseconds()
	perf.MergeMs = mergedAt.Sub(searchedAt).Milliseconds()
	perf.RankingMs = rankedAt.Sub(mergedAt).Milliseconds()
	perf.TotalMs = s.now().Sub(start).Milliseconds()
	resp.Performance = perf

	log.Info("search completed",
		zap.String("intent", string(query.Intent)),
		zap.Int("total", resp.TotalCount),
		zap.Int("returned", len(resp.Results)),
		zap.Int("sources_failed", perf.SourcesFailed+perf.SourcesTimedOut),
		zap.Int64("total_ms", perf.TotalMs))

	s.observeSearch(searchStatusOK, s.now().Sub(start), resp.TotalCount)

	// Partial answers are not cached so a recovered backend is seen on the next call.
	if perf.SourcesFailed == 0 && perf.SourcesTimedOut == 0 && perf.SourcesSucceeded > 0 {
		s.store(ctx, fingerprint, resp)
	}
	s.recordAnalytics(ctx, resp, req, query, userID, sessionID)

	return resp
}

// process runs query understanding, falling back to minimal processing on failure.
func (s *SearchService) process(ctx context.Context, log *zap.Logger, req domain.SearchRequest) domain.ProcessedQuery {
	if s.understanding == nil {
		return minimalQuery(req)
	}

	query, err := s.understanding.Process(ctx, req)
	if err != nil {
		log.Warn("query understanding failed, using minimal processing", zap.Error(err))
		return minimalQuery(req)
	}

	if query.Original == "" {
		query.Original = req.Query
	}
	if query.Normalized == "" {
		query.Normalized = normalizeText(req.Query)
	}
	if query.Intent == "" {
		query.Intent = domain.IntentGeneral
	}
	log.Debug("query processed",
		zap.String("normalized", query.Normalized),
		zap.Strings("keywords", query.Keywords),
		zap.String("intent", string(query.Intent)))
	return query
}

// minimalQuery is the processing applied when no understanding is available.
func minimalQuery(req domain.SearchRequest) domain.ProcessedQuery {
	normalized := normalizeText(req.Query)
	seen := make(map[string]struct{})
	var keywords []string
	for _, t := range tokens(normalized) {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		keywords = append(keywords, t)
	}
	return domain.ProcessedQuery{
		Original:   req.Query,
		Normalized: normalized,
		Keywords:   keywords,
		Intent:     domain.IntentGeneral,
	}
}

func (s *SearchService) lookup(ctx context.Context, log *zap.Logger, fingerprint string) (domain.UnifiedResponse, bool) {
	if s.cache == nil {
		return domain.UnifiedResponse{}, false
	}
	cached, ok, err := s.cache.Get(ctx, fingerprint)
	if err != nil {
		log.Warn("cache lookup failed", zap.Error(err))
		return domain.UnifiedResponse{}, false
	}
	if !ok || cached == nil {
		return domain.UnifiedResponse{}, false
	}
	return *cached, true
}

func (s *SearchService) store(ctx context.Context, fingerprint string, resp domain.UnifiedResponse) {
	if s.cache == nil {
		return
	}
	cache := s.cache
	log := s.log
	s.background(ctx, "cache_put", func(bg context.Context) {
		if err := cache.Put(bg, fingerprint, resp); err != nil {
			log.Warn("cache write failed", zap.String("request_id", resp.RequestID), zap.Error(err))
		}
	})
}

func (s *SearchService) recordAnalytics(
	ctx context.Context,
	resp domain.UnifiedResponse,
	req domain.SearchRequest,
	query domain.ProcessedQuery,
	userID, sessionID string,
) {
	if s.analytics == nil {
		return
	}
	event := domain.AnalyticsEvent{
		ID:              uuid.NewString(),
		RequestID:       resp.RequestID,
		Query:           req.Query,
		NormalizedQuery: query.Normalized,
		Intent:          query.Intent,
		UserID:          userID,
		SessionID:       sessionID,
		ResultCount:     len(resp.Results),
		TotalCount:      resp.TotalCount,
		Duration:        time.Duration(resp.Performance.TotalMs) * time.Millisecond,
		CacheHit:        resp.Performance.CacheHit,
		SourcesFailed:   resp.Performance.SourcesFailed + resp.Performance.SourcesTimedOut,
		Degraded:        resp.Degraded,
		CreatedAt:       s.now(),
	}
	analytics := s.analytics
	log := s.log
	s.background(ctx, "analytics_record", func(bg context.Context) {
		if err := analytics.Record(bg, event); err != nil {
			log.Warn("analytics write failed", zap.String("request_id", event.RequestID), zap.Error(err))
		}
	})
}

// background runs fn detached from the request's cancellation.
func (s *SearchService) background(ctx context.Context, name string, fn func(context.Context)) {
	detached := context.WithoutCancel(ctx)
	task := func() {
		bg, cancel := context.WithTimeout(detached, backgroundTimeout)
		defer cancel()
		fn(bg)
	}
	if s.dispatcher != nil {
		s.dispatcher.Submit(name, task)
		return
	}
	go task()
}

// generateFacets returns nil when facets are disabled, the set is empty or generation fails.
func (s *SearchService) generateFacets(
	ctx context.Context, log *zap.Logger, results []domain.SearchResult, query domain.ProcessedQuery,
) (facets *domain.FacetCollection) {
	if s.facets == nil || len(results) == 0 {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			log.Warn("facet generation panicked", zap.Any("panic", r))
			facets = nil
		}
	}()

	fc, err := s.facets.Generate(ctx, results, query, domain.FacetOptions{})
	if err != nil {
		log.Warn("facet generation failed", zap.Error(err))
		return nil
	}
	return fc
}

func (s *SearchService) observeSearch(status string, elapsed time.Duration, total int) {
	if s.metrics != nil {
		s.metrics.ObserveSearch(status, elapsed, total)
	}
}

// Sources lists the registered backends in query order.
func (s *SearchService) Sources() []domain.SourceInfo {
	infos := make([]domain.SourceInfo, 0, len(s.ports))
	for _, p := range s.ports {
		infos = append(infos, domain.SourceInfo{ID: p.ID(), ContentTypes: p.ContentTypes()})
	}
	return infos
}

// AnalyticsStats summarises recorded searches.
func (s *SearchService) AnalyticsStats(ctx context.Context) (domain.AnalyticsStats, error) {
	if s.analytics == nil {
		return domain.AnalyticsStats{}, domain.ErrAnalyticsUnavailable
	}
	stats, err := s.analytics.Stats(ctx)
	if err != nil {
		return domain.AnalyticsStats{}, fmt.Errorf("analytics stats: %w", err)
	}
	return stats, nil
}

// CacheStats reports the response cache counters.
func (s *SearchService) CacheStats(ctx context.Context) (domain.CacheStats, error) {
	if s.cache == nil {
		return domain.CacheStats{}, domain.ErrCacheUnavailable
	}
	stats, err := s.cache.Stats(ctx)
	if err != nil {
		return domain.CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	return stats, nil
}

// ClearCache empties the response cache.
func (s *SearchService) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return domain.ErrCacheUnavailable
	}
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	s.log.Info("response cache cleared")
	return nil
}

// summarizeOutcomes fills the source counters of PerformanceStats.
func summarizeOutcomes(outcomes []domain.SourceOutcome) domain.PerformanceStats {
	perf := domain.PerformanceStats{
		SourcesQueried: len(outcomes),
		Sources:        make([]domain.SourceStats, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		st := domain.SourceStats{
			Source:    o.Source,
			Count:     len(o.Results),
			ElapsedMs: o.Elapsed.Milliseconds(),
			Success:   o.Success(),
			TimedOut:  o.TimedOut,
			Skipped:   o.Skipped,
		}
		switch {
		case o.Skipped:
			perf.SourcesSkipped++
		case o.TimedOut:
			perf.SourcesTimedOut++
		case !o.Success():
			perf.SourcesFailed++
		default:
			perf.SourcesSucceeded++
			perf.DocumentsSearched += len(o.Results)
		}
		if o.Err != nil {
			st.Error = o.Err.Error()
		}
		perf.Sources = append(perf.Sources, st)
	}
	return perf
}

// mergeOutcomes concatenates successful results in source order.
func mergeOutcomes(outcomes []domain.SourceOutcome) []domain.SearchResult {
	n := 0
	for _, o := range outcomes {
		n += len(o.Results)
	}
	merged := make([]domain.SearchResult, 0, n)
	for _, o := range outcomes {
		if o.Success() {
			merged = append(merged, o.Results...)
		}
	}
	return merged
}

// enforceFilters drops results a backend returned despite the request filters.
// Results without a creation time fail any date range.
func enforceFilters(results []domain.SearchResult, f domain.SearchFilters) []domain.SearchResult {
	out := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		if !f.AllowsType(r.Type) {
			continue
		}
		if f.DateRange != nil && (r.Metadata.CreatedAt.IsZero() || !f.DateRange.Contains(r.Metadata.CreatedAt)) {
			continue
		}
		if f.MinQuality != nil && r.Score.QualityScore != nil && *r.Score.QualityScore < *f.MinQuality {
			continue
		}
		out = append(out, r)
	}
	return out
}

// decorate adds highlights and strips previews on the returned page.
func decorate(page []domain.SearchResult, query domain.ProcessedQuery, opts domain.SearchOptions) []domain.SearchResult {
	var terms []string
	if opts.IncludeHighlights {
		terms = highlightTerms(query.Keywords, query.Normalized)
	}
	for i := range page {
		if opts.IncludeHighlights {
			page[i].Highlights = generateHighlights(page[i].Preview, terms)
		}
		if !opts.IncludePreview {
			page[i].Preview = ""
		}
	}
	return page
}

// degradedResponse is the well-formed empty answer returned when the pipeline fails.
func degradedResponse(requestID string, req domain.SearchRequest, elapsed time.Duration) domain.UnifiedResponse {
	return domain.UnifiedResponse{
		RequestID:    requestID,
		Results:      []domain.SearchResult{},
		TotalCount:   0,
		Pagination:   NewPageInfo(0, req.Page, req.Limit, req.Offset),
		Aggregations: domain.EmptyAggregations(),
		Performance:  domain.PerformanceStats{TotalMs: elapsed.Milliseconds()},
		Suggestions:  []string{},
		Degraded:     true,
	}
}

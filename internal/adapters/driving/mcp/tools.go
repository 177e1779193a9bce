package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query         string   `json:"query" jsonschema:"the search query"`
	Limit         int      `json:"limit,omitempty" jsonschema:"page size (default from configuration)"`
	Page          int      `json:"page,omitempty" jsonschema:"1-based page number"`
	Offset        int      `json:"offset,omitempty" jsonschema:"result offset, overrides page when set"`
	ContentTypes  []string `json:"content_types,omitempty" jsonschema:"restrict to these content types, e.g. wiki_page or code_file"`
	CreatedAfter  string   `json:"created_after,omitempty" jsonschema:"RFC 3339 timestamp or YYYY-MM-DD"`
	CreatedBefore string   `json:"created_before,omitempty" jsonschema:"RFC 3339 timestamp or YYYY-MM-DD"`
	MinQuality    *float64 `json:"min_quality,omitempty" jsonschema:"drop results whose quality score is below this value (0-1)"`
	Semantic      bool     `json:"semantic,omitempty" jsonschema:"ask backends for semantic matching"`
	Fuzzy         bool     `json:"fuzzy,omitempty" jsonschema:"ask backends for typo-tolerant matching"`
	Highlights    bool     `json:"highlights,omitempty" jsonschema:"include matched sentence snippets"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	RequestID     string         `json:"request_id"`
	Results       []ResultOutput `json:"results"`
	Count         int            `json:"count"`
	TotalCount    int            `json:"total_count"`
	Page          int            `json:"page"`
	TotalPages    int            `json:"total_pages"`
	HasNext       bool           `json:"has_next"`
	ByType        map[string]int `json:"by_type"`
	Suggestions   []string       `json:"suggestions"`
	SourcesFailed []string       `json:"sources_failed"`
	TookMs        int64          `json:"took_ms"`
	CacheHit      bool           `json:"cache_hit"`
	Degraded      bool           `json:"degraded"`
}

// ResultOutput represents a single search result.
type ResultOutput struct {
	ID         string   `json:"id"`
	Source     string   `json:"source"`
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	Preview    string   `json:"preview,omitempty"`
	URL        string   `json:"url,omitempty"`
	Score      float64  `json:"score"`
	Tags       []string `json:"tags,omitempty"`
	Highlights []string `json:"highlights,omitempty"`
	CreatedAt  string   `json:"created_at,omitempty"`
}

// EmptyInput is the input of tools without arguments.
type EmptyInput struct{}

// AnalyticsOutput is the output schema for the analytics_stats tool.
type AnalyticsOutput struct {
	TotalSearches     int           `json:"total_searches"`
	AverageDurationMs float64       `json:"average_duration_ms"`
	CacheHitRate      float64       `json:"cache_hit_rate"`
	ZeroResultRate    float64       `json:"zero_result_rate"`
	DegradedCount     int           `json:"degraded_count"`
	TopQueries        []QueryOutput `json:"top_queries"`
	Since             string        `json:"since,omitempty"`
}

// QueryOutput is a frequently searched query.
type QueryOutput struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// ClearCacheOutput is the output schema for the clear_cache tool.
type ClearCacheOutput struct {
	Cleared bool `json:"cleared"`
}

// AddDocumentInput is the input schema for the add_document tool.
type AddDocumentInput struct {
	Source  string   `json:"source" jsonschema:"local source: memory, kanban or wiki"`
	ID      string   `json:"id,omitempty" jsonschema:"document id, generated when empty"`
	Title   string   `json:"title,omitempty" jsonschema:"document title"`
	Content string   `json:"content" jsonschema:"document body"`
	URI     string   `json:"uri,omitempty" jsonschema:"link to the original"`
	Tags    []string `json:"tags,omitempty" jsonschema:"tags"`
}

// DocumentOutput describes a stored document.
type DocumentOutput struct {
	Source    string `json:"source"`
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search memory notes, kanban cards, wiki pages, scraped pages and code in one query",
	}, s.handleSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cache_stats",
		Description: "Show response cache size and hit rate",
	}, s.handleCacheStats)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analytics_stats",
		Description: "Summarise recorded searches: volume, latency, zero-result rate and top queries",
	}, s.handleAnalyticsStats)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_cache",
		Description: "Drop every cached search response",
	}, s.handleClearCache)
	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "add_document",
			Description: "Add a note, card or page to a local source so it becomes searchable",
		}, s.handleAddDocument)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	req, err := toRequest(input)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	resp, err := s.ports.Search.Search(ctx, req, "", "")
	if err != nil {
		return nil, SearchOutput{}, err
	}
	s.log.Debug("search tool",
		zap.String("request_id", resp.RequestID),
		zap.Int("total", resp.TotalCount))
	return nil, toOutput(resp), nil
}

// toRequest converts tool input into a SearchRequest.
func toRequest(input SearchInput) (domain.SearchRequest, error) {
	req := domain.SearchRequest{
		Query:  input.Query,
		Page:   input.Page,
		Limit:  input.Limit,
		Offset: input.Offset,
		Options: domain.SearchOptions{
			Semantic:          input.Semantic,
			Fuzzy:             input.Fuzzy,
			IncludePreview:    true,
			IncludeHighlights: input.Highlights,
		},
	}
	for _, raw := range input.ContentTypes {
		t, err := domain.ParseContentType(raw)
		if err != nil {
			return domain.SearchRequest{}, err
		}
		req.Filters.ContentTypes = append(req.Filters.ContentTypes, t)
	}

	from, err := parseTime("created_after", input.CreatedAfter)
	if err != nil {
		return domain.SearchRequest{}, err
	}
	to, err := parseTime("created_before", input.CreatedBefore)
	if err != nil {
		return domain.SearchRequest{}, err
	}
	if !from.IsZero() || !to.IsZero() {
		req.Filters.DateRange = &domain.DateRange{From: from, To: to}
	}
	req.Filters.MinQuality = input.MinQuality
	return req, nil
}

// parseTime accepts RFC 3339 or a bare date. Empty is the zero time.
func parseTime(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, fmt.Sprintf("cannot parse %q as a date", value))
	}
	return t, nil
}

func toOutput(resp domain.UnifiedResponse) SearchOutput {
	out := SearchOutput{
		RequestID:     resp.RequestID,
		Results:       make([]ResultOutput, len(resp.Results)),
		Count:         len(resp.Results),
		TotalCount:    resp.TotalCount,
		Page:          resp.Pagination.Page,
		TotalPages:    resp.Pagination.TotalPages,
		HasNext:       resp.Pagination.HasNext,
		ByType:        make(map[string]int, len(resp.Aggregations.ByType)),
		Suggestions:   append([]string{}, resp.Suggestions...),
		SourcesFailed: []string{},
		TookMs:        resp.Performance.TotalMs,
		CacheHit:      resp.Performance.CacheHit,
		Degraded:      resp.Degraded,
	}
	for i, r := range resp.Results {
		ro := ResultOutput{
			ID:         r.ID,
			Source:     r.Metadata.Source,
			Type:       string(r.Type),
			Title:      r.Title,
			Preview:    r.Preview,
			URL:        r.URL,
			Score:      r.Score.Relevance,
			Tags:       r.Metadata.Tags,
			Highlights: r.Highlights,
		}
		if !r.Metadata.CreatedAt.IsZero() {
			ro.CreatedAt = r.Metadata.CreatedAt.UTC().Format(time.RFC3339)
		}
		out.Results[i] = ro
	}
	for t, n := range resp.Aggregations.ByType {
		out.ByType[string(t)] = n
	}
	for _, src := range resp.Performance.Sources {
		if !src.Success && !src.Skipped {
			out.SourcesFailed = append(out.SourcesFailed, src.Source)
		}
	}
	return out
}

// handleCacheStats handles the cache_stats tool invocation.
func (s *Server) handleCacheStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, domain.CacheStats, error) {
	stats, err := s.ports.Search.CacheStats(ctx)
	if err != nil {
		return nil, domain.CacheStats{}, err
	}
	return nil, stats, nil
}

// handleAnalyticsStats handles the analytics_stats tool invocation.
func (s *Server) handleAnalyticsStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, AnalyticsOutput, error) {
	stats, err := s.ports.Search.AnalyticsStats(ctx)
	if err != nil {
		return nil, AnalyticsOutput{}, err
	}

	out := AnalyticsOutput{
		TotalSearches:     stats.TotalSearches,
		AverageDurationMs: stats.AverageDurationMs,
		CacheHitRate:      stats.CacheHitRate,
		ZeroResultRate:    stats.ZeroResultRate,
		DegradedCount:     stats.DegradedCount,
		TopQueries:        make([]QueryOutput, len(stats.TopQueries)),
	}
	for i, q := range stats.TopQueries {
		out.TopQueries[i] = QueryOutput{Query: q.Query, Count: q.Count}
	}
	if !stats.Since.IsZero() {
		out.Since = stats.Since.UTC().Format(time.RFC3339)
	}
	return nil, out, nil
}

// handleClearCache handles the clear_cache tool invocation.
func (s *Server) handleClearCache(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, ClearCacheOutput, error) {
	if err := s.ports.Search.ClearCache(ctx); err != nil {
		return nil, ClearCacheOutput{}, err
	}
	s.log.Info("cache cleared via MCP")
	return nil, ClearCacheOutput{Cleared: true}, nil
}

// handleAddDocument handles the add_document tool invocation.
func (s *Server) handleAddDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddDocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	if s.ports.Document == nil {
		return nil, DocumentOutput{}, ErrDocumentsUnavailable
	}
	doc, err := s.ports.Document.Add(ctx, domain.Document{
		ID:       input.ID,
		SourceID: strings.TrimSpace(input.Source),
		Title:    input.Title,
		Content:  input.Content,
		URI:      input.URI,
		Tags:     input.Tags,
	})
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, DocumentOutput{
		Source:    doc.SourceID,
		ID:        doc.ID,
		Type:      string(doc.Type),
		Title:     doc.Title,
		CreatedAt: doc.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/four-robots/unisearch/internal/core/domain"
)

var searchFlags struct {
	limit      int
	page       int
	offset     int
	types      []string
	since      string
	until      string
	minQuality float64
	semantic   bool
	fuzzy      bool
	highlights bool
	noPreview  bool
	json       bool
	user       string
	session    string
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search every configured backend",
	Long: `Sends the query to all backends in parallel and prints one merged,
deduplicated and ranked result list.

Backends that fail or time out are reported but do not fail the search.

Examples:
  unisearch search "kafka consumer lag"
  unisearch search --type code_file --type code_chunk "retry policy"
  unisearch search --since 2026-01-01 --highlights "incident review"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.IntVarP(&searchFlags.limit, "limit", "n", 0, "results per page (0 = configured default)")
	f.IntVarP(&searchFlags.page, "page", "p", 1, "page number")
	f.IntVar(&searchFlags.offset, "offset", 0, "result offset, overrides --page")
	f.StringSliceVarP(&searchFlags.types, "type", "t", nil, "restrict to content types (repeatable)")
	f.StringVar(&searchFlags.since, "since", "", "only results created on or after this date (YYYY-MM-DD or RFC 3339)")
	f.StringVar(&searchFlags.until, "until", "", "only results created on or before this date")
	f.Float64Var(&searchFlags.minQuality, "min-quality", -1, "drop results with a lower quality score (0-1)")
	f.BoolVar(&searchFlags.semantic, "semantic", false, "ask backends for semantic matching")
	f.BoolVar(&searchFlags.fuzzy, "fuzzy", false, "ask backends for typo-tolerant matching")
	f.BoolVar(&searchFlags.highlights, "highlights", false, "show matched sentences")
	f.BoolVar(&searchFlags.noPreview, "no-preview", false, "omit previews")
	f.BoolVar(&searchFlags.json, "json", false, "output the full response as JSON")
	f.StringVar(&searchFlags.user, "user", "", "user id recorded in analytics")
	f.StringVar(&searchFlags.session, "session", "", "session id recorded in analytics")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	req, err := buildSearchRequest(strings.Join(args, " "))
	if err != nil {
		return err
	}

	resp, err := a.Search.Search(cmd.Context(), req, searchFlags.user, searchFlags.session)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchFlags.json {
		return writeJSON(cmd.OutOrStdout(), resp)
	}
	renderResponse(newPrinter(cmd.OutOrStdout()), resp)
	return nil
}

// buildSearchRequest turns flags into a request. Range checks are left to the service.
func buildSearchRequest(query string) (domain.SearchRequest, error) {
	req := domain.SearchRequest{
		Query:  query,
		Page:   searchFlags.page,
		Limit:  searchFlags.limit,
		Offset: searchFlags.offset,
		Options: domain.SearchOptions{
			Semantic:          searchFlags.semantic,
			Fuzzy:             searchFlags.fuzzy,
			IncludePreview:    !searchFlags.noPreview,
			IncludeHighlights: searchFlags.highlights,
		},
	}

	for _, raw := range searchFlags.types {
		t, err := domain.ParseContentType(raw)
		if err != nil {
			return domain.SearchRequest{}, err
		}
		req.Filters.ContentTypes = append(req.Filters.ContentTypes, t)
	}

	from, err := parseDate("since", searchFlags.since)
	if err != nil {
		return domain.SearchRequest{}, err
	}
	to, err := parseDate("until", searchFlags.until)
	if err != nil {
		return domain.SearchRequest{}, err
	}
	if !from.IsZero() || !to.IsZero() {
		req.Filters.DateRange = &domain.DateRange{From: from, To: to}
	}

	if searchFlags.minQuality >= 0 {
		q := searchFlags.minQuality
		req.Filters.MinQuality = &q
	}
	return req, nil
}

// parseDate accepts RFC 3339 or YYYY-MM-DD. An "until" date covers the whole day.
func parseDate(flag, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, domain.NewValidationError(flag, fmt.Sprintf("cannot parse %q as a date", value))
	}
	if flag == "until" {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

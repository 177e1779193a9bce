package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validate checks the request against cfg and returns a normalised copy
// with defaults applied (trimmed query, page >= 1, limit > 0).
// The returned error is always a *ValidationError.
func (r SearchRequest) Validate(cfg SearchConfig) (SearchRequest, error) {
	out := r

	out.Query = strings.TrimSpace(r.Query)
	if out.Query == "" {
		return SearchRequest{}, NewValidationError("query", "must not be empty")
	}

	maxLen := cfg.MaxQueryLength
	if maxLen <= 0 {
		maxLen = DefaultMaxQueryLength
	}
	if n := utf8.RuneCountInString(out.Query); n > maxLen {
		return SearchRequest{}, NewValidationError("query",
			fmt.Sprintf("length %d exceeds maximum of %d characters", n, maxLen))
	}

	if r.Page < 0 {
		return SearchRequest{}, NewValidationError("page", "must not be negative")
	}
	if out.Page == 0 {
		out.Page = 1
	}

	maxLimit := cfg.MaxLimit
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	if r.Limit < 0 {
		return SearchRequest{}, NewValidationError("limit", "must not be negative")
	}
	if r.Limit > maxLimit {
		return SearchRequest{}, NewValidationError("limit",
			fmt.Sprintf("%d exceeds maximum of %d", r.Limit, maxLimit))
	}
	if out.Limit == 0 {
		out.Limit = cfg.DefaultLimit
		if out.Limit <= 0 {
			out.Limit = DefaultLimit
		}
		if out.Limit > maxLimit {
			out.Limit = maxLimit
		}
	}

	if r.Offset < 0 {
		return SearchRequest{}, NewValidationError("offset", "must not be negative")
	}

	for _, t := range r.Filters.ContentTypes {
		if !t.IsValid() {
			return SearchRequest{}, NewValidationError("content type", fmt.Sprintf("unknown content type %q", t))
		}
	}

	if dr := r.Filters.DateRange; dr != nil && !dr.From.IsZero() && !dr.To.IsZero() && dr.From.After(dr.To) {
		return SearchRequest{}, NewValidationError("date range", "from must not be after to")
	}

	if q := r.Filters.MinQuality; q != nil && (*q < 0 || *q > 1) {
		return SearchRequest{}, NewValidationError("min quality", "must be between 0 and 1")
	}

	return out, nil
}

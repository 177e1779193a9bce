package services

import (
	"strings"

	"github.com/four-robots/unisearch/internal/core/domain"
)

const (
	maxSuggestions     = 5
	suggestionTitles   = 5
	minSuggestionToken = 3
)

// buildSuggestions proposes follow-up queries when a search came back thin.
//
// With no results it offers the query minus one keyword at a time. With fewer
// results than limit it extends the query with terms from the best titles.
// A full page yields no suggestions.
func buildSuggestions(query domain.ProcessedQuery, ranked []domain.SearchResult, limit int) []string {
	suggestions := []string{}
	if len(ranked) >= limit && limit > 0 {
		return suggestions
	}

	base := query.Normalized
	if base == "" {
		base = normalizeText(query.Original)
	}

	seen := map[string]struct{}{base: {}}
	add := func(s string) bool {
		s = strings.TrimSpace(s)
		if s == "" {
			return false
		}
		if _, dup := seen[s]; dup {
			return false
		}
		seen[s] = struct{}{}
		suggestions = append(suggestions, s)
		return len(suggestions) >= maxSuggestions
	}

	if len(ranked) == 0 {
		keywords := query.Keywords
		if len(keywords) < 2 {
			return suggestions
		}
		for skip := range keywords {
			parts := make([]string, 0, len(keywords)-1)
			for i, k := range keywords {
				if i != skip {
					parts = append(parts, k)
				}
			}
			if add(strings.Join(parts, " ")) {
				break
			}
		}
		return suggestions
	}

	inQuery := tokenSet(base)
	for i := 0; i < len(ranked) && i < suggestionTitles; i++ {
		for _, term := range tokens(ranked[i].Title) {
			if len([]rune(term)) < minSuggestionToken {
				continue
			}
			if _, ok := inQuery[term]; ok {
				continue
			}
			if add(base + " " + term) {
				return suggestions
			}
		}
	}

	return suggestions
}

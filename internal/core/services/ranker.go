package services

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/logger"
)

// intentKeywords are the vocabulary each intent is expected to surface.
var intentKeywords = map[domain.Intent]map[string]struct{}{
	domain.IntentQuestion: wordSet("how", "why", "what", "guide", "tutorial", "explain",
		"overview", "introduction", "faq", "howto"),
	domain.IntentCode: wordSet("func", "function", "class", "method", "struct", "interface",
		"package", "import", "api", "implementation", "code", "source"),
	domain.IntentTask: wordSet("task", "todo", "ticket", "card", "backlog", "sprint",
		"assigned", "due", "issue", "story"),
	domain.IntentTroubleshoot: wordSet("error", "bug", "fix", "issue", "crash", "fail",
		"failure", "exception", "panic", "debug", "broken", "workaround"),
	domain.IntentNavigation: wordSet("page", "home", "index", "readme", "docs", "documentation",
		"overview", "start"),
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// ResultRanker computes the unified relevance of every result and sorts.
type ResultRanker struct {
	log *zap.Logger
}

// NewResultRanker creates a ranker.
func NewResultRanker(log *zap.Logger) *ResultRanker {
	return &ResultRanker{log: logger.OrNop(log)}
}

// Rank scores a copy of results, drops those below weights.MinRelevance and
// returns them sorted by relevance descending. Results whose type is in
// query.ExpectedTypes are then stably moved ahead of the rest. Equal scores
// keep their input order.
func (r *ResultRanker) Rank(
	results []domain.SearchResult, query domain.ProcessedQuery, weights domain.RankingWeights,
) []domain.SearchResult {
	queryTokens := tokenSet(query.Normalized)
	if len(queryTokens) == 0 {
		queryTokens = tokenSet(query.Original)
	}

	ranked := make([]domain.SearchResult, 0, len(results))
	dropped := 0
	for _, res := range results {
		score := res.Score
		score.Relevance = r.score(res, queryTokens, query.Intent, weights)
		res.Score = score

		if res.Score.Relevance < weights.MinRelevance {
			dropped++
			continue
		}
		ranked = append(ranked, res)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Relevance > ranked[j].Score.Relevance
	})

	if len(query.ExpectedTypes) > 0 {
		sort.SliceStable(ranked, func(i, j int) bool {
			return query.Expects(ranked[i].Type) && !query.Expects(ranked[j].Type)
		})
	}

	r.log.Debug("ranked results",
		zap.Int("input", len(results)),
		zap.Int("kept", len(ranked)),
		zap.Int("below_threshold", dropped))

	return ranked
}

// score computes the clamped weighted sum for one result.
func (r *ResultRanker) score(
	res domain.SearchResult, queryTokens map[string]struct{}, intent domain.Intent, w domain.RankingWeights,
) float64 {
	s := res.Score
	total := 0.0

	if s.SemanticSimilarity != nil {
		total += *s.SemanticSimilarity * w.Semantic
	}

	// Sources that report no text-match signal carry their native relevance instead.
	if s.TextMatch != nil {
		total += *s.TextMatch * w.Text
	} else {
		total += s.Relevance * w.Text
	}

	if s.RecencyBoost != nil {
		total += *s.RecencyBoost * w.Recency
	}
	if s.QualityScore != nil {
		total += *s.QualityScore * w.Quality
	}

	total += w.Reliability(res.Metadata.Source) * w.Source
	total += w.Importance(res.Type) * w.ContentType

	if jaccard(tokenSet(res.Title), queryTokens) > w.TitleThreshold {
		total += w.TitleBoost
	}

	if keywords, ok := intentKeywords[intent]; ok {
		text := tokenSet(res.Title + " " + res.Preview)
		if overlapCoefficient(text, keywords) > w.IntentThreshold {
			total += w.IntentBoost
		}
	}

	return clamp01(total)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// normalizeText lowercases and collapses whitespace.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

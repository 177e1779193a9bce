// Package heuristic implements query understanding with keyword lists and
// simple lexical rules. It needs no model and never fails on valid input.
package heuristic

import (
	"context"
	"math"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

// Ensure Understanding implements the interface.
var _ driven.QueryUnderstanding = (*Understanding)(nil)

var stopWords = toSet(
	"a", "an", "and", "are", "as", "at", "be", "by", "can", "do", "does", "for", "from", "how", "i",
	"in", "is", "it", "me", "my", "of", "on", "or", "our", "should", "that", "the", "this", "to",
	"was", "we", "what", "when", "where", "which", "who", "why", "will", "with", "you",
)

var questionWords = toSet(
	"how", "why", "what", "when", "where", "who", "which", "can", "does", "do", "is", "are", "should",
)

var troubleshootWords = toSet(
	"error", "errors", "bug", "bugs", "fix", "fixes", "crash", "crashes", "crashing", "fail", "fails",
	"failed", "failing", "failure", "exception", "broken", "panic", "timeout", "debug", "stacktrace",
	"issue", "issues", "outage", "down",
)

var codeWords = toSet(
	"function", "func", "method", "class", "struct", "interface", "implementation", "implement",
	"code", "snippet", "api", "endpoint", "regex", "sql", "import", "package", "module",
)

var taskWords = toSet(
	"todo", "task", "tasks", "ticket", "tickets", "card", "cards", "assigned", "assignee", "sprint",
	"backlog", "deadline", "due", "blocked", "kanban",
)

var navigationPrefixes = []string{"go to ", "open ", "show me ", "show ", "find page ", "page "}

// typeHints maps words naming a backend to the result type the user expects.
var typeHints = map[string]domain.ContentType{
	"wiki":   domain.ContentTypeWikiPage,
	"note":   domain.ContentTypeMemoryNote,
	"notes":  domain.ContentTypeMemoryNote,
	"memory": domain.ContentTypeMemoryNote,
	"card":   domain.ContentTypeKanbanCard,
	"cards":  domain.ContentTypeKanbanCard,
	"kanban": domain.ContentTypeKanbanCard,
}

var (
	// identifierPattern matches camelCase, snake_case, dotted calls and call parens.
	identifierPattern = regexp.MustCompile(`[a-z][a-z0-9]*[A-Z][A-Za-z0-9]*|[a-z0-9]+_[a-z0-9_]+|\w+\.\w+\(|\w+\(\)`)
	// fileExtPattern matches source file names.
	fileExtPattern = regexp.MustCompile(`\.(go|py|js|ts|tsx|java|rb|rs|c|cpp|h|cs|kt|swift|php|sh|sql|yaml|yml|toml|json)\b`)
	quotedPattern  = regexp.MustCompile(`"[^"]+"`)
)

// Understanding is the heuristic QueryUnderstanding.
type Understanding struct {
	log *zap.Logger
}

// New creates a heuristic query understanding.
func New(log *zap.Logger) *Understanding {
	if log == nil {
		log = zap.NewNop()
	}
	return &Understanding{log: log.With(zap.String("module", "query"))}
}

// Process normalizes the query, extracts keywords and classifies intent.
func (u *Understanding) Process(ctx context.Context, req domain.SearchRequest) (domain.ProcessedQuery, error) {
	if err := ctx.Err(); err != nil {
		return domain.ProcessedQuery{}, err
	}

	normalized := Normalize(req.Query)
	words := Tokenize(normalized)
	keywords := Keywords(words)
	intent := classify(req.Query, normalized, words)

	q := domain.ProcessedQuery{
		Original:      req.Query,
		Normalized:    normalized,
		Keywords:      keywords,
		Intent:        intent,
		Complexity:    complexity(req.Query, keywords, intent),
		ExpectedTypes: expectedTypes(intent, words),
	}
	u.log.Debug("query understood",
		zap.String("intent", string(q.Intent)),
		zap.Strings("keywords", q.Keywords),
		zap.Float64("complexity", q.Complexity))
	return q, nil
}

// Normalize lowercases s and collapses whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Tokenize splits normalized text into words, dropping punctuation.
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// Keywords removes stop words and duplicates, keeping first-seen order.
// If every word is a stop word the distinct words are returned instead.
func Keywords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	var kept, all []string
	for _, w := range words {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		all = append(all, w)
		if _, stop := stopWords[w]; !stop {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return all
	}
	return kept
}

// classify picks the strongest intent. Troubleshooting beats code, code beats
// tasks, and the question and navigation forms only apply when no topic word does.
func classify(original, normalized string, words []string) domain.Intent {
	if len(words) == 0 {
		return domain.IntentGeneral
	}
	if containsAny(words, troubleshootWords) || strings.Contains(normalized, "not working") {
		return domain.IntentTroubleshoot
	}
	if containsAny(words, codeWords) || identifierPattern.MatchString(original) || fileExtPattern.MatchString(normalized) {
		return domain.IntentCode
	}
	if containsAny(words, taskWords) {
		return domain.IntentTask
	}
	if _, ok := questionWords[words[0]]; ok || strings.HasSuffix(normalized, "?") {
		return domain.IntentQuestion
	}
	for _, p := range navigationPrefixes {
		if strings.HasPrefix(normalized, p) {
			return domain.IntentNavigation
		}
	}
	return domain.IntentGeneral
}

func expectedTypes(intent domain.Intent, words []string) []domain.ContentType {
	var out []domain.ContentType
	switch intent {
	case domain.IntentCode:
		out = append(out, domain.ContentTypeCodeFile, domain.ContentTypeCodeChunk)
	case domain.IntentTask:
		out = append(out, domain.ContentTypeKanbanCard)
	}
	for _, w := range words {
		t, ok := typeHints[w]
		if !ok || contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// complexity grows with keyword count, quoted phrases and a specific intent, capped at 1.
func complexity(original string, keywords []string, intent domain.Intent) float64 {
	c := 0.12 * float64(len(keywords))
	if quotedPattern.MatchString(original) {
		c += 0.2
	}
	if intent != domain.IntentGeneral {
		c += 0.1
	}
	return math.Round(math.Min(c, 1)*100) / 100
}

func containsAny(words []string, set map[string]struct{}) bool {
	for _, w := range words {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}

func contains(types []domain.ContentType, t domain.ContentType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

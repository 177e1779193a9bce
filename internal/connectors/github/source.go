package github

import (
	"context"
	"fmt"
	"path"
	"strings"

	gh "github.com/google/go-github/v80/github"
	"go.uber.org/zap"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.SourcePort = (*Source)(nil)

// chunkDiscount ranks a fragment just below the file it came from.
const chunkDiscount = 0.9

var languageByExt = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".java":  "Java",
	".kt":    "Kotlin",
	".rb":    "Ruby",
	".rs":    "Rust",
	".c":     "C",
	".h":     "C",
	".cpp":   "C++",
	".cs":    "C#",
	".php":   "PHP",
	".swift": "Swift",
	".sh":    "Shell",
	".sql":   "SQL",
	".md":    "Markdown",
	".yaml":  "YAML",
	".yml":   "YAML",
	".toml":  "TOML",
}

// Source searches code on GitHub through the code search API.
type Source struct {
	client *Client
	cfg    Config
	log    *zap.Logger
}

// New creates the GitHub code source.
func New(client *Client, cfg Config, log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &Source{client: client, cfg: cfg, log: log.With(zap.String("source", domain.SourceGitHub))}
}

// ID returns "github".
func (s *Source) ID() string {
	return domain.SourceGitHub
}

// ContentTypes returns code_file and, when chunking is on, code_chunk.
func (s *Source) ContentTypes() []domain.ContentType {
	if s.cfg.Chunks {
		return []domain.ContentType{domain.ContentTypeCodeFile, domain.ContentTypeCodeChunk}
	}
	return []domain.ContentType{domain.ContentTypeCodeFile}
}

// Search runs one code search request and maps the hits.
func (s *Source) Search(ctx context.Context, q domain.SourceQuery) ([]domain.SearchResult, error) {
	query := s.buildQuery(q)
	if query == "" {
		return []domain.SearchResult{}, nil
	}

	wantFiles := q.Filters.AllowsType(domain.ContentTypeCodeFile)
	wantChunks := s.cfg.Chunks && q.Filters.AllowsType(domain.ContentTypeCodeChunk)
	if !wantFiles && !wantChunks {
		return []domain.SearchResult{}, nil
	}

	result, err := s.client.SearchCode(ctx, query, q.Limit)
	if err != nil {
		return nil, err
	}
	s.log.Debug("code search",
		zap.String("query", query),
		zap.Int("total", result.GetTotal()),
		zap.Bool("incomplete", result.GetIncompleteResults()))

	hits := result.CodeResults
	out := make([]domain.SearchResult, 0, len(hits))
	for i, hit := range hits {
		relevance := 1.0 - float64(i)/float64(2*len(hits))
		file := s.fileResult(hit, relevance, q.Keywords)
		if wantFiles {
			out = append(out, file)
		}
		if wantChunks {
			out = append(out, s.chunkResults(hit, file, relevance)...)
		}
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Source) buildQuery(q domain.SourceQuery) string {
	text := strings.TrimSpace(strings.Join(q.Keywords, " "))
	if text == "" {
		text = strings.TrimSpace(q.Text)
	}
	if text == "" {
		return ""
	}
	if s.cfg.Qualifier != "" {
		text += " " + s.cfg.Qualifier
	}
	return text
}

func (s *Source) fileResult(hit *gh.CodeResult, relevance float64, keywords []string) domain.SearchResult {
	filePath := hit.GetPath()
	repo := hit.GetRepository().GetFullName()

	fields := map[string]string{
		domain.FieldFilePath:   filePath,
		domain.FieldRepository: repo,
	}
	if lang := languageByExt[strings.ToLower(path.Ext(filePath))]; lang != "" {
		fields[domain.FieldLanguage] = lang
	}

	var preview string
	fragments := make([]string, 0, len(hit.TextMatches))
	for _, m := range hit.TextMatches {
		if f := strings.TrimSpace(m.GetFragment()); f != "" {
			fragments = append(fragments, f)
		}
	}
	if len(fragments) > 0 {
		preview = fragments[0]
	}

	r := domain.SearchResult{
		ID:      repo + "/" + filePath,
		Type:    domain.ContentTypeCodeFile,
		Title:   filePath,
		Preview: preview,
		URL:     hit.GetHTMLURL(),
		Score:   domain.Score{Relevance: relevance},
		Metadata: domain.ResultMetadata{
			Source: domain.SourceGitHub,
			Fields: fields,
		},
	}
	if tm, ok := keywordCoverage(fragments, keywords); ok {
		r.Score.TextMatch = &tm
	}
	return r
}

func (s *Source) chunkResults(hit *gh.CodeResult, file domain.SearchResult, relevance float64) []domain.SearchResult {
	var out []domain.SearchResult
	for i, m := range hit.TextMatches {
		fragment := strings.TrimSpace(m.GetFragment())
		if fragment == "" {
			continue
		}
		fields := make(map[string]string, len(file.Metadata.Fields))
		for k, v := range file.Metadata.Fields {
			fields[k] = v
		}
		out = append(out, domain.SearchResult{
			ID:       fmt.Sprintf("%s#%d", file.ID, i),
			Type:     domain.ContentTypeCodeChunk,
			Title:    fmt.Sprintf("%s (match %d)", file.Title, i+1),
			Preview:  fragment,
			URL:      file.URL,
			Score:    domain.Score{Relevance: relevance * chunkDiscount},
			Metadata: domain.ResultMetadata{Source: domain.SourceGitHub, Fields: fields},
		})
	}
	return out
}

// keywordCoverage is the share of keywords that appear in any fragment.
func keywordCoverage(fragments, keywords []string) (float64, bool) {
	if len(keywords) == 0 || len(fragments) == 0 {
		return 0, false
	}
	text := strings.ToLower(strings.Join(fragments, "\n"))
	found := 0
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			found++
		}
	}
	return float64(found) / float64(len(keywords)), true
}

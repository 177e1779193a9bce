package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	jsoniter "github.com/json-iterator/go"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// bm25 column weights for title, content, tags.
const (
	bm25Title   = 10.0
	bm25Content = 1.0
	bm25Tags    = 2.0
)

// DocumentStore implements driven.DocumentStore over the documents table and its FTS5 index.
type DocumentStore struct {
	db *sql.DB
}

var _ driven.DocumentStore = (*DocumentStore)(nil)

const documentColumns = `d.source_id, d.id, d.type, d.title, d.content, d.uri, d.tags, d.fields,
	d.quality, d.created_at, d.updated_at`

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}
	fields := doc.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshalling fields: %w", err)
	}

	var quality sql.NullFloat64
	if doc.Quality != nil {
		quality = sql.NullFloat64{Float64: *doc.Quality, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (source_id, id, type, title, content, uri, tags, fields, quality, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, id) DO UPDATE SET
			type = excluded.type,
			title = excluded.title,
			content = excluded.content,
			uri = excluded.uri,
			tags = excluded.tags,
			fields = excluded.fields,
			quality = excluded.quality,
			updated_at = excluded.updated_at
	`, doc.SourceID, doc.ID, string(doc.Type), doc.Title, doc.Content, doc.URI,
		string(tagsJSON), string(fieldsJSON), quality, doc.CreatedAt.UTC(), doc.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by source and ID.
func (s *DocumentStore) GetDocument(ctx context.Context, sourceID, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents d WHERE d.source_id = ? AND d.id = ?
	`, sourceID, id)

	doc, _, err := scanDocument(row, false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes a document.
func (s *DocumentStore) DeleteDocument(ctx context.Context, sourceID, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE source_id = ? AND id = ?", sourceID, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments returns documents for a source, newest first.
func (s *DocumentStore) ListDocuments(ctx context.Context, sourceID string) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents d WHERE d.source_id = ?
		ORDER BY d.updated_at DESC, d.id
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		doc, _, err := scanDocument(rows, false)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// SearchDocuments runs an FTS5 match. Any term may match; bm25 orders the hits and
// is mapped into (0,1) as r/(1+r).
func (s *DocumentStore) SearchDocuments(ctx context.Context, sourceID string,
	query domain.DocumentQuery) ([]domain.DocumentMatch, error) {
	match := matchExpression(query.Terms)
	if match == "" {
		return []domain.DocumentMatch{}, nil
	}

	var (
		sb   strings.Builder
		args = []any{match, sourceID}
	)
	fmt.Fprintf(&sb, `
		SELECT %s, bm25(documents_fts, %.1f, %.1f, %.1f) AS rank
		FROM documents_fts`, documentColumns, bm25Title, bm25Content, bm25Tags)
	sb.WriteString(`
		JOIN documents d ON d.rowid = documents_fts.rowid
		WHERE documents_fts MATCH ? AND d.source_id = ?`)
	if len(query.Types) > 0 {
		sb.WriteString(" AND d.type IN (?" + strings.Repeat(", ?", len(query.Types)-1) + ")")
		for _, t := range query.Types {
			args = append(args, string(t))
		}
	}
	sb.WriteString(" ORDER BY rank, d.updated_at DESC")
	if query.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, query.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	matches := []domain.DocumentMatch{}
	for rows.Next() {
		doc, rank, err := scanDocument(rows, true)
		if err != nil {
			return nil, err
		}
		r := -rank
		if r < 0 {
			r = 0
		}
		matches = append(matches, domain.DocumentMatch{Document: *doc, Score: r / (1 + r)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}
	return matches, nil
}

// matchExpression builds an FTS5 OR-query of quoted terms.
func matchExpression(terms []string) string {
	seen := make(map[string]struct{})
	var parts []string
	for _, raw := range terms {
		for _, term := range strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			parts = append(parts, `"`+term+`"`)
		}
	}
	return strings.Join(parts, " OR ")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner, withRank bool) (*domain.Document, float64, error) {
	var (
		doc        domain.Document
		docType    string
		tagsJSON   string
		fieldsJSON string
		quality    sql.NullFloat64
		rank       float64
	)
	dest := []any{&doc.SourceID, &doc.ID, &docType, &doc.Title, &doc.Content, &doc.URI,
		&tagsJSON, &fieldsJSON, &quality, &doc.CreatedAt, &doc.UpdatedAt}
	if withRank {
		dest = append(dest, &rank)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("scanning document: %w", err)
	}

	doc.Type = domain.ContentType(docType)
	if quality.Valid {
		q := quality.Float64
		doc.Quality = &q
	}
	if err := json.Unmarshal([]byte(tagsJSON), &doc.Tags); err != nil {
		return nil, 0, fmt.Errorf("unmarshalling tags: %w", err)
	}
	if len(doc.Tags) == 0 {
		doc.Tags = nil
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &doc.Fields); err != nil {
		return nil, 0, fmt.Errorf("unmarshalling fields: %w", err)
	}
	if len(doc.Fields) == 0 {
		doc.Fields = nil
	}
	return &doc, rank, nil
}

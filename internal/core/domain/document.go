package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxPreviewLength caps the preview generated from a document body, in runes.
const MaxPreviewLength = 300

// Document is an item held by one of the local backends (memory, kanban, wiki).
type Document struct {
	// ID is unique within the backend.
	ID string `json:"id"`

	// SourceID is the backend the document belongs to.
	SourceID string `json:"source_id"`

	// Type is the content type reported in search results.
	Type ContentType `json:"type"`

	Title   string `json:"title"`
	Content string `json:"content"`

	// URI is an optional link to the original item.
	URI string `json:"uri,omitempty"`

	Tags   []string          `json:"tags,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`

	// Quality is an optional editorial score in [0,1].
	Quality *float64 `json:"quality,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the fields a backend needs to index the document.
func (d Document) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return NewValidationError("id", "must not be empty")
	}
	if strings.TrimSpace(d.SourceID) == "" {
		return NewValidationError("source", "must not be empty")
	}
	if !d.Type.IsValid() {
		return NewValidationError("type", "unknown content type "+string(d.Type))
	}
	if strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Content) == "" {
		return NewValidationError("content", "title and content are both empty")
	}
	if d.Quality != nil && (*d.Quality < 0 || *d.Quality > 1) {
		return NewValidationError("quality", "must be between 0 and 1")
	}
	return nil
}

// Preview returns the start of the content, cut on a rune boundary.
func (d Document) Preview() string {
	return TruncatePreview(d.Content)
}

// TruncatePreview trims text to MaxPreviewLength runes, marking the cut with "...".
func TruncatePreview(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= MaxPreviewLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:MaxPreviewLength])) + "..."
}

// DocumentQuery selects documents from a local backend.
type DocumentQuery struct {
	// Terms are matched against title and content. At least one must match.
	Terms []string

	// Types restricts the content types returned. Empty means all.
	Types []ContentType

	// Limit caps the number of matches. Zero means no cap.
	Limit int
}

// DocumentMatch is a document and its text-match score in [0,1].
type DocumentMatch struct {
	Document Document
	Score    float64
}

package domain

import "strings"

// ContentType identifies what kind of item a SearchResult represents.
type ContentType string

const (
	// ContentTypeWikiPage is a page from the wiki backend.
	ContentTypeWikiPage ContentType = "wiki_page"
	// ContentTypeMemoryNote is a note from the memory backend.
	ContentTypeMemoryNote ContentType = "memory_note"
	// ContentTypeKanbanCard is a task card from the kanban backend.
	ContentTypeKanbanCard ContentType = "kanban_card"
	// ContentTypeScrapedPage is a whole crawled web page.
	ContentTypeScrapedPage ContentType = "scraped_page"
	// ContentTypeScrapedChunk is a fragment of a crawled web page.
	ContentTypeScrapedChunk ContentType = "scraped_chunk"
	// ContentTypeCodeFile is a whole source file.
	ContentTypeCodeFile ContentType = "code_file"
	// ContentTypeCodeChunk is a fragment of a source file.
	ContentTypeCodeChunk ContentType = "code_chunk"
)

// AllContentTypes lists every known content type in display order.
func AllContentTypes() []ContentType {
	return []ContentType{
		ContentTypeWikiPage,
		ContentTypeMemoryNote,
		ContentTypeKanbanCard,
		ContentTypeScrapedPage,
		ContentTypeScrapedChunk,
		ContentTypeCodeFile,
		ContentTypeCodeChunk,
	}
}

// IsValid returns true if t is a known content type.
func (t ContentType) IsValid() bool {
	for _, known := range AllContentTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (t ContentType) String() string {
	return string(t)
}

// ParseContentType converts user input (case-insensitive, '-' or '_') into a ContentType.
func ParseContentType(s string) (ContentType, error) {
	t := ContentType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !t.IsValid() {
		return "", NewValidationError("content type", "unknown content type "+s)
	}
	return t, nil
}

// Well-known source identifiers.
const (
	SourceMemory  = "memory"
	SourceKanban  = "kanban"
	SourceWiki    = "wiki"
	SourceScraper = "scraper"
	SourceGitHub  = "github"
)

// Metadata field names carried in ResultMetadata.Fields.
const (
	FieldFilePath   = "file_path"
	FieldLanguage   = "language"
	FieldRepository = "repository"
)

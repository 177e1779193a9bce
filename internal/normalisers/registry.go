package normalisers

import (
	"path/filepath"
	"strings"
)

// Result is the text extracted from one file.
type Result struct {
	Title  string
	Text   string
	Format string
}

// Normaliser extracts text from one file format.
type Normaliser interface {
	// Extensions lists the lowercase file extensions handled, with the dot.
	Extensions() []string

	// Normalise extracts the title and text of a file named name.
	Normalise(name string, content []byte) Result
}

// Registry selects a normaliser by file extension.
type Registry struct {
	byExt    map[string]Normaliser
	fallback Normaliser
}

// NewRegistry registers ns in order; a later normaliser wins an extension.
// fallback handles every other file.
func NewRegistry(fallback Normaliser, ns ...Normaliser) *Registry {
	r := &Registry{byExt: make(map[string]Normaliser), fallback: fallback}
	for _, n := range ns {
		for _, ext := range n.Extensions() {
			r.byExt[strings.ToLower(ext)] = n
		}
	}
	return r
}

// For returns the normaliser for name.
func (r *Registry) For(name string) Normaliser {
	if n, ok := r.byExt[strings.ToLower(filepath.Ext(name))]; ok {
		return n
	}
	return r.fallback
}

// Normalise extracts text from content using the normaliser for name.
func (r *Registry) Normalise(name string, content []byte) Result {
	return r.For(name).Normalise(name, content)
}

// TitleFromName derives a readable title from a file path:
// "notes/release-plan_v2.md" becomes "release plan v2".
func TitleFromName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSpace(base)
}

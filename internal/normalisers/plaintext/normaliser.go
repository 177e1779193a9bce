// Package plaintext is the fallback normaliser: the text is kept as is.
package plaintext

import (
	"strings"

	"github.com/four-robots/unisearch/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ normalisers.Normaliser = (*Normaliser)(nil)

// Normaliser passes text through, dropping a byte-order mark and Windows line endings.
type Normaliser struct{}

// New creates a new plain-text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the extensions this normaliser claims.
func (n *Normaliser) Extensions() []string {
	return []string{".txt", ".text", ".log"}
}

// Normalise titles the document after the file name.
func (n *Normaliser) Normalise(name string, content []byte) normalisers.Result {
	text := strings.TrimPrefix(string(content), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return normalisers.Result{
		Title:  normalisers.TitleFromName(name),
		Text:   strings.TrimSpace(text),
		Format: "text",
	}
}

// Package html extracts readable text from HTML files.
package html

import (
	"html"
	"regexp"
	"strings"

	"github.com/four-robots/unisearch/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ normalisers.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Normalise takes the title from <title>, else the file name, and strips markup.
func (n *Normaliser) Normalise(name string, content []byte) normalisers.Result {
	raw := string(content)
	title := extractTitle(raw)
	if title == "" {
		title = normalisers.TitleFromName(name)
	}
	return normalisers.Result{
		Title:  title,
		Text:   stripHTML(raw),
		Format: "html",
	}
}

var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	droppedBlocks = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
		regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`),
		regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`),
		regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`),
		regexp.MustCompile(`(?s)<!--.*?-->`),
	}
	blockBoundary = regexp.MustCompile(
		`(?i)</?(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)(\s[^>]*)?>|<br\s*/?>|<hr\s*/?>`)
	allTags     = regexp.MustCompile(`<[^>]+>`)
	multiSpaces = regexp.MustCompile(`[ \t]+`)
)

func extractTitle(content string) string {
	m := titleTag.FindStringSubmatch(content)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(m[1]))
}

// stripHTML drops non-content elements, turns block boundaries into line
// breaks, removes the remaining tags and decodes entities. Blank lines are removed.
func stripHTML(content string) string {
	for _, re := range droppedBlocks {
		content = re.ReplaceAllString(content, "")
	}
	content = blockBoundary.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

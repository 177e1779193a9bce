package services

import (
	"strings"
)

const (
	maxHighlights      = 3
	maxHighlightLength = 200
)

// generateHighlights returns up to three sentences of content that contain a query term.
func generateHighlights(content string, terms []string) []string {
	if len(terms) == 0 || content == "" {
		return nil
	}

	var highlights []string
	for _, sentence := range splitSentences(content) {
		lower := strings.ToLower(sentence)
		for _, term := range terms {
			if term == "" || !strings.Contains(lower, term) {
				continue
			}
			highlights = append(highlights, truncateRunes(sentence, maxHighlightLength))
			break
		}
		if len(highlights) >= maxHighlights {
			break
		}
	}

	return highlights
}

// splitSentences splits content on sentence terminators and newlines.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// truncateRunes cuts s to max runes, marking the cut with "...".
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// highlightTerms picks the terms highlights are matched against.
func highlightTerms(keywords []string, normalized string) []string {
	if len(keywords) > 0 {
		out := make([]string, 0, len(keywords))
		for _, k := range keywords {
			out = append(out, strings.ToLower(k))
		}
		return out
	}
	return strings.Fields(strings.ToLower(normalized))
}

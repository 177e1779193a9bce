package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/term"

	"github.com/four-robots/unisearch/internal/core/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// printer writes human output, styled only when w is a terminal.
type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter(w io.Writer) *printer {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}
	return &printer{w: w, styled: styled}
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// renderResponse prints a search response as a numbered list.
func renderResponse(p *printer, resp domain.UnifiedResponse) {
	perf := resp.Performance
	if len(resp.Results) == 0 {
		p.printf("No results found.\n")
	} else {
		pg := resp.Pagination
		p.printf("%s\n\n", p.style(headerStyle, fmt.Sprintf("Found %d results (page %d/%d, %dms)",
			resp.TotalCount, pg.Page, max(pg.TotalPages, 1), perf.TotalMs)))
	}

	for i, r := range resp.Results {
		n := resp.Pagination.Offset + i + 1
		title := r.Title
		if title == "" {
			title = r.ID
		}
		p.printf("  [%d] %s  %s %s\n", n, p.style(titleStyle, title),
			p.style(dimStyle, r.Metadata.Source+" · "+string(r.Type)),
			p.style(scoreStyle, fmt.Sprintf("%.2f", r.Score.Relevance)))
		if r.URL != "" {
			p.printf("      %s\n", p.style(dimStyle, r.URL))
		}
		switch {
		case len(r.Highlights) > 0:
			for _, h := range r.Highlights {
				p.printf("      > %s\n", oneLine(h))
			}
		case r.Preview != "":
			p.printf("      %s\n", oneLine(r.Preview))
		}
		p.printf("\n")
	}

	if len(resp.Suggestions) > 0 {
		p.printf("Try: %s\n", strings.Join(resp.Suggestions, ", "))
	}
	renderSources(p, perf)
	if resp.Degraded {
		p.printf("%s\n", p.style(errorStyle, "Search degraded: results may be incomplete."))
	}
}

func renderSources(p *printer, perf domain.PerformanceStats) {
	if len(perf.Sources) == 0 {
		return
	}
	parts := make([]string, 0, len(perf.Sources))
	for _, s := range perf.Sources {
		switch {
		case s.Skipped:
			parts = append(parts, p.style(dimStyle, s.Source+" skipped"))
		case s.TimedOut:
			parts = append(parts, p.style(errorStyle, s.Source+" timed out"))
		case !s.Success:
			parts = append(parts, p.style(errorStyle, s.Source+" failed"))
		default:
			parts = append(parts, fmt.Sprintf("%s %d (%dms)", s.Source, s.Count, s.ElapsedMs))
		}
	}
	cached := ""
	if perf.CacheHit {
		cached = " [cached]"
	}
	p.printf("Sources: %s%s\n", strings.Join(parts, ", "), cached)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

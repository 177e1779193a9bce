package domain

import "time"

// Intent is the classified purpose of a query.
type Intent string

const (
	// IntentGeneral is the fallback when no stronger signal exists.
	IntentGeneral Intent = "general"
	// IntentQuestion asks how or why something works.
	IntentQuestion Intent = "question"
	// IntentCode looks for source code, functions or files.
	IntentCode Intent = "code"
	// IntentTask looks for work items, todos or assignments.
	IntentTask Intent = "task"
	// IntentTroubleshoot looks for errors, bugs and fixes.
	IntentTroubleshoot Intent = "troubleshoot"
	// IntentNavigation looks for a specific named page or document.
	IntentNavigation Intent = "navigation"
)

// ProcessedQuery is the output of query understanding.
type ProcessedQuery struct {
	// Original is the query as the user typed it.
	Original string `json:"original"`

	// Normalized is lowercased, whitespace-collapsed text.
	Normalized string `json:"normalized"`

	// Keywords are the significant terms, stop words removed.
	Keywords []string `json:"keywords"`

	// Intent is the classified purpose.
	Intent Intent `json:"intent"`

	// Complexity is a heuristic in [0,1]; higher means a longer, more specific query.
	Complexity float64 `json:"complexity"`

	// ExpectedTypes, when set, are moved ahead of other results after ranking.
	ExpectedTypes []ContentType `json:"expected_types,omitempty"`
}

// Expects reports whether t is one of the expected result types.
func (q ProcessedQuery) Expects(t ContentType) bool {
	for _, et := range q.ExpectedTypes {
		if et == t {
			return true
		}
	}
	return false
}

// SourceQuery is what the orchestrator hands to each SourcePort.
type SourceQuery struct {
	// Text is the normalized query text.
	Text string

	// Keywords are the processed query keywords.
	Keywords []string

	// Intent is the classified intent.
	Intent Intent

	// Filters are the request filters. Ports may apply them natively;
	// the pipeline enforces them again after merging.
	Filters SearchFilters

	// Limit is the per-source result cap.
	Limit int

	// Timeout is the soft deadline the orchestrator applies to this call.
	Timeout time.Duration

	// Semantic and Fuzzy mirror the request options.
	Semantic bool
	Fuzzy    bool
}

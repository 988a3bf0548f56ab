package types

import "strings"

// DefaultMinLineWords is the shortest line, in words, kept as article text.
const DefaultMinLineWords = 20

// SearchQuery describes one harvesting run.
type SearchQuery struct {
	// Text is passed to the search endpoint verbatim.
	Text string

	// PageDepth is the number of result pages to walk (10 results each).
	PageDepth int

	// MinLineWords is the minimum word count for a line to count as body text.
	MinLineWords int
}

// NewSearchQuery returns a query with the default line threshold.
func NewSearchQuery(text string, depth int) SearchQuery {
	return SearchQuery{Text: text, PageDepth: depth, MinLineWords: DefaultMinLineWords}
}

// Validate checks the query before any network activity.
func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return &ValidationError{Field: "text", Value: q.Text, Err: ErrInvalidQuery}
	}
	if q.PageDepth < 1 {
		return &ValidationError{Field: "page_depth", Value: q.PageDepth, Err: ErrInvalidQuery}
	}
	if q.MinLineWords < 1 {
		return &ValidationError{Field: "min_line_words", Value: q.MinLineWords, Err: ErrInvalidQuery}
	}
	return nil
}

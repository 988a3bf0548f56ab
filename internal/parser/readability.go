package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/IshaanNene/NewsDentist/internal/types"
)

// ReadabilityExtractor runs Mozilla's readability heuristics over the page
// and returns each line of the main content as a paragraph fragment.
type ReadabilityExtractor struct {
	logger *slog.Logger
}

// NewReadabilityExtractor creates a new readability extractor.
func NewReadabilityExtractor(logger *slog.Logger) *ReadabilityExtractor {
	return &ReadabilityExtractor{
		logger: logger.With("component", "readability_extractor"),
	}
}

// Extract implements Extractor.
func (e *ReadabilityExtractor) Extract(resp *types.Response) ([]types.Fragment, error) {
	pageURL, err := url.Parse(resp.FinalURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(resp.Body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}
	e.logger.Debug("parsed article", "url", resp.FinalURL, "title", article.Title)

	var out []types.Fragment
	for _, line := range strings.Split(article.TextContent, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, types.Fragment{Text: line, Parent: "p"})
	}
	return out, nil
}

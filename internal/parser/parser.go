package parser

import (
	"fmt"
	"log/slog"

	"github.com/IshaanNene/NewsDentist/internal/types"
)

// Extractor turns a fetched article page into text fragments in document order.
type Extractor interface {
	Extract(resp *types.Response) ([]types.Fragment, error)
}

// Extractor kinds accepted by NewExtractor.
const (
	KindTextNodes   = "text_nodes"
	KindReadability = "readability"
)

// NewExtractor returns the extractor registered under kind.
func NewExtractor(kind string, logger *slog.Logger) (Extractor, error) {
	switch kind {
	case "", KindTextNodes:
		return NewTextNodeExtractor(logger), nil
	case KindReadability:
		return NewReadabilityExtractor(logger), nil
	default:
		return nil, fmt.Errorf("unknown extractor %q", kind)
	}
}

// Classify keeps the fragments accepted by IsBodyLine, in order.
func Classify(fragments []types.Fragment, minWords int) []string {
	var batch []string
	for _, f := range fragments {
		if IsBodyLine(f, minWords) {
			batch = append(batch, f.Text)
		}
	}
	return batch
}

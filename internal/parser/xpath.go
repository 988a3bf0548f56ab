package parser

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/NewsDentist/internal/types"
)

// TextNodeExtractor yields every text and comment node of a page together
// with the name of its enclosing element.
type TextNodeExtractor struct {
	logger *slog.Logger
}

// NewTextNodeExtractor creates a new text node extractor.
func NewTextNodeExtractor(logger *slog.Logger) *TextNodeExtractor {
	return &TextNodeExtractor{
		logger: logger.With("component", "text_extractor"),
	}
}

// Extract implements Extractor.
func (e *TextNodeExtractor) Extract(resp *types.Response) ([]types.Fragment, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, err
	}
	if title := PageTitle(doc); title != "" {
		e.logger.Debug("parsed article", "url", resp.FinalURL, "title", title)
	}
	return TextFragments(doc), nil
}

// TextFragments walks the tree depth-first and collects text and comment
// nodes in document order. Nodes directly under the document get the
// parent name "[document]".
func TextFragments(root *html.Node) []types.Fragment {
	var out []types.Fragment
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode, html.CommentNode:
			out = append(out, types.Fragment{Text: n.Data, Parent: parentName(n)})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func parentName(n *html.Node) string {
	p := n.Parent
	if p == nil || p.Type == html.DocumentNode {
		return types.DocumentParent
	}
	return p.Data
}

// PageTitle returns the trimmed <title> text, or "".
func PageTitle(doc *html.Node) string {
	node := htmlquery.FindOne(doc, "//title")
	if node == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(node))
}

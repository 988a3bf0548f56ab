package parser

import (
	"regexp"
	"strings"

	"github.com/IshaanNene/NewsDentist/internal/types"
)

// conditionalComment matches Internet Explorer conditional comment bodies.
var conditionalComment = regexp.MustCompile(`^\[if .*endif\]`)

var hiddenParents = map[string]bool{
	"style":              true,
	"script":             true,
	types.DocumentParent: true,
	"head":               true,
	"title":              true,
}

// IsBodyLine reports whether a text fragment looks like article body text
// rather than markup, navigation, boilerplate or an anti-bot interstitial.
//
// A fragment is rejected when its parent is a non-content element, when it
// still carries markup or code, when it has fewer than minWords
// whitespace-separated words, or when it is a copyright or CloudFlare line.
// minWords below 1 is treated as 1.
func IsBodyLine(f types.Fragment, minWords int) bool {
	if minWords < 1 {
		minWords = 1
	}
	text := f.Text

	switch {
	case hiddenParents[f.Parent]:
		return false
	case strings.Contains(text, "<") && strings.Contains(text, ">"):
		return false
	case strings.Contains(text, "//") || strings.Contains(text, "{*"):
		return false
	case conditionalComment.MatchString(text):
		return false
	case strings.TrimSpace(text) == "":
		return false
	case len(strings.Fields(text)) < minWords:
		return false
	case strings.Contains(text, "©"):
		return false
	case strings.Contains(text, "CloudFlare"):
		return false
	}
	return true
}

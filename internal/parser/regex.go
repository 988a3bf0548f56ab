package parser

import (
	"regexp"

	"github.com/IshaanNene/NewsDentist/internal/types"
)

// resultLink matches the redirect wrapper used by the search endpoint for
// news results. Group 1 is the target article URL.
var resultLink = regexp.MustCompile(`/url\?q=(http.*)&sa=U`)

// ExtractArticleLinks pulls article URLs out of result-page anchors.
// Anchors without an href or not in the redirect format are dropped.
// Order is kept and duplicates are not removed.
func ExtractArticleLinks(links []types.LinkRecord) []string {
	var urls []string
	for _, link := range links {
		if u, ok := ArticleLink(link); ok {
			urls = append(urls, u)
		}
	}
	return urls
}

// ArticleLink extracts the article URL from a single anchor.
func ArticleLink(link types.LinkRecord) (string, bool) {
	if !link.HasHref {
		return "", false
	}
	m := resultLink.FindStringSubmatch(link.Href)
	if m == nil {
		return "", false
	}
	return m[1], true
}

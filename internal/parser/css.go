package parser

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/NewsDentist/internal/types"
)

// AnchorRecords returns every <a> element of a results page in document
// order, with or without an href.
func AnchorRecords(doc *goquery.Document) []types.LinkRecord {
	sel := doc.Find("a")
	records := make([]types.LinkRecord, 0, sel.Length())
	sel.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		records = append(records, types.LinkRecord{Href: href, HasHref: ok})
	})
	return records
}

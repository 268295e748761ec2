package portal

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minListingCells is the column count a listing row needs before it is
// treated as a job row; summary and spacer rows fall short.
const minListingCells = 6

// ParseListing parses the listing view body into an ordered work queue.
// pageURL is used to resolve relative detail links.
func ParseListing(body []byte, pageURL string) ([]WorkRef, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}
	var base *url.URL
	if pageURL != "" {
		if u, perr := url.Parse(pageURL); perr == nil {
			base = u
		}
	}
	return BuildWorkQueue(doc, base), nil
}

// BuildWorkQueue walks the listing table, skipping the header row, and emits
// one WorkRef per row that has the minimum column count and a discoverable
// detail link. Rows failing either check are silently dropped. Listing order
// is preserved and duplicate job numbers are not collapsed; re-processing is
// safe because the sync is idempotent.
func BuildWorkQueue(doc *goquery.Document, base *url.URL) []WorkRef {
	var refs []WorkRef
	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < minListingCells {
			return
		}
		link := row.Find(`a[href*="JobNumber"]`).First()
		if link.Length() == 0 {
			link = cells.Eq(0).Find("a").First()
		}
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		refs = append(refs, WorkRef{
			JobNumber: strings.TrimSpace(cells.Eq(0).Text()),
			URL:       resolveHref(base, href),
		})
	})
	return refs
}

func resolveHref(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(u).String()
}

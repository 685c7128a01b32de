package amazon

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/net/html"

	"PriceTracker/internal/scraper"
	"PriceTracker/utils"
)

// DiscoveryFilter narrows discovered links down to the products worth
// tracking. A link must contain at least one keyword and none of the
// excluded ones.
type DiscoveryFilter struct {
	Keywords         []string
	ExcludedKeywords []string
	ExcludedURLs     []string
	ReferralTag      string
}

// DiscoverProductLinks fetches an Amazon category or search page and
// extracts the unique, canonicalized /dp/ product links that pass the
// filter. The referral tag is appended to every result.
func (f *Fetcher) DiscoverProductLinks(ctx context.Context, categoryURL string, filter DiscoveryFilter) ([]string, error) {
	page, err := f.fetchPage(ctx, categoryURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", scraper.ErrFetchFailed, categoryURL, err)
	}

	seen := make(map[string]bool)
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" || !strings.Contains(attr.Val, "/dp/") {
					continue
				}
				// Match against the full href: canonicalization trims
				// the descriptive path segment the keywords live in.
				full := resolveHref(attr.Val)
				clean := utils.CanonicalizeURL(full)
				if clean == "" || seen[clean] {
					continue
				}
				if filter.match(full) {
					seen[clean] = true
					links = append(links, utils.AddReferralTag(clean, filter.ReferralTag))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	log.Printf("Extracted %d unique product links from %s", len(links), categoryURL)
	return links, nil
}

func resolveHref(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return "https://www.amazon.it" + href
}

func (flt DiscoveryFilter) match(url string) bool {
	lower := strings.ToLower(url)
	for _, excluded := range flt.ExcludedURLs {
		if strings.HasPrefix(lower, strings.ToLower(excluded)) {
			return false
		}
	}
	for _, excluded := range flt.ExcludedKeywords {
		if strings.Contains(lower, strings.ToLower(excluded)) {
			return false
		}
	}
	if len(flt.Keywords) == 0 {
		return true
	}
	for _, keyword := range flt.Keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

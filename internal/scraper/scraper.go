// Package scraper defines the fetch capability the tracker consumes and
// routes product URLs to the site-specific adapter that can serve them.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"PriceTracker/internal/models"
)

// ErrFetchFailed marks transient fetch failures. The retry policy retries
// them; after the last attempt the URL is invalidated.
var ErrFetchFailed = errors.New("fetch failed")

// ErrNotEligible marks products the tracker deliberately skips, such as
// Amazon listings not sold and shipped by Amazon itself.
var ErrNotEligible = errors.New("product not eligible for tracking")

// Fetcher scrapes one product URL into a snapshot. Implementations must
// tolerate repeated calls for the same URL and return either a best-effort
// snapshot or a recognizable error.
type Fetcher interface {
	// Source labels the retail site this fetcher serves, e.g. "Amazon".
	Source() string

	// Fetch retrieves a snapshot for url. Timeouts are enforced inside
	// the fetcher; the returned error wraps ErrFetchFailed when the
	// attempt may succeed on retry.
	Fetch(ctx context.Context, url string) (models.ProductSnapshot, error)
}

// Router dispatches URLs to the fetcher registered for their domain.
type Router struct {
	fetchers map[string]Fetcher
}

// NewRouter builds a router over domain -> fetcher pairs, e.g.
// "amazon.it" -> the Amazon adapter.
func NewRouter(fetchers map[string]Fetcher) *Router {
	return &Router{fetchers: fetchers}
}

// Resolve returns the fetcher responsible for url, or an error when no
// registered domain matches.
func (r *Router) Resolve(url string) (Fetcher, error) {
	for domain, fetcher := range r.fetchers {
		if strings.Contains(url, domain) {
			return fetcher, nil
		}
	}
	return nil, fmt.Errorf("no scraper registered for %s", url)
}

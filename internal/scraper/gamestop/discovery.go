package gamestop

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"PriceTracker/internal/scraper"
	"PriceTracker/utils"
)

// DiscoverProductLinks opens a GameStop listing page (e.g. the preorder
// search) and extracts the unique product links from its result cards.
func (f *Fetcher) DiscoverProductLinks(ctx context.Context, categoryURL string) (links []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: browser session for %s: %v", scraper.ErrFetchFailed, categoryURL, r)
		}
	}()

	controlURL, err := launcher.New().Headless(f.headless).Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: launch browser: %v", scraper.ErrFetchFailed, err)
	}
	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: connect browser: %v", scraper.ErrFetchFailed, err)
	}
	defer browser.Close()

	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("%w: open page: %v", scraper.ErrFetchFailed, err)
	}
	defer page.Close()

	if err := page.Timeout(pageLoadTimeout).Navigate(categoryURL); err != nil {
		return nil, fmt.Errorf("%w: navigate %s: %v", scraper.ErrFetchFailed, categoryURL, err)
	}
	// Result cards are injected by the search widget; wait for the first
	// one rather than for the load event.
	if _, err := page.Timeout(15 * time.Second).Element("a.dfd-card-link"); err != nil {
		return nil, fmt.Errorf("%w: no result cards on %s: %v", scraper.ErrFetchFailed, categoryURL, err)
	}
	page.Timeout(10 * time.Second).WaitStable(time.Second)

	elements, err := page.Elements("a.dfd-card-link")
	if err != nil {
		return nil, fmt.Errorf("%w: collect cards on %s: %v", scraper.ErrFetchFailed, categoryURL, err)
	}

	seen := make(map[string]bool)
	for _, el := range elements {
		href, err := el.Attribute("href")
		if err != nil || href == nil || !strings.Contains(*href, "/product/") {
			continue
		}
		clean := utils.CanonicalizeURL(*href)
		if !seen[clean] {
			seen[clean] = true
			links = append(links, clean)
		}
	}

	log.Printf("Extracted %d unique product links from %s", len(links), categoryURL)
	return links, nil
}

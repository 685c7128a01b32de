// Package gamestop scrapes GameStop product pages. The storefront renders
// prices and availability with JavaScript, so every fetch runs a real
// headless browser. Browser sessions are scoped per URL: acquired before
// the navigation, released on every exit path, never shared.
package gamestop

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"PriceTracker/internal/models"
	"PriceTracker/internal/scraper"
	"PriceTracker/utils"
)

const sourceLabel = "GameStop"

const pageLoadTimeout = 60 * time.Second

// Fetcher implements scraper.Fetcher for gamestop.it.
type Fetcher struct {
	headless bool
}

// New creates a GameStop fetcher.
func New(headless bool) *Fetcher {
	return &Fetcher{headless: headless}
}

// Source implements scraper.Fetcher.
func (f *Fetcher) Source() string { return sourceLabel }

// Fetch implements scraper.Fetcher. Each call launches its own browser so
// concurrent fetches never share a session.
func (f *Fetcher) Fetch(ctx context.Context, url string) (snapshot models.ProductSnapshot, err error) {
	defer func() {
		// rod surfaces unexpected page states as panics; fold them
		// into the transient-failure contract.
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: browser session for %s: %v", scraper.ErrFetchFailed, url, r)
		}
	}()

	controlURL, err := launcher.New().Headless(f.headless).Launch()
	if err != nil {
		return models.ProductSnapshot{}, fmt.Errorf("%w: launch browser: %v", scraper.ErrFetchFailed, err)
	}
	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return models.ProductSnapshot{}, fmt.Errorf("%w: connect browser: %v", scraper.ErrFetchFailed, err)
	}
	defer browser.Close()

	page, err := stealth.Page(browser)
	if err != nil {
		return models.ProductSnapshot{}, fmt.Errorf("%w: open page: %v", scraper.ErrFetchFailed, err)
	}
	defer page.Close()

	cleanURL := utils.CanonicalizeURL(url)
	if err := page.Timeout(pageLoadTimeout).Navigate(cleanURL); err != nil {
		return models.ProductSnapshot{}, fmt.Errorf("%w: navigate %s: %v", scraper.ErrFetchFailed, cleanURL, err)
	}
	if err := page.Timeout(pageLoadTimeout).WaitLoad(); err != nil {
		return models.ProductSnapshot{}, fmt.Errorf("%w: load %s: %v", scraper.ErrFetchFailed, cleanURL, err)
	}
	// Give client-side rendering a moment to settle.
	page.Timeout(5 * time.Second).WaitStable(500 * time.Millisecond)

	snapshot = models.ProductSnapshot{
		URL:          cleanURL,
		Title:        models.UnknownTitle,
		Availability: models.Unknown,
		Source:       sourceLabel,
	}

	if el, err := page.Timeout(10 * time.Second).Element(`meta[property="og:title"]`); err == nil {
		if content, err := el.Attribute("content"); err == nil && content != nil && *content != "" {
			snapshot.Title = *content
		}
	}
	if el, err := page.Timeout(5 * time.Second).Element(".prodPriceCont"); err == nil {
		if text, err := el.Text(); err == nil {
			snapshot.Price = utils.PriceValue(text)
		}
	}
	if el, err := page.Timeout(5 * time.Second).Element(".productAvailability"); err == nil {
		if text, err := el.Text(); err == nil {
			snapshot.Availability = models.ParseAvailability(text)
		}
	}
	if el, err := page.Timeout(5 * time.Second).Element("img#packshotImage"); err == nil {
		if src, err := el.Attribute("src"); err == nil && src != nil {
			snapshot.ImageURL = *src
		}
	}

	return snapshot, nil
}

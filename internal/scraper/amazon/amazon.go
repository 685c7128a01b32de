package amazon

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"PriceTracker/internal/models"
	"PriceTracker/internal/scraper"
	"PriceTracker/utils"
)

const sourceLabel = "Amazon"

// Fetcher scrapes Amazon product pages over plain HTTP. Amazon pages
// render server-side, so no browser is needed; anti-bot pressure is
// handled with UA rotation and CAPTCHA detection.
type Fetcher struct {
	client *http.Client
}

// New creates an Amazon fetcher with a shared HTTP client. The client
// holds no per-URL state, so concurrent fetches are safe.
func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Source implements scraper.Fetcher.
func (f *Fetcher) Source() string { return sourceLabel }

// Fetch implements scraper.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, url string) (models.ProductSnapshot, error) {
	cleanURL := utils.CanonicalizeURL(url)

	html, err := f.fetchPage(ctx, cleanURL)
	if err != nil {
		return models.ProductSnapshot{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.ProductSnapshot{}, fmt.Errorf("%w: parse %s: %v", scraper.ErrFetchFailed, cleanURL, err)
	}

	if !fulfilledByAmazon(doc) {
		return models.ProductSnapshot{}, fmt.Errorf("%w: %s not sold and shipped by Amazon", scraper.ErrNotEligible, cleanURL)
	}

	snapshot := models.ProductSnapshot{
		URL:          cleanURL,
		Title:        models.UnknownTitle,
		Availability: models.Available,
		Source:       sourceLabel,
	}

	if title := strings.TrimSpace(doc.Find("#productTitle").First().Text()); title != "" {
		snapshot.Title = title
	}
	if priceText := strings.TrimSpace(doc.Find(".a-price .a-offscreen").First().Text()); priceText != "" {
		snapshot.Price = utils.PriceValue(priceText)
	}
	if availText := strings.TrimSpace(doc.Find("#availability").First().Text()); availText != "" {
		snapshot.Availability = models.ParseAvailability(availText)
	}
	if src, ok := doc.Find("#landingImage").First().Attr("src"); ok {
		snapshot.ImageURL = src
	}

	return snapshot, nil
}

// fetchPage downloads a page, rejecting CAPTCHA interstitials and empty
// bodies so the retry policy treats them as transient failures.
func (f *Fetcher) fetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: new request %s: %v", scraper.ErrFetchFailed, url, err)
	}
	req.Header.Set("User-Agent", utils.RandomUserAgent())
	req.Header.Set("Accept-Language", "it-IT,it;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: get %s: %v", scraper.ErrFetchFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: get %s: status %d", scraper.ErrFetchFailed, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", scraper.ErrFetchFailed, url, err)
	}

	html := string(body)
	lower := strings.ToLower(html)
	if strings.Contains(lower, "captcha") || strings.Contains(html, "Type the characters you see below") {
		log.Printf("CAPTCHA detected for %s", url)
		return "", fmt.Errorf("%w: captcha interstitial for %s", scraper.ErrFetchFailed, url)
	}
	if strings.TrimSpace(html) == "" {
		return "", fmt.Errorf("%w: empty response for %s", scraper.ErrFetchFailed, url)
	}
	return html, nil
}

// fulfilledByAmazon checks the merchant and fulfiller blocks; only
// listings sold and shipped by Amazon itself are tracked.
func fulfilledByAmazon(doc *goquery.Document) bool {
	merchant := doc.Find(`[offer-display-feature-name="desktop-merchant-info"] .offer-display-feature-text-message`).First().Text()
	fulfiller := doc.Find(`[offer-display-feature-name="desktop-fulfiller-info"] .offer-display-feature-text-message`).First().Text()

	if merchant == "" {
		merchant = doc.Find("#merchant-info").First().Text()
	}
	if fulfiller == "" {
		fulfiller = doc.Find("#shipsFromSoldBy_feature_div").First().Text()
	}

	// Pages without any merchant block at all (older layouts) are
	// given the benefit of the doubt.
	if strings.TrimSpace(merchant) == "" && strings.TrimSpace(fulfiller) == "" {
		return true
	}
	return strings.Contains(strings.ToLower(merchant), "amazon") &&
		strings.Contains(strings.ToLower(fulfiller), "amazon")
}

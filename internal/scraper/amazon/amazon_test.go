package amazon

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"PriceTracker/internal/models"
	"PriceTracker/internal/scraper"
)

const productPage = `<html><body>
<div id="merchant-info">Venduto da Amazon</div>
<div id="shipsFromSoldBy_feature_div">Spedito da Amazon</div>
<span id="productTitle"> Pokemon Scarlatto e Violetto Box </span>
<span class="a-price"><span class="a-offscreen">18,98&nbsp;€</span></span>
<div id="availability">Disponibilità immediata</div>
<img id="landingImage" src="https://img.example/box.jpg"/>
</body></html>`

const thirdPartyPage = `<html><body>
<div id="merchant-info">Venduto da CardShop SRL</div>
<div id="shipsFromSoldBy_feature_div">Spedito da CardShop SRL</div>
<span id="productTitle">Pokemon Box</span>
</body></html>`

func serve(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchExtractsSnapshot(t *testing.T) {
	srv := serve(t, productPage, http.StatusOK)
	f := New()

	snap, err := f.Fetch(context.Background(), srv.URL+"/Pokemon-Box/dp/B0ABC123")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if snap.Title != "Pokemon Scarlatto e Violetto Box" {
		t.Errorf("Title = %q", snap.Title)
	}
	if snap.Price == nil || *snap.Price != 18.98 {
		t.Errorf("Price = %v; want 18.98", snap.Price)
	}
	if snap.Availability != models.Available {
		t.Errorf("Availability = %q; want available", snap.Availability)
	}
	if snap.ImageURL != "https://img.example/box.jpg" {
		t.Errorf("ImageURL = %q", snap.ImageURL)
	}
}

func TestFetchSkipsThirdPartySellers(t *testing.T) {
	srv := serve(t, thirdPartyPage, http.StatusOK)
	f := New()

	_, err := f.Fetch(context.Background(), srv.URL+"/dp/B0ABC123")
	if !errors.Is(err, scraper.ErrNotEligible) {
		t.Fatalf("Fetch err = %v; want ErrNotEligible", err)
	}
}

func TestFetchRejectsCaptchaPage(t *testing.T) {
	srv := serve(t, "<html>Type the characters you see below</html>", http.StatusOK)
	f := New()

	_, err := f.Fetch(context.Background(), srv.URL+"/dp/B0ABC123")
	if !errors.Is(err, scraper.ErrFetchFailed) {
		t.Fatalf("Fetch err = %v; want ErrFetchFailed", err)
	}
}

func TestFetchRejectsNon200(t *testing.T) {
	srv := serve(t, "", http.StatusServiceUnavailable)
	f := New()

	_, err := f.Fetch(context.Background(), srv.URL+"/dp/B0ABC123")
	if !errors.Is(err, scraper.ErrFetchFailed) {
		t.Fatalf("Fetch err = %v; want ErrFetchFailed", err)
	}
}

func TestDiscoverProductLinks(t *testing.T) {
	page := `<html><body>
	<a href="/Pokemon-Prismatiche/dp/B0AAA111/ref=x?qid=1">one</a>
	<a href="/Pokemon-Prismatiche/dp/B0AAA111?tracking=dup">duplicate</a>
	<a href="/Random-Toy/dp/B0BBB222">filtered out</a>
	<a href="/help/contact">not a product</a>
	</body></html>`
	srv := serve(t, page, http.StatusOK)
	f := New()

	links, err := f.DiscoverProductLinks(context.Background(), srv.URL+"/deals", DiscoveryFilter{
		Keywords:    []string{"prismatiche"},
		ReferralTag: "mytag-21",
	})
	if err != nil {
		t.Fatalf("DiscoverProductLinks: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("got %d links (%v); want 1", len(links), links)
	}
	if !strings.HasSuffix(links[0], "/dp/B0AAA111?tag=mytag-21") {
		t.Errorf("link = %q", links[0])
	}
}

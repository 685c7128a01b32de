package server

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"PriceTracker/internal/database"
	"PriceTracker/internal/models"
)

func TestProductsHandlerPaginates(t *testing.T) {
	store := database.OpenMemory(t)
	price := 18.98
	for _, url := range []string{
		"https://www.amazon.it/dp/B01",
		"https://www.amazon.it/dp/B02",
		"https://www.amazon.it/dp/B03",
	} {
		if err := store.Upsert(url, "Pokemon Box", &price, models.Available, ""); err != nil {
			t.Fatal(err)
		}
	}

	handler := productsHandler(store)
	req := httptest.NewRequest("GET", "/products?page=1&limit=2", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp listResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 3 || resp.TotalPages != 2 || len(resp.Data) != 2 {
		t.Errorf("resp = total %d pages %d data %d", resp.Total, resp.TotalPages, len(resp.Data))
	}
	if resp.Data[0].Price == nil || *resp.Data[0].Price != 18.98 {
		t.Errorf("price = %v", resp.Data[0].Price)
	}
}

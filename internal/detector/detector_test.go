package detector

import (
	"testing"

	"PriceTracker/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func snapshot(title string, price *float64, availability models.Availability) models.ProductSnapshot {
	return models.ProductSnapshot{
		URL:          "https://www.amazon.it/dp/B0ABC123",
		Title:        title,
		Price:        price,
		Availability: availability,
	}
}

func record(price *float64, availability models.Availability) *models.PersistedRecord {
	return &models.PersistedRecord{
		URL:          "https://www.amazon.it/dp/B0ABC123",
		Title:        "Pokemon Box",
		Price:        price,
		Availability: availability,
	}
}

func TestEvaluateFirstTimeProduct(t *testing.T) {
	testCases := []struct {
		name       string
		current    models.ProductSnapshot
		wantNotify bool
		wantReason models.Reason
	}{
		{"Real Title And Price", snapshot("Pokemon Box", floatPtr(18.98), models.Available), true, models.ReasonNewProduct},
		{"Unknown Title", snapshot(models.UnknownTitle, floatPtr(18.98), models.Available), false, models.ReasonMissingTitle},
		{"Unknown Title Without Price", snapshot(models.UnknownTitle, nil, models.Available), false, models.ReasonMissingTitle},
		{"Missing Price", snapshot("Pokemon Box", nil, models.Available), false, models.ReasonMissingPrice},
		{"Zero Price", snapshot("Pokemon Box", floatPtr(0), models.Available), false, models.ReasonMissingPrice},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := Evaluate(tc.current, nil)
			if v.Notify != tc.wantNotify || v.Reason != tc.wantReason {
				t.Errorf("Evaluate = %+v; want notify=%v reason=%s", v, tc.wantNotify, tc.wantReason)
			}
		})
	}
}

func TestEvaluateExistingProduct(t *testing.T) {
	testCases := []struct {
		name       string
		current    models.ProductSnapshot
		previous   *models.PersistedRecord
		wantNotify bool
		wantReason models.Reason
	}{
		{
			"Identical Snapshot",
			snapshot("Pokemon Box", floatPtr(100.00), models.Available),
			record(floatPtr(100.00), models.Available),
			false, models.ReasonNoChange,
		},
		{
			"Price Change Below Threshold",
			snapshot("Pokemon Box", floatPtr(104.99), models.Available),
			record(floatPtr(100.00), models.Available),
			false, models.ReasonInsignificantPriceChange,
		},
		{
			"Price Change At Threshold",
			snapshot("Pokemon Box", floatPtr(105.01), models.Available),
			record(floatPtr(100.00), models.Available),
			true, models.ReasonSignificantPriceChange,
		},
		{
			"Price Drop",
			snapshot("Pokemon Box", floatPtr(80.00), models.Available),
			record(floatPtr(100.00), models.Available),
			true, models.ReasonSignificantPriceChange,
		},
		{
			"Availability Flip Stable Price",
			snapshot("Pokemon Box", floatPtr(100.00), models.NotAvailable),
			record(floatPtr(100.00), models.Available),
			true, models.ReasonAvailabilityChange,
		},
		{
			// Price evaluation short-circuits: a sub-threshold price
			// move mutes the availability flip for this cycle.
			"Insignificant Price Change Mutes Availability Flip",
			snapshot("Pokemon Box", floatPtr(101.00), models.NotAvailable),
			record(floatPtr(100.00), models.Available),
			false, models.ReasonInsignificantPriceChange,
		},
		{
			"Both Prices Unparseable",
			snapshot("Pokemon Box", nil, models.Available),
			record(nil, models.Available),
			false, models.ReasonNoChange,
		},
		{
			"Price Lost No Other Change",
			snapshot("Pokemon Box", nil, models.Available),
			record(floatPtr(100.00), models.Available),
			false, models.ReasonPriceParseFailure,
		},
		{
			"Price Lost With Availability Flip",
			snapshot("Pokemon Box", nil, models.NotAvailable),
			record(floatPtr(100.00), models.Available),
			true, models.ReasonAvailabilityChange,
		},
		{
			"Previous Price Zero Falls Through",
			snapshot("Pokemon Box", floatPtr(50.00), models.Available),
			record(floatPtr(0), models.Available),
			false, models.ReasonNoChange,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := Evaluate(tc.current, tc.previous)
			if v.Notify != tc.wantNotify || v.Reason != tc.wantReason {
				t.Errorf("Evaluate = %+v; want notify=%v reason=%s", v, tc.wantNotify, tc.wantReason)
			}
		})
	}
}

package utils

import "testing"

func TestCanonicalizeURL(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"Amazon With Tracking Params",
			"https://www.amazon.it/Pokemon-Scarlatto/dp/B0ABC123/ref=sr_1_3?crid=XYZ&keywords=pokemon&qid=1700000000",
			"https://www.amazon.it/dp/B0ABC123",
		},
		{
			"Amazon Keeps Affiliate Tag",
			"https://www.amazon.it/dp/B0ABC123?tag=mytag-21&linkCode=ll1",
			"https://www.amazon.it/dp/B0ABC123?tag=mytag-21",
		},
		{
			"GameStop Drops Query",
			"https://www.gamestop.it/product/pokemon-ev/12345?utm_source=feed",
			"https://www.gamestop.it/product/pokemon-ev/12345",
		},
		{
			"Already Clean",
			"https://www.gamestop.it/product/pokemon-ev/12345",
			"https://www.gamestop.it/product/pokemon-ev/12345",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CanonicalizeURL(tc.input)
			if got != tc.expected {
				t.Errorf("CanonicalizeURL(%q) = %q; want %q", tc.input, got, tc.expected)
			}
			// Canonicalization must be idempotent.
			if again := CanonicalizeURL(got); again != got {
				t.Errorf("CanonicalizeURL not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestAddReferralTag(t *testing.T) {
	got := AddReferralTag("https://www.amazon.it/dp/B0ABC123", "mytag-21")
	want := "https://www.amazon.it/dp/B0ABC123?tag=mytag-21"
	if got != want {
		t.Errorf("AddReferralTag = %q; want %q", got, want)
	}
	if again := AddReferralTag(got, "other-21"); again != got {
		t.Errorf("AddReferralTag overwrote existing tag: %q", again)
	}
}

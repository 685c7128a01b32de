package models

import (
	"strings"
	"time"
)

// UnknownTitle is the sentinel title scrapers return when a product page
// loads but no title could be extracted. A first-time product carrying this
// title is never announced (see detector).
const UnknownTitle = "Unknown Product"

// Availability is the closed set of stock states a scraper can report.
type Availability string

const (
	Available    Availability = "available"
	Preorder     Availability = "preorder"
	NotAvailable Availability = "not_available"
	Unknown      Availability = "unknown"
)

// ParseAvailability maps the free text found on a product page to an
// Availability state. Covers the Italian storefront wording of both sources.
func ParseAvailability(raw string) Availability {
	text := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case text == "":
		return Unknown
	case containsAny(text, "preordina", "prenota", "preorder", "pre-order"):
		return Preorder
	case containsAny(text, "non disponibile", "esaurito", "out of stock", "unavailable", "attualmente non disponibile"):
		return NotAvailable
	case containsAny(text, "disponibile", "in stock", "available", "disponibilità immediata"):
		return Available
	default:
		return Unknown
	}
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// ProductSnapshot is one observation of a product at a point in time.
// URL is always the canonical form, so the same physical product never maps
// to two keys. A nil Price means absent or unparseable, which is distinct
// from a legitimate zero.
type ProductSnapshot struct {
	URL          string
	Title        string
	Price        *float64
	Availability Availability
	ImageURL     string
	Source       string
}

// HasPrice reports whether the snapshot carries a parsed price.
func (s ProductSnapshot) HasPrice() bool { return s.Price != nil }

// PersistedRecord is the snapshot store's row for a URL.
type PersistedRecord struct {
	URL          string
	Title        string
	Price        *float64
	Availability Availability
	ImageURL     string
	IsInvalid    bool
	LastUpdated  time.Time
}

// HasPrice reports whether the stored record carries a parsed price.
func (r PersistedRecord) HasPrice() bool { return r.Price != nil }

// Reason explains a notification verdict.
type Reason string

const (
	ReasonNewProduct               Reason = "new_product"
	ReasonMissingTitle             Reason = "missing_title"
	ReasonMissingPrice             Reason = "missing_price"
	ReasonSignificantPriceChange   Reason = "significant_price_change"
	ReasonInsignificantPriceChange Reason = "insignificant_price_change"
	ReasonAvailabilityChange       Reason = "availability_change"
	ReasonNoChange                 Reason = "no_change"
	ReasonPriceParseFailure        Reason = "price_parse_failure"
)

// Verdict is the change detector's notify/no-notify decision plus the
// reason behind it. Ephemeral, never persisted.
type Verdict struct {
	Notify bool
	Reason Reason
}

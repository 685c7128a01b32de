// Package detector decides whether a freshly scraped snapshot differs from
// the stored one enough to notify. It is a pure function of (new snapshot,
// previous record); persistence and delivery are the caller's concern.
package detector

import (
	"math"

	"PriceTracker/internal/models"
)

// PriceChangeThreshold is the minimum relative price change that triggers
// a notification. Sub-threshold jitter (rounding, sub-cent moves) stays
// silent.
const PriceChangeThreshold = 0.05

// Evaluate compares a new snapshot against the previous record, if any,
// and returns the notification verdict.
//
// A below-threshold price change suppresses notification for the whole
// cycle, even when availability also flipped: price evaluation
// short-circuits the availability check. Intentional, kept from the
// original gating behavior.
func Evaluate(current models.ProductSnapshot, previous *models.PersistedRecord) models.Verdict {
	if previous == nil {
		return evaluateNew(current)
	}

	priceChanged := !pricesEqual(current.Price, previous.Price)
	availabilityChanged := current.Availability != previous.Availability

	if priceChanged {
		if !current.HasPrice() || !previous.HasPrice() {
			// One side lost or gained its price; nothing to compare
			// a percentage against.
			if availabilityChanged {
				return models.Verdict{Notify: true, Reason: models.ReasonAvailabilityChange}
			}
			return models.Verdict{Notify: false, Reason: models.ReasonPriceParseFailure}
		}
		if *previous.Price != 0 {
			relative := math.Abs(*current.Price-*previous.Price) / *previous.Price
			if relative >= PriceChangeThreshold {
				return models.Verdict{Notify: true, Reason: models.ReasonSignificantPriceChange}
			}
			return models.Verdict{Notify: false, Reason: models.ReasonInsignificantPriceChange}
		}
	}

	if availabilityChanged {
		return models.Verdict{Notify: true, Reason: models.ReasonAvailabilityChange}
	}
	return models.Verdict{Notify: false, Reason: models.ReasonNoChange}
}

func evaluateNew(current models.ProductSnapshot) models.Verdict {
	if current.Title == models.UnknownTitle {
		return models.Verdict{Notify: false, Reason: models.ReasonMissingTitle}
	}
	if !current.HasPrice() || *current.Price == 0 {
		return models.Verdict{Notify: false, Reason: models.ReasonMissingPrice}
	}
	return models.Verdict{Notify: true, Reason: models.ReasonNewProduct}
}

// pricesEqual treats two failed parses as equal; a failed parse against a
// valid number counts as changed.
func pricesEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

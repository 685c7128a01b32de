package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrPriceParse is returned when a raw price string carries no parseable
// number. Callers must treat it as "price unknown", never as zero.
var ErrPriceParse = errors.New("price not parseable")

// NormalizePrice cleans a raw price string and converts it to a float64.
// It handles currency symbols ("18,98€", "EUR 18.98"), comma-decimal
// convention ("18,98" -> 18.98) and thousands separators in either
// convention ("1.079,00" and "1,079.00" both -> 1079.00).
func NormalizePrice(raw string) (float64, error) {
	// Keep only digits and separator characters.
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, fmt.Errorf("%w: %q", ErrPriceParse, raw)
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Both present: the rightmost separator is the decimal mark,
		// the other one separates thousands.
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		// Comma-decimal convention ("18,98").
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrPriceParse, raw)
	}
	return price, nil
}

// PriceValue normalizes a raw price string into an optional price.
// A failed parse yields nil, keeping "unknown" distinct from zero.
func PriceValue(raw string) *float64 {
	price, err := NormalizePrice(raw)
	if err != nil {
		return nil
	}
	return &price
}

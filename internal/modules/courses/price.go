package courses

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var errBadPrice = errors.New("price must be a non-negative amount with at most 2 decimals")

// ParseMinor converts a major-unit string such as "499.00" into minor units.
func ParseMinor(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, errBadPrice
	}
	if d.IsNegative() {
		return 0, errBadPrice
	}
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, errBadPrice
	}
	return minor.IntPart(), nil
}

// FormatMinor renders minor units back as a fixed two-decimal string.
func FormatMinor(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are stored as decimal(14,2) and quantities as decimal(14,3).
const (
	maxAmountExp   = 12
	maxAmountScale = 8
)

var maxAmount = decimal.New(1, maxAmountExp)

// ValidAmount reports whether d fits the money columns. The exponent is checked
// before any arithmetic: an input like 1e2000000000 parses fine but rescaling
// it to add or compare allocates gigabytes.
func ValidAmount(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > maxAmountExp || exp < -maxAmountScale {
		return false
	}
	return d.Abs().LessThan(maxAmount)
}

// ParseAmount reads a numeric form value. Anything that does not parse is zero,
// never an error: operators type partial numbers while filling in a form.
// Out-of-range values count as unparsable.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil || !ValidAmount(d) {
		return decimal.Zero
	}
	return d
}

// Round2 rounds to 2 decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

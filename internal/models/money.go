package models

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)

	// plainAmount is decimal notation without exponents or separators
	plainAmount = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
)

// MaxAmountLength bounds the text of an amount before it is parsed
const MaxAmountLength = 32

// ParseAmount parses a dollar amount written in plain decimal notation.
// Exponent forms such as "1e2" and inputs longer than MaxAmountLength are
// rejected before any arithmetic is done on them.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	if len(raw) > MaxAmountLength || !plainAmount.MatchString(raw) {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// ToCents converts a dollar amount to cents, rounding half away from zero.
// ok is false when the result does not fit in an int64.
func ToCents(amount decimal.Decimal) (cents int64, ok bool) {
	rounded := amount.Mul(hundred).Round(0)
	if rounded.GreaterThan(maxCents) || rounded.LessThan(minCents) {
		return 0, false
	}
	return rounded.IntPart(), true
}

// CentsToDollars renders cents as a plain decimal string ("25.50"),
// suitable for pre-filling a form input
func CentsToDollars(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// FormatCurrency renders cents as US dollars with thousands separators
func FormatCurrency(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	fixed := CentsToDollars(cents)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + "$" + b.String() + "." + frac
}

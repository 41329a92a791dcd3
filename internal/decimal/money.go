package decimal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// CentPlaces is the number of fractional digits of a BRL amount
const CentPlaces = 2

// FromString parses an XML amount such as "1500.75". A comma is never a
// decimal separator.
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// RoundBRL rounds half away from zero to whole cents
func RoundBRL(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}

// Plain renders the amount with exactly two fraction digits, e.g. "250.00"
func Plain(d decimal.Decimal) string {
	return d.StringFixed(CentPlaces)
}

// FormatBRL renders the amount the Brazilian way, e.g. "R$ 1.500,75"
func FormatBRL(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(CentPlaces)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.IsNegative() && !RoundBRL(d).IsZero() {
		b.WriteString("-")
	}
	b.WriteString("R$ ")
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// Package money provides exact decimal-string arithmetic for monetary
// values. Amounts are represented as strings with two fraction digits
// ("150.00", "-0.10") and are never routed through binary floating point.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Zero is the canonical zero amount.
const Zero = "0.00"

var ErrInvalidAmount = errors.New("invalid monetary amount")

// Parse converts a decimal string into a decimal value.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// Normalize validates s and returns it rendered with exactly two fraction
// digits ("1.5" -> "1.50", "-3" -> "-3.00").
func Normalize(s string) (string, error) {
	d, err := Parse(s)
	if err != nil {
		return "", err
	}
	return d.StringFixed(2), nil
}

// IsZero reports whether s is exactly zero. Invalid input is not zero.
func IsZero(s string) bool {
	d, err := Parse(s)
	if err != nil {
		return false
	}
	return d.IsZero()
}

// Invert flips the sign of s. Zero maps to itself.
func Invert(s string) (string, error) {
	d, err := Parse(s)
	if err != nil {
		return "", err
	}
	if d.IsZero() {
		return Zero, nil
	}
	return d.Neg().StringFixed(2), nil
}

// Add returns a + b with exact decimal semantics. Production balance
// arithmetic happens inside the database; this exists for read models and
// tests that need to mirror it.
func Add(a, b string) (string, error) {
	da, err := Parse(a)
	if err != nil {
		return "", err
	}
	db, err := Parse(b)
	if err != nil {
		return "", err
	}
	return da.Add(db).StringFixed(2), nil
}

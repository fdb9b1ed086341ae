// Package money handles monetary amounts as int64 minor units (cents).
// Decimal strings cross the API boundary; integers live everywhere else.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// ParseMinor converts a decimal amount string ("25.00") to minor units.
// Sub-cent precision is rejected rather than rounded.
func ParseMinor(input string) (int64, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return 0, ErrInvalidAmount
	}
	minor := amount.Mul(decimal.NewFromInt(100))
	if !minor.IsInteger() {
		return 0, ErrTooManyDecimals
	}
	return minor.IntPart(), nil
}

// FormatMinor renders minor units as a decimal string with two places.
func FormatMinor(value int64) string {
	negative := value < 0
	if negative {
		value = -value
	}
	formatted := fmt.Sprintf("%d.%02d", value/100, value%100)
	if negative {
		return "-" + formatted
	}
	return formatted
}

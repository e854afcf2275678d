package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// ParseMinor converts user-typed text like "100" or "49.90" into minor units.
func ParseMinor(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Compare against the truncated value rather than the exponent so that
	// trailing zeros ("100.000") still parse.
	if !value.Equal(value.Truncate(2)) {
		return 0, ErrTooManyDecimals
	}
	minor := value.Shift(2)
	if !minor.BigInt().IsInt64() {
		return 0, ErrInvalidAmount
	}
	return minor.IntPart(), nil
}

func FormatMinor(value int64) string {
	return decimal.New(value, -2).StringFixed(2)
}

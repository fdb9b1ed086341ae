package handlers

import (
	"errors"

	"github.com/Ghost247-bot/ulster-sub001/internal/money"
)

var (
	errInvalidAmount   = errors.New("amount must be a decimal number")
	errAmountPrecision = errors.New("amount cannot have more than two decimal places")
)

func parseAmountMinor(raw string) (int64, error) {
	minor, err := money.ParseMinor(raw)
	if errors.Is(err, money.ErrTooManyDecimals) {
		return 0, errAmountPrecision
	}
	if err != nil {
		return 0, errInvalidAmount
	}
	return minor, nil
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return fallback
		}
		value = value*10 + int(r-'0')
		if value > 1_000_000 {
			return fallback
		}
	}
	if value == 0 {
		return fallback
	}
	return value
}

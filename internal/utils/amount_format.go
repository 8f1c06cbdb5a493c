package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundAmount rounds a monetary amount to 2 decimal places, going through
// decimal so half-up rounding is exact rather than subject to binary float
// representation.
// Example: 1700.005 returns 1700.01, 242.857142 returns 242.86.
func RoundAmount(v float64) float64 {
	return RoundAmountWithPrecision(v, 2)
}

// RoundAmountWithPrecision rounds an amount to the given number of decimal
// places. Non-finite input yields 0; decimal.NewFromFloat panics on NaN/Inf
// and a degenerate figure must never take a response down with it.
func RoundAmountWithPrecision(v float64, precision int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(precision).Float64()
	return f
}

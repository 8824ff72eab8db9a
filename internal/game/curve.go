package game

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultGrowthRate is the exponent applied per elapsed millisecond of
// ascent: m(t) = e^(rate*t). At 6e-5/ms the multiplier passes 2.00 around
// 11.5s and 10.00 around 38s.
const DefaultGrowthRate = 0.00006

// MultiplierAt returns the display multiplier after elapsedMs of ascent.
// The curve is strictly increasing and depends only on elapsed time, so
// every viewer derives the same value from the same round timeline.
// Truncated to 2 decimals; never below 1.00.
func MultiplierAt(elapsedMs float64, growthRate float64) decimal.Decimal {
	if growthRate <= 0 {
		growthRate = DefaultGrowthRate
	}
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	m := decimal.NewFromFloat(math.Exp(growthRate * elapsedMs)).Truncate(2)
	if m.LessThan(minMultiplier) {
		return minMultiplier
	}
	return m
}

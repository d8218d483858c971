// Package pricing holds the tiered minimum-increment schedule. It is pure so
// both the settlement path and pre-validation callers share one rule.
package pricing

import "math"

// MinIncrement returns the minimum delta a next bid must add on top of the
// given price. Tiers: [0, 50) -> 0.50, [50, 500) -> 2.00, [500, inf) -> 5.00.
func MinIncrement(price float64) float64 {
	switch {
	case price < 50.00:
		return 0.50
	case price < 500.00:
		return 2.00
	default:
		return 5.00
	}
}

// MinNextBid is the lowest acceptable next bid for an auction whose current
// price is price, rounded to cents.
func MinNextBid(price float64) float64 {
	return Round2(price + MinIncrement(price))
}

// Round2 rounds a monetary amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

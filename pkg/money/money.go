package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Tolerance is the absolute difference under which two amounts are treated as equal.
// It absorbs floating-point drift in zero-sum and equality checks.
const Tolerance = 0.01

// Round2 rounds an amount to 2 decimal places (half away from zero)
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// IsZero reports whether v is within Tolerance of zero
func IsZero(v float64) bool {
	return math.Abs(v) < Tolerance
}

// Equal reports whether a and b differ by less than Tolerance
func Equal(a, b float64) bool {
	return IsZero(a - b)
}

// Sum adds amounts using decimal arithmetic so long lists do not accumulate drift
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

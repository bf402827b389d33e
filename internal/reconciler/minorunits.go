// Package reconciler converts fractional-currency expense shares into integer
// minor-unit split lines that sum exactly to a settlement total.
//
// All currency math in this package is decimal; converting to minor units is
// the only rounding step and uses a single rule (round half away from zero) so
// the same input always produces the same output.
package reconciler

import "github.com/shopspring/decimal"

// minorUnitsPerMajor is the minor-unit scale: 1/1000 of the major unit.
const minorUnitsPerMajor = 1000

// ResidualThreshold is the largest residual, in minor units, that the
// reconciler will absorb as rounding noise (0.10 major units). Anything larger
// is treated as a data error.
const ResidualThreshold = 100

var minorUnitScale = decimal.NewFromInt(minorUnitsPerMajor)

// ToMinorUnits converts a decimal major-unit amount to integer minor units,
// rounding halves away from zero (12.5005 -> 12501, -12.5005 -> -12501).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnitScale).Round(0).IntPart()
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

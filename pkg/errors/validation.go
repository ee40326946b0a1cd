package errors

import (
	"math"
)

// DefaultMaxSites is the largest group the solver accepts unless configured
// otherwise. The search is roughly quartic in the site count.
const DefaultMaxSites = 50

// ValidateGroupSize rejects group sizes above max. A max of zero or less
// selects DefaultMaxSites.
func ValidateGroupSize(n, max int) error {
	if max <= 0 {
		max = DefaultMaxSites
	}
	if n > max {
		return New(ErrCodeGroupTooLarge, "group has %d sites (max %d)", n, max)
	}
	return nil
}

// ValidateCoordinate rejects coordinates that cannot take part in a distance
// computation.
func ValidateCoordinate(x, y float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return New(ErrCodeInvalidRecord, "coordinate (%v, %v) is not finite", x, y)
	}
	return nil
}

// ValidatePopulation rejects negative inhabitant counts.
func ValidatePopulation(p int) error {
	if p < 0 {
		return New(ErrCodeInvalidRecord, "population %d is negative", p)
	}
	return nil
}

package domain

import "math"

// SaturatingAdd returns a+b for finite a and b. A sum that overflows is clamped to
// ±math.MaxFloat64 and reported, so totals over valid records stay finite.
func SaturatingAdd(a, b float64) (float64, bool) {
	sum := a + b
	switch {
	case math.IsInf(sum, 1):
		return math.MaxFloat64, true
	case math.IsInf(sum, -1):
		return -math.MaxFloat64, true
	}
	return sum, false
}

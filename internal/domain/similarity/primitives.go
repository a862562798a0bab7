// Package similarity computes weighted multi-attribute similarity between a
// partial query and a catalog record.
package similarity

import "math"

// Boolean returns 1 if a and b are equal, else 0. There is no partial credit.
func Boolean(a, b bool) float64 {
	if a == b {
		return 1
	}
	return 0
}

// Numerical returns 1 - |a-b|/(hi-lo), clamped into [0, 1].
//
// A degenerate range (lo == hi) cannot discriminate between values, so any two
// values are treated as fully similar and 1 is returned, even for values
// outside the range.
func Numerical(a, b, lo, hi float64) float64 {
	if lo == hi {
		return 1
	}
	s := 1 - math.Abs(a-b)/(hi-lo)
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	default:
		return s
	}
}

// Categorical returns 1 if a and b are the same string (case-sensitive), else 0.
func Categorical(a, b string) float64 {
	if a == b {
		return 1
	}
	return 0
}

package util

import (
	"math"
)

const epsilon = 0.000001

func NearlyEqual(a float64, b float64) bool {
	if a == b {
		return true
	}

	diff := math.Abs(a - b)
	if diff < epsilon {
		return true
	}

	return false
}

func Greater(a float64, b float64) bool {
	return a > b && !NearlyEqual(a, b)
}

func GreaterOrNearlyEqual(a float64, b float64) bool {
	if a > b || a == b {
		return true
	}

	return NearlyEqual(a, b)
}

// ClampNonNegative normalizes malformed OCR numeric reads. Stack and
// bet values are never negative on a real table.
func ClampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

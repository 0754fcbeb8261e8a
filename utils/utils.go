package utils

import "math"

func FormatFloat(f float64, round int32) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	pow := math.Pow(10, float64(round))
	return math.Round(f*pow) / pow
}

// NearlyEqual compares two floats with an absolute tolerance.
func NearlyEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

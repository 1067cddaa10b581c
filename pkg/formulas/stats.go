// Package formulas holds the small numeric helpers shared by the scoring modules.
package formulas

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values.
// An empty slice has mean 0.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// Sum returns the sum of the values.
func Sum(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Sum(data)
}

// NormalizeWeights scales weights so they sum to 1.
// Returns nil, false when the weights sum to zero (no signal).
func NormalizeWeights(weights []float64) ([]float64, bool) {
	total := Sum(weights)
	if total == 0 {
		return nil, false
	}
	normalized := make([]float64, len(weights))
	copy(normalized, weights)
	floats.Scale(1/total, normalized)
	return normalized, true
}

// WeightedSum returns sum(values[i] * weights[i]).
// Slices of different length yield 0.
func WeightedSum(values, weights []float64) float64 {
	if len(values) == 0 || len(values) != len(weights) {
		return 0
	}
	return floats.Dot(values, weights)
}

// Ratio returns num/den, or 0 when den is zero.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

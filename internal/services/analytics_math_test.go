package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMeanFloat64(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{
			name:     "empty slice",
			values:   []float64{},
			expected: 0,
		},
		{
			name:     "single value",
			values:   []float64{5.0},
			expected: 5.0,
		},
		{
			name:     "multiple values",
			values:   []float64{1.0, 2.0, 3.0, 4.0, 5.0},
			expected: 3.0,
		},
		{
			name:     "mixed positive and negative",
			values:   []float64{-10.0, 0.0, 10.0},
			expected: 0.0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := calculateMeanFloat64(tc.values)
			assert.InDelta(t, tc.expected, result, 1e-10, "mean calculation mismatch")
		})
	}
}

func TestCalculateStdDev(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{
			name:     "empty slice",
			values:   []float64{},
			expected: 0,
		},
		{
			name:     "single value",
			values:   []float64{5.0},
			expected: 0,
		},
		{
			name:     "two identical values",
			values:   []float64{5.0, 5.0},
			expected: 0,
		},
		{
			name:     "uniform distribution",
			values:   []float64{1.0, 2.0, 3.0, 4.0, 5.0},
			expected: math.Sqrt(2.5),
		},
		{
			name:     "large spread",
			values:   []float64{0.0, 100.0},
			expected: math.Sqrt(5000),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := calculateStdDev(tc.values)
			assert.InDelta(t, tc.expected, result, 1e-10, "std dev mismatch")
		})
	}
}

func TestCalculateCorrelation(t *testing.T) {
	tests := []struct {
		name     string
		x        []float64
		y        []float64
		expected float64
	}{
		{
			name:     "empty input",
			x:        []float64{},
			y:        []float64{},
			expected: 0,
		},
		{
			name:     "length mismatch",
			x:        []float64{1, 2, 3},
			y:        []float64{1, 2},
			expected: 0,
		},
		{
			name:     "perfect positive",
			x:        []float64{1, 2, 3, 4},
			y:        []float64{2, 4, 6, 8},
			expected: 1,
		},
		{
			name:     "perfect negative",
			x:        []float64{1, 2, 3, 4},
			y:        []float64{8, 6, 4, 2},
			expected: -1,
		},
		{
			name:     "zero variance in x",
			x:        []float64{5, 5, 5, 5},
			y:        []float64{1, 2, 3, 4},
			expected: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := calculateCorrelation(tc.x, tc.y)
			assert.InDelta(t, tc.expected, result, 1e-10, "correlation mismatch")
		})
	}
}

func TestSimpleReturns(t *testing.T) {
	tests := []struct {
		name     string
		series   []float64
		expected []float64
	}{
		{
			name:     "too short",
			series:   []float64{100},
			expected: nil,
		},
		{
			name:     "doubling and halving",
			series:   []float64{100, 200, 100},
			expected: []float64{1, -0.5},
		},
		{
			name:     "skips non-positive base",
			series:   []float64{0, 100, 110},
			expected: []float64{0.1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := simpleReturns(tc.series)
			if tc.expected == nil {
				assert.Nil(t, result)
				return
			}
			assert.Equal(t, len(tc.expected), len(result))
			for i := range tc.expected {
				assert.InDelta(t, tc.expected[i], result[i], 1e-10)
			}
		})
	}
}

func TestFilterFinitePairs(t *testing.T) {
	x := []float64{1, math.NaN(), 3, 4, math.Inf(1)}
	y := []float64{10, 20, math.Inf(-1), 40, 50}

	fx, fy := filterFinitePairs(x, y)

	assert.Equal(t, []float64{1, 4}, fx)
	assert.Equal(t, []float64{10, 40}, fy)
}

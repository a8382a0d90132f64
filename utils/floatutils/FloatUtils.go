// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// ClipInterval is a wrapper to use Clip with an r1.Interval instead of
// a separate max and min value
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// ClipSlice clips each value in place to the interval at the same
// position. The number of values and intervals must match.
func ClipSlice(values []float64, intervals []r1.Interval) {
	if len(values) != len(intervals) {
		panic("clipSlice: values and intervals have different lengths")
	}
	for i := range values {
		values[i] = ClipInterval(values[i], intervals[i])
	}
}

// Package intutils provides utilities for working with integers
package intutils

// Min calculates and returns the minimum integer in a list
func Min(ints ...int) int {
	min := ints[0]
	for _, val := range ints {
		if val < min {
			min = val
		}
	}
	return min
}

// Max calculates and returns the maximum integer in a list
func Max(ints ...int) int {
	max := ints[0]
	for _, val := range ints {
		if val > max {
			max = val
		}
	}
	return max
}

// Prod returns the product of a list of integers. The product of an
// empty list is 1.
func Prod(ints ...int) int {
	prod := 1
	for _, val := range ints {
		prod *= val
	}
	return prod
}

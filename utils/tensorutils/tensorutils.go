// Package tensorutils provides utilities for indexing tensors and
// tensor-like storage
package tensorutils

import "fmt"

// Slice implements a struct that can be used for slicing along the
// first axis of tensors or replay buffers.
//
// Given a tensor T and a Slice S, T.Slice(S) is equivalent to
// T[S.start:S.end:S.step]
type Slice struct {
	start, end, step int
}

// NewSlice returns a new Slice that can be used to slice tensors
func NewSlice(start, stop, step int) Slice {
	return Slice{start, stop, step}
}

// Start returns the start index for the slice
func (s Slice) Start() int {
	return s.start
}

// End returns the ending index for the slice
func (s Slice) End() int {
	return s.end
}

// Step returns the step for the slice
func (s Slice) Step() int {
	return s.step
}

// Clip returns the bounds of the Slice restricted to an axis of length
// n. The end is clipped to n and the start to the end. A non-positive
// step is returned as 1. An error is returned if either bound is
// negative.
func (s Slice) Clip(n int) (start, end, step int, err error) {
	if s.start < 0 || s.end < 0 {
		return 0, 0, 0, fmt.Errorf("clip: negative bounds [%v:%v]",
			s.start, s.end)
	}

	end = s.end
	if end > n {
		end = n
	}
	start = s.start
	if start > end {
		start = end
	}
	step = s.step
	if step < 1 {
		step = 1
	}
	return start, end, step, nil
}

// Indices returns the indices selected by the Slice on an axis of
// length n
func (s Slice) Indices(n int) ([]int, error) {
	start, end, step, err := s.Clip(n)
	if err != nil {
		return nil, err
	}

	indices := make([]int, 0, (end-start+step-1)/step)
	for i := start; i < end; i += step {
		indices = append(indices, i)
	}
	return indices, nil
}

func (s Slice) String() string {
	return fmt.Sprintf("[%v:%v:%v]", s.start, s.end, s.step)
}

package floatutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	assert.Equal(t, 1.0, Clip(3, -1, 1))
	assert.Equal(t, -1.0, Clip(-3, -1, 1))
	assert.Equal(t, 0.5, Clip(0.5, -1, 1))
	assert.Equal(t, 2.0, ClipInterval(5, r1.Interval{Min: 0, Max: 2}))

	values := []float64{-2, 0.5, 9}
	ClipSlice(values, []r1.Interval{{Min: -1, Max: 1}, {Min: 0, Max: 1},
		{Min: 0, Max: 3}})
	assert.Equal(t, []float64{-1, 0.5, 3}, values)

	assert.Panics(t, func() { ClipSlice(values, nil) })
}

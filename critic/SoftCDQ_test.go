package critic

import (
	"math"
	"testing"

	"github.com/samuelfneumann/offpolicy/expreplay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClipped(t *testing.T) {
	min, err := Clipped([][]float64{
		{1, 5, -2},
		{3, 4, -1},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4, -2}, min)

	_, err = Clipped([][]float64{{1, 2}, {1}})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Clipped(nil)
	assert.Error(t, err)
}

func TestSoftTargets(t *testing.T) {
	rewards := []float64{1, 2, 3}
	dones := []float64{0, 1, 0}
	next := [][]float64{
		{10, 10, 4},
		{8, 12, 6},
	}
	logp := []float64{-1, -2, 0.5}

	targets, err := SoftTargets(rewards, dones, next, logp, 0.5, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 1+0.5*(8+0.2), targets[0], 1e-12)
	assert.Equal(t, 2.0, targets[1], "done rows equal their reward")
	assert.InDelta(t, 3+0.5*(4-0.1), targets[2], 1e-12)

	deterministic, err := SoftTargets(rewards, dones, next, nil, 0.5, 0.2)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 2, 5}, deterministic)

	// Inputs are not modified
	assert.Equal(t, []float64{10, 10, 4}, next[0])
	assert.Equal(t, []float64{-1, -2, 0.5}, logp)
}

func TestSoftTargetsDoneIgnoresNext(t *testing.T) {
	targets, err := SoftTargets([]float64{-1}, []float64{1},
		[][]float64{{math.Inf(1)}}, []float64{math.NaN()}, 0.99, 0.1)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1}, targets)
}

func TestSoftTargetsErrors(t *testing.T) {
	next := [][]float64{{1, 2}}
	_, err := SoftTargets([]float64{1, 2}, []float64{0}, next, nil, 0.9, 0)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = SoftTargets([]float64{1, 2}, []float64{0, 0}, next,
		[]float64{1}, 0.9, 0)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = SoftTargets([]float64{1}, []float64{0}, next, nil, 0.9, 0)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = SoftTargets([]float64{1, 2}, []float64{0, 0}, next, nil, 1.1, 0)
	assert.Error(t, err)
}

func TestBatchTargets(t *testing.T) {
	b, err := expreplay.NewTransitions([]int{1}, []int{1}, 4, 0)
	require.NoError(t, err)
	for i, done := range []bool{false, true} {
		require.NoError(t, b.Add(expreplay.Entry{
			expreplay.Obs:     []float64{0},
			expreplay.Actions: []float64{0},
			expreplay.Rewards: float64(i + 1),
			expreplay.NextObs: []float64{0},
			expreplay.Dones:   done,
		}))
	}

	targets, err := BatchTargets(b.AllSamples(), [][]float64{{2, 2}, {4, 4}},
		nil, 0.5, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2}, targets)

	_, err = BatchTargets(expreplay.Batch{}, [][]float64{{1}}, nil, 0.5, 0)
	assert.Error(t, err)
}

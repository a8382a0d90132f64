// Package critic implements the bootstrapped value targets used to
// train critics on minibatches sampled from a replay buffer.
package critic

import (
	"errors"
	"fmt"
	"math"

	"github.com/samuelfneumann/offpolicy/expreplay"
	"gonum.org/v1/gonum/floats"
)

// ErrLengthMismatch denotes inputs which do not hold the same number
// of transitions
var ErrLengthMismatch = errors.New("length mismatch")

// Clipped returns the element-wise minimum of the values predicted by
// a number of critics. Each element of values holds the predictions of
// a single critic for the same transitions.
func Clipped(values [][]float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("clipped: no critic values")
	}

	min := make([]float64, len(values[0]))
	copy(min, values[0])
	for i, critic := range values[1:] {
		if len(critic) != len(min) {
			return nil, fmt.Errorf("clipped: %w: critic %d has %d values, "+
				"want %d", ErrLengthMismatch, i+1, len(critic), len(min))
		}
		for j := range min {
			min[j] = math.Min(min[j], critic[j])
		}
	}
	return min, nil
}

// SoftTargets returns the clipped double Q-learning targets
//
//	r + gamma * (1 - done) * (min_i Q_i(s', a') - alpha * log π(a'|s'))
//
// where nextValues holds the target critics' predictions at the next
// state and action and nextLogp holds the log probability of the next
// action. A nil nextLogp gives the targets of a deterministic policy.
// The target of a transition with done != 0 is its reward.
func SoftTargets(rewards, dones []float64, nextValues [][]float64,
	nextLogp []float64, gamma, alpha float64) ([]float64, error) {
	if gamma < 0 || gamma > 1 {
		return nil, fmt.Errorf("softTargets: gamma must be in [0, 1] "+
			"\n\thave(%v)", gamma)
	}

	n := len(rewards)
	if len(dones) != n {
		return nil, fmt.Errorf("softTargets: %w: %d rewards but %d dones",
			ErrLengthMismatch, n, len(dones))
	}
	if nextLogp != nil && len(nextLogp) != n {
		return nil, fmt.Errorf("softTargets: %w: %d rewards but %d log "+
			"probabilities", ErrLengthMismatch, n, len(nextLogp))
	}

	next, err := Clipped(nextValues)
	if err != nil {
		return nil, fmt.Errorf("softTargets: %w", err)
	}
	if len(next) != n {
		return nil, fmt.Errorf("softTargets: %w: %d rewards but %d next "+
			"values", ErrLengthMismatch, n, len(next))
	}

	if nextLogp != nil && alpha != 0 {
		floats.AddScaled(next, -alpha, nextLogp)
	}

	targets := make([]float64, n)
	copy(targets, rewards)
	for i := range targets {
		if dones[i] == 0 {
			targets[i] += gamma * next[i]
		}
	}
	return targets, nil
}

// BatchTargets returns the SoftTargets of a batch sampled from a
// transition replay buffer, reading its rewards and dones fields
func BatchTargets(batch expreplay.Batch, nextValues [][]float64,
	nextLogp []float64, gamma, alpha float64) ([]float64, error) {
	rewards, err := batch.Float64s(expreplay.Rewards)
	if err != nil {
		return nil, fmt.Errorf("batchTargets: %v", err)
	}
	dones, err := batch.Float64s(expreplay.Dones)
	if err != nil {
		return nil, fmt.Errorf("batchTargets: %v", err)
	}

	return SoftTargets(rewards, dones, nextValues, nextLogp, gamma, alpha)
}

// Package agent defines the interfaces between an off-policy learner
// and the collaborators that it drives
package agent

import (
	"github.com/samuelfneumann/offpolicy/expreplay"
	"github.com/samuelfneumann/offpolicy/timestep"
	"gorgonia.org/tensor"
)

// Module is a set of trainable parameters, such as the weights of a
// critic, which are tracked by target parameters
type Module interface {
	// Params returns the live parameters of the Module. The returned
	// tensors must stay the same across calls, so that changes made to
	// them by an Optimizer are seen by the holder of the tensors.
	Params() []*tensor.Dense
}

// Optimizer performs gradient updates of a Module's parameters on
// minibatches sampled from a replay buffer. Gradient computation is
// entirely up to the Optimizer.
type Optimizer interface {
	// Step performs a single gradient step on a minibatch and returns
	// statistics of the update, such as losses, keyed by name
	Step(batch expreplay.Batch) (map[string]float64, error)
}

// Learner implements a learning algorithm which stores experience and
// updates weights from it
type Learner interface {
	// Observe records a single transition
	Observe(t timestep.Transition) error

	// SelectAction returns the action to take in the environment given
	// the action chosen by the policy
	SelectAction(policyAction []float64) []float64

	// Step performs an update to the learner
	Step() error
}

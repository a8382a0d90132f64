package main

import (
	"fmt"

	"github.com/samuelfneumann/offpolicy/critic"
	"github.com/samuelfneumann/offpolicy/expreplay"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// linearCritic is an action-value function linear in the observation,
// the action, and a bias
type linearCritic struct {
	weights *tensor.Dense
}

func newLinearCritic(obsDim, actionDim int) *linearCritic {
	features := obsDim + actionDim + 1
	return &linearCritic{weights: tensor.New(
		tensor.WithShape(features),
		tensor.WithBacking(make([]float64, features)),
	)}
}

// Params implements the agent.Module interface
func (l *linearCritic) Params() []*tensor.Dense {
	return []*tensor.Dense{l.weights}
}

// features returns the feature matrix [obs, actions, 1] of a batch
func features(obs, actions *mat.Dense) *mat.Dense {
	rows, _ := obs.Dims()
	ones := make([]float64, rows)
	floats.AddConst(1.0, ones)

	var x, bias mat.Dense
	x.Augment(obs, actions)
	bias.Augment(&x, mat.NewDense(rows, 1, ones))
	return &bias
}

// predict returns the values of features x under weights w
func predict(x *mat.Dense, w *tensor.Dense) *mat.VecDense {
	data := w.Data().([]float64)
	rows, _ := x.Dims()

	q := mat.NewVecDense(rows, nil)
	q.MulVec(x, mat.NewVecDense(len(data), data))
	return q
}

// sgd trains a linearCritic by semi-gradient TD on replay batches. The
// next action of a transition is assumed to equal its action.
type sgd struct {
	critic  *linearCritic
	targets func() *tensor.Dense

	learningRate float64
	gamma        float64
}

// Step implements the agent.Optimizer interface
func (s *sgd) Step(batch expreplay.Batch) (map[string]float64, error) {
	obs, err := batch[expreplay.Obs].Matrix()
	if err != nil {
		return nil, fmt.Errorf("step: %v", err)
	}
	actions, err := batch[expreplay.Actions].Matrix()
	if err != nil {
		return nil, fmt.Errorf("step: %v", err)
	}
	nextObs, err := batch[expreplay.NextObs].Matrix()
	if err != nil {
		return nil, fmt.Errorf("step: %v", err)
	}

	x := features(obs, actions)
	nextQ := predict(features(nextObs, actions), s.targets())
	y, err := critic.BatchTargets(batch, [][]float64{nextQ.RawVector().Data},
		nil, s.gamma, 0)
	if err != nil {
		return nil, fmt.Errorf("step: %w", err)
	}

	tdError := predict(x, s.critic.weights)
	tdError.SubVec(tdError, mat.NewVecDense(len(y), y))

	n := float64(len(y))
	var grad mat.VecDense
	grad.MulVec(x.T(), tdError)
	floats.AddScaled(s.critic.weights.Data().([]float64), -s.learningRate/n,
		grad.RawVector().Data)

	loss := mat.Dot(tdError, tdError) / n
	return map[string]float64{"loss": loss}, nil
}

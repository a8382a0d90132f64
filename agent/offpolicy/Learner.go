// Package offpolicy implements an off-policy learner which composes a
// replay buffer, target parameters, and an exploration strategy, and
// drives an external optimizer with minibatches of experience.
package offpolicy

import (
	"fmt"
	"os"

	"github.com/samuelfneumann/offpolicy/agent"
	"github.com/samuelfneumann/offpolicy/exploration"
	"github.com/samuelfneumann/offpolicy/expreplay"
	"github.com/samuelfneumann/offpolicy/target"
	"github.com/samuelfneumann/offpolicy/timestep"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gorgonia.org/tensor"
)

// Learner implements an off-policy learner. Transitions are stored in
// a replay buffer. Each Step, the optimizer takes a number of gradient
// steps on minibatches sampled from the buffer, and every
// TargetUpdateInterval gradient steps the target parameters are
// Polyak averaged towards the module's parameters.
type Learner struct {
	module    agent.Module
	optimizer agent.Optimizer

	replay   *expreplay.Buffer
	sync     *target.Synchronizer
	explorer exploration.Strategy
	rng      *rand.Rand

	batchSize            int
	learningStarts       int
	trainIntervals       int
	tau                  float64
	targetUpdateInterval int

	envSteps      int
	gradientSteps int
	stats         map[string]float64
}

// New returns a new Learner which trains module with optimizer on
// observations of shape obsShape and actions within actionBounds
func New(module agent.Module, optimizer agent.Optimizer, obsShape []int,
	actionBounds []r1.Interval, config Config) (*Learner, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	replay, err := config.Replay.Create(obsShape, []int{len(actionBounds)})
	if err != nil {
		return nil, fmt.Errorf("new: could not create replay buffer: %w", err)
	}

	sync, err := target.New(module.Params())
	if err != nil {
		return nil, fmt.Errorf("new: could not create targets: %w", err)
	}

	explorer, err := config.Exploration.Create(actionBounds, config.Seed+1)
	if err != nil {
		return nil, fmt.Errorf("new: could not create exploration: %w", err)
	}

	return &Learner{
		module:               module,
		optimizer:            optimizer,
		replay:               replay,
		sync:                 sync,
		explorer:             explorer,
		rng:                  rand.New(rand.NewSource(config.Seed)),
		batchSize:            config.BatchSize,
		learningStarts:       config.LearningStarts,
		trainIntervals:       config.TrainIntervals,
		tau:                  config.Tau,
		targetUpdateInterval: config.TargetUpdateInterval,
		stats:                make(map[string]float64),
	}, nil
}

// Observe records a transition in the replay buffer
func (l *Learner) Observe(t timestep.Transition) error {
	if err := l.replay.AddTransition(t); err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	l.envSteps++
	return nil
}

// SelectAction returns the action to take given the action chosen by
// the policy, based on the number of transitions observed so far
func (l *Learner) SelectAction(policyAction []float64) []float64 {
	return l.explorer.Action(policyAction, l.envSteps)
}

// Step performs the configured number of gradient steps. Nothing is
// learned until the replay buffer holds at least LearningStarts
// transitions.
func (l *Learner) Step() error {
	if l.replay.Len() == 0 || l.replay.Len() < l.learningStarts {
		return nil
	}

	for i := 0; i < l.trainIntervals; i++ {
		batch, err := l.replay.Sample(l.batchSize, l.rng)
		if err != nil {
			return fmt.Errorf("step: %w", err)
		}

		stats, err := l.optimizer.Step(batch)
		if err != nil {
			return fmt.Errorf("step: optimizer: %w", err)
		}
		l.gradientSteps++

		if l.gradientSteps%l.targetUpdateInterval == 0 {
			if err := l.sync.Update(l.tau); err != nil {
				return fmt.Errorf("step: %w", err)
			}
		}

		for k, v := range stats {
			if _, ok := l.stats[k]; !ok && isReserved(k) {
				fmt.Fprintf(os.Stderr, "Warning: optimizer statistic %v "+
					"is overwritten by the learner\n", k)
			}
			l.stats[k] = v
		}
	}
	return nil
}

// Targets returns the target parameters of the module
func (l *Learner) Targets() []*tensor.Dense {
	return l.sync.Targets()
}

// Replay returns the Learner's replay buffer
func (l *Learner) Replay() *expreplay.Buffer {
	return l.replay
}

// GradientSteps returns the number of gradient steps taken
func (l *Learner) GradientSteps() int {
	return l.gradientSteps
}

// Statistics recorded by every Learner
const (
	StatEnvSteps      = "env_steps"
	StatGradientSteps = "gradient_steps"
	StatTargetUpdates = "target_updates"
	StatBufferSize    = "buffer_size"
)

func isReserved(stat string) bool {
	switch stat {
	case StatEnvSteps, StatGradientSteps, StatTargetUpdates, StatBufferSize:
		return true
	}
	return false
}

// Stats returns the latest statistics reported by the optimizer
// together with the Learner's counters
func (l *Learner) Stats() map[string]float64 {
	stats := make(map[string]float64, len(l.stats)+4)
	for k, v := range l.stats {
		stats[k] = v
	}
	stats[StatEnvSteps] = float64(l.envSteps)
	stats[StatGradientSteps] = float64(l.gradientSteps)
	stats[StatTargetUpdates] = float64(l.sync.Updates())
	stats[StatBufferSize] = float64(l.replay.Len())
	return stats
}

var _ agent.Learner = &Learner{}

package exploration

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"
)

// Types of exploration strategy that a Config can describe
const (
	TypeGreedy   = "greedy"
	TypeGaussian = "gaussian"
)

// Config implements a specific configuration of an exploration
// Strategy. The Strategy of Type is preceded by PureExplorationSteps
// steps of uniform random actions.
type Config struct {
	Type                 string
	PureExplorationSteps int
	Sigma                float64 // Noise standard deviation of gaussian
}

// Validate checks a Config to ensure it describes a valid Strategy
func (c Config) Validate() error {
	switch c.Type {
	case TypeGreedy, TypeGaussian:
	default:
		return fmt.Errorf("validate: unknown exploration type %q", c.Type)
	}

	if c.PureExplorationSteps < 0 {
		return fmt.Errorf("validate: pure exploration steps must be "+
			"non-negative \n\twant(>=0) \n\thave(%v)", c.PureExplorationSteps)
	}
	if c.Sigma < 0 {
		return fmt.Errorf("validate: sigma must be non-negative "+
			"\n\twant(>=0) \n\thave(%v)", c.Sigma)
	}
	return nil
}

// Create creates the Strategy described by the Config for actions
// within bounds
func (c Config) Create(bounds []r1.Interval, seed uint64) (Strategy, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	var strategy Strategy = Greedy{}
	if c.Type == TypeGaussian {
		var err error
		strategy, err = NewGaussian(bounds, c.Sigma, seed)
		if err != nil {
			return nil, fmt.Errorf("create: %w", err)
		}
	}

	if c.PureExplorationSteps == 0 {
		return strategy, nil
	}

	uniform, err := NewUniform(bounds, c.PureExplorationSteps, strategy,
		seed+1)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	return uniform, nil
}

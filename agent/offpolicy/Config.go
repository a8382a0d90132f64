package offpolicy

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/samuelfneumann/offpolicy/exploration"
	"github.com/samuelfneumann/offpolicy/expreplay"
)

// Config implements a specific configuration of an off-policy Learner
type Config struct {
	Replay expreplay.Config // Replay buffer size and extra fields

	BatchSize      int // Number of transitions per gradient step
	LearningStarts int // Buffer size needed before learning
	TrainIntervals int // Gradient steps per call to Step

	// Target parameter updates
	Tau                  float64 // Polyak averaging constant
	TargetUpdateInterval int     // Gradient steps between updates

	Exploration exploration.Config

	Seed uint64 // Seed of the minibatch sampler and exploration
}

// Default returns the default Config
func Default() Config {
	return Config{
		Replay:               expreplay.Config{MaxSize: 1_000_000},
		BatchSize:            256,
		LearningStarts:       1,
		TrainIntervals:       1,
		Tau:                  5e-3,
		TargetUpdateInterval: 1,
		Exploration: exploration.Config{
			Type:                 exploration.TypeGaussian,
			PureExplorationSteps: 1_000,
			Sigma:                0.3,
		},
	}
}

// Validate checks a Config to ensure it is a valid configuration of an
// off-policy Learner
func (c Config) Validate() error {
	if err := c.Replay.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := c.Exploration.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	if c.BatchSize < 1 {
		return fmt.Errorf("validate: batch size must be positive "+
			"\n\twant(>0) \n\thave(%v)", c.BatchSize)
	}
	if c.LearningStarts < 0 {
		return fmt.Errorf("validate: learning starts must be non-negative "+
			"\n\twant(>=0) \n\thave(%v)", c.LearningStarts)
	}
	if c.TrainIntervals < 0 {
		return fmt.Errorf("validate: train intervals must be non-negative "+
			"\n\twant(>=0) \n\thave(%v)", c.TrainIntervals)
	}
	if !(c.Tau > 0 && c.Tau <= 1) {
		return fmt.Errorf("validate: tau must be in (0, 1] "+
			"\n\twant(0 < tau <= 1) \n\thave(%v)", c.Tau)
	}
	if c.TargetUpdateInterval < 1 {
		return fmt.Errorf("validate: target parameters must be updated at "+
			"positive gradient step intervals \n\twant(>0) \n\thave(%v)",
			c.TargetUpdateInterval)
	}
	return nil
}

// Override returns a copy of the Config with the options given in the
// JSON object data replacing its own. Only the options named by the
// Config's fields are recognized, and any other key is an error.
// Nested configurations are merged key by key.
func (c Config) Override(data []byte) (Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	overridden := c
	overridden.Replay.ExtraFields = append([]expreplay.FieldConfig(nil),
		c.Replay.ExtraFields...)
	if err := dec.Decode(&overridden); err != nil {
		return Config{}, fmt.Errorf("override: %v", err)
	}
	if err := overridden.Validate(); err != nil {
		return Config{}, fmt.Errorf("override: %w", err)
	}
	return overridden, nil
}

// Package trackers implements Trackers, which track data seen in an
// experiment and save it once the experiment has finished
package trackers

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	ts "github.com/samuelfneumann/offpolicy/timestep"
)

// Tracker keeps track of experiment data
type Tracker interface {
	Track(t ts.TimeStep) error
	Data() []float64
}

// Return tracks the episodic return in an experiment. When an
// environment returns a TimeStep, the Return extracts the reward and
// accumulates the return of the current episode.
//
// An episode must finish for its return to be recorded. If the last
// episode in an experiment does not finish, its return is not saved.
type Return struct {
	lastTimeStep   int
	currentReturn  float64
	episodeReturns []float64
}

// NewReturn creates and returns a new *Return Tracker
func NewReturn() *Return {
	return &Return{lastTimeStep: -1}
}

// Track tracks the reward seen on a timestep. First timesteps start a
// new episode and carry no reward. Track returns an error if it is
// called on timesteps out of order.
func (r *Return) Track(step ts.TimeStep) error {
	if step.First() {
		r.currentReturn = 0
		r.lastTimeStep = step.Number
		return nil
	}

	if r.lastTimeStep < 0 || r.lastTimeStep+1 != step.Number {
		return fmt.Errorf("track: timesteps are not sequential: timestep "+
			"%v --> timestep %v", r.lastTimeStep, step.Number)
	}

	r.currentReturn += step.Reward
	r.lastTimeStep = step.Number
	if step.Last() {
		r.episodeReturns = append(r.episodeReturns, r.currentReturn)
		r.currentReturn = 0
		r.lastTimeStep = -1
	}
	return nil
}

// Data returns the returns of all finished episodes
func (r *Return) Data() []float64 {
	return r.episodeReturns
}

// Save encodes the data of a Tracker to w
func Save(w io.Writer, t Tracker) error {
	if err := gob.NewEncoder(w).Encode(t.Data()); err != nil {
		return fmt.Errorf("save: could not encode data: %v", err)
	}
	return nil
}

// SaveFile saves the data of a Tracker to the file filename
func SaveFile(filename string, t Tracker) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("saveFile: %v", err)
	}
	if err := Save(file, t); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Load decodes data saved by Save
func Load(r io.Reader) ([]float64, error) {
	var data []float64
	if err := gob.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("load: could not decode data: %v", err)
	}
	return data, nil
}

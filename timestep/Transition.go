package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Transition is a single (s, a, r, s', a') tuple together with the
// discount and termination of s'. NextAction may be nil when the next
// action is not known.
type Transition struct {
	State      mat.Vector
	Action     mat.Vector
	Reward     float64
	Discount   float64
	NextState  mat.Vector
	NextAction mat.Vector
	Terminal   bool
}

// NewTransition returns the Transition from step to nextStep when
// action is taken in step and nextAction is taken in nextStep
func NewTransition(step TimeStep, action mat.Vector, nextStep TimeStep,
	nextAction mat.Vector) Transition {
	return Transition{
		State:      step.Observation,
		Action:     action,
		Reward:     nextStep.Reward,
		Discount:   nextStep.Discount,
		NextState:  nextStep.Observation,
		NextAction: nextAction,
		Terminal:   nextStep.Terminal(),
	}
}

func (t Transition) String() string {
	str := "Transition | Reward:  %.2f  |  Discount: %.2f  |  Terminal: %v"
	return fmt.Sprintf(str, t.Reward, t.Discount, t.Terminal)
}

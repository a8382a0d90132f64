// Package exploration implements strategies which turn the actions of
// a policy into the actions taken in an environment while learning.
package exploration

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/offpolicy/utils/floatutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distuv"
)

// Strategy determines the action to take given the action chosen by a
// policy and the number of steps taken so far
type Strategy interface {
	Action(policyAction []float64, step int) []float64
}

// Greedy takes the policy's action unchanged
type Greedy struct{}

// Action returns a copy of policyAction
func (Greedy) Action(policyAction []float64, _ int) []float64 {
	action := make([]float64, len(policyAction))
	copy(action, policyAction)
	return action
}

// Uniform takes actions uniformly at random within the action bounds
// for a number of initial steps, after which it delegates to another
// Strategy
type Uniform struct {
	dists []distuv.Uniform
	steps int
	next  Strategy
}

// NewUniform returns a new Uniform strategy which takes random actions
// for the first steps steps and then uses next
func NewUniform(bounds []r1.Interval, steps int, next Strategy,
	seed uint64) (*Uniform, error) {
	if err := checkBounds(bounds); err != nil {
		return nil, fmt.Errorf("newUniform: %v", err)
	}
	if next == nil {
		next = Greedy{}
	}

	src := rand.NewSource(seed)
	dists := make([]distuv.Uniform, len(bounds))
	for i, b := range bounds {
		dists[i] = distuv.Uniform{Min: b.Min, Max: b.Max, Src: src}
	}
	return &Uniform{dists: dists, steps: steps, next: next}, nil
}

// Action returns a uniform random action while step is less than the
// number of random steps, and the next Strategy's action otherwise
func (u *Uniform) Action(policyAction []float64, step int) []float64 {
	if step >= u.steps {
		return u.next.Action(policyAction, step)
	}

	action := make([]float64, len(u.dists))
	for i := range u.dists {
		action[i] = u.dists[i].Rand()
	}
	return action
}

// Gaussian adds zero-mean Gaussian noise to the policy's actions and
// clips the result to the action bounds
type Gaussian struct {
	bounds []r1.Interval
	noise  distuv.Normal
}

// NewGaussian returns a new Gaussian strategy with noise standard
// deviation sigma
func NewGaussian(bounds []r1.Interval, sigma float64,
	seed uint64) (*Gaussian, error) {
	if err := checkBounds(bounds); err != nil {
		return nil, fmt.Errorf("newGaussian: %v", err)
	}
	if sigma < 0 {
		return nil, fmt.Errorf("newGaussian: sigma must be non-negative "+
			"\n\twant(>=0) \n\thave(%v)", sigma)
	}

	noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: rand.NewSource(seed)}
	return &Gaussian{bounds: bounds, noise: noise}, nil
}

// Action returns the noisy policy action
func (g *Gaussian) Action(policyAction []float64, _ int) []float64 {
	if len(policyAction) != len(g.bounds) {
		panic(fmt.Sprintf("action: expected action of length %v, got %v",
			len(g.bounds), len(policyAction)))
	}

	action := make([]float64, len(policyAction))
	copy(action, policyAction)
	if g.noise.Sigma > 0 {
		for i := range action {
			action[i] += g.noise.Rand()
		}
	}
	floatutils.ClipSlice(action, g.bounds)
	return action
}

// checkBounds returns an error if any bound is empty or unbounded
func checkBounds(bounds []r1.Interval) error {
	if len(bounds) == 0 {
		return fmt.Errorf("no action bounds")
	}
	for i, b := range bounds {
		if !(b.Min <= b.Max) {
			return fmt.Errorf("bound %d has min %v > max %v", i, b.Min,
				b.Max)
		}
		if math.IsInf(b.Min, 0) || math.IsInf(b.Max, 0) {
			return fmt.Errorf("bound %d is unbounded: [%v, %v]", i, b.Min,
				b.Max)
		}
	}
	return nil
}

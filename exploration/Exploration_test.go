package exploration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r1"
)

var bounds = []r1.Interval{{Min: -1, Max: 1}, {Min: 0, Max: 2}}

func TestGreedy(t *testing.T) {
	policyAction := []float64{0.5, 1.5}
	action := Greedy{}.Action(policyAction, 10)
	assert.Equal(t, policyAction, action)

	action[0] = 3
	assert.Equal(t, 0.5, policyAction[0])
}

func TestUniform(t *testing.T) {
	u, err := NewUniform(bounds, 100, nil, 1)
	require.NoError(t, err)

	for step := 0; step < 100; step++ {
		action := u.Action([]float64{0, 0}, step)
		require.Len(t, action, 2)
		for i, a := range action {
			assert.True(t, bounds[i].Min <= a && a <= bounds[i].Max)
		}
	}
	assert.Equal(t, []float64{0.25, 0.75}, u.Action([]float64{0.25, 0.75},
		100))
}

func TestGaussian(t *testing.T) {
	g, err := NewGaussian(bounds, 5, 1)
	require.NoError(t, err)

	clipped := false
	for step := 0; step < 100; step++ {
		action := g.Action([]float64{0, 1}, step)
		for i, a := range action {
			assert.True(t, bounds[i].Min <= a && a <= bounds[i].Max)
			if a == bounds[i].Min || a == bounds[i].Max {
				clipped = true
			}
		}
	}
	assert.True(t, clipped, "large noise should be clipped to the bounds")

	noiseless, err := NewGaussian(bounds, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1}, noiseless.Action([]float64{0.5, 1}, 0))

	_, err = NewGaussian(bounds, -1, 1)
	assert.Error(t, err)
	_, err = NewGaussian(nil, 1, 1)
	assert.Error(t, err)
}

func TestGaussianDeterministic(t *testing.T) {
	g1, err := NewGaussian(bounds, 0.3, 7)
	require.NoError(t, err)
	g2, err := NewGaussian(bounds, 0.3, 7)
	require.NoError(t, err)

	for step := 0; step < 10; step++ {
		assert.Equal(t, g1.Action([]float64{0, 1}, step),
			g2.Action([]float64{0, 1}, step))
	}
}

func TestConfig(t *testing.T) {
	c := Config{Type: TypeGaussian, PureExplorationSteps: 5, Sigma: 0.1}
	s, err := c.Create(bounds, 0)
	require.NoError(t, err)
	_, ok := s.(*Uniform)
	assert.True(t, ok)

	c.PureExplorationSteps = 0
	s, err = c.Create(bounds, 0)
	require.NoError(t, err)
	_, ok = s.(*Gaussian)
	assert.True(t, ok)

	s, err = Config{Type: TypeGreedy}.Create(bounds, 0)
	require.NoError(t, err)
	assert.Equal(t, Greedy{}, s)

	assert.Error(t, Config{Type: "boltzmann"}.Validate())
	assert.Error(t, Config{Type: TypeGreedy, PureExplorationSteps: -1}.
		Validate())
	assert.Error(t, Config{Type: TypeGaussian, Sigma: -1}.Validate())
}

func TestUnboundedIntervals(t *testing.T) {
	for _, b := range []r1.Interval{
		{Min: math.Inf(-1), Max: 1},
		{Min: 0, Max: math.Inf(1)},
		{Min: math.NaN(), Max: 1},
	} {
		_, err := NewUniform([]r1.Interval{b}, 10, nil, 1)
		assert.Error(t, err, "%v", b)
		_, err = NewGaussian([]r1.Interval{b}, 0.1, 1)
		assert.Error(t, err, "%v", b)
	}
}

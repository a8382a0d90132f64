package offpolicy

import (
	"errors"
	"testing"

	"github.com/samuelfneumann/offpolicy/exploration"
	"github.com/samuelfneumann/offpolicy/expreplay"
	"github.com/samuelfneumann/offpolicy/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gorgonia.org/tensor"
)

// module holds a single parameter vector
type module struct {
	params []*tensor.Dense
}

func newModule() *module {
	return &module{params: []*tensor.Dense{
		tensor.New(tensor.WithShape(2), tensor.WithBacking([]float64{0, 0})),
	}}
}

func (m *module) Params() []*tensor.Dense {
	return m.params
}

// optimizer adds 1 to each parameter every step and records the
// minibatches it was given
type optimizer struct {
	m       *module
	batches []expreplay.Batch
	err     error
}

func (o *optimizer) Step(batch expreplay.Batch) (map[string]float64, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.batches = append(o.batches, batch)
	data := o.m.params[0].Data().([]float64)
	for i := range data {
		data[i]++
	}
	return map[string]float64{"loss": float64(len(o.batches))}, nil
}

var bounds = []r1.Interval{{Min: -1, Max: 1}}

func testConfig() Config {
	c := Default()
	c.Replay.MaxSize = 10
	c.BatchSize = 4
	c.LearningStarts = 3
	c.TrainIntervals = 2
	c.Tau = 1.0
	c.TargetUpdateInterval = 3
	c.Exploration = exploration.Config{Type: exploration.TypeGreedy}
	return c
}

func transition(i int) timestep.Transition {
	return timestep.Transition{
		State:     mat.NewVecDense(3, []float64{float64(i), 0, 0}),
		Action:    mat.NewVecDense(1, []float64{0.5}),
		Reward:    float64(i),
		NextState: mat.NewVecDense(3, []float64{float64(i + 1), 0, 0}),
	}
}

func TestLearnerSchedule(t *testing.T) {
	m := newModule()
	o := &optimizer{m: m}
	l, err := New(m, o, []int{3}, bounds, testConfig())
	require.NoError(t, err)

	// Nothing is learned before learning starts
	for i := 0; i < 2; i++ {
		require.NoError(t, l.Observe(transition(i)))
		require.NoError(t, l.Step())
	}
	assert.Len(t, o.batches, 0)
	assert.Equal(t, 0, l.GradientSteps())

	require.NoError(t, l.Observe(transition(2)))
	require.NoError(t, l.Step())
	assert.Equal(t, 2, l.GradientSteps())
	assert.Equal(t, 4, o.batches[0].Len())
	assert.Equal(t, []float64{0, 0}, l.Targets()[0].Data(),
		"targets must not move before the update interval")

	// The third gradient step hard-copies the parameters
	require.NoError(t, l.Step())
	assert.Equal(t, 4, l.GradientSteps())
	assert.Equal(t, []float64{3, 3}, l.Targets()[0].Data())
	assert.Equal(t, []float64{4, 4}, m.params[0].Data())

	stats := l.Stats()
	assert.Equal(t, 4.0, stats["loss"])
	assert.Equal(t, 4.0, stats[StatGradientSteps])
	assert.Equal(t, 1.0, stats[StatTargetUpdates])
	assert.Equal(t, 3.0, stats[StatEnvSteps])
	assert.Equal(t, 3.0, stats[StatBufferSize])
	assert.Equal(t, 3, l.Replay().Len())
}

func TestLearnerPolyak(t *testing.T) {
	m := newModule()
	o := &optimizer{m: m}
	c := testConfig()
	c.LearningStarts = 0
	c.TrainIntervals = 1
	c.TargetUpdateInterval = 1
	c.Tau = 0.5
	l, err := New(m, o, []int{3}, bounds, c)
	require.NoError(t, err)

	// No transitions means nothing to sample from
	require.NoError(t, l.Step())
	assert.Equal(t, 0, l.GradientSteps())

	require.NoError(t, l.Observe(transition(0)))
	require.NoError(t, l.Step())
	assert.Equal(t, []float64{0.5, 0.5}, l.Targets()[0].Data())
	require.NoError(t, l.Step())
	assert.Equal(t, []float64{1.25, 1.25}, l.Targets()[0].Data())
}

func TestLearnerOptimizerError(t *testing.T) {
	m := newModule()
	failure := errors.New("diverged")
	o := &optimizer{m: m, err: failure}
	c := testConfig()
	c.LearningStarts = 1
	l, err := New(m, o, []int{3}, bounds, c)
	require.NoError(t, err)

	require.NoError(t, l.Observe(transition(0)))
	assert.ErrorIs(t, l.Step(), failure)
}

func TestLearnerObserveSchema(t *testing.T) {
	m := newModule()
	l, err := New(m, &optimizer{m: m}, []int{3}, bounds, testConfig())
	require.NoError(t, err)

	bad := transition(0)
	bad.State = mat.NewVecDense(2, nil)
	err = l.Observe(bad)
	assert.True(t, expreplay.IsSchemaMismatch(err))
	assert.Equal(t, 0, l.Replay().Len())
}

func TestLearnerSelectAction(t *testing.T) {
	m := newModule()
	c := testConfig()
	c.Exploration = exploration.Config{
		Type:                 exploration.TypeGaussian,
		PureExplorationSteps: 1,
		Sigma:                0,
	}
	l, err := New(m, &optimizer{m: m}, []int{3}, bounds, c)
	require.NoError(t, err)

	a := l.SelectAction([]float64{0.25})
	assert.True(t, a[0] >= -1 && a[0] <= 1)

	require.NoError(t, l.Observe(transition(0)))
	assert.Equal(t, []float64{0.25}, l.SelectAction([]float64{0.25}))
}

func TestConfig(t *testing.T) {
	require.NoError(t, Default().Validate())

	c, err := Default().Override([]byte(`{
		"BatchSize": 32,
		"Replay": {"MaxSize": 100},
		"Exploration": {"Sigma": 0.1}
	}`))
	require.NoError(t, err)
	assert.Equal(t, 32, c.BatchSize)
	assert.Equal(t, 100, c.Replay.MaxSize)
	assert.Equal(t, 0.1, c.Exploration.Sigma)
	assert.Equal(t, exploration.TypeGaussian, c.Exploration.Type)
	assert.Equal(t, Default().Tau, c.Tau)

	_, err = Default().Override([]byte(`{"LearningRate": 0.1}`))
	assert.Error(t, err)
	_, err = Default().Override([]byte(`{"Replay": {"Capacity": 1}}`))
	assert.Error(t, err)
	_, err = Default().Override([]byte(`{"Tau": 0}`))
	assert.Error(t, err)

	bad := Default()
	bad.TargetUpdateInterval = 0
	assert.Error(t, bad.Validate())
	bad = Default()
	bad.BatchSize = 0
	assert.Error(t, bad.Validate())
}

package trackers

import (
	"bytes"
	"testing"

	ts "github.com/samuelfneumann/offpolicy/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturn(t *testing.T) {
	r := NewReturn()

	episode := []ts.TimeStep{
		ts.New(ts.First, 0, 1, nil, 10),
		ts.New(ts.Mid, 1, 1, nil, 11),
		ts.New(ts.Mid, 2, 1, nil, 12),
		ts.New(ts.Last, 3, 0, nil, 13),
	}
	for _, step := range episode {
		require.NoError(t, r.Track(step))
	}
	require.NoError(t, r.Track(ts.New(ts.First, 0, 1, nil, 14)))
	require.NoError(t, r.Track(ts.New(ts.Last, -1, 0, nil, 15)))
	assert.Equal(t, []float64{6, -1}, r.Data())

	// Unfinished episodes are not recorded
	require.NoError(t, r.Track(ts.New(ts.First, 0, 1, nil, 16)))
	require.NoError(t, r.Track(ts.New(ts.Mid, 5, 1, nil, 17)))
	assert.Len(t, r.Data(), 2)

	assert.Error(t, r.Track(ts.New(ts.Mid, 5, 1, nil, 30)))

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, r))
	data, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, []float64{6, -1}, data)
}

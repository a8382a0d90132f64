package expreplay

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func encodeSnapshot(t *testing.T, snap snapshot) []byte {
	source := &rand.PCGSource{}
	source.Seed(1)
	var err error
	snap.Source, err = source.MarshalBinary()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(snap))
	return buf.Bytes()
}

func TestGobDecodeCorrupt(t *testing.T) {
	for name, snap := range map[string]snapshot{
		"huge max size": {
			MaxSize: 1 << 50,
			Fields: []fieldSnapshot{{
				Name: Obs, Shape: []int{2}, Dtype: "float32",
				Float32: []float32{1, 2, 3, 4},
			}},
		},
		"short data": {
			MaxSize: 3,
			Fields: []fieldSnapshot{{
				Name: Obs, Shape: []int{2}, Dtype: "float64",
				Float64: []float64{1, 2, 3, 4},
			}},
		},
		"partial row": {
			MaxSize: 2,
			Fields: []fieldSnapshot{{
				Name: Obs, Shape: []int{2}, Dtype: "int64",
				Int64: []int64{1, 2, 3},
			}},
		},
		"bad cursor": {MaxSize: 2, Cursor: 2},
	} {
		data := encodeSnapshot(t, snap)
		require.NotPanics(t, func() {
			_, err := Decode(data)
			assert.Error(t, err, name)
		}, name)
	}

	_, err := Decode([]byte("not a buffer"))
	assert.Error(t, err)
}

package checkpointer

import (
	"context"
	"fmt"

	ts "github.com/samuelfneumann/offpolicy/timestep"
)

// nStep implements checkpointing every N steps
type nStep struct {
	interval    int
	object      Serializable // Object to save
	sink        Sink
	compression Compression

	// filename returns the name to save the next checkpoint under.
	//
	// To keep every checkpoint, with each name having an incremented
	// number as a suffix (e.g. buffer1.bin, ..., bufferK.bin), use
	// Enumerate. To keep every checkpoint when names do not matter,
	// use Timestamped. To keep only the latest checkpoint, return the
	// same name on each call.
	filename func() string
}

// NewNStep returns a checkpointer that saves object to sink on every
// n-th step of an environment
func NewNStep(n int, object Serializable, filename func() string,
	sink Sink, c Compression) (Checkpointer, error) {
	if n < 1 {
		return nil, fmt.Errorf("newNStep: checkpoint interval must be "+
			"positive \n\twant(>0) \n\thave(%v)", n)
	}
	if !c.valid() {
		return nil, fmt.Errorf("newNStep: %w: %v", ErrUnknownCompression, c)
	}

	return &nStep{
		interval:    n,
		object:      object,
		sink:        sink,
		compression: c,
		filename:    filename,
	}, nil
}

// Checkpoint saves the Checkpointer's tracked object if the timestep's
// number is a multiple of the checkpoint interval
func (n *nStep) Checkpoint(ctx context.Context, t ts.TimeStep) error {
	if t.Number%n.interval != 0 {
		return nil
	}
	return Save(ctx, n.sink, n.filename(), n.compression, n.object)
}

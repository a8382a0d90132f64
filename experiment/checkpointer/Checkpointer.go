// Package checkpointer implements checkpointing of serializable
// objects, such as replay buffers, to local or remote storage
package checkpointer

import (
	"context"
	"encoding/gob"
	"fmt"

	ts "github.com/samuelfneumann/offpolicy/timestep"
)

// Serializable is an object that can be saved/serialized
type Serializable interface {
	gob.GobEncoder
	gob.GobDecoder
}

// Checkpointer checkpoints/saves serializable objects based on
// timestep.TimeSteps
type Checkpointer interface {
	Checkpoint(ctx context.Context, t ts.TimeStep) error
}

// Save serializes object, compresses it, and stores it in sink under
// name
func Save(ctx context.Context, sink Sink, name string, c Compression,
	object Serializable) error {
	data, err := object.GobEncode()
	if err != nil {
		return fmt.Errorf("save: could not encode %v: %v", name, err)
	}

	compressed, err := compress(data, c)
	if err != nil {
		return fmt.Errorf("save: could not compress %v: %v", name, err)
	}

	if err := sink.Put(ctx, name, compressed); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Restore reads the checkpoint stored in sink under name into object.
// The compression of the checkpoint is read from the checkpoint itself.
func Restore(ctx context.Context, sink Sink, name string,
	object Serializable) error {
	compressed, err := sink.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	data, err := decompress(compressed)
	if err != nil {
		return fmt.Errorf("restore: could not decompress %v: %w", name, err)
	}

	if err := object.GobDecode(data); err != nil {
		return fmt.Errorf("restore: could not decode %v: %w", name, err)
	}
	return nil
}

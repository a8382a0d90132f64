package checkpointer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound denotes a checkpoint that does not exist in a Sink
var ErrNotFound = errors.New("checkpoint not found")

// Sink stores checkpoints by name
type Sink interface {
	// Put stores data under name, replacing any previous checkpoint
	// of the same name
	Put(ctx context.Context, name string, data []byte) error

	// Get returns the data stored under name
	Get(ctx context.Context, name string) ([]byte, error)
}

// FileSink stores checkpoints as files in a directory
type FileSink struct {
	dir string
}

// NewFileSink returns a new FileSink which stores checkpoints in dir,
// creating dir if needed
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("newFileSink: %v", err)
	}
	return &FileSink{dir: dir}, nil
}

// Put writes data to the file name in the FileSink's directory. The
// file is replaced atomically, so that a failed Put never leaves a
// partially written checkpoint.
func (f *FileSink) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(f.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("put: %v", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	if err != nil {
		return fmt.Errorf("put: %v", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("put: %v", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("put: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("put: %v", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("put: %v", err)
	}
	return nil
}

// Get reads the file name in the FileSink's directory
func (f *FileSink) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("get: %w: %v", ErrNotFound, name)
	} else if err != nil {
		return nil, fmt.Errorf("get: %v", err)
	}
	return data, nil
}

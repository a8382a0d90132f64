package expreplay

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
)

// fieldSnapshot is the serialized form of a Field and its storage.
// Only the slice matching Dtype is set.
type fieldSnapshot struct {
	Name  string
	Shape []int
	Dtype string

	Float64 []float64
	Float32 []float32
	Int64   []int64
	Int     []int
	Bool    []bool
}

// snapshot is the serialized form of a Buffer
type snapshot struct {
	Fields  []fieldSnapshot
	MaxSize int
	Size    int
	Cursor  int
	Frozen  bool
	Source  []byte // State of the Buffer's generator
}

// GobEncode implements the gob.GobEncoder interface. The encoding
// holds the Buffer's fields, raw storage, size, write position, and
// generator state, so that a decoded Buffer behaves identically to
// the encoded one.
func (b *Buffer) GobEncode() ([]byte, error) {
	source, err := b.source.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("gobEncode: could not encode generator: %v",
			err)
	}

	snap := snapshot{
		Fields:  make([]fieldSnapshot, len(b.stores)),
		MaxSize: b.maxSize,
		Size:    b.size,
		Cursor:  b.cursor,
		Frozen:  b.fields.frozen,
		Source:  source,
	}
	for i, s := range b.stores {
		f := fieldSnapshot{
			Name:  s.field.Name,
			Shape: []int(s.field.Shape),
			Dtype: s.field.Dtype.String(),
		}
		switch data := s.data.(type) {
		case []float64:
			f.Float64 = data
		case []float32:
			f.Float32 = data
		case []int64:
			f.Int64 = data
		case []int:
			f.Int = data
		case []bool:
			f.Bool = data
		}
		snap.Fields[i] = f
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("gobEncode: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. Any previous
// state of the Buffer is replaced.
func (b *Buffer) GobDecode(data []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}

	if snap.MaxSize < 0 || snap.Size < 0 || snap.Size > snap.MaxSize ||
		snap.Cursor < 0 || (snap.MaxSize > 0 && snap.Cursor >= snap.MaxSize) {
		return fmt.Errorf("gobDecode: invalid buffer state: size %v, "+
			"max size %v, cursor %v", snap.Size, snap.MaxSize, snap.Cursor)
	}

	fields := newRegistry()
	stores := make([]*store, len(snap.Fields))
	for i, fs := range snap.Fields {
		dt, err := ParseDtype(fs.Dtype)
		if err != nil {
			return fmt.Errorf("gobDecode: %w", err)
		}
		f := Field{Name: fs.Name, Shape: tensor.Shape(fs.Shape), Dtype: dt}
		if err := fields.declare(f); err != nil {
			return fmt.Errorf("gobDecode: %w", err)
		}

		var stored interface{}
		switch dt {
		case tensor.Float64:
			stored = fs.Float64
		case tensor.Float32:
			stored = fs.Float32
		case tensor.Int64:
			stored = fs.Int64
		case tensor.Int:
			stored = fs.Int
		case tensor.Bool:
			stored = fs.Bool
		}

		// Check the stored data before allocating
		n, rowSize := lenOf(stored), f.RowSize()
		if rowSize < 1 || n%rowSize != 0 || n/rowSize != snap.MaxSize {
			return fmt.Errorf("gobDecode: field %v has %v elements \n\t"+
				"want(%v rows of %v) \n\thave(%v)", f.Name, n, snap.MaxSize,
				rowSize, n)
		}

		s := allocate(f, snap.MaxSize)
		if n > 0 {
			copyInto(s.data, 0, stored, 0, n)
		}
		stores[i] = s
	}
	if snap.Frozen {
		fields.freeze()
	}

	source := &rand.PCGSource{}
	if err := source.UnmarshalBinary(snap.Source); err != nil {
		return fmt.Errorf("gobDecode: could not decode generator: %v", err)
	}

	b.fields = fields
	b.stores = stores
	b.maxSize = snap.MaxSize
	b.size = snap.Size
	b.cursor = snap.Cursor
	b.source = source
	b.rng = rand.New(source)

	return nil
}

// Decode returns the Buffer encoded in data by GobEncode
func Decode(data []byte) (*Buffer, error) {
	b := &Buffer{}
	if err := b.GobDecode(data); err != nil {
		return nil, err
	}
	return b, nil
}

// lenOf returns the length of a slice of a supported dtype
func lenOf(data interface{}) int {
	switch d := data.(type) {
	case []float64:
		return len(d)
	case []float32:
		return len(d)
	case []int64:
		return len(d)
	case []int:
		return len(d)
	case []bool:
		return len(d)
	}
	return 0
}

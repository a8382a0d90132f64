// Package expreplay implements a fixed-capacity experience replay
// buffer for off-policy learning.
//
// A Buffer stores any number of named fields declared before the first
// insertion. Each field is held in its own pre-allocated, contiguous
// store. Once a Buffer is full, each insertion overwrites the oldest
// entry, so that the most recent MaxSize() entries are kept.
//
// Buffers are not safe for concurrent use. Callers that insert from
// multiple goroutines should serialize access, or use one Buffer per
// goroutine and merge them with Extend.
package expreplay

import (
	"fmt"
	"strings"

	"github.com/samuelfneumann/offpolicy/timestep"
	"github.com/samuelfneumann/offpolicy/utils/intutils"
	"github.com/samuelfneumann/offpolicy/utils/tensorutils"
	"golang.org/x/exp/rand"
)

// Entry is a single transition, mapping field names to values. Values
// may be Go scalars, slices of float64, float32, int, int64, or bool,
// gonum vectors, or dense tensors, and must hold exactly one entry of
// their field.
type Entry map[string]interface{}

// Buffer implements a circular experience replay buffer
type Buffer struct {
	fields *registry
	stores []*store

	maxSize int
	size    int // Number of valid entries
	cursor  int // Next write position

	// Generator used when Sample is not given one explicitly
	source *rand.PCGSource
	rng    *rand.Rand
}

// New returns a new Buffer which holds at most maxSize entries of the
// given fields. The seed parameter seeds the Buffer's own random
// number generator, which is used for sampling when no generator is
// passed to Sample.
//
// A maxSize of 0 is valid: such a Buffer accepts insertions but never
// retains any entries.
func New(maxSize int, seed uint64, fields ...Field) (*Buffer, error) {
	if maxSize < 0 {
		return nil, fmt.Errorf("new: maxSize must be >= 0 \n\twant(>=0)"+
			"\n\thave(%v)", maxSize)
	}

	source := &rand.PCGSource{}
	source.Seed(seed)

	b := &Buffer{
		fields:  newRegistry(),
		maxSize: maxSize,
		source:  source,
		rng:     rand.New(source),
	}

	if err := b.AddFields(fields...); err != nil {
		return nil, err
	}
	return b, nil
}

// NewTransitions returns a new Buffer with the default transition
// fields: observations, actions, rewards, next observations, and done
// flags.
func NewTransitions(obsShape, actionShape []int, maxSize int,
	seed uint64) (*Buffer, error) {
	return New(maxSize, seed, TransitionFields(obsShape, actionShape)...)
}

// AddFields declares extra fields with the Buffer. Fields must be
// declared before any data is inserted. Either all fields are declared
// or, if an error is returned, none are.
func (b *Buffer) AddFields(fields ...Field) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if b.fields.frozen {
			return newError("addFields", ErrLateFieldDeclaration, "%v",
				f.Name)
		}
		if _, ok := b.fields.lookup(f.Name); ok || seen[f.Name] {
			return newError("addFields", ErrDuplicateField, "%v", f.Name)
		}
		if err := f.validate(); err != nil {
			return &ExpReplayError{Op: "addFields", Err: err}
		}
		seen[f.Name] = true
	}

	for _, f := range fields {
		if err := b.fields.declare(f); err != nil {
			return &ExpReplayError{Op: "addFields", Err: err}
		}
		declared := b.fields.fields[b.fields.len()-1]
		b.stores = append(b.stores, allocate(declared, b.maxSize))
	}
	return nil
}

// Fields returns the fields declared with the Buffer, in declaration
// order
func (b *Buffer) Fields() []Field {
	return b.fields.all()
}

// Len returns the number of valid entries in the Buffer
func (b *Buffer) Len() int {
	return b.size
}

// MaxSize returns the maximum number of entries that the Buffer holds
func (b *Buffer) MaxSize() int {
	return b.maxSize
}

// Cursor returns the position at which the next entry will be written
func (b *Buffer) Cursor() int {
	return b.cursor
}

// Seed reseeds the Buffer's own random number generator
func (b *Buffer) Seed(seed uint64) {
	b.source.Seed(seed)
}

// rows validates an entry against the Buffer's fields and converts it
// into one row per field, in declaration order
func (b *Buffer) rows(e Entry) ([]interface{}, error) {
	for name := range e {
		if _, ok := b.fields.lookup(name); !ok {
			return nil, fmt.Errorf("%w: undeclared field %v",
				ErrSchemaMismatch, name)
		}
	}

	rows := make([]interface{}, b.fields.len())
	for i, f := range b.fields.fields {
		value, ok := e[f.Name]
		if !ok {
			return nil, fmt.Errorf("%w: missing field %v", ErrSchemaMismatch,
				f.Name)
		}

		row, err := rowData(f, value)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}

// Add adds a single entry to the Buffer. The entry must hold a value
// for each declared field and no others.
func (b *Buffer) Add(e Entry) error {
	rows, err := b.rows(e)
	if err != nil {
		return &ExpReplayError{Op: "add", Err: err}
	}
	b.fields.freeze()

	if b.maxSize == 0 {
		return nil
	}

	for i, s := range b.stores {
		s.write(b.cursor, rows[i])
	}
	b.cursor = (b.cursor + 1) % b.maxSize
	b.size = intutils.Min(b.size+1, b.maxSize)

	return nil
}

// AddTransition adds a transition to a Buffer holding the default
// transition fields
func (b *Buffer) AddTransition(t timestep.Transition) error {
	return b.Add(Entry{
		Obs:     t.State,
		Actions: t.Action,
		Rewards: t.Reward,
		NextObs: t.NextState,
		Dones:   t.Terminal,
	})
}

// AddBatch adds a number of entries to the Buffer. The result is the
// same as calling Add on each entry in order, but all entries are
// validated before the Buffer is modified and each field is written
// with at most two contiguous copies.
func (b *Buffer) AddBatch(entries []Entry) error {
	k := len(entries)
	packed := make([]interface{}, b.fields.len())
	for i, f := range b.fields.fields {
		packed[i] = makeSlice(f.Dtype, k*f.RowSize())
	}

	for j, e := range entries {
		rows, err := b.rows(e)
		if err != nil {
			return &ExpReplayError{
				Op:  "addBatch",
				Err: fmt.Errorf("entry %d: %w", j, err),
			}
		}
		for i, s := range b.stores {
			copyInto(packed[i], j*s.rowSize, rows[i], 0, s.rowSize)
		}
	}
	if k > 0 {
		b.fields.freeze()
	}

	b.insert(packed, k)
	return nil
}

// Extend adds all entries of a Batch to the Buffer, in order. The
// Batch must hold a Column for each declared field, and no others,
// with matching shapes and dtypes. Extend can be used to merge
// buffers, for example by extending one Buffer with the AllSamples of
// another.
func (b *Buffer) Extend(batch Batch) error {
	for name := range batch {
		if _, ok := b.fields.lookup(name); !ok {
			return newError("extend", ErrSchemaMismatch,
				"undeclared field %v", name)
		}
	}

	k := batch.Len()
	packed := make([]interface{}, b.fields.len())
	for i, f := range b.fields.fields {
		col, ok := batch[f.Name]
		if !ok {
			return newError("extend", ErrSchemaMismatch, "missing field %v",
				f.Name)
		}
		if col.Field.Dtype != f.Dtype || !sameShape(col.Field.Shape, f.Shape) {
			return newError("extend", ErrSchemaMismatch,
				"field %v \n\twant(%v) \n\thave(%v)", f.Name, f, col.Field)
		}
		if col.Rows != k {
			return newError("extend", ErrSchemaMismatch,
				"field %v has %v rows, want %v", f.Name, col.Rows, k)
		}
		packed[i] = col.Data
	}
	if k > 0 {
		b.fields.freeze()
	}

	b.insert(packed, k)
	return nil
}

// insert writes k packed rows per field into the stores. Rows that
// would be overwritten within the same call are skipped, and the rest
// are split into a head segment written at the cursor and a tail
// segment written at the start of the stores.
func (b *Buffer) insert(packed []interface{}, k int) {
	if b.maxSize == 0 || k == 0 {
		return
	}

	drop := 0
	if k > b.maxSize {
		drop = k - b.maxSize
	}
	start := (b.cursor + drop) % b.maxSize
	n := k - drop
	head := intutils.Min(n, b.maxSize-start)

	for i, s := range b.stores {
		s.writeRows(start, packed[i], drop, head)
		s.writeRows(0, packed[i], drop+head, n-head)
	}

	b.cursor = (b.cursor + k) % b.maxSize
	b.size = intutils.Min(b.size+k, b.maxSize)
}

// Sample draws batchSize entries uniformly at random, with
// replacement, from the Buffer. If rng is nil, the Buffer's own
// generator is used. Given generators in the same state, Sample
// returns the same entries.
func (b *Buffer) Sample(batchSize int, rng *rand.Rand) (Batch, error) {
	if batchSize < 0 {
		return nil, newError("sample", ErrInvalidBatchSize, "have(%v)",
			batchSize)
	}
	if b.size == 0 {
		return nil, &ExpReplayError{Op: "sample", Err: ErrEmptyBuffer}
	}
	if rng == nil {
		rng = b.rng
	}

	indices := make([]int, batchSize)
	for i := range indices {
		indices[i] = rng.Intn(b.size)
	}
	return b.gather(indices), nil
}

// AllSamples returns all valid entries in the Buffer in storage order.
// Once the Buffer has wrapped around, storage order is not insertion
// order.
func (b *Buffer) AllSamples() Batch {
	batch := make(Batch, len(b.stores))
	for _, s := range b.stores {
		batch[s.field.Name] = s.readRange(0, b.size)
	}
	return batch
}

// At returns the entry at position i. The returned Columns hold a
// single entry and are shaped as their fields, without a leading
// batch dimension.
func (b *Buffer) At(i int) (Batch, error) {
	if i < 0 || i >= b.size {
		return nil, newError("at", ErrIndexOutOfRange,
			"index %v with length %v", i, b.size)
	}

	batch := b.gather([]int{i})
	for _, col := range batch {
		col.Shape = col.Field.Shape
	}
	return batch, nil
}

// Gather returns the entries at the given positions
func (b *Buffer) Gather(indices []int) (Batch, error) {
	for _, i := range indices {
		if i < 0 || i >= b.size {
			return nil, newError("gather", ErrIndexOutOfRange,
				"index %v with length %v", i, b.size)
		}
	}
	return b.gather(indices), nil
}

// Slice returns the entries at positions s.Start() to s.End() with
// step s.Step(). The end of the slice is clipped to the number of
// valid entries, and a non-positive step is treated as 1.
func (b *Buffer) Slice(s tensorutils.Slice) (Batch, error) {
	start, end, step, err := s.Clip(b.size)
	if err != nil {
		return nil, newError("slice", ErrIndexOutOfRange, "%v", err)
	}

	if step == 1 {
		batch := make(Batch, len(b.stores))
		for _, st := range b.stores {
			batch[st.field.Name] = st.readRange(start, end)
		}
		return batch, nil
	}

	indices, _ := s.Indices(b.size)
	return b.gather(indices), nil
}

// sameShape returns whether two shapes have exactly the same dimensions
func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// gather reads the rows at the given, already validated, positions
func (b *Buffer) gather(indices []int) Batch {
	batch := make(Batch, len(b.stores))
	for _, s := range b.stores {
		batch[s.field.Name] = s.read(indices)
	}
	return batch
}

// String returns the string representation of the Buffer
func (b *Buffer) String() string {
	var fields strings.Builder
	for _, s := range b.stores {
		fields.WriteString(fmt.Sprintf("\n%v: %v", s.field, s.data))
	}

	baseStr := "Size: %v \nMax Size: %v \nCursor: %v%v"
	return fmt.Sprintf(baseStr, b.size, b.maxSize, b.cursor, fields.String())
}

package expreplay

import (
	"fmt"
	"reflect"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// Column holds a number of contiguous entries of a single field.
// Data is a slice of the field's dtype in row major order, holding
// Rows * Field.RowSize() elements.
type Column struct {
	Field Field
	Rows  int

	// Shape is the shape of the data held in the Column. For columns
	// of multiple entries, this is (Rows,) + Field.Shape. For a column
	// returned by indexing a single entry, this is Field.Shape.
	Shape tensor.Shape
	Data  interface{}
}

// newColumn returns a new Column of rows entries of f backed by data
func newColumn(f Field, rows int, data interface{}) *Column {
	shape := make(tensor.Shape, 0, len(f.Shape)+1)
	shape = append(shape, rows)
	shape = append(shape, f.Shape...)
	return &Column{Field: f, Rows: rows, Shape: shape, Data: data}
}

// Len returns the number of entries in the Column
func (c *Column) Len() int {
	return c.Rows
}

// Float64s returns the Column's data converted to float64. Boolean
// data is converted to 0 or 1.
func (c *Column) Float64s() []float64 {
	floats, err := float64s(c.Data)
	if err != nil {
		panic(fmt.Sprintf("float64s: %v", err))
	}
	if _, ok := c.Data.([]float64); ok {
		out := make([]float64, len(floats))
		copy(out, floats)
		return out
	}
	return floats
}

// Matrix returns the Column as a gonum matrix with one row per entry
// and one column per scalar element of an entry
func (c *Column) Matrix() (*mat.Dense, error) {
	if c.Rows == 0 {
		return nil, fmt.Errorf("matrix: column %v is empty", c.Field.Name)
	}
	return mat.NewDense(c.Rows, c.Field.RowSize(), c.Float64s()), nil
}

// Tensor returns the Column as a dense tensor of shape c.Shape which
// shares the Column's backing data
func (c *Column) Tensor() *tensor.Dense {
	if len(c.Shape) == 0 {
		elem := reflect.ValueOf(c.Data).Index(0).Interface()
		return tensor.New(tensor.FromScalar(elem))
	}
	return tensor.New(
		tensor.WithShape(c.Shape...),
		tensor.WithBacking(c.Data),
	)
}

// String returns the string representation of the Column
func (c *Column) String() string {
	return fmt.Sprintf("%v: %v", c.Field, c.Data)
}

// Batch is a collection of equally sized Columns, keyed by field name
type Batch map[string]*Column

// Len returns the number of entries in the Batch
func (b Batch) Len() int {
	for _, col := range b {
		return col.Rows
	}
	return 0
}

// Keys returns the sorted field names in the Batch
func (b Batch) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Float64s returns the data of field name converted to float64
func (b Batch) Float64s(name string) ([]float64, error) {
	col, ok := b[name]
	if !ok {
		return nil, fmt.Errorf("float64s: no field %v in batch", name)
	}
	return col.Float64s(), nil
}

package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/offpolicy/utils/intutils"
	"gorgonia.org/tensor"
)

// Names of the default fields of a transition buffer
const (
	Obs     = "obs"
	Actions = "actions"
	Rewards = "rewards"
	NextObs = "new_obs"
	Dones   = "dones"
)

// supportedDtypes are the dtypes that a Field may be stored as
var supportedDtypes = []tensor.Dtype{
	tensor.Float64,
	tensor.Float32,
	tensor.Int64,
	tensor.Int,
	tensor.Bool,
}

// Field describes a single named column of a replay buffer. Each entry
// of the field has shape Shape and is stored as Dtype. An empty Shape
// denotes a scalar field, and a zero Dtype denotes float32.
type Field struct {
	Name  string
	Shape tensor.Shape
	Dtype tensor.Dtype
}

// NewField returns a new Field with the given name and per-entry shape,
// stored as float32
func NewField(name string, shape ...int) Field {
	return Field{Name: name, Shape: tensor.Shape(shape), Dtype: tensor.Float32}
}

// WithDtype returns a copy of the Field stored as dtype dt
func (f Field) WithDtype(dt tensor.Dtype) Field {
	f.Dtype = dt
	return f
}

// RowSize returns the number of scalar elements in a single entry of
// the Field
func (f Field) RowSize() int {
	return intutils.Prod(f.Shape...)
}

// String returns the string representation of the Field
func (f Field) String() string {
	if f.Dtype.Type == nil {
		return fmt.Sprintf("%v%v", f.Name, []int(f.Shape))
	}
	return fmt.Sprintf("%v%v(%v)", f.Name, []int(f.Shape), f.Dtype)
}

// validate checks that the Field can be stored in a buffer
func (f Field) validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: field must be named", ErrSchemaMismatch)
	}
	for _, dim := range f.Shape {
		if dim < 1 {
			return fmt.Errorf("%w: field %v has shape %v", ErrInvalidShape,
				f.Name, []int(f.Shape))
		}
	}
	if f.Dtype.Type == nil {
		return nil
	}
	for _, dt := range supportedDtypes {
		if f.Dtype == dt {
			return nil
		}
	}
	return fmt.Errorf("%w: field %v has dtype %v", ErrUnsupportedDtype,
		f.Name, f.Dtype)
}

// ParseDtype returns the dtype with the given name, one of float64,
// float32, int64, int, or bool.
func ParseDtype(name string) (tensor.Dtype, error) {
	for _, dt := range supportedDtypes {
		if dt.String() == name {
			return dt, nil
		}
	}
	return tensor.Dtype{}, fmt.Errorf("%w: %v", ErrUnsupportedDtype, name)
}

// TransitionFields returns the default fields of a transition buffer
// for observations of shape obsShape and actions of shape actionShape
func TransitionFields(obsShape, actionShape []int) []Field {
	return []Field{
		NewField(Obs, obsShape...),
		NewField(Actions, actionShape...),
		NewField(Rewards),
		NewField(NextObs, obsShape...),
		NewField(Dones).WithDtype(tensor.Bool),
	}
}

// registry keeps track of the fields declared with a buffer. Fields
// are kept in declaration order. Once frozen, no more fields can be
// declared.
type registry struct {
	fields []Field
	index  map[string]int
	frozen bool
}

// newRegistry returns a new, empty registry
func newRegistry() *registry {
	return &registry{index: make(map[string]int)}
}

// declare registers a new field. An error is returned if the field is
// invalid, its name is already registered, or the registry is frozen.
func (r *registry) declare(f Field) error {
	if r.frozen {
		return fmt.Errorf("%w: %v", ErrLateFieldDeclaration, f.Name)
	}
	if _, ok := r.index[f.Name]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateField, f.Name)
	}
	if err := f.validate(); err != nil {
		return err
	}

	// Copy the shape so that callers cannot change it after declaration
	f.Shape = append(tensor.Shape(nil), f.Shape...)
	if f.Dtype.Type == nil {
		f.Dtype = tensor.Float32
	}

	r.index[f.Name] = len(r.fields)
	r.fields = append(r.fields, f)
	return nil
}

// lookup returns the position of the field with the given name
func (r *registry) lookup(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// freeze prevents further declarations
func (r *registry) freeze() {
	r.frozen = true
}

// all returns a copy of the declared fields in declaration order
func (r *registry) all() []Field {
	fields := make([]Field, len(r.fields))
	copy(fields, r.fields)
	return fields
}

// len returns the number of declared fields
func (r *registry) len() int {
	return len(r.fields)
}

package expreplay

import (
	"fmt"
	"math"
	"reflect"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// makeSlice returns a new slice of n elements of dtype dt
func makeSlice(dt tensor.Dtype, n int) interface{} {
	return reflect.MakeSlice(reflect.SliceOf(dt.Type), n, n).Interface()
}

// copyInto copies src[srcStart:srcStart+n] into dst[dstStart:dstStart+n].
// Both dst and src must be slices of the same element type.
func copyInto(dst interface{}, dstStart int, src interface{}, srcStart,
	n int) {
	d := reflect.ValueOf(dst).Slice(dstStart, dstStart+n)
	s := reflect.ValueOf(src).Slice(srcStart, srcStart+n)
	reflect.Copy(d, s)
}

// rowData converts value into a slice of f.Dtype holding exactly one
// entry of f. Slices already of the field's element type are returned
// as-is. Other supported values are converted element-wise: integers
// and booleans are kept exact, and floats stored in an integer field
// must be integral.
func rowData(f Field, value interface{}) (interface{}, error) {
	rowSize := f.RowSize()

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice && rv.Type().Elem() == f.Dtype.Type {
		if rv.Len() != rowSize {
			return nil, fmt.Errorf("%w: field %v expects %v elements, got %v",
				ErrSchemaMismatch, f.Name, rowSize, rv.Len())
		}
		return value, nil
	}

	flat, err := flatten(value)
	if err != nil {
		return nil, fmt.Errorf("%w: field %v: %v", ErrSchemaMismatch, f.Name,
			err)
	}
	if n := reflect.ValueOf(flat).Len(); n != rowSize {
		return nil, fmt.Errorf("%w: field %v expects %v elements, got %v",
			ErrSchemaMismatch, f.Name, rowSize, n)
	}

	var row interface{}
	switch f.Dtype {
	case tensor.Float64, tensor.Float32:
		row = cast(f.Dtype, toFloat64s(flat))
	case tensor.Int64:
		row, err = toInt64s(flat)
	case tensor.Int:
		row, err = toInts(flat)
	case tensor.Bool:
		row = toBools(flat)
	default:
		err = fmt.Errorf("unsupported dtype %v", f.Dtype)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: field %v: %v", ErrSchemaMismatch, f.Name,
			err)
	}
	return row, nil
}

// flatten converts a scalar, slice, gonum vector, or dense tensor into
// a []float64, []int64, or []bool
func flatten(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case float64:
		return []float64{v}, nil
	case float32:
		return []float64{float64(v)}, nil
	case int:
		return []int64{int64(v)}, nil
	case int64:
		return []int64{v}, nil
	case int32:
		return []int64{int64(v)}, nil
	case bool:
		return []bool{v}, nil

	case []float64:
		return v, nil
	case []float32:
		out := make([]float64, len(v))
		for i := range v {
			out[i] = float64(v[i])
		}
		return out, nil
	case []int:
		out := make([]int64, len(v))
		for i := range v {
			out[i] = int64(v[i])
		}
		return out, nil
	case []int64:
		return v, nil
	case []int32:
		out := make([]int64, len(v))
		for i := range v {
			out[i] = int64(v[i])
		}
		return out, nil
	case []bool:
		return v, nil

	case *tensor.Dense:
		if v.IsScalar() {
			return flatten(v.ScalarValue())
		}
		return flatten(v.Data())

	case mat.Vector:
		out := make([]float64, v.Len())
		for i := range out {
			out[i] = v.AtVec(i)
		}
		return out, nil
	}

	return nil, fmt.Errorf("unsupported value type %T", value)
}

// float64s converts any value supported by flatten into a []float64.
// Booleans are converted to 0 or 1.
func float64s(value interface{}) ([]float64, error) {
	flat, err := flatten(value)
	if err != nil {
		return nil, err
	}
	return toFloat64s(flat), nil
}

func toFloat64s(flat interface{}) []float64 {
	switch v := flat.(type) {
	case []float64:
		return v
	case []int64:
		out := make([]float64, len(v))
		for i := range v {
			out[i] = float64(v[i])
		}
		return out
	case []bool:
		out := make([]float64, len(v))
		for i := range v {
			out[i] = boolToFloat(v[i])
		}
		return out
	}
	panic(fmt.Sprintf("toFloat64s: unsupported type %T", flat))
}

// toInt64s converts flat into a new []int64. Floats which are not
// integral or do not fit in an int64 are rejected.
func toInt64s(flat interface{}) ([]int64, error) {
	switch v := flat.(type) {
	case []int64:
		out := make([]int64, len(v))
		copy(out, v)
		return out, nil
	case []float64:
		out := make([]int64, len(v))
		for i, f := range v {
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				return nil, fmt.Errorf("%v is not an integer", f)
			}
			out[i] = int64(f)
		}
		return out, nil
	case []bool:
		out := make([]int64, len(v))
		for i := range v {
			if v[i] {
				out[i] = 1
			}
		}
		return out, nil
	}
	panic(fmt.Sprintf("toInt64s: unsupported type %T", flat))
}

func toInts(flat interface{}) ([]int, error) {
	ints, err := toInt64s(flat)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(ints))
	for i, v := range ints {
		if int64(int(v)) != v {
			return nil, fmt.Errorf("%v overflows int", v)
		}
		out[i] = int(v)
	}
	return out, nil
}

func toBools(flat interface{}) []bool {
	switch v := flat.(type) {
	case []bool:
		out := make([]bool, len(v))
		copy(out, v)
		return out
	case []int64:
		out := make([]bool, len(v))
		for i := range v {
			out[i] = v[i] != 0
		}
		return out
	case []float64:
		out := make([]bool, len(v))
		for i := range v {
			out[i] = v[i] != 0
		}
		return out
	}
	panic(fmt.Sprintf("toBools: unsupported type %T", flat))
}

// cast converts floats into a slice of float dtype dt
func cast(dt tensor.Dtype, floats []float64) interface{} {
	switch dt {
	case tensor.Float64:
		out := make([]float64, len(floats))
		copy(out, floats)
		return out
	case tensor.Float32:
		out := make([]float32, len(floats))
		for i := range floats {
			out[i] = float32(floats[i])
		}
		return out
	}
	panic(fmt.Sprintf("cast: unsupported dtype %v", dt))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

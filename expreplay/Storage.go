package expreplay

// store implements fixed-capacity, contiguous storage for a single
// field. Entry i occupies data[i*rowSize:(i+1)*rowSize]. Positions wrap
// around modulo the capacity, so that once full, each write overwrites
// the entry at the write position.
type store struct {
	field    Field
	rowSize  int
	capacity int
	data     interface{} // []T with len capacity*rowSize
}

// allocate returns a new store for field f which can hold capacity
// entries
func allocate(f Field, capacity int) *store {
	rowSize := f.RowSize()
	return &store{
		field:    f,
		rowSize:  rowSize,
		capacity: capacity,
		data:     makeSlice(f.Dtype, capacity*rowSize),
	}
}

// write stores a single row at position modulo the store's capacity.
// The row must be a slice of the field's dtype with rowSize elements.
func (s *store) write(position int, row interface{}) {
	if s.capacity == 0 {
		return
	}
	index := position % s.capacity
	copyInto(s.data, index*s.rowSize, row, 0, s.rowSize)
}

// writeRows stores n contiguous rows, starting at row offset of rows,
// into positions [start, start+n). The range must not wrap around the
// end of the store.
func (s *store) writeRows(start int, rows interface{}, offset, n int) {
	if n == 0 {
		return
	}
	copyInto(s.data, start*s.rowSize, rows, offset*s.rowSize, n*s.rowSize)
}

// read gathers the rows at the given positions into a new Column
func (s *store) read(indices []int) *Column {
	data := makeSlice(s.field.Dtype, len(indices)*s.rowSize)
	for i, index := range indices {
		copyInto(data, i*s.rowSize, s.data, index*s.rowSize, s.rowSize)
	}
	return newColumn(s.field, len(indices), data)
}

// readRange gathers the rows at positions [start, stop) into a new
// Column
func (s *store) readRange(start, stop int) *Column {
	n := stop - start
	data := makeSlice(s.field.Dtype, n*s.rowSize)
	copyInto(data, 0, s.data, start*s.rowSize, n*s.rowSize)
	return newColumn(s.field, n, data)
}

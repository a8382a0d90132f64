package expreplay

import (
	"errors"
	"fmt"
)

// ExpReplayError implements errors unique to an experience replay
// buffer. Op names the buffer operation that failed and Err is one of
// the package's sentinel errors, possibly wrapped with more detail.
type ExpReplayError struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (e *ExpReplayError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error so that errors.Is can match the
// package's sentinel errors
func (e *ExpReplayError) Unwrap() error {
	return e.Err
}

var (
	// ErrEmptyBuffer is returned when sampling from a buffer with no
	// valid entries
	ErrEmptyBuffer = errors.New("buffer empty")

	// ErrSchemaMismatch is returned when an entry is missing a
	// declared field, contains an undeclared field, or holds a value
	// of the wrong size for its field
	ErrSchemaMismatch = errors.New("entry does not match declared fields")

	// ErrDuplicateField is returned when declaring a field whose name
	// is already registered
	ErrDuplicateField = errors.New("field already declared")

	// ErrLateFieldDeclaration is returned when declaring a field after
	// data has been inserted into the buffer
	ErrLateFieldDeclaration = errors.New("fields cannot be declared " +
		"after insertion")

	// ErrIndexOutOfRange is returned when indexing outside of the
	// valid entries of a buffer
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUnsupportedDtype is returned when declaring a field with a
	// dtype that cannot be stored
	ErrUnsupportedDtype = errors.New("unsupported dtype")

	// ErrInvalidShape is returned when declaring a field with a
	// non-positive dimension
	ErrInvalidShape = errors.New("field dimensions must be positive")

	// ErrInvalidBatchSize is returned when sampling a negative number
	// of entries
	ErrInvalidBatchSize = errors.New("batch size must be non-negative")
)

// newError returns an *ExpReplayError for operation op which wraps
// sentinel with a formatted message
func newError(op string, sentinel error, format string,
	args ...interface{}) error {
	if format == "" {
		return &ExpReplayError{Op: op, Err: sentinel}
	}
	msg := fmt.Sprintf(format, args...)
	return &ExpReplayError{Op: op, Err: fmt.Errorf("%w: %v", sentinel, msg)}
}

// IsEmptyBuffer returns whether or not an error reports that a
// replay buffer is empty.
func IsEmptyBuffer(err error) bool {
	return errors.Is(err, ErrEmptyBuffer)
}

// IsSchemaMismatch returns whether or not an error reports that an
// inserted entry did not match the buffer's fields
func IsSchemaMismatch(err error) bool {
	return errors.Is(err, ErrSchemaMismatch)
}

// IsDuplicateField returns whether or not an error reports that a
// field was declared twice
func IsDuplicateField(err error) bool {
	return errors.Is(err, ErrDuplicateField)
}

// IsLateFieldDeclaration returns whether or not an error reports that
// a field was declared after the buffer was populated
func IsLateFieldDeclaration(err error) bool {
	return errors.Is(err, ErrLateFieldDeclaration)
}

// IsIndexOutOfRange returns whether or not an error reports an invalid
// buffer index
func IsIndexOutOfRange(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange)
}

package checkpointer

import (
	"fmt"
	"time"
)

// Enumerate returns a function which returns a new name each call by
// suffixing prefix with a counter and then extension. The counter of
// the first name is start + 1.
func Enumerate(prefix, extension string, start int) func() string {
	i := start
	return func() string {
		i++
		return fmt.Sprintf("%v%v%v", prefix, i, extension)
	}
}

// Timestamped returns a function which returns a new name each call by
// suffixing prefix with the nanoseconds since January 1, 1970 given by
// now, and then extension. If now is nil, time.Now is used.
func Timestamped(prefix, extension string,
	now func() time.Time) func() string {
	if now == nil {
		now = time.Now
	}
	return func() string {
		return fmt.Sprintf("%v-%v%v", prefix, now().UnixNano(), extension)
	}
}

package rom

import (
	"fmt"

	"github.com/pkg/errors"
)

// RangeError means image layout does not match expected one
type RangeError struct {
	Buffer string
	Offset uint32
	Size   int
	Len    int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("[rom] access of 0x%x bytes at 0x%x is out of %s (size 0x%x)",
		e.Size, e.Offset, e.Buffer, e.Len)
}

// Catch converts *RangeError panic into error. Must be deferred.
// Other panics are passed through.
func Catch(err *error, format string, args ...interface{}) {
	if r := recover(); r != nil {
		re, ok := r.(*RangeError)
		if !ok {
			panic(r)
		}
		*err = errors.Wrapf(re, format, args...)
	}
}

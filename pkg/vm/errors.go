package vm

import (
	"errors"
	"fmt"
)

// Syscall-level results. These mirror the status codes a script runtime
// reports for introspection reads; everything above the Loader treats
// them as opaque kinds to branch on.
var (
	// ErrIndexOutOfBound reports an index past the end of the region.
	// Iteration loops use it as their termination signal.
	ErrIndexOutOfBound = errors.New("vm: index out of bound")

	// ErrItemMissing reports an entity that does not exist for the
	// requested region (e.g. since on a non-input source).
	ErrItemMissing = errors.New("vm: item missing")
)

// LengthNotEnoughError reports a buffered load whose destination buffer
// was filled completely while the region held more data. The copied
// prefix is valid; Available is the full region size past the offset.
type LengthNotEnoughError struct {
	Available int
}

func (e *LengthNotEnoughError) Error() string {
	return fmt.Sprintf("vm: length not enough, %d bytes available", e.Available)
}

// IsLengthNotEnough reports whether err is a LengthNotEnoughError.
func IsLengthNotEnough(err error) bool {
	var lne *LengthNotEnoughError
	return errors.As(err, &lne)
}

package store

import (
	"errors"
	"fmt"
)

// ErrLockTimeout is returned when the store lock is not acquired in time.
var ErrLockTimeout = errors.New("timed out waiting for store lock")

// Error captures a failed store I/O step.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError attempts to unwrap err into a store Error.
func AsError(err error) (*Error, bool) {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr, true
	}
	return nil, false
}

package dispatch

import (
	"errors"

	"github.com/preston-bernstein/f1-data-service/internal/request"
	"github.com/preston-bernstein/f1-data-service/internal/store"
)

// Kind classifies a failed invocation.
type Kind int

const (
	// KindUsage covers a bad option or a missing request name.
	KindUsage Kind = iota + 1
	// KindInput covers a missing or malformed request document.
	KindInput
	// KindStore covers reading, parsing, locking or writing the store.
	KindStore
	// KindNotFound covers an unmatched team or driver.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindInput:
		return "input"
	case KindStore:
		return "store"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

const (
	msgPathRequired   = "Path is required for POST, PUT, DELETE and PATCH options"
	msgFileNotFound   = "File not found"
	msgTeamNotFound   = "Team not found"
	msgDriverNotFound = "Driver not found"
)

// Error is a classified dispatcher failure. Message is what gets reported.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError attempts to unwrap err into a dispatcher Error.
func AsError(err error) (*Error, bool) {
	var dispatchErr *Error
	if errors.As(err, &dispatchErr) {
		return dispatchErr, true
	}
	return nil, false
}

func usageError(msg string) *Error {
	return &Error{Kind: KindUsage, Message: msg}
}

func notFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// classify maps any error raised during an invocation onto an Error.
func classify(err error) *Error {
	if err == nil {
		return nil
	}
	if de, ok := AsError(err); ok {
		return de
	}
	switch {
	case errors.Is(err, request.ErrNotFound):
		return &Error{Kind: KindInput, Message: msgFileNotFound, Err: err}
	case errors.Is(err, request.ErrInvalid):
		return &Error{Kind: KindInput, Message: err.Error(), Err: err}
	}
	if se, ok := store.AsError(err); ok {
		return &Error{Kind: KindStore, Message: se.Error(), Err: err}
	}
	return &Error{Kind: KindStore, Message: err.Error(), Err: err}
}

package dispatch

import "fmt"

// Operation selects what the dispatcher does with the store.
type Operation int

const (
	OpGet Operation = iota
	OpCreate
	OpUpdate
	OpDelete
	OpPatch
)

var operationNames = [...]string{
	OpGet:    "GET",
	OpCreate: "CREATE",
	OpUpdate: "UPDATE",
	OpDelete: "DELETE",
	OpPatch:  "PATCH",
}

// ParseOperation maps a numeric option code onto an Operation.
func ParseOperation(code int) (Operation, error) {
	op := Operation(code)
	if !op.Valid() {
		return op, usageError(fmt.Sprintf("invalid option %d: expected 0 (GET), 1 (POST), 2 (PUT), 3 (DELETE) or 4 (PATCH)", code))
	}
	return op, nil
}

// Valid reports whether op is one of the five known operations.
func (op Operation) Valid() bool {
	return op >= OpGet && op <= OpPatch
}

// Mutates reports whether op rewrites the store.
func (op Operation) Mutates() bool {
	return op.Valid() && op != OpGet
}

func (op Operation) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Operation(%d)", int(op))
	}
	return operationNames[op]
}

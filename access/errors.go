package access

import (
	"fmt"
)

// ErrUniqueViolation indicates an insert that would duplicate a key in a
// unique index.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrUniqueViolation struct {
	Index string
	Key   string
	cause error
}

func (e *ErrUniqueViolation) Error() string {
	return fmt.Sprintf("duplicate key value violates unique index %q", e.Index)
}

func (e *ErrUniqueViolation) Unwrap() error { return e.cause }

package executor

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrFeatureNotSupported marks user-facing unsupported-feature failures
// (row-level security on a chunk, disallowed trigger classes). Test with
// errors.Is.
var ErrFeatureNotSupported = errors.New("feature not supported")

// featureNotSupportedf builds a marked unsupported-feature error.
func featureNotSupportedf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrFeatureNotSupported)
}

// ErrCheckOptionViolation indicates a row that failed a statement check
// option.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrCheckOptionViolation struct {
	Option string
	cause  error
}

func (e *ErrCheckOptionViolation) Error() string {
	return fmt.Sprintf("new row violates check option %q", e.Option)
}

func (e *ErrCheckOptionViolation) Unwrap() error { return e.cause }

package hypergo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hypergo/access"
	"github.com/hupe1980/hypergo/catalog"
	"github.com/hupe1980/hypergo/executor"
)

var (
	// ErrEngineClosed is returned when operating on a closed engine.
	ErrEngineClosed = errors.New("engine is closed")

	// ErrStatementClosed is returned when inserting through a closed
	// statement.
	ErrStatementClosed = errors.New("statement is closed")

	// ErrNotFound is returned when a relation name cannot be resolved.
	ErrNotFound = errors.New("not found")

	// ErrFeatureNotSupported is returned for features incompatible with
	// routed per-chunk writes (row-level security, statement-level or
	// INSTEAD OF insert triggers on chunks).
	ErrFeatureNotSupported = errors.New("feature not supported")
)

// ErrStatementAborted indicates a statement that failed earlier and cannot be
// used any further.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrStatementAborted struct {
	cause error
}

func (e *ErrStatementAborted) Error() string {
	return fmt.Sprintf("statement aborted: %v", e.cause)
}

func (e *ErrStatementAborted) Unwrap() error { return e.cause }

// ErrNotAChunk indicates an InsertInto target that is not a chunk of the
// statement's hypertable.
type ErrNotAChunk struct {
	Relation   string
	Hypertable string
}

func (e *ErrNotAChunk) Error() string {
	return fmt.Sprintf("relation %q is not a chunk of hypertable %q", e.Relation, e.Hypertable)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, catalog.ErrRelationNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	// Unsupported-feature unification.
	if errors.Is(err, executor.ErrFeatureNotSupported) {
		return fmt.Errorf("%w: %w", ErrFeatureNotSupported, err)
	}

	// Typed errors pass through untouched so callers can errors.As them.
	var uv *access.ErrUniqueViolation
	if errors.As(err, &uv) {
		return err
	}
	var cv *executor.ErrCheckOptionViolation
	if errors.As(err, &cv) {
		return err
	}

	return err
}

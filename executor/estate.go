package executor

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/hupe1980/hypergo/access"
	"github.com/hupe1980/hypergo/catalog"
)

// Config carries the collaborator services a statement execution needs.
// Everything is passed explicitly; the executor keeps no ambient state.
type Config struct {
	Txn     access.TxnID
	Catalog *catalog.Catalog
	Store   *access.Store
	Locks   *access.LockManager
	Logger  *slog.Logger
}

// QueryState is the per-statement execution state. It owns the shared range
// table, the array of result relations (with the statement's own relation as
// the template at index 0) and the statement-scoped resource scope.
//
// A QueryState is single-threaded: one statement, one goroutine.
type QueryState struct {
	// StatementID correlates log lines and metrics for one statement.
	StatementID uuid.UUID

	Txn     access.TxnID
	Catalog *catalog.Catalog
	Store   *access.Store
	Locks   *access.LockManager
	Logger  *slog.Logger

	// ResultRelations holds one entry per target relation, template first.
	ResultRelations []*ResultRelation

	rangeTable []RangeTableEntry
	scope      *StatementScope
}

// NewQueryState creates the execution state for one statement.
func NewQueryState(cfg Config) *QueryState {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &QueryState{
		StatementID: uuid.New(),
		Txn:         cfg.Txn,
		Catalog:     cfg.Catalog,
		Store:       cfg.Store,
		Locks:       cfg.Locks,
		Logger:      logger,
		scope:       &StatementScope{},
	}
}

// RangeTable returns the statement's current range table. The returned slice
// is the live backing; callers must treat it as read-only.
func (qs *QueryState) RangeTable() []RangeTableEntry {
	return qs.rangeTable
}

// Scope returns the statement-scoped resource scope.
func (qs *QueryState) Scope() *StatementScope {
	return qs.scope
}

// StatementScope collects cleanup work whose lifetime is the statement, the
// moral equivalent of a per-query memory context. Registered functions run in
// reverse order exactly once, at statement end.
type StatementScope struct {
	cleanups []func()
	released bool
}

// Defer registers fn to run when the scope is released.
func (s *StatementScope) Defer(fn func()) {
	if s.released {
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// Release runs all registered cleanups in reverse order. Subsequent calls are
// no-ops.
func (s *StatementScope) Release() {
	if s.released {
		return
	}
	s.released = true
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
}

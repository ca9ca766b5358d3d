package hypergo

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/hypergo/access"
	"github.com/hupe1980/hypergo/catalog"
	"github.com/hupe1980/hypergo/core"
	"github.com/hupe1980/hypergo/executor"
)

type statementOptions struct {
	checkOptions  []*executor.CheckOption
	rowFilter     *executor.RowFilter
	returning     *executor.Projection
	conflictSet   *executor.Projection
	conflictWhere *executor.RowFilter
}

// StatementOption configures an insert statement at construction time. The
// configured expressions are compiled once and shared across every chunk the
// statement touches.
type StatementOption func(*statementOptions) error

// WithCheckOption adds a named boolean constraint checked against every
// inserted row. A violating row aborts the statement.
func WithCheckOption(name, expression string) StatementOption {
	return func(o *statementOptions) error {
		c, err := executor.CompileCheckOption(name, expression)
		if err != nil {
			return err
		}
		o.checkOptions = append(o.checkOptions, c)
		return nil
	}
}

// WithRowFilter sets a boolean predicate; rows it rejects are skipped
// silently.
func WithRowFilter(expression string) StatementOption {
	return func(o *statementOptions) error {
		f, err := executor.CompileRowFilter(expression)
		if err != nil {
			return err
		}
		o.rowFilter = f
		return nil
	}
}

// WithReturning sets the statement's RETURNING projection: one expression per
// output column.
func WithReturning(columns []string, expressions []string) StatementOption {
	return func(o *statementOptions) error {
		p, err := executor.CompileProjection(columns, expressions)
		if err != nil {
			return err
		}
		o.returning = p
		return nil
	}
}

// WithConflictSet sets the statement's conflict-resolution projection and
// optional WHERE predicate. The compiled expressions are shared into every
// chunk's write context; applying them on an actual conflict is not part of
// the routed write path yet.
func WithConflictSet(columns []string, expressions []string, where string) StatementOption {
	return func(o *statementOptions) error {
		p, err := executor.CompileProjection(columns, expressions)
		if err != nil {
			return err
		}
		o.conflictSet = p
		if where != "" {
			f, err := executor.CompileRowFilter(where)
			if err != nil {
				return err
			}
			o.conflictWhere = f
		}
		return nil
	}
}

// Result reports the outcome of one InsertInto call.
type Result struct {
	// Inserted is the number of rows stored.
	Inserted int
	// Skipped counts rows suppressed by a BEFORE trigger or rejected by the
	// row filter.
	Skipped int
	// Returning holds one projected row per inserted row when the statement
	// has a RETURNING projection.
	Returning []core.Row
}

// InsertStatement is one logical insert into a hypertable that may fan rows
// out across many chunks. It holds the statement's query state, the template
// write context for the hypertable itself, and the per-chunk cache of
// materialized chunk write contexts (at most one per chunk per statement).
//
// A statement is single-threaded and must be Closed when done; Close releases
// the chunk write contexts and the statement's locks.
type InsertStatement struct {
	engine *Engine
	table  *catalog.TableDescriptor
	rel    *access.Relation
	qs     *executor.QueryState
	logger *Logger

	states map[catalog.RelationID]*executor.ChunkInsertState
	order  []*executor.ChunkInsertState

	abortErr error
	closed   bool
}

// NewInsert starts an insert statement against the named hypertable. It opens
// the hypertable with a row-exclusive lock, compiles the statement-level
// expressions and registers the template write context at range table
// index 1.
func (e *Engine) NewInsert(ctx context.Context, hypertable string, optFns ...StatementOption) (*InsertStatement, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	var so statementOptions
	for _, fn := range optFns {
		if fn == nil {
			continue
		}
		if err := fn(&so); err != nil {
			return nil, translateError(err)
		}
	}

	desc, err := e.catalog.LookupByName(hypertable)
	if err != nil {
		return nil, translateError(err)
	}
	if !desc.Hypertable {
		return nil, fmt.Errorf("relation %q is not a hypertable", hypertable)
	}

	txn := e.newTxnID()
	qs := executor.NewQueryState(executor.Config{
		Txn:     txn,
		Catalog: e.catalog,
		Store:   e.store,
		Locks:   e.locks,
		Logger:  e.logger.Logger,
	})

	rel, err := access.OpenRelation(ctx, e.store, e.catalog, e.locks, txn, desc.ID, access.RowExclusiveLock)
	if err != nil {
		e.locks.ReleaseAll(txn)
		return nil, translateError(err)
	}

	if _, err := executor.NewTemplateResultRelation(qs, rel, &executor.StatementExprs{
		CheckOptions:  so.checkOptions,
		RowFilter:     so.rowFilter,
		Returning:     so.returning,
		ConflictSet:   so.conflictSet,
		ConflictWhere: so.conflictWhere,
	}); err != nil {
		rel.Close(access.NoLock)
		e.locks.ReleaseAll(txn)
		return nil, translateError(err)
	}

	logger := e.logger.WithStatement(qs.StatementID.String())
	logger.Debug("insert statement started", "hypertable", hypertable)

	return &InsertStatement{
		engine: e,
		table:  desc,
		rel:    rel,
		qs:     qs,
		logger: logger,
		states: make(map[catalog.RelationID]*executor.ChunkInsertState),
	}, nil
}

// QueryState exposes the statement's execution state for inspection.
func (s *InsertStatement) QueryState() *executor.QueryState {
	return s.qs
}

// ChunkStates returns the number of chunk write contexts materialized so far.
func (s *InsertStatement) ChunkStates() int {
	return len(s.states)
}

// InsertInto writes rows into the named chunk. The chunk must belong to the
// statement's hypertable; routing rows to chunks is the caller's business.
//
// On the first insert into a chunk its write context is materialized and
// cached for the remainder of the statement. Any execution error aborts the
// whole statement: every chunk write context created so far is destroyed, the
// statement's locks are released and subsequent calls fail with
// ErrStatementAborted.
func (s *InsertStatement) InsertInto(ctx context.Context, chunk string, rows ...core.Row) (*Result, error) {
	if s.closed {
		return nil, ErrStatementClosed
	}
	if s.abortErr != nil {
		return nil, &ErrStatementAborted{cause: s.abortErr}
	}

	desc, err := s.engine.catalog.LookupByName(chunk)
	if err != nil {
		return nil, translateError(err)
	}
	if desc.ParentID != s.table.ID {
		return nil, &ErrNotAChunk{Relation: chunk, Hypertable: s.table.Name}
	}

	start := time.Now()
	res, err := s.insertInto(ctx, desc, rows)
	s.engine.metrics.RecordInsert(len(rows), resInserted(res), time.Since(start), err)
	if err != nil {
		s.abort(err)
		return nil, translateError(err)
	}
	return res, nil
}

func resInserted(res *Result) int {
	if res == nil {
		return 0
	}
	return res.Inserted
}

func (s *InsertStatement) insertInto(ctx context.Context, desc *catalog.TableDescriptor, rows []core.Row) (*Result, error) {
	state, err := s.chunkState(ctx, desc)
	if err != nil {
		return nil, err
	}
	rr := state.ResultRelation

	res := &Result{}
	for _, row := range rows {
		row, err := executor.FireBeforeRowInsert(ctx, desc, row)
		if err != nil {
			return nil, err
		}
		s.recordTriggers(desc, catalog.TriggerBefore)
		if row == nil {
			res.Skipped++
			continue
		}

		env := executor.RowEnv(desc, row)

		if rr.RowFilter != nil {
			ok, err := rr.RowFilter.Eval(env)
			if err != nil {
				return nil, err
			}
			if !ok {
				res.Skipped++
				continue
			}
		}

		for _, check := range rr.CheckOptions {
			ok, err := check.Eval(env)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &executor.ErrCheckOptionViolation{Option: check.Name}
			}
		}

		id, err := state.Rel.Insert(row)
		if err != nil {
			return nil, err
		}

		for _, ir := range rr.Indexes {
			if err := ir.InsertEntry(row, id); err != nil {
				return nil, err
			}
		}

		if err := executor.FireAfterRowInsert(ctx, desc, row); err != nil {
			return nil, err
		}
		s.recordTriggers(desc, catalog.TriggerAfter)

		if rr.Returning != nil {
			out, err := rr.Returning.Eval(env)
			if err != nil {
				return nil, err
			}
			res.Returning = append(res.Returning, out)
		}

		res.Inserted++
	}

	return res, nil
}

// chunkState returns the chunk's cached write context, materializing it on
// first use. Re-insertion into the same chunk within one statement reuses the
// cached context, never recreates it.
func (s *InsertStatement) chunkState(ctx context.Context, desc *catalog.TableDescriptor) (*executor.ChunkInsertState, error) {
	if state, ok := s.states[desc.ID]; ok {
		return state, nil
	}

	start := time.Now()
	state, err := executor.NewChunkInsertState(ctx, desc, s.qs)
	s.engine.metrics.RecordChunkStateCreated(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	s.states[desc.ID] = state
	s.order = append(s.order, state)
	return state, nil
}

func (s *InsertStatement) recordTriggers(desc *catalog.TableDescriptor, timing catalog.TriggerTiming) {
	for _, trig := range desc.Triggers {
		if trig.Timing == timing && trig.Level == catalog.TriggerRow && trig.Event == catalog.TriggerInsert {
			s.engine.metrics.RecordTriggerFired()
		}
	}
}

// abort tears the whole statement down after a fatal error: a half-usable
// statement must not remain writable through other chunks.
func (s *InsertStatement) abort(err error) {
	if s.abortErr != nil || s.closed {
		return
	}
	s.abortErr = err
	s.teardown()
	s.logger.Warn("insert statement aborted", "error", err)
}

// Close destroys every chunk write context in reverse creation order, closes
// the hypertable relation and releases the statement's locks. Closing twice
// is a no-op; closing an aborted statement is also a no-op (the abort already
// tore everything down).
func (s *InsertStatement) Close() error {
	if s.closed || s.abortErr != nil {
		s.closed = true
		return nil
	}
	s.closed = true
	s.teardown()
	s.logger.Debug("insert statement closed", "chunks", len(s.order))
	return nil
}

func (s *InsertStatement) teardown() {
	for i := len(s.order) - 1; i >= 0; i-- {
		s.order[i].Destroy()
		s.engine.metrics.RecordChunkStateDestroyed()
	}
	s.rel.Close(access.NoLock)
	s.qs.Scope().Release()
	s.engine.locks.ReleaseAll(s.qs.Txn)
}

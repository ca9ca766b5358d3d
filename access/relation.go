// Package access is the relation access layer: relation-level locks, open
// relation and index handles, and the heap/index storage behind them.
package access

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/hupe1980/hypergo/catalog"
	"github.com/hupe1980/hypergo/core"
)

// Relation is an open handle to a relation, valid until Close. The handle
// carries the lock mode it was opened with; the lock itself belongs to the
// transaction, not to the handle.
type Relation struct {
	desc  *catalog.TableDescriptor
	heap  *Heap
	locks *LockManager
	txn   TxnID
	mode  LockMode
	open  bool
}

// OpenRelation looks up the relation, acquires the requested lock for the
// transaction and returns an open handle. Acquisition is the only blocking
// point; it waits until conflicting holders (typically DDL) release.
func OpenRelation(ctx context.Context, store *Store, cat *catalog.Catalog, locks *LockManager, txn TxnID, id catalog.RelationID, mode LockMode) (*Relation, error) {
	desc, err := cat.Lookup(id)
	if err != nil {
		return nil, err
	}
	if err := locks.Acquire(ctx, txn, id, mode); err != nil {
		return nil, err
	}
	return &Relation{
		desc:  desc,
		heap:  store.heap(id),
		locks: locks,
		txn:   txn,
		mode:  mode,
		open:  true,
	}, nil
}

// ID returns the relation id.
func (r *Relation) ID() catalog.RelationID {
	return r.desc.ID
}

// Descriptor returns the relation's catalog descriptor.
func (r *Relation) Descriptor() *catalog.TableDescriptor {
	return r.desc
}

// IsOpen reports whether the handle is still open.
func (r *Relation) IsOpen() bool {
	return r.open
}

// Close invalidates the handle. With NoLock the transaction's lock on the
// relation is retained until transaction end; any other mode releases it
// early. Closing a closed handle is a no-op.
func (r *Relation) Close(mode LockMode) {
	if !r.open {
		return
	}
	r.open = false
	if mode != NoLock {
		r.locks.Release(r.txn, r.desc.ID)
	}
}

// Insert validates the row against the relation's columns and stores it,
// returning the assigned RowID.
func (r *Relation) Insert(row core.Row) (core.RowID, error) {
	if !r.open {
		return 0, errors.AssertionFailedf("insert into closed relation handle %q", r.desc.Name)
	}
	if err := r.validate(row); err != nil {
		return 0, err
	}
	return r.heap.Insert(row), nil
}

// Get retrieves a row by id.
func (r *Relation) Get(id core.RowID) (core.Row, bool, error) {
	if !r.open {
		return nil, false, errors.AssertionFailedf("read from closed relation handle %q", r.desc.Name)
	}
	row, ok := r.heap.Get(id)
	return row, ok, nil
}

// Len returns the number of stored rows.
func (r *Relation) Len() (int, error) {
	if !r.open {
		return 0, errors.AssertionFailedf("read from closed relation handle %q", r.desc.Name)
	}
	return r.heap.Len(), nil
}

func (r *Relation) validate(row core.Row) error {
	cols := r.desc.Columns
	if len(row) != len(cols) {
		return errors.Newf("relation %q expects %d columns, got %d", r.desc.Name, len(cols), len(row))
	}
	for i, col := range cols {
		d := row[i]
		if d == nil {
			if !col.Nullable {
				return errors.Newf("null value in column %q of relation %q", col.Name, r.desc.Name)
			}
			continue
		}
		if !datumMatches(col.Type, d) {
			return errors.Newf("column %q of relation %q expects %s, got %T", col.Name, r.desc.Name, col.Type, d)
		}
	}
	return nil
}

func datumMatches(t catalog.ColumnType, d core.Datum) bool {
	switch t {
	case catalog.ColumnInt:
		switch d.(type) {
		case int, int64:
			return true
		}
	case catalog.ColumnFloat:
		_, ok := d.(float64)
		return ok
	case catalog.ColumnString:
		_, ok := d.(string)
		return ok
	case catalog.ColumnBool:
		_, ok := d.(bool)
		return ok
	case catalog.ColumnTimestamp:
		_, ok := d.(time.Time)
		return ok
	}
	return false
}

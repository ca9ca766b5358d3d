package executor

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/hupe1980/hypergo/access"
	"github.com/hupe1980/hypergo/catalog"
)

// ChunkInsertState is the fully materialized write context for one chunk of a
// hypertable: the open relation handle plus the chunk's result relation
// record. It is created lazily, on the first insert into the chunk within a
// statement, and stays valid until Destroy.
//
// The statement keeps at most one ChunkInsertState per chunk; that cache
// lives with the caller, not here.
type ChunkInsertState struct {
	Chunk          *catalog.TableDescriptor
	Rel            *access.Relation
	ResultRelation *ResultRelation
}

// NewChunkInsertState materializes the write context for a chunk inside a
// live statement execution: it opens the chunk relation with a row-exclusive
// lock, extends the statement's range table, builds the chunk's result
// relation from the statement-level template, opens the chunk's indexes and
// enforces the routed-write policy checks.
//
// Any error is fatal to the enclosing statement. There is no partial-success
// state: either a fully valid context is returned, or nothing was added to
// the statement's result relations and the chunk relation handle is closed
// again (the relation lock, if it was taken, remains transaction-scoped).
func NewChunkInsertState(ctx context.Context, chunk *catalog.TableDescriptor, qs *QueryState) (*ChunkInsertState, error) {
	// Permissions are not checked here; they were checked at the hypertable
	// level. Row-level security still has to be rejected: routed per-chunk
	// writes bypass the single-relation path its policies are evaluated on,
	// so allowing it would silently skip policy enforcement.
	if chunk.RowSecurityEnabled {
		return nil, featureNotSupportedf("hypertables don't support row-level security")
	}

	rel, err := access.OpenRelation(ctx, qs.Store, qs.Catalog, qs.Locks, qs.Txn, chunk.ID, access.RowExclusiveLock)
	if err != nil {
		return nil, err
	}

	if rel.Descriptor().Kind != catalog.KindTable {
		rel.Close(access.NoLock)
		return nil, errors.AssertionFailedf("insert is not on a table")
	}

	rti := appendRangeTableEntry(qs, rel)

	state := &ChunkInsertState{
		Chunk: chunk,
		Rel:   rel,
	}

	rr, err := newChunkResultRelation(qs, rel, rti)
	if err != nil {
		rel.Close(access.NoLock)
		return nil, err
	}
	state.ResultRelation = rr

	if chunk.HasIndexes() && rr.Indexes == nil {
		if err := attachIndexes(qs, rr); err != nil {
			rel.Close(access.NoLock)
			return nil, err
		}
	}

	if err := checkInsertTriggers(chunk); err != nil {
		closeIndexes(rr)
		rel.Close(access.NoLock)
		return nil, err
	}

	qs.ResultRelations = append(qs.ResultRelations, rr)

	// The statement scope backstops destruction: even if the caller never
	// destroys the state explicitly, releasing the scope at statement end
	// reclaims the handles. Destroy is idempotent, so both may run.
	qs.Scope().Defer(state.Destroy)

	qs.Logger.Debug("materialized chunk insert state",
		"statement", qs.StatementID,
		"chunk", chunk.Name,
		"range_table_index", int(rti),
		"indexes", len(rr.Indexes),
	)

	return state, nil
}

// Destroy releases the resources acquired during materialization: it closes
// the opened index handles, then closes the relation handle while retaining
// the row-exclusive lock until the transaction ends. A nil state is a no-op,
// and destroying twice is harmless.
//
// The range table entry and anything registered on the statement scope are
// owned by the query state and are reclaimed with it, not here.
func (cis *ChunkInsertState) Destroy() {
	if cis == nil {
		return
	}
	closeIndexes(cis.ResultRelation)
	cis.Rel.Close(access.NoLock)
}

package access

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/hupe1980/hypergo/catalog"
)

// TxnID identifies a transaction for lock accounting.
type TxnID uint64

// LockMode is a relation-level lock strength.
type LockMode uint8

const (
	// NoLock acquires nothing. Used on close to retain an already-held lock
	// until the transaction ends.
	NoLock LockMode = iota
	// AccessShareLock is taken by readers.
	AccessShareLock
	// RowExclusiveLock is taken by writers (INSERT/UPDATE/DELETE). It does
	// not conflict with other writers, only with AccessExclusiveLock.
	RowExclusiveLock
	// AccessExclusiveLock is taken by DDL and conflicts with everything.
	AccessExclusiveLock
)

func (m LockMode) String() string {
	switch m {
	case NoLock:
		return "NoLock"
	case AccessShareLock:
		return "AccessShareLock"
	case RowExclusiveLock:
		return "RowExclusiveLock"
	case AccessExclusiveLock:
		return "AccessExclusiveLock"
	default:
		return "Unknown"
	}
}

// conflicts reports whether two lock modes held by different transactions are
// incompatible.
func (m LockMode) conflicts(other LockMode) bool {
	if m == NoLock || other == NoLock {
		return false
	}
	return m == AccessExclusiveLock || other == AccessExclusiveLock
}

// LockManager is a transaction-scoped relation lock table.
//
// Acquire blocks until no conflicting holder remains. Locks are released
// either early (Release) or in bulk at transaction end (ReleaseAll); closing
// a relation handle with NoLock deliberately leaves its lock in place.
type LockManager struct {
	mu   sync.Mutex
	cond *sync.Cond
	held map[catalog.RelationID]map[TxnID]LockMode
}

// NewLockManager creates an empty lock table.
func NewLockManager() *LockManager {
	lm := &LockManager{
		held: make(map[catalog.RelationID]map[TxnID]LockMode),
	}
	lm.cond = sync.NewCond(&lm.mu)
	return lm
}

// Acquire blocks until the lock can be granted or ctx is done. Re-acquiring
// with a weaker or equal mode is a no-op; a stronger mode upgrades in place
// once compatible.
func (lm *LockManager) Acquire(ctx context.Context, txn TxnID, rel catalog.RelationID, mode LockMode) error {
	if mode == NoLock {
		return nil
	}

	// Wake waiters when the context is canceled so they can observe the error.
	stop := context.AfterFunc(ctx, func() {
		lm.mu.Lock()
		lm.cond.Broadcast()
		lm.mu.Unlock()
	})
	defer stop()

	lm.mu.Lock()
	defer lm.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "acquiring %s on relation %d", mode, rel)
		}
		if !lm.conflictingHolderLocked(txn, rel, mode) {
			holders := lm.held[rel]
			if holders == nil {
				holders = make(map[TxnID]LockMode)
				lm.held[rel] = holders
			}
			if holders[txn] < mode {
				holders[txn] = mode
			}
			return nil
		}
		lm.cond.Wait()
	}
}

func (lm *LockManager) conflictingHolderLocked(txn TxnID, rel catalog.RelationID, mode LockMode) bool {
	for holder, held := range lm.held[rel] {
		if holder == txn {
			continue
		}
		if mode.conflicts(held) {
			return true
		}
	}
	return false
}

// Release drops the given transaction's lock on one relation.
func (lm *LockManager) Release(txn TxnID, rel catalog.RelationID) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if holders, ok := lm.held[rel]; ok {
		delete(holders, txn)
		if len(holders) == 0 {
			delete(lm.held, rel)
		}
	}
	lm.cond.Broadcast()
}

// ReleaseAll drops every lock held by the transaction. Called at transaction
// end.
func (lm *LockManager) ReleaseAll(txn TxnID) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	for rel, holders := range lm.held {
		delete(holders, txn)
		if len(holders) == 0 {
			delete(lm.held, rel)
		}
	}
	lm.cond.Broadcast()
}

// Holds returns the mode the transaction holds on the relation, if any.
func (lm *LockManager) Holds(txn TxnID, rel catalog.RelationID) (LockMode, bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	mode, ok := lm.held[rel][txn]
	return mode, ok
}

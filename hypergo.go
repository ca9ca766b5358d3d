package hypergo

import (
	"sync"
	"sync/atomic"

	"github.com/hupe1980/hypergo/access"
	"github.com/hupe1980/hypergo/catalog"
)

// Engine is an embedded hypertable write engine. It owns the catalog, the
// physical storage and the lock manager, and hands out insert statements that
// fan rows out across chunks.
type Engine struct {
	catalog *catalog.Catalog
	store   *access.Store
	locks   *access.LockManager
	logger  *Logger
	metrics MetricsCollector

	nextTxn atomic.Uint64

	mu     sync.Mutex
	closed bool
}

// Open creates a new engine.
func Open(optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)
	return &Engine{
		catalog: catalog.New(),
		store:   access.NewStore(),
		locks:   access.NewLockManager(),
		logger:  o.logger,
		metrics: o.metricsCollector,
	}, nil
}

// Close releases resources held by this Engine instance. Statements created
// by a closed engine remain usable until their own Close.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Catalog exposes the engine's catalog for inspection.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// CreateHypertable registers a partitioned parent table.
func (e *Engine) CreateHypertable(name string, columns []catalog.ColumnDescriptor) (*catalog.TableDescriptor, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	desc, err := e.catalog.CreateHypertable(name, columns)
	if err != nil {
		return nil, translateError(err)
	}
	e.logger.Debug("created hypertable", "name", name, "id", uint32(desc.ID))
	return desc, nil
}

// CreateChunk registers a chunk of an existing hypertable. Chunks inherit the
// parent's columns. When a chunk is created or chosen for a given row is the
// caller's business; the engine only registers what it is told.
func (e *Engine) CreateChunk(hypertable, name string) (*catalog.TableDescriptor, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	parent, err := e.catalog.LookupByName(hypertable)
	if err != nil {
		return nil, translateError(err)
	}
	desc, err := e.catalog.CreateChunk(parent.ID, name)
	if err != nil {
		return nil, translateError(err)
	}
	e.logger.Debug("created chunk", "name", name, "hypertable", hypertable, "id", uint32(desc.ID))
	return desc, nil
}

// CreateIndex declares a secondary index on a table or chunk.
func (e *Engine) CreateIndex(table string, idx catalog.IndexDescriptor) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	desc, err := e.catalog.LookupByName(table)
	if err != nil {
		return translateError(err)
	}
	return translateError(e.catalog.AttachIndex(desc.ID, idx))
}

// CreateTrigger declares a trigger on a table or chunk. Disallowed trigger
// classes on chunks are not rejected here; the write path rejects them when
// the chunk is first targeted.
func (e *Engine) CreateTrigger(table string, trig catalog.TriggerDescriptor) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	desc, err := e.catalog.LookupByName(table)
	if err != nil {
		return translateError(err)
	}
	return translateError(e.catalog.AttachTrigger(desc.ID, trig))
}

// SetRowSecurity toggles row-level security on a table or chunk.
func (e *Engine) SetRowSecurity(table string, enabled bool) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	desc, err := e.catalog.LookupByName(table)
	if err != nil {
		return translateError(err)
	}
	return translateError(e.catalog.SetRowSecurity(desc.ID, enabled))
}

func (e *Engine) checkOpen() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}
	return nil
}

func (e *Engine) newTxnID() access.TxnID {
	return access.TxnID(e.nextTxn.Add(1))
}

package hypergo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordChunkStateCreated is called after a chunk write context is
	// materialized. duration covers materialization only.
	RecordChunkStateCreated(duration time.Duration, err error)

	// RecordChunkStateDestroyed is called after a chunk write context is
	// destroyed.
	RecordChunkStateDestroyed()

	// RecordInsert is called after each InsertInto call. count is the number
	// of rows attempted, inserted the number stored, err is nil on success.
	RecordInsert(count, inserted int, duration time.Duration, err error)

	// RecordTriggerFired is called after each row-level trigger invocation.
	RecordTriggerFired()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordChunkStateCreated(time.Duration, error)  {}
func (NoopMetricsCollector) RecordChunkStateDestroyed()                    {}
func (NoopMetricsCollector) RecordInsert(int, int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordTriggerFired()                           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ChunkStatesCreated   atomic.Int64
	ChunkStateErrors     atomic.Int64
	ChunkStatesDestroyed atomic.Int64
	InsertCount          atomic.Int64
	InsertErrors         atomic.Int64
	RowsInserted         atomic.Int64
	InsertTotalNanos     atomic.Int64
	TriggersFired        atomic.Int64
}

func (m *BasicMetricsCollector) RecordChunkStateCreated(_ time.Duration, err error) {
	if err != nil {
		m.ChunkStateErrors.Add(1)
		return
	}
	m.ChunkStatesCreated.Add(1)
}

func (m *BasicMetricsCollector) RecordChunkStateDestroyed() {
	m.ChunkStatesDestroyed.Add(1)
}

func (m *BasicMetricsCollector) RecordInsert(_, inserted int, duration time.Duration, err error) {
	m.InsertCount.Add(1)
	if err != nil {
		m.InsertErrors.Add(1)
	}
	m.RowsInserted.Add(int64(inserted))
	m.InsertTotalNanos.Add(duration.Nanoseconds())
}

func (m *BasicMetricsCollector) RecordTriggerFired() {
	m.TriggersFired.Add(1)
}

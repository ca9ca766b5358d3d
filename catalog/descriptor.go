package catalog

import (
	"context"

	"github.com/hupe1980/hypergo/core"
)

// RelationID is a dense, catalog-assigned identifier for a relation.
type RelationID uint32

// InvalidRelationID is never assigned to a relation.
const InvalidRelationID RelationID = 0

// RelationKind describes the physical shape of a relation. Only ordinary
// tables can store chunk rows; the other kinds exist so callers can detect
// and reject them.
type RelationKind uint8

const (
	// KindTable is an ordinary heap-backed table.
	KindTable RelationKind = iota + 1
	// KindView is a virtual relation with no storage.
	KindView
	// KindForeignTable is a relation whose storage lives outside the engine.
	KindForeignTable
)

func (k RelationKind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindView:
		return "view"
	case KindForeignTable:
		return "foreign table"
	default:
		return "unknown"
	}
}

// ColumnType enumerates the supported column value types.
type ColumnType uint8

const (
	ColumnInt ColumnType = iota + 1
	ColumnFloat
	ColumnString
	ColumnBool
	ColumnTimestamp
)

func (t ColumnType) String() string {
	switch t {
	case ColumnInt:
		return "Int"
	case ColumnFloat:
		return "Float"
	case ColumnString:
		return "String"
	case ColumnBool:
		return "Bool"
	case ColumnTimestamp:
		return "Timestamp"
	default:
		return "Unknown"
	}
}

// ColumnDescriptor describes a single column of a table.
type ColumnDescriptor struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// IndexDescriptor describes a secondary index declared on a table.
type IndexDescriptor struct {
	Name    string
	Columns []string
	Unique  bool
}

// TriggerTiming says when a trigger fires relative to the triggering
// operation.
type TriggerTiming uint8

const (
	TriggerBefore TriggerTiming = iota + 1
	TriggerAfter
	TriggerInsteadOf
)

func (t TriggerTiming) String() string {
	switch t {
	case TriggerBefore:
		return "BEFORE"
	case TriggerAfter:
		return "AFTER"
	case TriggerInsteadOf:
		return "INSTEAD OF"
	default:
		return "UNKNOWN"
	}
}

// TriggerLevel says whether a trigger fires once per affected row or once per
// statement.
type TriggerLevel uint8

const (
	TriggerRow TriggerLevel = iota + 1
	TriggerStatement
)

// TriggerEvent is the operation class a trigger reacts to.
type TriggerEvent uint8

const (
	TriggerInsert TriggerEvent = iota + 1
	TriggerUpdate
	TriggerDelete
)

// TriggerFunc is the body of a row-level trigger. For BEFORE triggers the
// returned row replaces the incoming row; returning a nil row suppresses the
// operation for that row. AFTER triggers are observe-only and their returned
// row is ignored.
type TriggerFunc func(ctx context.Context, row core.Row) (core.Row, error)

// TriggerDescriptor describes one trigger declared on a table.
type TriggerDescriptor struct {
	Name   string
	Timing TriggerTiming
	Level  TriggerLevel
	Event  TriggerEvent
	Func   TriggerFunc
}

// TableDescriptor is the catalog record for a relation.
//
// Descriptors are mutated only by the catalog's DDL operations (AttachIndex,
// AttachTrigger, SetRowSecurity), in place under the catalog lock. Run DDL
// and writes on the same relation from one goroutine; everyone else treats a
// descriptor as read-only.
type TableDescriptor struct {
	ID   RelationID
	Name string
	Kind RelationKind

	// Hypertable marks a partitioned parent table. Chunks carry the parent in
	// ParentID instead.
	Hypertable bool
	// ParentID is the hypertable this relation is a chunk of, or
	// InvalidRelationID for non-chunk relations.
	ParentID RelationID

	Columns  []ColumnDescriptor
	Indexes  []IndexDescriptor
	Triggers []TriggerDescriptor

	// RowSecurityEnabled marks relations with row-level security policies.
	// Routed per-chunk writes cannot honor such policies and must reject the
	// relation.
	RowSecurityEnabled bool
}

// HasIndexes reports whether the table declares any secondary indexes.
func (d *TableDescriptor) HasIndexes() bool {
	return len(d.Indexes) > 0
}

// HasTriggers reports whether the table declares any triggers.
func (d *TableDescriptor) HasTriggers() bool {
	return len(d.Triggers) > 0
}

// IsChunk reports whether the table is a chunk of a hypertable.
func (d *TableDescriptor) IsChunk() bool {
	return d.ParentID != InvalidRelationID
}

// ColumnIndex returns the position of the named column, or -1.
func (d *TableDescriptor) ColumnIndex(name string) int {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return i
		}
	}
	return -1
}

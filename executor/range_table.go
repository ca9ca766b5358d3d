package executor

import (
	"github.com/hupe1980/hypergo/access"
	"github.com/hupe1980/hypergo/catalog"
)

// RangeTableIndex is a 1-based position in the statement's range table. Zero
// is invalid.
type RangeTableIndex int

// Permission is the minimum access a range table entry requires.
type Permission uint8

const (
	PermSelect Permission = iota + 1
	PermInsert
	PermUpdate
	PermDelete
)

// RangeTableEntry references one relation the statement may read or write.
// Entries are referenced elsewhere in the plan by position, so they are never
// removed or reordered for the lifetime of the statement.
type RangeTableEntry struct {
	RelID        catalog.RelationID
	Kind         catalog.RelationKind
	RequiredPerm Permission
}

// appendRangeTableEntry appends a writable entry for the relation and returns
// its 1-based index.
//
// A range table of exactly one entry may still be aliased by the plan that
// produced it, so it is copied before the first append. Longer tables are
// already query-private and extend in place; the aliasing concern only ever
// applies to the length-1 table. The copy reserves some extra capacity to
// spare the next few appends a reallocation.
func appendRangeTableEntry(qs *QueryState, rel *access.Relation) RangeTableIndex {
	length := len(qs.rangeTable)

	rte := RangeTableEntry{
		RelID:        rel.ID(),
		Kind:         rel.Descriptor().Kind,
		RequiredPerm: PermInsert,
	}

	if length == 1 {
		cp := make([]RangeTableEntry, 1, 16)
		copy(cp, qs.rangeTable)
		qs.rangeTable = cp
	}
	qs.rangeTable = append(qs.rangeTable, rte)

	return RangeTableIndex(length + 1)
}

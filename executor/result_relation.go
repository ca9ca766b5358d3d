package executor

import (
	"github.com/cockroachdb/errors"

	"github.com/hupe1980/hypergo/access"
)

// ResultRelation is the per-relation write-target record: the open relation,
// its range table index, its opened index handles and the statement-level
// expression fields.
//
// The record at ResultRelations[0] belongs to the statement's own table and
// serves as the template for every chunk record; its expression fields are
// inherited by reference, never recomputed.
type ResultRelation struct {
	Relation        *access.Relation
	RangeTableIndex RangeTableIndex

	// Indexes holds the opened index handles, nil until attachIndexes runs.
	Indexes []*access.IndexRelation

	// Shared statement-level fields, borrowed from the template for chunk
	// records. Read-only from this package's perspective.
	CheckOptions  []*CheckOption
	RowFilter     *RowFilter
	Returning     *Projection
	ConflictSet   *Projection
	ConflictWhere *RowFilter
}

// NewTemplateResultRelation registers the statement's own relation as the
// template record at index 0 (range table index 1). It must be called exactly
// once, before any chunk is materialized.
func NewTemplateResultRelation(qs *QueryState, rel *access.Relation, exprs *StatementExprs) (*ResultRelation, error) {
	if len(qs.ResultRelations) != 0 {
		return nil, errors.AssertionFailedf("template result relation already registered")
	}
	if exprs == nil {
		exprs = &StatementExprs{}
	}

	rti := appendRangeTableEntry(qs, rel)

	rr := &ResultRelation{
		Relation:        rel,
		RangeTableIndex: rti,
		CheckOptions:    exprs.CheckOptions,
		RowFilter:       exprs.RowFilter,
		Returning:       exprs.Returning,
		ConflictSet:     exprs.ConflictSet,
		ConflictWhere:   exprs.ConflictWhere,
	}
	qs.ResultRelations = append(qs.ResultRelations, rr)

	return rr, nil
}

// newChunkResultRelation builds the write-target record for a chunk relation.
//
// The statement-level fields are copied from the template by reference: they
// describe statement semantics identical across every chunk, so recomputing
// them would be wasted work and a drift risk.
func newChunkResultRelation(qs *QueryState, rel *access.Relation, rti RangeTableIndex) (*ResultRelation, error) {
	if len(qs.ResultRelations) == 0 {
		return nil, errors.AssertionFailedf("no template result relation registered")
	}
	tmpl := qs.ResultRelations[0]

	rr := &ResultRelation{
		Relation:        rel,
		RangeTableIndex: rti,
		CheckOptions:    tmpl.CheckOptions,
		RowFilter:       tmpl.RowFilter,
		Returning:       tmpl.Returning,
		ConflictSet:     tmpl.ConflictSet,
		ConflictWhere:   tmpl.ConflictWhere,
	}

	return rr, nil
}

// attachIndexes eagerly opens every index the relation declares, so row
// insertions can maintain them. Conflict-aware index opening is not special
// cased here; it stays with the caller.
func attachIndexes(qs *QueryState, rr *ResultRelation) error {
	desc := rr.Relation.Descriptor()
	indexes := make([]*access.IndexRelation, 0, len(desc.Indexes))
	for _, idx := range desc.Indexes {
		ir, err := access.OpenIndex(qs.Store, rr.Relation, idx)
		if err != nil {
			for _, opened := range indexes {
				opened.Close()
			}
			return err
		}
		indexes = append(indexes, ir)
	}
	rr.Indexes = indexes
	return nil
}

// closeIndexes closes all opened index handles of the record.
func closeIndexes(rr *ResultRelation) {
	for _, ir := range rr.Indexes {
		ir.Close()
	}
}

// Package hypergo provides an embedded write engine for time-partitioned
// tables ("hypertables") composed of many physical child tables called
// chunks.
//
// A single logical insert statement may fan rows out across many chunks. For
// each chunk it touches, the engine lazily materializes a full write context
// (range table entry, open relation, open indexes, statement-level expression
// fields inherited from the statement's template) and caches it for the rest
// of the statement. Chunks with row-level security or with trigger classes
// that assume single-table statement semantics are rejected up front.
//
// # Quick Start
//
//	eng, _ := hypergo.Open()
//	defer eng.Close()
//
//	eng.CreateHypertable("metrics", []catalog.ColumnDescriptor{
//	    {Name: "ts", Type: catalog.ColumnTimestamp},
//	    {Name: "value", Type: catalog.ColumnFloat},
//	})
//	eng.CreateChunk("metrics", "metrics_2026_01")
//	eng.CreateChunk("metrics", "metrics_2026_02")
//
//	ctx := context.Background()
//	stmt, _ := eng.NewInsert(ctx, "metrics",
//	    hypergo.WithReturning([]string{"value"}, []string{"value * 2.0"}),
//	)
//	defer stmt.Close()
//
//	stmt.InsertInto(ctx, "metrics_2026_01", core.Row{jan, 1.5})
//	stmt.InsertInto(ctx, "metrics_2026_02", core.Row{feb, 2.5})
//
// Partition routing is deliberately out of scope: callers decide which chunk
// each row belongs to and name it explicitly. The engine's job starts where
// routing ends — materializing, sharing and tearing down the per-chunk write
// machinery safely.
package hypergo

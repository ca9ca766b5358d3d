// Package executor implements the per-statement write path of a hypertable:
// query execution state, range table management and the lazy materialization
// of per-chunk write contexts.
//
// When a single insert statement fans out rows across many chunks, each
// target chunk needs a fully initialized write context: a range table entry,
// an open relation handle, open index handles and the statement-level
// expression fields. ChunkInsertState is that context; NewChunkInsertState
// builds it by splicing the chunk into the statement's shared structures and
// enforcing the policy checks that make routed per-chunk writes safe, and
// Destroy tears it down again.
//
// The package deliberately does not decide which chunk a row belongs to, nor
// when chunks are created; both remain with the caller.
package executor

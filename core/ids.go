package core

// RowID is a dense, heap-assigned identifier for a row within a single
// relation. It is strictly 32-bit, allowing for max 4 Billion rows per
// relation. Used for all hot-path structures (heap ordering, index posting
// sets).
type RowID uint32

// MaxRowID is the maximum possible value for a RowID.
const MaxRowID = ^RowID(0)

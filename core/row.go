package core

// Datum is a single column value. Supported dynamic types are int64, float64,
// string, bool, time.Time and nil (SQL NULL).
type Datum = any

// Row is an ordered list of column values, positionally matched against a
// relation's column descriptors.
type Row []Datum

// Clone returns a shallow copy of the row. Datum values themselves are
// immutable by convention, so a shallow copy is sufficient for handing a row
// to trigger code that may replace it.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	copy(out, r)
	return out
}

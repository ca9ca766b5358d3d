package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hypergo/catalog"
	"github.com/hupe1980/hypergo/core"
)

func newTestIndex(t *testing.T, unique bool) (*IndexRelation, *Relation) {
	t.Helper()

	cat := catalog.New()
	desc, err := cat.CreateTable("metrics", catalog.KindTable, []catalog.ColumnDescriptor{
		{Name: "ts", Type: catalog.ColumnTimestamp},
		{Name: "device", Type: catalog.ColumnString},
		{Name: "value", Type: catalog.ColumnFloat},
	})
	require.NoError(t, err)

	store := NewStore()
	rel, err := OpenRelation(context.Background(), store, cat, NewLockManager(), 1, desc.ID, RowExclusiveLock)
	require.NoError(t, err)

	ir, err := OpenIndex(store, rel, catalog.IndexDescriptor{Name: "by_device", Columns: []string{"device"}, Unique: unique})
	require.NoError(t, err)
	return ir, rel
}

func TestIndexRelation_InsertAndLookup(t *testing.T) {
	ir, _ := newTestIndex(t, false)

	row1 := core.Row{time.Unix(1, 0), "sensor-1", 1.0}
	row2 := core.Row{time.Unix(2, 0), "sensor-1", 2.0}
	row3 := core.Row{time.Unix(3, 0), "sensor-2", 3.0}

	require.NoError(t, ir.InsertEntry(row1, 1))
	require.NoError(t, ir.InsertEntry(row2, 2))
	require.NoError(t, ir.InsertEntry(row3, 3))

	postings, err := ir.Lookup("sensor-1")
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, postings.ToArray())

	postings, err = ir.Lookup("sensor-3")
	require.NoError(t, err)
	assert.True(t, postings.IsEmpty())
}

func TestIndexRelation_UniqueViolation(t *testing.T) {
	ir, _ := newTestIndex(t, true)

	require.NoError(t, ir.InsertEntry(core.Row{time.Unix(1, 0), "sensor-1", 1.0}, 1))

	err := ir.InsertEntry(core.Row{time.Unix(2, 0), "sensor-1", 2.0}, 2)
	require.Error(t, err)

	var uv *ErrUniqueViolation
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, "by_device", uv.Index)
}

func TestIndexRelation_ClosedHandle(t *testing.T) {
	ir, _ := newTestIndex(t, false)

	ir.Close()
	assert.False(t, ir.IsOpen())

	require.Error(t, ir.InsertEntry(core.Row{time.Unix(1, 0), "sensor-1", 1.0}, 1))
	_, err := ir.Lookup("sensor-1")
	require.Error(t, err)
}

func TestOpenIndex_UnknownColumn(t *testing.T) {
	cat := catalog.New()
	desc, err := cat.CreateTable("metrics", catalog.KindTable, []catalog.ColumnDescriptor{
		{Name: "ts", Type: catalog.ColumnTimestamp},
	})
	require.NoError(t, err)

	store := NewStore()
	rel, err := OpenRelation(context.Background(), store, cat, NewLockManager(), 1, desc.ID, RowExclusiveLock)
	require.NoError(t, err)

	_, err = OpenIndex(store, rel, catalog.IndexDescriptor{Name: "bad", Columns: []string{"missing"}})
	require.Error(t, err)
}

func TestIndexRelation_SharedStoreAcrossHandles(t *testing.T) {
	cat := catalog.New()
	tdesc, err := cat.CreateTable("metrics", catalog.KindTable, []catalog.ColumnDescriptor{
		{Name: "device", Type: catalog.ColumnString},
	})
	require.NoError(t, err)

	store := NewStore()
	rel, err := OpenRelation(context.Background(), store, cat, NewLockManager(), 1, tdesc.ID, RowExclusiveLock)
	require.NoError(t, err)
	idesc := catalog.IndexDescriptor{Name: "by_device", Columns: []string{"device"}}

	ir, err := OpenIndex(store, rel, idesc)
	require.NoError(t, err)
	require.NoError(t, ir.InsertEntry(core.Row{"sensor-1"}, 1))
	ir.Close()

	// A fresh handle over the same index store sees prior entries.
	ir2, err := OpenIndex(store, rel, idesc)
	require.NoError(t, err)
	postings, err := ir2.Lookup("sensor-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), postings.GetCardinality())
}

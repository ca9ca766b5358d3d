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

func newTestRelation(t *testing.T) (*Relation, *LockManager) {
	t.Helper()

	cat := catalog.New()
	desc, err := cat.CreateTable("metrics", catalog.KindTable, []catalog.ColumnDescriptor{
		{Name: "ts", Type: catalog.ColumnTimestamp},
		{Name: "device", Type: catalog.ColumnString},
		{Name: "value", Type: catalog.ColumnFloat},
		{Name: "note", Type: catalog.ColumnString, Nullable: true},
	})
	require.NoError(t, err)

	locks := NewLockManager()
	rel, err := OpenRelation(context.Background(), NewStore(), cat, locks, 1, desc.ID, RowExclusiveLock)
	require.NoError(t, err)
	return rel, locks
}

func TestOpenRelation_UnknownID(t *testing.T) {
	_, err := OpenRelation(context.Background(), NewStore(), catalog.New(), NewLockManager(), 1, 42, RowExclusiveLock)
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrRelationNotFound)
}

func TestRelation_InsertAndGet(t *testing.T) {
	rel, _ := newTestRelation(t)

	id, err := rel.Insert(core.Row{time.Unix(0, 0), "sensor-1", 1.5, nil})
	require.NoError(t, err)
	assert.Equal(t, core.RowID(1), id)

	row, ok, err := rel.Get(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "sensor-1", row[1])

	n, err := rel.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRelation_InsertValidation(t *testing.T) {
	rel, _ := newTestRelation(t)

	tests := []struct {
		name string
		row  core.Row
		want string
	}{
		{"TooShort", core.Row{time.Unix(0, 0), "sensor-1"}, "expects 4 columns"},
		{"NullInNonNullable", core.Row{nil, "sensor-1", 1.5, nil}, "null value in column"},
		{"WrongType", core.Row{time.Unix(0, 0), "sensor-1", "high", nil}, "expects Float"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rel.Insert(tt.row)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestRelation_CloseRetainsLockWithNoLock(t *testing.T) {
	rel, locks := newTestRelation(t)

	rel.Close(NoLock)
	assert.False(t, rel.IsOpen())

	mode, held := locks.Holds(1, rel.ID())
	require.True(t, held)
	assert.Equal(t, RowExclusiveLock, mode)

	_, err := rel.Insert(core.Row{time.Unix(0, 0), "sensor-1", 1.5, nil})
	require.Error(t, err)
}

func TestRelation_CloseReleasesLockWithMode(t *testing.T) {
	rel, locks := newTestRelation(t)

	rel.Close(RowExclusiveLock)

	_, held := locks.Holds(1, rel.ID())
	assert.False(t, held)

	// Closing again is a no-op.
	rel.Close(RowExclusiveLock)
}

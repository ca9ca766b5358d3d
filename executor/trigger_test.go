package executor

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hypergo/catalog"
	"github.com/hupe1980/hypergo/core"
)

func TestFireBeforeRowInsert_ReplacesRowInOrder(t *testing.T) {
	desc := &catalog.TableDescriptor{
		Triggers: []catalog.TriggerDescriptor{
			{
				Name: "tag", Timing: catalog.TriggerBefore, Level: catalog.TriggerRow, Event: catalog.TriggerInsert,
				Func: func(_ context.Context, row core.Row) (core.Row, error) {
					out := row.Clone()
					out[0] = out[0].(string) + "-a"
					return out, nil
				},
			},
			{
				Name: "tag2", Timing: catalog.TriggerBefore, Level: catalog.TriggerRow, Event: catalog.TriggerInsert,
				Func: func(_ context.Context, row core.Row) (core.Row, error) {
					out := row.Clone()
					out[0] = out[0].(string) + "-b"
					return out, nil
				},
			},
		},
	}

	out, err := FireBeforeRowInsert(context.Background(), desc, core.Row{"dev"})
	require.NoError(t, err)
	assert.Equal(t, core.Row{"dev-a-b"}, out)
}

func TestFireBeforeRowInsert_NilSuppressesRow(t *testing.T) {
	called := false
	desc := &catalog.TableDescriptor{
		Triggers: []catalog.TriggerDescriptor{
			{
				Name: "suppress", Timing: catalog.TriggerBefore, Level: catalog.TriggerRow, Event: catalog.TriggerInsert,
				Func: func(_ context.Context, _ core.Row) (core.Row, error) { return nil, nil },
			},
			{
				Name: "later", Timing: catalog.TriggerBefore, Level: catalog.TriggerRow, Event: catalog.TriggerInsert,
				Func: func(_ context.Context, row core.Row) (core.Row, error) {
					called = true
					return row, nil
				},
			},
		},
	}

	out, err := FireBeforeRowInsert(context.Background(), desc, core.Row{"dev"})
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.False(t, called, "suppression short-circuits remaining triggers")
}

func TestFireBeforeRowInsert_SkipsOtherClasses(t *testing.T) {
	desc := &catalog.TableDescriptor{
		Triggers: []catalog.TriggerDescriptor{
			{
				Name: "after", Timing: catalog.TriggerAfter, Level: catalog.TriggerRow, Event: catalog.TriggerInsert,
				Func: func(_ context.Context, _ core.Row) (core.Row, error) {
					t.Fatal("AFTER trigger must not fire in the BEFORE phase")
					return nil, nil
				},
			},
			{
				Name: "update", Timing: catalog.TriggerBefore, Level: catalog.TriggerRow, Event: catalog.TriggerUpdate,
				Func: func(_ context.Context, _ core.Row) (core.Row, error) {
					t.Fatal("UPDATE trigger must not fire on insert")
					return nil, nil
				},
			},
		},
	}

	out, err := FireBeforeRowInsert(context.Background(), desc, core.Row{"dev"})
	require.NoError(t, err)
	assert.Equal(t, core.Row{"dev"}, out)
}

func TestFireAfterRowInsert_WrapsTriggerError(t *testing.T) {
	boom := errors.New("boom")
	desc := &catalog.TableDescriptor{
		Triggers: []catalog.TriggerDescriptor{
			{
				Name: "audit", Timing: catalog.TriggerAfter, Level: catalog.TriggerRow, Event: catalog.TriggerInsert,
				Func: func(_ context.Context, _ core.Row) (core.Row, error) { return nil, boom },
			},
		},
	}

	err := FireAfterRowInsert(context.Background(), desc, core.Row{"dev"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, `trigger "audit"`)
}

func TestCheckInsertTriggers_AllowsRowLevel(t *testing.T) {
	noop := func(_ context.Context, row core.Row) (core.Row, error) { return row, nil }
	desc := &catalog.TableDescriptor{
		Triggers: []catalog.TriggerDescriptor{
			{Name: "b", Timing: catalog.TriggerBefore, Level: catalog.TriggerRow, Event: catalog.TriggerInsert, Func: noop},
			{Name: "a", Timing: catalog.TriggerAfter, Level: catalog.TriggerRow, Event: catalog.TriggerInsert, Func: noop},
		},
	}

	assert.NoError(t, checkInsertTriggers(desc))
}

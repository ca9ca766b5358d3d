package executor

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/hupe1980/hypergo/catalog"
	"github.com/hupe1980/hypergo/core"
)

// checkInsertTriggers rejects trigger classes that assume single-table
// statement semantics. A statement-level insert trigger on a chunk would fire
// once per chunk instead of once per statement, and an INSTEAD OF row trigger
// would swallow the routed insert entirely. Row-level BEFORE/AFTER insert
// triggers pass and fire normally per row.
func checkInsertTriggers(desc *catalog.TableDescriptor) error {
	for _, trig := range desc.Triggers {
		if trig.Event != catalog.TriggerInsert {
			continue
		}
		if trig.Timing == catalog.TriggerInsteadOf && trig.Level == catalog.TriggerRow {
			return featureNotSupportedf("insert trigger on chunk table not supported: %s", trig.Name)
		}
		if trig.Level == catalog.TriggerStatement {
			return featureNotSupportedf("insert trigger on chunk table not supported: %s", trig.Name)
		}
	}
	return nil
}

// FireBeforeRowInsert runs BEFORE ROW insert triggers in definition order.
// Each trigger may replace the row; a nil result suppresses the row and
// short-circuits remaining triggers.
func FireBeforeRowInsert(ctx context.Context, desc *catalog.TableDescriptor, row core.Row) (core.Row, error) {
	for _, trig := range desc.Triggers {
		if trig.Timing != catalog.TriggerBefore || trig.Level != catalog.TriggerRow || trig.Event != catalog.TriggerInsert {
			continue
		}
		out, err := trig.Func(ctx, row)
		if err != nil {
			return nil, errors.Wrapf(err, "trigger %q", trig.Name)
		}
		if out == nil {
			return nil, nil
		}
		row = out
	}
	return row, nil
}

// FireAfterRowInsert runs AFTER ROW insert triggers in definition order.
// After triggers are observe-only; their returned row is ignored.
func FireAfterRowInsert(ctx context.Context, desc *catalog.TableDescriptor, row core.Row) error {
	for _, trig := range desc.Triggers {
		if trig.Timing != catalog.TriggerAfter || trig.Level != catalog.TriggerRow || trig.Event != catalog.TriggerInsert {
			continue
		}
		if _, err := trig.Func(ctx, row); err != nil {
			return errors.Wrapf(err, "trigger %q", trig.Name)
		}
	}
	return nil
}

package hypergo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/hypergo"
	"github.com/hupe1980/hypergo/catalog"
)

func TestOpen_Basic(t *testing.T) {
	eng, err := hypergo.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer eng.Close()

	if _, err := eng.CreateHypertable("metrics", []catalog.ColumnDescriptor{
		{Name: "ts", Type: catalog.ColumnTimestamp},
	}); err != nil {
		t.Fatalf("CreateHypertable failed: %v", err)
	}
	if _, err := eng.CreateChunk("metrics", "metrics_jan"); err != nil {
		t.Fatalf("CreateChunk failed: %v", err)
	}
}

func TestEngine_ClosedRejectsOperations(t *testing.T) {
	eng, err := hypergo.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := eng.CreateHypertable("metrics", nil); !errors.Is(err, hypergo.ErrEngineClosed) {
		t.Fatalf("expected ErrEngineClosed, got %v", err)
	}
	if _, err := eng.NewInsert(context.Background(), "metrics"); !errors.Is(err, hypergo.ErrEngineClosed) {
		t.Fatalf("expected ErrEngineClosed, got %v", err)
	}
}

func TestEngine_CloseNilSafe(t *testing.T) {
	var eng *hypergo.Engine
	if err := eng.Close(); err != nil {
		t.Fatalf("Close on nil engine failed: %v", err)
	}
}

func TestEngine_NewInsertValidation(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.NewInsert(ctx, "missing"); !errors.Is(err, hypergo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Chunks are not insert targets on their own.
	if _, err := eng.NewInsert(ctx, "metrics_jan"); err == nil {
		t.Fatal("expected error for non-hypertable target")
	}
}

func TestEngine_Metrics(t *testing.T) {
	metrics := &hypergo.BasicMetricsCollector{}
	eng := newTestEngine(t, hypergo.WithMetricsCollector(metrics))
	ctx := context.Background()

	stmt, err := eng.NewInsert(ctx, "metrics")
	if err != nil {
		t.Fatalf("NewInsert failed: %v", err)
	}

	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	if _, err := stmt.InsertInto(ctx, "metrics_jan", row(jan, "sensor-1", 1.0), row(jan, "sensor-2", 2.0)); err != nil {
		t.Fatalf("InsertInto failed: %v", err)
	}
	if _, err := stmt.InsertInto(ctx, "metrics_feb", row(feb, "sensor-1", 3.0)); err != nil {
		t.Fatalf("InsertInto failed: %v", err)
	}
	if err := stmt.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if got := metrics.ChunkStatesCreated.Load(); got != 2 {
		t.Fatalf("expected 2 chunk states created, got %d", got)
	}
	if got := metrics.ChunkStatesDestroyed.Load(); got != 2 {
		t.Fatalf("expected 2 chunk states destroyed, got %d", got)
	}
	if got := metrics.RowsInserted.Load(); got != 3 {
		t.Fatalf("expected 3 rows inserted, got %d", got)
	}
	if got := metrics.InsertCount.Load(); got != 2 {
		t.Fatalf("expected 2 insert calls, got %d", got)
	}
}

package worker

import (
	"context"
	"testing"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	exportmem "bilancio/internal/export/memory"
	"bilancio/internal/services"
	"bilancio/internal/storage/memory"
)

func seedWorker(t *testing.T) (*RecomputeWorker, *exportmem.Writer, *services.ProjectionService) {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	accID, err := store.CreateAccount(ctx, core.Account{
		Name: "Conto", Type: core.AccountBank, Active: true,
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	_, err = store.CreateTransaction(ctx, core.Transaction{
		Kind:      core.KindIncome,
		Status:    core.StatusConfirmed,
		Amount:    core.Money{Cents: 100000},
		Date:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		AccountID: accID,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	projections := services.NewProjectionService(store, nil)
	exporter := exportmem.NewWriter()
	w := NewRecomputeWorker(projections, nil, exporter, nil, time.Minute)
	return w, exporter, projections
}

func TestHandleRecompute(t *testing.T) {
	w, exporter, projections := seedWorker(t)
	ctx := context.Background()

	msg := amqp.NewRecomputeMessage("2026-09", amqp.ReasonTransactionWrite)
	if err := w.HandleRecompute(ctx, msg); err != nil {
		t.Fatalf("HandleRecompute() error = %v", err)
	}

	reports := exporter.Reports()
	if len(reports) != 1 {
		t.Fatalf("exported reports = %d, want 1", len(reports))
	}
	if reports[0].Totals.Realized.Cents != 100000 {
		t.Errorf("exported Realized = %d, want 100000", reports[0].Totals.Realized.Cents)
	}

	rows, err := projections.Snapshots(ctx, core.Month{Year: 2026, Month: time.September})
	if err != nil {
		t.Fatalf("Snapshots() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("snapshot rows = %d, want 1", len(rows))
	}
}

func TestHandleRecomputeDropsBadMonth(t *testing.T) {
	w, exporter, _ := seedWorker(t)

	msg := amqp.NewRecomputeMessage("settembre", amqp.ReasonPeriodic)
	if err := w.HandleRecompute(context.Background(), msg); err != nil {
		t.Fatalf("HandleRecompute() with bad month should drop, got error %v", err)
	}
	if len(exporter.Reports()) != 0 {
		t.Error("bad month must not produce an export")
	}
}

func TestRunPeriodicTick(t *testing.T) {
	w, exporter, _ := seedWorker(t)
	w.interval = 10 * time.Millisecond
	w.now = func() time.Time { return time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC) }

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := w.Run(ctx)
	if err != nil && err != context.DeadlineExceeded {
		t.Fatalf("Run() error = %v", err)
	}
	if len(exporter.Reports()) == 0 {
		t.Error("periodic tick produced no exports")
	}
}

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/storage/memory"
)

type fakePublisher struct {
	mu         sync.Mutex
	recomputes []amqp.RecomputeMessage
	alerts     []amqp.AlertMessage
}

func (p *fakePublisher) PublishRecompute(_ context.Context, month, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recomputes = append(p.recomputes, amqp.RecomputeMessage{Month: month, Reason: reason})
	return nil
}

func (p *fakePublisher) PublishAlert(_ context.Context, msg *amqp.AlertMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, *msg)
	return nil
}

func seedStore(t *testing.T) (*memory.Store, string) {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	accID, err := store.CreateAccount(ctx, core.Account{
		Name: "Conto", Type: core.AccountBank, Primary: true, Active: true,
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	_, err = store.CreateTransaction(ctx, core.Transaction{
		Kind:      core.KindIncome,
		Status:    core.StatusConfirmed,
		Amount:    core.Money{Cents: 200000},
		Date:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		AccountID: accID,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	_, err = store.CreateTransaction(ctx, core.Transaction{
		Kind:      core.KindExpense,
		Status:    core.StatusPlanned,
		Amount:    core.Money{Cents: 50000},
		Date:      time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		AccountID: accID,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	return store, accID
}

func TestMonthReportUsesCache(t *testing.T) {
	store, _ := seedStore(t)
	reportCache := cache.NewLRU[engine.MonthReport](4, time.Minute)
	svc := NewProjectionService(store, reportCache)
	ctx := context.Background()
	month := core.Month{Year: 2026, Month: time.September}

	report, err := svc.MonthReport(ctx, month)
	if err != nil {
		t.Fatalf("MonthReport() error = %v", err)
	}
	if report.Totals.Projected.Cents != 150000 {
		t.Errorf("Projected = %d, want 150000", report.Totals.Projected.Cents)
	}
	if reportCache.Size() != 1 {
		t.Errorf("cache size = %d, want 1", reportCache.Size())
	}

	// A later write bypassed by the cache would still serve the old report
	// until Invalidate is called.
	if _, err := store.CreateTransaction(ctx, core.Transaction{
		Kind:      core.KindExpense,
		Status:    core.StatusConfirmed,
		Amount:    core.Money{Cents: 10000},
		Date:      time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		AccountID: report.Projections[0].AccountID,
	}); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	cached, err := svc.MonthReport(ctx, month)
	if err != nil {
		t.Fatalf("MonthReport() error = %v", err)
	}
	if cached.Totals.Projected.Cents != 150000 {
		t.Errorf("cached Projected = %d, want stale 150000", cached.Totals.Projected.Cents)
	}

	svc.Invalidate()
	fresh, err := svc.MonthReport(ctx, month)
	if err != nil {
		t.Fatalf("MonthReport() error = %v", err)
	}
	if fresh.Totals.Projected.Cents != 140000 {
		t.Errorf("fresh Projected = %d, want 140000", fresh.Totals.Projected.Cents)
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	store, accID := seedStore(t)
	svc := NewProjectionService(store, nil)
	ctx := context.Background()
	month := core.Month{Year: 2026, Month: time.September}

	report, err := svc.Preview(ctx, month, []SimulationOp{{
		Op: OpAdd,
		Draft: &engine.Draft{
			Kind:      core.KindExpense,
			Status:    core.StatusPlanned,
			Amount:    core.Money{Cents: 30000},
			Date:      time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
			AccountID: accID,
		},
	}})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if report.Totals.Projected.Cents != 120000 {
		t.Errorf("preview Projected = %d, want 120000", report.Totals.Projected.Cents)
	}

	// The store is untouched.
	txs, err := store.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txs) != 2 {
		t.Errorf("stored transactions = %d, want 2", len(txs))
	}
}

func TestPreviewRejectsUnknownOp(t *testing.T) {
	store, _ := seedStore(t)
	svc := NewProjectionService(store, nil)

	_, err := svc.Preview(context.Background(), core.Month{Year: 2026, Month: time.September},
		[]SimulationOp{{Op: "teleport"}})
	if err == nil {
		t.Fatal("Preview() expected error for unknown op")
	}
}

func TestRecomputeStoresSnapshots(t *testing.T) {
	store, accID := seedStore(t)
	svc := NewProjectionService(store, cache.NewLRU[engine.MonthReport](4, time.Minute))
	ctx := context.Background()
	month := core.Month{Year: 2026, Month: time.September}

	if _, err := svc.Recompute(ctx, month); err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}

	rows, err := svc.Snapshots(ctx, month)
	if err != nil {
		t.Fatalf("Snapshots() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(rows))
	}
	if rows[0].AccountID != accID {
		t.Errorf("snapshot account = %s, want %s", rows[0].AccountID, accID)
	}
	if rows[0].Projected.Cents != 150000 {
		t.Errorf("snapshot Projected = %d, want 150000", rows[0].Projected.Cents)
	}
}

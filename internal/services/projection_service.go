package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/storage"
)

var ErrUnknownSimulationOp = errors.New("unknown simulation operation")

// ProjectionService builds month reports from the stored data, caching the
// result per month until a write invalidates it.
type ProjectionService struct {
	store DataStore
	cache cache.Cache[engine.MonthReport]
	now   func() time.Time
}

func NewProjectionService(store DataStore, reportCache cache.Cache[engine.MonthReport]) *ProjectionService {
	return &ProjectionService{
		store: store,
		cache: reportCache,
		now:   time.Now,
	}
}

// MonthReport returns the report for month, from cache when fresh.
func (s *ProjectionService) MonthReport(ctx context.Context, month core.Month) (engine.MonthReport, error) {
	key := month.String()
	if s.cache != nil {
		if report, ok := s.cache.Get(key); ok {
			return report, nil
		}
	}

	report, err := s.buildReport(ctx, month)
	if err != nil {
		return engine.MonthReport{}, err
	}

	if s.cache != nil {
		s.cache.Set(key, report)
	}
	return report, nil
}

// Invalidate drops every cached report. Any write can move money across
// months, so partial invalidation is not worth the bookkeeping.
func (s *ProjectionService) Invalidate() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// SimulationOp is one step of a what-if preview request.
type SimulationOp struct {
	Op    string
	ID    string
	Draft *engine.Draft
	Patch *engine.Patch
	Count int
}

// Simulation op names.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpRemove = "remove"
	OpCancel = "cancel"
	OpSplit  = "split"
)

// Preview runs the ops over a fresh overlay session and reports the month as
// it would look if they were applied. Nothing is persisted and the cache is
// left alone.
func (s *ProjectionService) Preview(ctx context.Context, month core.Month, ops []SimulationOp) (engine.MonthReport, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return engine.MonthReport{}, fmt.Errorf("load transactions: %w", err)
	}

	session := engine.NewSession(txs)
	at := s.now()
	for i, op := range ops {
		switch op.Op {
		case OpAdd:
			if op.Draft == nil {
				return engine.MonthReport{}, fmt.Errorf("op %d: add requires a draft", i)
			}
			if err := session.Add(*op.Draft, at); err != nil {
				return engine.MonthReport{}, fmt.Errorf("op %d: %w", i, err)
			}
		case OpUpdate:
			if op.Patch == nil {
				return engine.MonthReport{}, fmt.Errorf("op %d: update requires a patch", i)
			}
			session.Update(op.ID, *op.Patch)
		case OpRemove:
			session.Remove(op.ID)
		case OpCancel:
			session.Cancel(op.ID, at)
		case OpSplit:
			if err := session.Split(op.ID, op.Count); err != nil {
				return engine.MonthReport{}, fmt.Errorf("op %d: %w", i, err)
			}
		default:
			return engine.MonthReport{}, fmt.Errorf("op %d: %w: %q", i, ErrUnknownSimulationOp, op.Op)
		}
	}

	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return engine.MonthReport{}, fmt.Errorf("load accounts: %w", err)
	}
	budgets, err := s.store.ListBudgets(ctx, month)
	if err != nil {
		return engine.MonthReport{}, fmt.Errorf("load budgets: %w", err)
	}
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return engine.MonthReport{}, fmt.Errorf("load categories: %w", err)
	}

	report, err := engine.BuildMonthReport(accounts, session.Transactions(), budgets, cats, month)
	if err != nil {
		return engine.MonthReport{}, err
	}

	slog.InfoContext(ctx, "Simulation preview built",
		"month", month.String(),
		"ops", len(ops))
	return report, nil
}

// Recompute rebuilds the month report bypassing the cache, stores a snapshot
// of the per-account projections and refreshes the cache entry.
func (s *ProjectionService) Recompute(ctx context.Context, month core.Month) (engine.MonthReport, error) {
	report, err := s.buildReport(ctx, month)
	if err != nil {
		return engine.MonthReport{}, err
	}

	rows := make([]storage.SnapshotRow, 0, len(report.Projections))
	computedAt := s.now().UTC()
	for _, p := range report.Projections {
		rows = append(rows, storage.SnapshotRow{
			Month:          month,
			AccountID:      p.AccountID,
			Realized:       p.Realized,
			PendingIncome:  p.PendingIncome,
			PendingExpense: p.PendingExpenses,
			Projected:      p.Projected,
			ComputedAt:     computedAt,
		})
	}
	if err := s.store.SaveSnapshots(ctx, month, rows); err != nil {
		return engine.MonthReport{}, fmt.Errorf("save snapshots: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(month.String(), report)
	}

	slog.InfoContext(ctx, "Month report recomputed",
		"month", month.String(),
		"accounts", len(report.Projections),
		"budget_alerts", len(report.BudgetAlerts))
	return report, nil
}

// Snapshots returns the last persisted per-account projections for a month.
func (s *ProjectionService) Snapshots(ctx context.Context, month core.Month) ([]storage.SnapshotRow, error) {
	return s.store.ListSnapshots(ctx, month)
}

func (s *ProjectionService) buildReport(ctx context.Context, month core.Month) (engine.MonthReport, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return engine.MonthReport{}, fmt.Errorf("load accounts: %w", err)
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return engine.MonthReport{}, fmt.Errorf("load transactions: %w", err)
	}
	budgets, err := s.store.ListBudgets(ctx, month)
	if err != nil {
		return engine.MonthReport{}, fmt.Errorf("load budgets: %w", err)
	}
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return engine.MonthReport{}, fmt.Errorf("load categories: %w", err)
	}

	return engine.BuildMonthReport(accounts, txs, budgets, cats, month)
}

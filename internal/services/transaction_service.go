package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/engine"
)

// TransactionService handles every write that can move a projection: it
// persists, drops the report cache and asks the worker for a recompute over
// AMQP. Publish failures never fail the request; the data is already saved.
type TransactionService struct {
	store       DataStore
	publisher   Publisher
	projections *ProjectionService
	now         func() time.Time
}

func NewTransactionService(store DataStore, publisher Publisher, projections *ProjectionService) *TransactionService {
	return &TransactionService{
		store:       store,
		publisher:   publisher,
		projections: projections,
		now:         time.Now,
	}
}

func (s *TransactionService) CreateTransaction(ctx context.Context, t core.Transaction) (string, error) {
	id, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	s.afterWrite(ctx, engine.EffectiveDate(t), amqp.ReasonTransactionWrite)
	return id, nil
}

func (s *TransactionService) ConfirmTransaction(ctx context.Context, id string) error {
	at := s.now().UTC()
	if err := s.store.ConfirmTransaction(ctx, id, at); err != nil {
		return fmt.Errorf("confirm transaction: %w", err)
	}

	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to reload confirmed transaction", "transaction_id", id, "error", err)
		s.afterWrite(ctx, at, amqp.ReasonTransactionWrite)
		return nil
	}
	s.afterWrite(ctx, engine.EffectiveDate(tx), amqp.ReasonTransactionWrite)
	return nil
}

func (s *TransactionService) CancelTransaction(ctx context.Context, id string) error {
	at := s.now().UTC()
	tx, getErr := s.store.GetTransaction(ctx, id)
	if err := s.store.CancelTransaction(ctx, id, at); err != nil {
		return fmt.Errorf("cancel transaction: %w", err)
	}

	when := at
	if getErr == nil {
		when = engine.EffectiveDate(tx)
	}
	s.afterWrite(ctx, when, amqp.ReasonTransactionWrite)
	return nil
}

func (s *TransactionService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *TransactionService) CreateAccount(ctx context.Context, a core.Account) (string, error) {
	id, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return "", fmt.Errorf("save account: %w", err)
	}
	s.afterWrite(ctx, s.now(), amqp.ReasonAccountWrite)
	return id, nil
}

func (s *TransactionService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.store.ListAccounts(ctx)
}

func (s *TransactionService) DeactivateAccount(ctx context.Context, id string) error {
	if err := s.store.DeactivateAccount(ctx, id); err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}
	s.afterWrite(ctx, s.now(), amqp.ReasonAccountWrite)
	return nil
}

func (s *TransactionService) UpsertBudget(ctx context.Context, b core.Budget) error {
	if err := s.store.UpsertBudget(ctx, b); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	s.afterWrite(ctx, b.Month.Start(), amqp.ReasonBudgetWrite)
	return nil
}

func (s *TransactionService) ListBudgets(ctx context.Context, month core.Month) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx, month)
}

func (s *TransactionService) CreateCategory(ctx context.Context, c core.Category) (string, error) {
	return s.store.CreateCategory(ctx, c)
}

func (s *TransactionService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

// afterWrite invalidates the report cache and requests an async recompute of
// the month the write lands in.
func (s *TransactionService) afterWrite(ctx context.Context, when time.Time, reason string) {
	if s.projections != nil {
		s.projections.Invalidate()
	}
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not available, skipping recompute message")
		return
	}

	month := core.MonthOf(when)
	if err := s.publisher.PublishRecompute(ctx, month.String(), reason); err != nil {
		slog.ErrorContext(ctx, "Failed to publish recompute message",
			"month", month.String(),
			"reason", reason,
			"error", err)
	}
}

// Close releases the storage connection.
func (s *TransactionService) Close() error {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			return fmt.Errorf("close store: %w", err)
		}
	}
	return nil
}

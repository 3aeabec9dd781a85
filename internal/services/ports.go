// Package services orchestrates the engine, storage, cache and AMQP layers.
package services

import (
	"context"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// DataStore is the persistence surface the services need. Both the SQLite
// repository and the in-memory store satisfy it.
type DataStore interface {
	ListAccounts(ctx context.Context) ([]core.Account, error)
	CreateAccount(ctx context.Context, a core.Account) (string, error)
	DeactivateAccount(ctx context.Context, id string) error

	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (string, error)
	ConfirmTransaction(ctx context.Context, id string, at time.Time) error
	CancelTransaction(ctx context.Context, id string, at time.Time) error

	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (string, error)

	ListBudgets(ctx context.Context, month core.Month) ([]core.Budget, error)
	UpsertBudget(ctx context.Context, b core.Budget) error

	SaveSnapshots(ctx context.Context, month core.Month, rows []storage.SnapshotRow) error
	ListSnapshots(ctx context.Context, month core.Month) ([]storage.SnapshotRow, error)

	Close() error
}

// Publisher is the messaging surface. The AMQP client satisfies it; a nil
// publisher simply skips the async side effects.
type Publisher interface {
	PublishRecompute(ctx context.Context, month, reason string) error
	PublishAlert(ctx context.Context, msg *amqp.AlertMessage) error
}

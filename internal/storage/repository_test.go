package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "bilancio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestAccountRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.CreateAccount(ctx, core.Account{
		Name:           "Conto Corrente",
		Type:           core.AccountBank,
		Primary:        true,
		Active:         true,
		InitialBalance: core.Money{Cents: 150000},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	accounts, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Conto Corrente", accounts[0].Name)
	assert.Equal(t, int64(150000), accounts[0].InitialBalance.Cents)
	assert.True(t, accounts[0].Primary)

	require.NoError(t, repo.DeactivateAccount(ctx, id))
	accounts, err = repo.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestTransactionLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	accID, err := repo.CreateAccount(ctx, core.Account{
		Name: "Conto", Type: core.AccountBank, Active: true,
	})
	require.NoError(t, err)

	due := time.Date(2026, 9, 27, 0, 0, 0, 0, time.UTC)
	txID, err := repo.CreateTransaction(ctx, core.Transaction{
		Kind:        core.KindExpense,
		Status:      core.StatusPlanned,
		Description: "Affitto",
		Amount:      core.Money{Cents: 90000},
		Date:        time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     &due,
		AccountID:   accID,
	})
	require.NoError(t, err)

	got, err := repo.GetTransaction(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusPlanned, got.Status)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, due, *got.DueDate)

	require.NoError(t, repo.ConfirmTransaction(ctx, txID, time.Now().UTC()))
	got, err = repo.GetTransaction(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusConfirmed, got.Status)
	assert.NotNil(t, got.ConfirmedAt)

	// Confirming twice has nothing left to flip.
	err = repo.ConfirmTransaction(ctx, txID, time.Now().UTC())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCancelledRowsLeaveTheListing(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	accID, err := repo.CreateAccount(ctx, core.Account{Name: "Conto", Type: core.AccountBank, Active: true})
	require.NoError(t, err)

	txID, err := repo.CreateTransaction(ctx, core.Transaction{
		Kind:      core.KindExpense,
		Status:    core.StatusPlanned,
		Amount:    core.Money{Cents: 2500},
		Date:      time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		AccountID: accID,
	})
	require.NoError(t, err)

	require.NoError(t, repo.CancelTransaction(ctx, txID, time.Now().UTC()))

	txs, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)

	// Still reachable by id, tombstone intact.
	got, err := repo.GetTransaction(ctx, txID)
	require.NoError(t, err)
	assert.True(t, got.Cancelled())
}

func TestBudgetUpsertOverwrites(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	catID, err := repo.CreateCategory(ctx, core.Category{Name: "Spesa"})
	require.NoError(t, err)

	month := core.Month{Year: 2026, Month: time.September}
	require.NoError(t, repo.UpsertBudget(ctx, core.Budget{
		CategoryID: catID, Month: month, Planned: core.Money{Cents: 40000},
	}))
	require.NoError(t, repo.UpsertBudget(ctx, core.Budget{
		CategoryID: catID, Month: month, Planned: core.Money{Cents: 45000},
	}))

	budgets, err := repo.ListBudgets(ctx, month)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, int64(45000), budgets[0].Planned.Cents)

	other, err := repo.ListBudgets(ctx, month.Next())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSnapshotsReplacePerMonth(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	accID, err := repo.CreateAccount(ctx, core.Account{Name: "Conto", Type: core.AccountBank, Active: true})
	require.NoError(t, err)

	month := core.Month{Year: 2026, Month: time.September}
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.SaveSnapshots(ctx, month, []SnapshotRow{{
		Month: month, AccountID: accID,
		Realized:  core.Money{Cents: 100000},
		Projected: core.Money{Cents: 80000},
		ComputedAt: now,
	}}))
	require.NoError(t, repo.SaveSnapshots(ctx, month, []SnapshotRow{{
		Month: month, AccountID: accID,
		Realized:  core.Money{Cents: 110000},
		Projected: core.Money{Cents: 90000},
		ComputedAt: now,
	}}))

	rows, err := repo.ListSnapshots(ctx, month)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(110000), rows[0].Realized.Cents)
	assert.Equal(t, int64(90000), rows[0].Projected.Cents)
}

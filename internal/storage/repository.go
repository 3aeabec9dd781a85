// Package storage persists the household's accounts, transactions, budgets
// and categories in SQLite, and keeps month-report snapshots for trend views.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateAccount inserts the account, generating an id when missing.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, type, is_reserve, is_primary, is_active, initial_balance_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, string(a.Type), boolInt(a.Reserve), boolInt(a.Primary), boolInt(a.Active), a.InitialBalance.Cents)
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account saved", "id", a.ID, "name", a.Name, "type", a.Type)
	return a.ID, nil
}

// ListAccounts returns every active account, insertion order.
func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, is_reserve, is_primary, is_active, initial_balance_cents
		FROM accounts WHERE is_active = 1 ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		var typ string
		var reserve, primary, active int
		if err := rows.Scan(&a.ID, &a.Name, &typ, &reserve, &primary, &active, &a.InitialBalance.Cents); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(typ)
		a.Reserve = reserve != 0
		a.Primary = primary != 0
		a.Active = active != 0
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// DeactivateAccount soft-deletes an account; its transactions stay.
func (r *SQLiteRepository) DeactivateAccount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateTransaction inserts the transaction, generating an id when missing.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, kind, status, description, amount_cents, date, due_date,
			account_id, to_account_id, category_id, subcategory_id, confirmed_at, cancelled_at,
			installment_group_id, installment_number, installment_total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Kind), string(t.Status), t.Description, t.Amount.Cents,
		t.Date.Format(dateLayout), nullDate(t.DueDate),
		t.AccountID, nullString(t.ToAccountID), nullString(t.CategoryID), nullString(t.SubcategoryID),
		nullTime(t.ConfirmedAt), nullTime(t.CancelledAt),
		nullString(t.InstallmentGroupID), nullInt(t.InstallmentNumber), nullInt(t.InstallmentTotal))
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"kind", t.Kind,
		"status", t.Status,
		"amount_cents", t.Amount.Cents)
	return t.ID, nil
}

// ListTransactions returns every non-cancelled transaction. The engine
// re-filters tombstones anyway; keeping dead rows out of the snapshot just
// trims the working set.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, status, description, amount_cents, date, due_date,
			account_id, to_account_id, category_id, subcategory_id, confirmed_at, cancelled_at,
			installment_group_id, installment_number, installment_total
		FROM transactions
		WHERE status != 'cancelled' AND cancelled_at IS NULL
		ORDER BY date, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// GetTransaction fetches one row by id, cancelled or not.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, kind, status, description, amount_cents, date, due_date,
			account_id, to_account_id, category_id, subcategory_id, confirmed_at, cancelled_at,
			installment_group_id, installment_number, installment_total
		FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

// ConfirmTransaction flips a planned row to confirmed.
func (r *SQLiteRepository) ConfirmTransaction(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET status = 'confirmed', confirmed_at = ?
		WHERE id = ? AND status = 'planned' AND cancelled_at IS NULL`, at, id)
	if err != nil {
		return fmt.Errorf("confirm transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	slog.InfoContext(ctx, "Transaction confirmed", "id", id)
	return nil
}

// CancelTransaction soft-deletes a row with a tombstone.
func (r *SQLiteRepository) CancelTransaction(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET status = 'cancelled', cancelled_at = ?
		WHERE id = ? AND cancelled_at IS NULL`, at, id)
	if err != nil {
		return fmt.Errorf("cancel transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	slog.InfoContext(ctx, "Transaction cancelled", "id", id)
	return nil
}

// UpsertBudget writes the ceiling for (category, subcategory, month).
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (category_id, subcategory_id, month, planned_cents)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (category_id, subcategory_id, month)
		DO UPDATE SET planned_cents = excluded.planned_cents`,
		b.CategoryID, b.SubcategoryID, b.Month.String(), b.Planned.Cents)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

// ListBudgets returns the budgets scoped to one month.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, month core.Month) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category_id, subcategory_id, month, planned_cents
		FROM budgets WHERE month = ? ORDER BY category_id, subcategory_id`, month.String())
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		var monthKey string
		if err := rows.Scan(&b.CategoryID, &b.SubcategoryID, &monthKey, &b.Planned.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if b.Month, err = core.ParseMonth(monthKey); err != nil {
			return nil, fmt.Errorf("budget month: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// CreateCategory inserts a category, generating an id when missing.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, parent_id) VALUES (?, ?, ?)`,
		c.ID, c.Name, nullString(c.ParentID))
	if err != nil {
		return "", fmt.Errorf("create category: %w", err)
	}
	return c.ID, nil
}

// ListCategories returns the whole taxonomy.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, parent_id FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		var parent sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &parent); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.ParentID = parent.String
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// SnapshotRow is one persisted per-account projection line for trend history.
type SnapshotRow struct {
	Month         core.Month
	AccountID     string
	Realized      core.Money
	PendingIncome core.Money
	PendingExpense core.Money
	Projected     core.Money
	ComputedAt    time.Time
}

// SaveSnapshots replaces the stored projection rows for a month.
func (r *SQLiteRepository) SaveSnapshots(ctx context.Context, month core.Month, snapshots []SnapshotRow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM projection_snapshots WHERE month = ?`, month.String()); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	for _, s := range snapshots {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projection_snapshots
				(month, account_id, realized_cents, pending_income_cents, pending_expense_cents, projected_cents, computed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			month.String(), s.AccountID, s.Realized.Cents, s.PendingIncome.Cents,
			s.PendingExpense.Cents, s.Projected.Cents, s.ComputedAt)
		if err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshots: %w", err)
	}

	slog.InfoContext(ctx, "Projection snapshots saved", "month", month.String(), "accounts", len(snapshots))
	return nil
}

// ListSnapshots returns the stored projection rows for a month.
func (r *SQLiteRepository) ListSnapshots(ctx context.Context, month core.Month) ([]SnapshotRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT month, account_id, realized_cents, pending_income_cents, pending_expense_cents, projected_cents, computed_at
		FROM projection_snapshots WHERE month = ? ORDER BY account_id`, month.String())
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []SnapshotRow
	for rows.Next() {
		var s SnapshotRow
		var monthKey string
		if err := rows.Scan(&monthKey, &s.AccountID, &s.Realized.Cents, &s.PendingIncome.Cents,
			&s.PendingExpense.Cents, &s.Projected.Cents, &s.ComputedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if s.Month, err = core.ParseMonth(monthKey); err != nil {
			return nil, fmt.Errorf("snapshot month: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var kind, status, dateStr string
	var dueDate, toAccount, category, subcategory, groupID sql.NullString
	var confirmedAt, cancelledAt sql.NullTime
	var number, total sql.NullInt64

	err := row.Scan(&t.ID, &kind, &status, &t.Description, &t.Amount.Cents, &dateStr, &dueDate,
		&t.AccountID, &toAccount, &category, &subcategory, &confirmedAt, &cancelledAt,
		&groupID, &number, &total)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	t.Kind = core.TransactionKind(kind)
	t.Status = core.TransactionStatus(status)
	if t.Date, err = time.Parse(dateLayout, dateStr); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
	}
	if dueDate.Valid {
		d, err := time.Parse(dateLayout, dueDate.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse due date %q: %w", dueDate.String, err)
		}
		t.DueDate = &d
	}
	t.ToAccountID = toAccount.String
	t.CategoryID = category.String
	t.SubcategoryID = subcategory.String
	if confirmedAt.Valid {
		t.ConfirmedAt = &confirmedAt.Time
	}
	if cancelledAt.Valid {
		t.CancelledAt = &cancelledAt.Time
	}
	t.InstallmentGroupID = groupID.String
	t.InstallmentNumber = int(number.Int64)
	t.InstallmentTotal = int(total.Int64)
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullDate(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}

func nullTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

// Package memory holds an in-memory data store with the same surface as the
// SQLite repository. It backs tests and the zero-config demo mode.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

type Store struct {
	mu           sync.RWMutex
	accounts     []core.Account
	categories   []core.Category
	transactions []core.Transaction
	budgets      map[string]core.Budget
	snapshots    map[string][]storage.SnapshotRow
}

func NewStore() *Store {
	return &Store{
		budgets:   make(map[string]core.Budget),
		snapshots: make(map[string][]storage.SnapshotRow),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateAccount(_ context.Context, a core.Account) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append(s.accounts, a)
	return a.ID, nil
}

func (s *Store) ListAccounts(context.Context) ([]core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) DeactivateAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts[i].Active = false
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, t)
	return t.ID, nil
}

func (s *Store) ListTransactions(context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if !t.Cancelled() {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, sql.ErrNoRows
}

func (s *Store) ConfirmTransaction(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		t := &s.transactions[i]
		if t.ID == id && t.Status == core.StatusPlanned && !t.Cancelled() {
			t.Status = core.StatusConfirmed
			t.ConfirmedAt = &at
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *Store) CancelTransaction(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		t := &s.transactions[i]
		if t.ID == id && !t.Cancelled() {
			t.Status = core.StatusCancelled
			t.CancelledAt = &at
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[budgetKey(b)] = b
	return nil
}

func (s *Store) ListBudgets(_ context.Context, month core.Month) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.Month == month {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CategoryID != out[j].CategoryID {
			return out[i].CategoryID < out[j].CategoryID
		}
		return out[i].SubcategoryID < out[j].SubcategoryID
	})
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, c)
	return c.ID, nil
}

func (s *Store) ListCategories(context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Category, len(s.categories))
	copy(out, s.categories)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) SaveSnapshots(_ context.Context, month core.Month, rows []storage.SnapshotRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]storage.SnapshotRow, len(rows))
	copy(stored, rows)
	s.snapshots[month.String()] = stored
	return nil
}

func (s *Store) ListSnapshots(_ context.Context, month core.Month) ([]storage.SnapshotRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.snapshots[month.String()]
	out := make([]storage.SnapshotRow, len(rows))
	copy(out, rows)
	return out, nil
}

func budgetKey(b core.Budget) string {
	return b.CategoryID + "|" + b.SubcategoryID + "|" + b.Month.String()
}

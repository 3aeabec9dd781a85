package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// TransactionKind distinguishes the three money movements.
	TransactionKind string

	// TransactionStatus is the lifecycle state of a transaction. Planned rows
	// contribute to pending figures, confirmed rows to realized balances,
	// cancelled rows to nothing at all.
	TransactionStatus string
)

const (
	KindIncome   TransactionKind = "income"
	KindExpense  TransactionKind = "expense"
	KindTransfer TransactionKind = "transfer"

	StatusPlanned   TransactionStatus = "planned"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Transaction is a single income, expense or transfer row. Amount is always
// positive; Kind decides whether it adds to or subtracts from a balance.
// DueDate is only meaningful for expenses (bills are bucketed by when they are
// due, income and transfers by when they occur).
type Transaction struct {
	ID          string            `json:"id"`
	Kind        TransactionKind   `json:"kind"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description"`
	Amount      Money             `json:"amount"`
	Date        time.Time         `json:"date"`
	DueDate     *time.Time        `json:"dueDate,omitempty"`
	AccountID   string            `json:"accountId"`
	ToAccountID string            `json:"toAccountId,omitempty"` // set iff Kind == KindTransfer

	CategoryID    string `json:"categoryId,omitempty"` // empty for transfers
	SubcategoryID string `json:"subcategoryId,omitempty"`

	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`

	// Installment bookkeeping, set only for rows produced by a split.
	InstallmentGroupID string `json:"installmentGroupId,omitempty"`
	InstallmentNumber  int    `json:"installmentNumber,omitempty"`
	InstallmentTotal   int    `json:"installmentTotal,omitempty"`
}

var (
	ErrInvalidKind        = errors.New("invalid transaction kind")
	ErrInvalidStatus      = errors.New("invalid transaction status")
	ErrZeroDate           = errors.New("transaction date is required")
	ErrMissingAccount     = errors.New("transaction account is required")
	ErrTransferAccounts   = errors.New("transfer requires source and destination accounts")
	ErrTransferCategory   = errors.New("transfer cannot carry a category")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// Cancelled reports whether the row is dead, by status or by tombstone. The
// engine re-filters on this even when callers claim to have pre-filtered.
func (t Transaction) Cancelled() bool {
	return t.Status == StatusCancelled || t.CancelledAt != nil
}

func (t Transaction) Validate() error {
	switch t.Kind {
	case KindIncome, KindExpense, KindTransfer:
	default:
		return ErrInvalidKind
	}
	switch t.Status {
	case StatusPlanned, StatusConfirmed, StatusCancelled:
	default:
		return ErrInvalidStatus
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrMissingAccount
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if t.Kind == KindTransfer {
		if strings.TrimSpace(t.ToAccountID) == "" || t.AccountID == t.ToAccountID {
			return ErrTransferAccounts
		}
		if t.CategoryID != "" || t.SubcategoryID != "" {
			return ErrTransferCategory
		}
	}
	return nil
}

// Live filters out cancelled rows, preserving order.
func Live(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if !t.Cancelled() {
			out = append(out, t)
		}
	}
	return out
}

package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

// simulatedIDPrefix marks rows that exist only inside an overlay, so they can
// never be confused with persisted ids.
const simulatedIDPrefix = "sim-"

var (
	ErrInstallmentCount = errors.New("installment count must be between 2 and 12")
	ErrNotSimulable     = errors.New("only expenses can be split into installments")
)

// Draft is the minimal shape needed to add a hypothetical transaction to an
// overlay. Unset optional fields stay empty.
type Draft struct {
	Kind          core.TransactionKind
	Status        core.TransactionStatus
	Description   string
	Amount        core.Money
	Date          time.Time
	DueDate       *time.Time
	AccountID     string
	ToAccountID   string
	CategoryID    string
	SubcategoryID string
}

// Patch carries the fields an overlay update may change. Nil pointers leave
// the corresponding field untouched; ClearDueDate removes a due date.
type Patch struct {
	Status        *core.TransactionStatus
	Description   *string
	Amount        *core.Money
	Date          *time.Time
	DueDate       *time.Time
	ClearDueDate  bool
	AccountID     *string
	ToAccountID   *string
	CategoryID    *string
	SubcategoryID *string
	CancelledAt   *time.Time
}

// AddSimulated returns a new collection with a synthetic transaction built
// from the draft appended. The base slice is never modified. "at" stamps
// ConfirmedAt when the draft is already confirmed; the engine itself never
// reads the clock.
func AddSimulated(base []core.Transaction, d Draft, at time.Time) ([]core.Transaction, error) {
	tx := core.Transaction{
		ID:            simulatedIDPrefix + uuid.NewString(),
		Kind:          d.Kind,
		Status:        d.Status,
		Description:   d.Description,
		Amount:        d.Amount,
		Date:          d.Date,
		DueDate:       d.DueDate,
		AccountID:     d.AccountID,
		ToAccountID:   d.ToAccountID,
		CategoryID:    d.CategoryID,
		SubcategoryID: d.SubcategoryID,
	}
	if tx.Status == core.StatusConfirmed {
		tx.ConfirmedAt = &at
	}
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("simulated draft: %w", err)
	}
	out := make([]core.Transaction, 0, len(base)+1)
	out = append(out, base...)
	out = append(out, tx)
	return out, nil
}

// UpdateSimulated returns a copy of base with the matching row shallow-merged
// with the patch. An unknown id is not an error: the copy comes back
// unchanged, mirroring the soft not-found policy of the rest of the engine.
func UpdateSimulated(base []core.Transaction, id string, p Patch) []core.Transaction {
	out := make([]core.Transaction, len(base))
	copy(out, base)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		applyPatch(&out[i], p)
		break
	}
	return out
}

func applyPatch(tx *core.Transaction, p Patch) {
	if p.Status != nil {
		tx.Status = *p.Status
	}
	if p.Description != nil {
		tx.Description = *p.Description
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Date != nil {
		tx.Date = *p.Date
	}
	if p.ClearDueDate {
		tx.DueDate = nil
	} else if p.DueDate != nil {
		tx.DueDate = p.DueDate
	}
	if p.AccountID != nil {
		tx.AccountID = *p.AccountID
	}
	if p.ToAccountID != nil {
		tx.ToAccountID = *p.ToAccountID
	}
	if p.CategoryID != nil {
		tx.CategoryID = *p.CategoryID
	}
	if p.SubcategoryID != nil {
		tx.SubcategoryID = *p.SubcategoryID
	}
	if p.CancelledAt != nil {
		tx.CancelledAt = p.CancelledAt
	}
}

// RemoveSimulated returns a copy of base without the matching row.
func RemoveSimulated(base []core.Transaction, id string) []core.Transaction {
	out := make([]core.Transaction, 0, len(base))
	for _, tx := range base {
		if tx.ID != id {
			out = append(out, tx)
		}
	}
	return out
}

// CancelSimulated marks the matching row cancelled as of "at", leaving every
// other row untouched.
func CancelSimulated(base []core.Transaction, id string, at time.Time) []core.Transaction {
	status := core.StatusCancelled
	return UpdateSimulated(base, id, Patch{Status: &status, CancelledAt: &at})
}

// SplitIntoInstallments replaces the original expense with count planned
// installments sharing a synthetic group id. Amounts are split in equal cent
// portions with the division remainder assigned to the first installment, so
// the installments always sum to the original exactly. Due dates advance one
// clamped calendar month per installment, starting at the original's due date
// (falling back to its date).
func SplitIntoInstallments(base []core.Transaction, original core.Transaction, count int) ([]core.Transaction, error) {
	if count < 2 || count > 12 {
		return nil, fmt.Errorf("%w: got %d", ErrInstallmentCount, count)
	}
	if original.Kind != core.KindExpense {
		return nil, fmt.Errorf("%w: transaction %s is %s", ErrNotSimulable, original.ID, original.Kind)
	}

	portion := original.Amount.Cents / int64(count)
	remainder := original.Amount.Cents % int64(count)

	firstDue := original.Date
	if original.DueDate != nil && !original.DueDate.IsZero() {
		firstDue = *original.DueDate
	}

	groupID := simulatedIDPrefix + uuid.NewString()
	out := RemoveSimulated(base, original.ID)
	for i := 1; i <= count; i++ {
		amount := core.Money{Cents: portion}
		if i == 1 {
			amount.Cents += remainder
		}
		due := core.AddMonthsClamped(firstDue, i-1)
		out = append(out, core.Transaction{
			ID:                 simulatedIDPrefix + uuid.NewString(),
			Kind:               core.KindExpense,
			Status:             core.StatusPlanned,
			Description:        fmt.Sprintf("%s (%d/%d)", original.Description, i, count),
			Amount:             amount,
			Date:               original.Date,
			DueDate:            &due,
			AccountID:          original.AccountID,
			CategoryID:         original.CategoryID,
			SubcategoryID:      original.SubcategoryID,
			InstallmentGroupID: groupID,
			InstallmentNumber:  i,
			InstallmentTotal:   count,
		})
	}
	return out, nil
}

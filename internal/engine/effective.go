// Package engine computes per-account and household balance projections from
// in-memory account and transaction collections, compares spending against
// budgets, and builds non-destructive overlays for what-if simulation.
//
// Everything here is pure: full input in, new result out. The engine never
// reads the wall clock and never touches storage or the network, so callers
// are free to run it repeatedly against whatever snapshot they have.
package engine

import (
	"time"

	"bilancio/internal/core"
)

// EffectiveDate returns the date that buckets a transaction into a month.
// Expenses are tracked by when they are due; income and transfers by when
// they occur, even when a due date is present.
func EffectiveDate(tx core.Transaction) time.Time {
	if tx.Kind == core.KindExpense && tx.DueDate != nil && !tx.DueDate.IsZero() {
		return *tx.DueDate
	}
	return tx.Date
}

// InMonth reports whether the transaction's effective date falls inside the
// given calendar month.
func InMonth(tx core.Transaction, month core.Month) bool {
	return month.Contains(EffectiveDate(tx))
}

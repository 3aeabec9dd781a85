package engine

import (
	"fmt"

	"bilancio/internal/core"
)

// Totals is the element-wise sum of every projection field across all
// accounts in scope.
type Totals struct {
	Realized        core.Money `json:"realizedBalance"`
	Projected       core.Money `json:"projectedBalance"`
	PendingIncome   core.Money `json:"pendingIncome"`
	PendingExpenses core.Money `json:"pendingExpenses"`
}

// Availability is the reserve-adjusted view of what the household can spend.
// Money parked in reserve accounts is still the household's money; it is just
// earmarked, so it leaves the available figure without touching realized
// totals.
type Availability struct {
	Available            core.Money `json:"availableBalance"`
	TransfersToReserve   core.Money `json:"transfersToReserve"`
	TransfersFromReserve core.Money `json:"transfersFromReserve"`
}

// ReduceTotals sums projections into household-wide totals. Empty input
// yields all zeroes.
func ReduceTotals(projections []AccountProjection) Totals {
	var t Totals
	for _, p := range projections {
		t.Realized = t.Realized.Add(p.Realized)
		t.Projected = t.Projected.Add(p.Projected)
		t.PendingIncome = t.PendingIncome.Add(p.PendingIncome)
		t.PendingExpenses = t.PendingExpenses.Add(p.PendingExpenses)
	}
	return t
}

// AvailableBalance answers the household-level question "how much of the base
// balance is actually free to spend this month". It scans confirmed transfers
// effective in the month: moving money into a reserve account reduces
// availability, pulling it back out restores it. Transfers whose two ends
// share reserve status, and transfers with an untracked end, change nothing.
func AvailableBalance(txs []core.Transaction, accounts []core.Account, base core.Money, month core.Month) (Availability, error) {
	byID := make(map[string]core.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	var av Availability
	for _, tx := range txs {
		if tx.Cancelled() || tx.Kind != core.KindTransfer || tx.Status != core.StatusConfirmed {
			continue
		}
		if tx.AccountID == "" || tx.ToAccountID == "" {
			return Availability{}, fmt.Errorf("transaction %s: %w", tx.ID, core.ErrTransferAccounts)
		}
		if !InMonth(tx, month) {
			continue
		}
		src, okSrc := byID[tx.AccountID]
		dst, okDst := byID[tx.ToAccountID]
		if !okSrc || !okDst {
			continue
		}
		switch {
		case !src.Reserve && dst.Reserve:
			av.TransfersToReserve = av.TransfersToReserve.Add(tx.Amount)
		case src.Reserve && !dst.Reserve:
			av.TransfersFromReserve = av.TransfersFromReserve.Add(tx.Amount)
		}
	}
	av.Available = base.Sub(av.TransfersToReserve).Add(av.TransfersFromReserve)
	return av, nil
}

package engine

import (
	"fmt"
	"sort"
	"time"

	"bilancio/internal/core"
)

// PlannedItem is the reduced view of a planned transaction contributing to a
// pending figure.
type PlannedItem struct {
	TransactionID   string    `json:"transactionId"`
	Date            time.Time `json:"date"`
	Description     string    `json:"description"`
	CategoryName    string    `json:"categoryName"`
	SubcategoryName string    `json:"subcategoryName"`
	Amount          core.Money `json:"amount"`
}

// AccountProjection is the computed balance picture of one account for a
// target month.
type AccountProjection struct {
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`

	// Realized sums every confirmed movement touching the account, with no
	// date filter: confirmed means the money has moved or is committed,
	// independent of calendar placement.
	Realized core.Money `json:"realizedBalance"`

	// PendingIncome and PendingExpenses sum planned rows whose effective date
	// falls on or before the end of the target month.
	PendingIncome   core.Money `json:"pendingIncome"`
	PendingExpenses core.Money `json:"pendingExpenses"`

	Projected         core.Money `json:"projectedBalance"`
	NegativeProjected bool       `json:"isNegativeProjected"`

	PlannedIncomes  []PlannedItem `json:"plannedIncomes"`
	PlannedExpenses []PlannedItem `json:"plannedExpenses"`
}

// Aggregate folds the transaction set into one projection per account, input
// order preserved. Cancelled rows are re-filtered defensively; rows touching
// accounts absent from the list are skipped on that side. A transfer missing
// either account id is an input error.
func Aggregate(accounts []core.Account, txs []core.Transaction, month core.Month, cats core.CategoryIndex) ([]AccountProjection, error) {
	projections := make([]AccountProjection, len(accounts))
	byAccount := make(map[string]int, len(accounts))
	for i, a := range accounts {
		projections[i] = AccountProjection{AccountID: a.ID, AccountName: a.Name}
		byAccount[a.ID] = i
	}

	end := month.End()
	for _, tx := range txs {
		if tx.Cancelled() {
			continue
		}
		if tx.Kind == core.KindTransfer && (tx.AccountID == "" || tx.ToAccountID == "") {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, core.ErrTransferAccounts)
		}

		switch tx.Status {
		case core.StatusConfirmed:
			switch tx.Kind {
			case core.KindIncome:
				if i, ok := byAccount[tx.AccountID]; ok {
					projections[i].Realized = projections[i].Realized.Add(tx.Amount)
				}
			case core.KindExpense:
				if i, ok := byAccount[tx.AccountID]; ok {
					projections[i].Realized = projections[i].Realized.Sub(tx.Amount)
				}
			case core.KindTransfer:
				if i, ok := byAccount[tx.AccountID]; ok {
					projections[i].Realized = projections[i].Realized.Sub(tx.Amount)
				}
				if i, ok := byAccount[tx.ToAccountID]; ok {
					projections[i].Realized = projections[i].Realized.Add(tx.Amount)
				}
			}

		case core.StatusPlanned:
			// Planned rows beyond the target month belong to a future month's
			// pending figure. Planned transfers never move money.
			if EffectiveDate(tx).After(end) || tx.Kind == core.KindTransfer {
				continue
			}
			i, ok := byAccount[tx.AccountID]
			if !ok {
				continue
			}
			item := plannedItem(tx, cats)
			switch tx.Kind {
			case core.KindIncome:
				projections[i].PendingIncome = projections[i].PendingIncome.Add(tx.Amount)
				projections[i].PlannedIncomes = append(projections[i].PlannedIncomes, item)
			case core.KindExpense:
				projections[i].PendingExpenses = projections[i].PendingExpenses.Add(tx.Amount)
				projections[i].PlannedExpenses = append(projections[i].PlannedExpenses, item)
			}
		}
	}

	for i := range projections {
		p := &projections[i]
		sortByAmountDesc(p.PlannedIncomes)
		sortByAmountDesc(p.PlannedExpenses)
		p.Projected = p.Realized.Add(p.PendingIncome).Sub(p.PendingExpenses)
		p.NegativeProjected = p.Projected.IsNegative()
	}
	return projections, nil
}

func plannedItem(tx core.Transaction, cats core.CategoryIndex) PlannedItem {
	return PlannedItem{
		TransactionID:   tx.ID,
		Date:            EffectiveDate(tx),
		Description:     tx.Description,
		CategoryName:    cats.Name(tx.CategoryID),
		SubcategoryName: cats.Name(tx.SubcategoryID),
		Amount:          tx.Amount,
	}
}

// sortByAmountDesc orders details biggest-first; ties keep their original
// relative order.
func sortByAmountDesc(items []PlannedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Amount.Cents > items[j].Amount.Cents
	})
}

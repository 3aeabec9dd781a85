package engine

import (
	"bilancio/internal/core"
)

// MonthReport is the full engine output for one month: the result object the
// UI, alerting and export layers consume.
type MonthReport struct {
	Month        core.Month          `json:"month"`
	Projections  []AccountProjection `json:"projections"`
	Totals       Totals              `json:"totals"`
	Availability Availability        `json:"availability"`
	BudgetAlerts []BudgetAlert       `json:"budgetAlerts"`
}

// BuildMonthReport runs the whole pipeline over one snapshot: aggregate per
// account, reduce to totals, derive reserve-adjusted availability from the
// household's realized balance, and evaluate budgets over the month's
// expenses. Budgets carrying a different month are skipped.
func BuildMonthReport(accounts []core.Account, txs []core.Transaction, budgets []core.Budget, cats []core.Category, month core.Month) (MonthReport, error) {
	idx := core.NewCategoryIndex(cats)

	projections, err := Aggregate(accounts, txs, month, idx)
	if err != nil {
		return MonthReport{}, err
	}
	totals := ReduceTotals(projections)

	availability, err := AvailableBalance(txs, accounts, totals.Realized, month)
	if err != nil {
		return MonthReport{}, err
	}

	// The comparator takes whatever set it is given; window the expenses to
	// the report month here, caller-side, as its contract requires.
	monthTxs := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Cancelled() && InMonth(tx, month) {
			monthTxs = append(monthTxs, tx)
		}
	}
	monthBudgets := make([]core.Budget, 0, len(budgets))
	for _, b := range budgets {
		if b.Month.IsZero() || b.Month == month {
			monthBudgets = append(monthBudgets, b)
		}
	}

	return MonthReport{
		Month:        month,
		Projections:  projections,
		Totals:       totals,
		Availability: availability,
		BudgetAlerts: CompareBudgets(monthTxs, monthBudgets, cats),
	}, nil
}

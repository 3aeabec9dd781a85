package engine

import (
	"sort"

	"bilancio/internal/core"
)

// AlertStatus classifies how close spending sits to its budget ceiling.
type AlertStatus string

const (
	AlertOK      AlertStatus = "ok"
	AlertWarning AlertStatus = "warning"
	AlertOver    AlertStatus = "over"
)

// warnPercent is the lowest budget usage worth surfacing to the user.
const warnPercent = 80

// BudgetAlert compares realized plus pending spend against a planned ceiling.
type BudgetAlert struct {
	CategoryID      string      `json:"categoryId"`
	CategoryName    string      `json:"categoryName"`
	SubcategoryID   string      `json:"subcategoryId,omitempty"`
	SubcategoryName string      `json:"subcategoryName,omitempty"`
	Budget          core.Money  `json:"budgetAmount"`
	Realized        core.Money  `json:"realizedAmount"`
	Pending         core.Money  `json:"pendingAmount"`
	Total           core.Money  `json:"totalAmount"`
	PercentUsed     float64     `json:"percentUsed"`
	Status          AlertStatus `json:"status"`
}

// CompareBudgets evaluates every non-zero budget against the expense rows in
// the given set. The set is taken as-is: budgets are evaluated over whatever
// window the caller selected, there is no internal date filtering. A budget
// without a subcategory covers every subcategory of its category. Only
// budgets at or past the warning threshold produce an alert; results are
// ordered by usage, most consumed first.
func CompareBudgets(txs []core.Transaction, budgets []core.Budget, cats []core.Category) []BudgetAlert {
	idx := core.NewCategoryIndex(cats)

	alerts := make([]BudgetAlert, 0, len(budgets))
	for _, b := range budgets {
		if b.Planned.IsZero() {
			continue
		}
		var realized, pending core.Money
		for _, tx := range txs {
			if tx.Cancelled() || tx.Kind != core.KindExpense || tx.CategoryID != b.CategoryID {
				continue
			}
			if b.SubcategoryID != "" && tx.SubcategoryID != b.SubcategoryID {
				continue
			}
			switch tx.Status {
			case core.StatusConfirmed:
				realized = realized.Add(tx.Amount)
			case core.StatusPlanned:
				pending = pending.Add(tx.Amount)
			}
		}

		total := realized.Add(pending)
		pct := total.PercentOf(b.Planned)
		if pct < warnPercent {
			continue
		}
		status := AlertWarning
		if pct > 100 {
			status = AlertOver
		}
		alerts = append(alerts, BudgetAlert{
			CategoryID:      b.CategoryID,
			CategoryName:    idx.Name(b.CategoryID),
			SubcategoryID:   b.SubcategoryID,
			SubcategoryName: idx.Name(b.SubcategoryID),
			Budget:          b.Planned,
			Realized:        realized,
			Pending:         pending,
			Total:           total,
			PercentUsed:     pct,
			Status:          status,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].PercentUsed > alerts[j].PercentUsed
	})
	return alerts
}

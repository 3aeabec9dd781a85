package engine

import (
	"math/rand"
	"strconv"
	"testing"
	"time"

	"bilancio/internal/core"
)

func cents(n int64) core.Money { return core.Money{Cents: n} }

func account(id, name string) core.Account {
	return core.Account{ID: id, Name: name, Type: core.AccountBank, Active: true}
}

var march = core.Month{Year: 2025, Month: time.March}

// Confirmed rows count regardless of calendar placement.
func TestAggregateConfirmedIsDateIndependent(t *testing.T) {
	accounts := []core.Account{account("a1", "Checking")}
	dates := []time.Time{
		date(1999, 1, 1),
		date(2025, 3, 15),
		date(2031, 12, 31),
	}
	for i, d := range dates {
		txs := []core.Transaction{
			{ID: "i1", Kind: core.KindIncome, Status: core.StatusConfirmed, Amount: cents(10000), Date: d, AccountID: "a1"},
			{ID: "e1", Kind: core.KindExpense, Status: core.StatusConfirmed, Amount: cents(2500), Date: d, DueDate: &dates[i], AccountID: "a1"},
		}
		got, err := Aggregate(accounts, txs, march, nil)
		if err != nil {
			t.Fatalf("date %v: %v", d, err)
		}
		if got[0].Realized != cents(7500) {
			t.Fatalf("date %v: realized %v, want 75.00", d, got[0].Realized)
		}
	}
}

// A planned expense belongs to the month of its effective date only.
func TestAggregatePendingIsMonthBounded(t *testing.T) {
	accounts := []core.Account{account("a1", "Checking")}
	txs := []core.Transaction{{
		ID: "e1", Kind: core.KindExpense, Status: core.StatusPlanned,
		Amount: cents(90000), Date: date(2025, 3, 15), AccountID: "a1",
	}}

	got, err := Aggregate(accounts, txs, march, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].PendingExpenses != cents(90000) {
		t.Fatalf("march pending: %v, want 900.00", got[0].PendingExpenses)
	}

	// Placed in april via due date: gone from march, present in april.
	txs[0].DueDate = datePtr(2025, 4, 5)
	got, err = Aggregate(accounts, txs, march, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !got[0].PendingExpenses.IsZero() {
		t.Fatalf("march pending after move: %v, want 0", got[0].PendingExpenses)
	}
	got, err = Aggregate(accounts, txs, march.Next(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].PendingExpenses != cents(90000) {
		t.Fatalf("april pending: %v, want 900.00", got[0].PendingExpenses)
	}
}

// A month view includes planned rows from earlier months that never settled.
func TestAggregatePendingIncludesOverdue(t *testing.T) {
	accounts := []core.Account{account("a1", "Checking")}
	txs := []core.Transaction{{
		ID: "e1", Kind: core.KindExpense, Status: core.StatusPlanned,
		Amount: cents(5000), Date: date(2025, 1, 10), AccountID: "a1",
	}}
	got, err := Aggregate(accounts, txs, march, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].PendingExpenses != cents(5000) {
		t.Fatalf("overdue pending: %v, want 50.00", got[0].PendingExpenses)
	}
}

// Transfers conserve money across tracked accounts.
func TestAggregateTransferConservation(t *testing.T) {
	accounts := []core.Account{account("a1", "Checking"), account("a2", "Savings")}
	amounts := []int64{1, 500, 123456}
	for _, amt := range amounts {
		txs := []core.Transaction{{
			ID: "tr1", Kind: core.KindTransfer, Status: core.StatusConfirmed,
			Amount: cents(amt), Date: date(2025, 3, 2), AccountID: "a1", ToAccountID: "a2",
		}}
		got, err := Aggregate(accounts, txs, march, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got[0].Realized != cents(-amt) || got[1].Realized != cents(amt) {
			t.Fatalf("amount %d: got %v / %v", amt, got[0].Realized, got[1].Realized)
		}
		if sum := got[0].Realized.Add(got[1].Realized); !sum.IsZero() {
			t.Fatalf("amount %d: transfer created money: %v", amt, sum)
		}
	}
}

func TestAggregatePlannedTransferCountsNowhere(t *testing.T) {
	accounts := []core.Account{account("a1", "Checking"), account("a2", "Savings")}
	txs := []core.Transaction{{
		ID: "tr1", Kind: core.KindTransfer, Status: core.StatusPlanned,
		Amount: cents(500), Date: date(2025, 3, 2), AccountID: "a1", ToAccountID: "a2",
	}}
	got, err := Aggregate(accounts, txs, march, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range got {
		if !p.Realized.IsZero() || !p.PendingIncome.IsZero() || !p.PendingExpenses.IsZero() {
			t.Fatalf("planned transfer leaked into %s: %+v", p.AccountID, p)
		}
	}
}

// projected == realized + pendingIncome - pendingExpenses, for random inputs.
func TestAggregateProjectionIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	accounts := []core.Account{account("a1", "A"), account("a2", "B"), account("a3", "C")}
	kinds := []core.TransactionKind{core.KindIncome, core.KindExpense, core.KindTransfer}
	statuses := []core.TransactionStatus{core.StatusPlanned, core.StatusConfirmed, core.StatusCancelled}

	for round := 0; round < 25; round++ {
		txs := make([]core.Transaction, 0, 40)
		for i := 0; i < 40; i++ {
			kind := kinds[rng.Intn(len(kinds))]
			tx := core.Transaction{
				ID:        "t" + strconv.Itoa(round*100+i),
				Kind:      kind,
				Status:    statuses[rng.Intn(len(statuses))],
				Amount:    cents(int64(rng.Intn(100000) + 1)),
				Date:      date(2025, time.Month(rng.Intn(12)+1), rng.Intn(28)+1),
				AccountID: accounts[rng.Intn(len(accounts))].ID,
			}
			if kind == core.KindTransfer {
				tx.ToAccountID = accounts[rng.Intn(len(accounts))].ID
				if tx.ToAccountID == tx.AccountID {
					tx.Kind = core.KindExpense
					tx.ToAccountID = ""
				}
			}
			txs = append(txs, tx)
		}
		got, err := Aggregate(accounts, txs, march, nil)
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range got {
			want := p.Realized.Add(p.PendingIncome).Sub(p.PendingExpenses)
			if p.Projected != want {
				t.Fatalf("round %d account %s: projected %v, want %v", round, p.AccountID, p.Projected, want)
			}
			if p.NegativeProjected != p.Projected.IsNegative() {
				t.Fatalf("round %d account %s: negative flag mismatch", round, p.AccountID)
			}
		}
	}
}

func TestAggregateUnknownAccountIgnored(t *testing.T) {
	accounts := []core.Account{account("a1", "Checking")}
	txs := []core.Transaction{
		{ID: "i1", Kind: core.KindIncome, Status: core.StatusConfirmed, Amount: cents(100), Date: date(2025, 3, 1), AccountID: "ghost"},
		{ID: "tr1", Kind: core.KindTransfer, Status: core.StatusConfirmed, Amount: cents(300), Date: date(2025, 3, 1), AccountID: "ghost", ToAccountID: "a1"},
	}
	got, err := Aggregate(accounts, txs, march, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Only the tracked leg of the transfer lands.
	if got[0].Realized != cents(300) {
		t.Fatalf("realized: %v, want 3.00", got[0].Realized)
	}
}

func TestAggregateEmptyInputs(t *testing.T) {
	got, err := Aggregate(nil, nil, march, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}

	got, err = Aggregate([]core.Account{account("a1", "Checking")}, nil, march, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].Realized.IsZero() || !got[0].Projected.IsZero() {
		t.Fatalf("expected zero projection, got %+v", got)
	}
}

func TestAggregateExcludesCancelled(t *testing.T) {
	accounts := []core.Account{account("a1", "Checking")}
	dead := date(2025, 3, 1)
	txs := []core.Transaction{
		{ID: "c1", Kind: core.KindIncome, Status: core.StatusCancelled, Amount: cents(100), Date: dead, AccountID: "a1"},
		{ID: "c2", Kind: core.KindExpense, Status: core.StatusConfirmed, Amount: cents(100), Date: dead, AccountID: "a1", CancelledAt: &dead},
	}
	got, err := Aggregate(accounts, txs, march, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !got[0].Realized.IsZero() {
		t.Fatalf("cancelled rows leaked: %v", got[0].Realized)
	}
}

func TestAggregateTransferMissingAccountFails(t *testing.T) {
	accounts := []core.Account{account("a1", "Checking")}
	txs := []core.Transaction{{
		ID: "tr1", Kind: core.KindTransfer, Status: core.StatusConfirmed,
		Amount: cents(500), Date: date(2025, 3, 2), AccountID: "a1",
	}}
	if _, err := Aggregate(accounts, txs, march, nil); err == nil {
		t.Fatal("expected error for transfer without destination")
	}
}

func TestAggregatePlannedDetailSortedByAmountDesc(t *testing.T) {
	accounts := []core.Account{account("a1", "Checking")}
	cats := core.CategoryIndex{"c1": "Casa", "s1": "Affitto"}
	txs := []core.Transaction{
		{ID: "e1", Kind: core.KindExpense, Status: core.StatusPlanned, Description: "small", Amount: cents(100), Date: date(2025, 3, 1), AccountID: "a1", CategoryID: "c1", SubcategoryID: "s1"},
		{ID: "e2", Kind: core.KindExpense, Status: core.StatusPlanned, Description: "big", Amount: cents(900), Date: date(2025, 3, 2), AccountID: "a1"},
		{ID: "e3", Kind: core.KindExpense, Status: core.StatusPlanned, Description: "tie-first", Amount: cents(500), Date: date(2025, 3, 3), AccountID: "a1"},
		{ID: "e4", Kind: core.KindExpense, Status: core.StatusPlanned, Description: "tie-second", Amount: cents(500), Date: date(2025, 3, 4), AccountID: "a1"},
	}
	got, err := Aggregate(accounts, txs, march, cats)
	if err != nil {
		t.Fatal(err)
	}
	ids := make([]string, 0, 4)
	for _, it := range got[0].PlannedExpenses {
		ids = append(ids, it.TransactionID)
	}
	want := []string{"e2", "e3", "e4", "e1"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("order: got %v, want %v", ids, want)
		}
	}
	if got[0].PlannedExpenses[3].CategoryName != "Casa" || got[0].PlannedExpenses[3].SubcategoryName != "Affitto" {
		t.Fatalf("category names not resolved: %+v", got[0].PlannedExpenses[3])
	}
}

func TestAggregatePreservesAccountOrder(t *testing.T) {
	accounts := []core.Account{account("z", "Z"), account("a", "A"), account("m", "M")}
	got, err := Aggregate(accounts, nil, march, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, a := range accounts {
		if got[i].AccountID != a.ID {
			t.Fatalf("position %d: got %s, want %s", i, got[i].AccountID, a.ID)
		}
	}
}

package http

import (
	"fmt"
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/services"
)

func (s *Server) handleMonthReport(w http.ResponseWriter, r *http.Request) {
	month, err := monthFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.projections.MonthReport(r.Context(), month)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	month, err := monthFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.projections.Snapshots(r.Context(), month)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	type snapshotDTO struct {
		Month          string `json:"month"`
		AccountID      string `json:"accountId"`
		Realized       int64  `json:"realizedCents"`
		PendingIncome  int64  `json:"pendingIncomeCents"`
		PendingExpense int64  `json:"pendingExpenseCents"`
		Projected      int64  `json:"projectedCents"`
		ComputedAt     string `json:"computedAt"`
	}
	out := make([]snapshotDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, snapshotDTO{
			Month:          row.Month.String(),
			AccountID:      row.AccountID,
			Realized:       row.Realized.Cents,
			PendingIncome:  row.PendingIncome.Cents,
			PendingExpense: row.PendingExpense.Cents,
			Projected:      row.Projected.Cents,
			ComputedAt:     row.ComputedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

type draftRequest struct {
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	DueDate       string `json:"dueDate,omitempty"`
	AccountID     string `json:"accountId"`
	ToAccountID   string `json:"toAccountId,omitempty"`
	CategoryID    string `json:"categoryId,omitempty"`
	SubcategoryID string `json:"subcategoryId,omitempty"`
}

func (d draftRequest) toDraft() (engine.Draft, error) {
	amount, err := core.ParseAmount(d.Amount)
	if err != nil {
		return engine.Draft{}, err
	}
	date, err := parseDate(d.Date)
	if err != nil {
		return engine.Draft{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", d.Date)
	}
	due, err := parseOptionalDate(d.DueDate)
	if err != nil {
		return engine.Draft{}, fmt.Errorf("invalid dueDate %q: expected YYYY-MM-DD", d.DueDate)
	}
	status := core.TransactionStatus(d.Status)
	if d.Status == "" {
		status = core.StatusPlanned
	}
	return engine.Draft{
		Kind:          core.TransactionKind(d.Kind),
		Status:        status,
		Description:   d.Description,
		Amount:        amount,
		Date:          date,
		DueDate:       due,
		AccountID:     d.AccountID,
		ToAccountID:   d.ToAccountID,
		CategoryID:    d.CategoryID,
		SubcategoryID: d.SubcategoryID,
	}, nil
}

type patchRequest struct {
	Status        *string `json:"status,omitempty"`
	Description   *string `json:"description,omitempty"`
	Amount        *string `json:"amount,omitempty"`
	Date          *string `json:"date,omitempty"`
	DueDate       *string `json:"dueDate,omitempty"`
	ClearDueDate  bool    `json:"clearDueDate,omitempty"`
	AccountID     *string `json:"accountId,omitempty"`
	ToAccountID   *string `json:"toAccountId,omitempty"`
	CategoryID    *string `json:"categoryId,omitempty"`
	SubcategoryID *string `json:"subcategoryId,omitempty"`
}

func (p patchRequest) toPatch() (engine.Patch, error) {
	var patch engine.Patch
	if p.Status != nil {
		status := core.TransactionStatus(*p.Status)
		patch.Status = &status
	}
	patch.Description = p.Description
	if p.Amount != nil {
		amount, err := core.ParseAmount(*p.Amount)
		if err != nil {
			return engine.Patch{}, err
		}
		patch.Amount = &amount
	}
	if p.Date != nil {
		date, err := parseDate(*p.Date)
		if err != nil {
			return engine.Patch{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", *p.Date)
		}
		patch.Date = &date
	}
	if p.DueDate != nil {
		due, err := parseDate(*p.DueDate)
		if err != nil {
			return engine.Patch{}, fmt.Errorf("invalid dueDate %q: expected YYYY-MM-DD", *p.DueDate)
		}
		patch.DueDate = &due
	}
	patch.ClearDueDate = p.ClearDueDate
	patch.AccountID = p.AccountID
	patch.ToAccountID = p.ToAccountID
	patch.CategoryID = p.CategoryID
	patch.SubcategoryID = p.SubcategoryID
	return patch, nil
}

type simulationRequest struct {
	Month string `json:"month"`
	Ops   []struct {
		Op    string        `json:"op"`
		ID    string        `json:"id,omitempty"`
		Count int           `json:"count,omitempty"`
		Draft *draftRequest `json:"draft,omitempty"`
		Patch *patchRequest `json:"patch,omitempty"`
	} `json:"ops"`
}

func (s *Server) handleSimulationPreview(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	month, err := core.ParseMonth(req.Month)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid month %q: expected YYYY-MM", req.Month))
		return
	}

	ops := make([]services.SimulationOp, 0, len(req.Ops))
	for i, op := range req.Ops {
		sop := services.SimulationOp{Op: op.Op, ID: op.ID, Count: op.Count}
		if op.Draft != nil {
			draft, err := op.Draft.toDraft()
			if err != nil {
				respondError(w, http.StatusBadRequest, fmt.Sprintf("op %d: %v", i, err))
				return
			}
			sop.Draft = &draft
		}
		if op.Patch != nil {
			patch, err := op.Patch.toPatch()
			if err != nil {
				respondError(w, http.StatusBadRequest, fmt.Sprintf("op %d: %v", i, err))
				return
			}
			sop.Patch = &patch
		}
		ops = append(ops, sop)
	}

	report, err := s.projections.Preview(r.Context(), month, ops)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

type accountRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	Reserve        bool   `json:"isReserve"`
	Primary        bool   `json:"isPrimary"`
	InitialBalance string `json:"initialBalance,omitempty"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var initial core.Money
	if req.InitialBalance != "" {
		parsed, err := core.ParseAmount(req.InitialBalance)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid initialBalance: %v", err))
			return
		}
		initial = parsed
	}

	id, err := s.transactions.CreateAccount(r.Context(), core.Account{
		Name:           req.Name,
		Type:           core.AccountType(req.Type),
		Reserve:        req.Reserve,
		Primary:        req.Primary,
		Active:         true,
		InitialBalance: initial,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.transactions.ListAccounts(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleDeactivateAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.DeactivateAccount(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft, err := req.toDraft()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.transactions.CreateTransaction(r.Context(), core.Transaction{
		Kind:          draft.Kind,
		Status:        draft.Status,
		Description:   draft.Description,
		Amount:        draft.Amount,
		Date:          draft.Date,
		DueDate:       draft.DueDate,
		AccountID:     draft.AccountID,
		ToAccountID:   draft.ToAccountID,
		CategoryID:    draft.CategoryID,
		SubcategoryID: draft.SubcategoryID,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.ListTransactions(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, txs)
}

func (s *Server) handleConfirmTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.ConfirmTransaction(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCancelTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.CancelTransaction(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type budgetRequest struct {
	CategoryID    string `json:"categoryId"`
	SubcategoryID string `json:"subcategoryId,omitempty"`
	Month         string `json:"month"`
	Planned       string `json:"planned"`
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	month, err := core.ParseMonth(req.Month)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid month %q: expected YYYY-MM", req.Month))
		return
	}
	planned, err := core.ParseAmount(req.Planned)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid planned amount: %v", err))
		return
	}

	err = s.transactions.UpsertBudget(r.Context(), core.Budget{
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		Month:         month,
		Planned:       planned,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := monthFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	budgets, err := s.transactions.ListBudgets(r.Context(), month)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, budgets)
}

type categoryRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.transactions.CreateCategory(r.Context(), core.Category{
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.transactions.ListCategories(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cats)
}

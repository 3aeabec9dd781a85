package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/services"
)

const dateLayout = "2006-01-02"

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondServiceError maps storage and validation failures to status codes.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		respondError(w, http.StatusNotFound, "not found")
	case isValidationError(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"url", r.URL.Path,
			"error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidKind,
		core.ErrInvalidStatus,
		core.ErrInvalidAccountType,
		core.ErrTransferAccounts,
		core.ErrTransferCategory,
		core.ErrZeroDate,
		core.ErrMissingAccount,
		core.ErrEmptyAccountName,
		core.ErrEmptyDescription,
		core.ErrDescriptionTooLong,
		core.ErrMissingCategory,
		core.ErrInvalidMonth,
		engine.ErrInstallmentCount,
		engine.ErrNotSimulable,
		services.ErrUnknownSimulationOp,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// monthFromQuery reads the "month" query parameter, defaulting to the current
// calendar month when absent.
func monthFromQuery(r *http.Request) (core.Month, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return core.MonthOf(time.Now()), nil
	}
	month, err := core.ParseMonth(raw)
	if err != nil {
		return core.Month{}, fmt.Errorf("invalid month %q: expected YYYY-MM", raw)
	}
	return month, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

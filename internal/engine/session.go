package engine

import (
	"time"

	"bilancio/internal/core"
)

// SessionState tracks where a simulation session sits in its lifecycle.
type SessionState string

const (
	SessionIdle       SessionState = "idle"
	SessionEditing    SessionState = "editing"
	SessionPreviewing SessionState = "previewing"
	SessionApplied    SessionState = "applied"
	SessionDiscarded  SessionState = "discarded"
)

// Session is a short-lived what-if workspace over a base transaction set. All
// mutations go through the pure overlay functions, so the base collection is
// never touched and Discard is a trivial reset. A Session is not safe for
// concurrent use; callers create one per simulation.
type Session struct {
	base    []core.Transaction
	overlay []core.Transaction
	state   SessionState
}

// NewSession opens a session over base. The slice is shared, not copied:
// every overlay operation already returns a fresh collection.
func NewSession(base []core.Transaction) *Session {
	return &Session{base: base, overlay: base, state: SessionIdle}
}

// State returns the session's lifecycle state.
func (s *Session) State() SessionState { return s.state }

// Transactions returns the current overlay view.
func (s *Session) Transactions() []core.Transaction { return s.overlay }

// Add appends a hypothetical transaction built from the draft.
func (s *Session) Add(d Draft, at time.Time) error {
	next, err := AddSimulated(s.overlay, d, at)
	if err != nil {
		return err
	}
	s.overlay = next
	s.state = SessionEditing
	return nil
}

// Update shallow-merges the patch into the matching overlay row.
func (s *Session) Update(id string, p Patch) {
	s.overlay = UpdateSimulated(s.overlay, id, p)
	s.state = SessionEditing
}

// Remove drops the matching row from the overlay.
func (s *Session) Remove(id string) {
	s.overlay = RemoveSimulated(s.overlay, id)
	s.state = SessionEditing
}

// Cancel marks the matching overlay row cancelled as of "at".
func (s *Session) Cancel(id string, at time.Time) {
	s.overlay = CancelSimulated(s.overlay, id, at)
	s.state = SessionEditing
}

// Split replaces an overlay expense with planned installments.
func (s *Session) Split(id string, count int) error {
	for _, tx := range s.overlay {
		if tx.ID == id {
			next, err := SplitIntoInstallments(s.overlay, tx, count)
			if err != nil {
				return err
			}
			s.overlay = next
			s.state = SessionEditing
			return nil
		}
	}
	// Unknown id: soft no-op, same as the overlay primitives.
	return nil
}

// Preview aggregates the overlay for the target month.
func (s *Session) Preview(accounts []core.Account, month core.Month, cats core.CategoryIndex) ([]AccountProjection, error) {
	projections, err := Aggregate(accounts, s.overlay, month, cats)
	if err != nil {
		return nil, err
	}
	s.state = SessionPreviewing
	return projections, nil
}

// Apply hands the overlay to the caller for persistence and closes the
// session. Persisting is outside the engine's scope.
func (s *Session) Apply() []core.Transaction {
	s.state = SessionApplied
	return s.overlay
}

// Discard drops every overlay change and reverts to the base collection.
func (s *Session) Discard() {
	s.overlay = s.base
	s.state = SessionDiscarded
}

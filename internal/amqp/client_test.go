package amqp

import (
	"testing"
	"time"
)

func TestNewRecomputeMessage(t *testing.T) {
	msg := NewRecomputeMessage("2026-09", ReasonTransactionWrite)

	if msg.Month != "2026-09" {
		t.Errorf("NewRecomputeMessage() Month = %v, want 2026-09", msg.Month)
	}
	if msg.Reason != ReasonTransactionWrite {
		t.Errorf("NewRecomputeMessage() Reason = %v, want %v", msg.Reason, ReasonTransactionWrite)
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewRecomputeMessage() Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("NewRecomputeMessage() Timestamp should be recent")
	}
}

func TestRecomputeMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"month": 202609}`)

	if _, err := RecomputeMessageFromJSON(invalidJSON); err == nil {
		t.Error("RecomputeMessageFromJSON() should fail with invalid JSON")
	}
}

func TestAlertMessage_JSON(t *testing.T) {
	msg := &AlertMessage{
		Month:       "2026-09",
		Kind:        AlertBudgetOver,
		CategoryID:  "cat-1",
		AmountCents: -4200,
		Timestamp:   time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := AlertMessageFromJSON(body)
	if err != nil {
		t.Fatalf("AlertMessageFromJSON() error = %v", err)
	}

	if parsed.Kind != AlertBudgetOver {
		t.Errorf("Parsed Kind = %v, want %v", parsed.Kind, AlertBudgetOver)
	}
	if parsed.AmountCents != -4200 {
		t.Errorf("Parsed AmountCents = %v, want -4200", parsed.AmountCents)
	}
	if parsed.AccountID != "" {
		t.Errorf("Parsed AccountID = %q, want empty", parsed.AccountID)
	}
}

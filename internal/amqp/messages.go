package amqp

import (
	"encoding/json"
	"time"
)

// RecomputeMessage asks the worker to rebuild the projection for one month.
// It carries only the month key; the worker fetches the data itself.
type RecomputeMessage struct {
	Month     string    `json:"month"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Reasons carried on recompute messages.
const (
	ReasonTransactionWrite = "transaction_write"
	ReasonBudgetWrite      = "budget_write"
	ReasonAccountWrite     = "account_write"
	ReasonPeriodic         = "periodic"
)

func NewRecomputeMessage(month, reason string) *RecomputeMessage {
	return &RecomputeMessage{
		Month:     month,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func (m *RecomputeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecomputeMessageFromJSON(data []byte) (*RecomputeMessage, error) {
	var msg RecomputeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// AlertMessage notifies downstream consumers that an account projection went
// negative or a budget ceiling was crossed.
type AlertMessage struct {
	Month       string    `json:"month"`
	Kind        string    `json:"kind"`
	AccountID   string    `json:"accountId,omitempty"`
	CategoryID  string    `json:"categoryId,omitempty"`
	AmountCents int64     `json:"amountCents"`
	Timestamp   time.Time `json:"timestamp"`
}

// Alert kinds.
const (
	AlertNegativeProjection = "negative_projection"
	AlertBudgetOver         = "budget_over"
	AlertBudgetWarning      = "budget_warning"
)

func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

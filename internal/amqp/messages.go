package amqp

import (
	"encoding/json"
	"time"

	"chitieu/internal/core"
	"chitieu/internal/ledger"
)

// BudgetAlertMessage is the wire form of a threshold crossing,
// published for external sinks (the alert worker) to drain.
type BudgetAlertMessage struct {
	Scope     string     `json:"scope"`
	Category  string     `json:"category,omitempty"`
	Spent     core.Money `json:"spent"`
	Limit     core.Money `json:"limit"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewBudgetAlertMessage converts a ledger alert into its wire form.
func NewBudgetAlertMessage(a ledger.Alert) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		Scope:     string(a.Scope),
		Category:  a.Category,
		Spent:     a.Spent,
		Limit:     a.Limit,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON parses a message from JSON bytes.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

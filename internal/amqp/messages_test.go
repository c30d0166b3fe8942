package amqp

import (
	"testing"
	"time"

	"chitieu/internal/core"
	"chitieu/internal/ledger"
)

func TestNewBudgetAlertMessage(t *testing.T) {
	msg := NewBudgetAlertMessage(ledger.Alert{
		Scope:    ledger.ScopeCategory,
		Category: "Food",
		Spent:    core.Money{Cents: 110000},
		Limit:    core.Money{Cents: 100000},
	})

	if msg.Scope != "category" || msg.Category != "Food" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Timestamp.IsZero() || time.Since(msg.Timestamp) > time.Second {
		t.Fatal("timestamp should be recent")
	}
}

func TestBudgetAlertMessageJSON(t *testing.T) {
	msg := &BudgetAlertMessage{
		Scope:     "total",
		Spent:     core.Money{Cents: 105000},
		Limit:     core.Money{Cents: 100000},
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := BudgetAlertMessageFromJSON(data)
	if err != nil {
		t.Fatalf("BudgetAlertMessageFromJSON() error = %v", err)
	}
	if parsed.Scope != msg.Scope || parsed.Spent.Cents != msg.Spent.Cents || parsed.Limit.Cents != msg.Limit.Cents {
		t.Fatalf("round trip mismatch: %+v", parsed)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Fatalf("timestamp mismatch: %v", parsed.Timestamp)
	}
}

func TestBudgetAlertMessageInvalidJSON(t *testing.T) {
	if _, err := BudgetAlertMessageFromJSON([]byte(`{"spent": "abc"}`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

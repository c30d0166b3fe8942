package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-10")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.MonthIndex() != 2 {
		t.Fatalf("expected March 2024 (month index 2), got %d/%d", d.MonthIndex(), d.Year())
	}
	if d.ISO() != "2024-03-10" {
		t.Fatalf("round trip mismatch: %s", d.ISO())
	}

	for _, bad := range []string{"", "10/03/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestDateIn(t *testing.T) {
	d := NewDate(2023, 12, 31)
	if !d.In(11, 2023) {
		t.Fatal("December 2023 should match month index 11")
	}
	if d.In(0, 2024) {
		t.Fatal("December 2023 must not leak into January 2024")
	}
}

func TestTransactionInputValidate(t *testing.T) {
	good := TransactionInput{
		Amount:   Money{Cents: 100},
		Category: "Food",
		Date:     NewDate(2025, 1, 1),
		Type:     Expense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	longNote := make([]byte, 201)
	for i := range longNote {
		longNote[i] = 'x'
	}

	cases := []struct {
		name string
		in   TransactionInput
		want error
	}{
		{"zero amount", TransactionInput{Category: "Food", Date: NewDate(2025, 1, 1), Type: Expense}, ErrInvalidAmount},
		{"blank category", TransactionInput{Amount: Money{Cents: 1}, Category: "   ", Date: NewDate(2025, 1, 1), Type: Expense}, ErrEmptyCategory},
		{"zero date", TransactionInput{Amount: Money{Cents: 1}, Category: "Food", Date: Date{Time: time.Time{}}, Type: Expense}, ErrInvalidDate},
		{"long note", TransactionInput{Amount: Money{Cents: 1}, Category: "Food", Date: NewDate(2025, 1, 1), Note: string(longNote), Type: Expense}, ErrNoteTooLong},
		{"bad type", TransactionInput{Amount: Money{Cents: 1}, Category: "Food", Date: NewDate(2025, 1, 1), Type: "transfer"}, ErrInvalidType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.in.Validate(); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCategoryBudgetValidate(t *testing.T) {
	if err := (CategoryBudget{Category: "Rent", Limit: Money{Cents: 0}}).Validate(); err != nil {
		t.Fatalf("explicit zero limit is valid, got %v", err)
	}
	if err := (CategoryBudget{Category: "Rent", Limit: Money{Cents: -1}}).Validate(); err != ErrInvalidLimit {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
	if err := (CategoryBudget{Category: "", Limit: Money{Cents: 1}}).Validate(); err != ErrEmptyCategory {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}

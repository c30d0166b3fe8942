package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

const (
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
	NotificationSuccess NotificationType = "success"
)

type (
	TransactionType string

	NotificationType string

	Money struct {
		Cents int64
	}

	// Transaction is a single recorded income or expense entry.
	Transaction struct {
		ID       string          `json:"id"`
		Amount   Money           `json:"amount"`
		Category string          `json:"category"`
		Date     Date            `json:"date"`
		Note     string          `json:"note"`
		Type     TransactionType `json:"type"`
	}

	// TransactionInput carries the caller-supplied fields of a new
	// transaction; the store assigns the ID.
	TransactionInput struct {
		Amount   Money           `json:"amount"`
		Category string          `json:"category"`
		Date     Date            `json:"date"`
		Note     string          `json:"note"`
		Type     TransactionType `json:"type"`
	}

	// CategoryBudget is a per-calendar-month spending ceiling for one
	// category. The limit is not date-ranged; it applies to every month.
	CategoryBudget struct {
		Category string `json:"category"`
		Limit    Money  `json:"limit"`
	}

	// Period is a calendar month with at least one expense transaction.
	// Month is zero-based (January = 0).
	Period struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	}
)

var (
	ErrInvalidAmount   = errors.New("amount must be greater than 0")
	ErrInvalidLimit    = errors.New("budget limit cannot be negative")
	ErrEmptyCategory   = errors.New("category is required")
	ErrCategoryTooLong = errors.New("category cannot exceed 50 characters")
	ErrNoteTooLong     = errors.New("note cannot exceed 200 characters")
	ErrInvalidType     = errors.New("type must be expense or income")
	ErrInvalidDate     = errors.New("invalid date")
)

// Date is a calendar date; time-of-day carries no meaning beyond
// month/year extraction.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month (1-12) and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthIndex returns the zero-based month (January = 0).
func (d Date) MonthIndex() int {
	return int(d.Time.Month()) - 1
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// ISO returns the date formatted as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Time.Format("2006-01-02")
}

// In reports whether the date falls in the given zero-based month and year.
func (d Date) In(month, year int) bool {
	return d.MonthIndex() == month && d.Year() == year
}

// MarshalJSON renders the date as an ISO YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

// UnmarshalJSON parses an ISO YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsZero reports whether the amount is zero cents. A zero budget limit
// is the "no budget configured" sentinel in percentage math.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (t TransactionType) Validate() error {
	switch t {
	case Expense, Income:
		return nil
	default:
		return ErrInvalidType
	}
}

// Validate checks a transaction input at the ingestion boundary.
// Malformed records are rejected here, before they reach the store.
func (in TransactionInput) Validate() error {
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if err := ValidateCategory(in.Category); err != nil {
		return err
	}
	if err := in.Date.Validate(); err != nil {
		return err
	}
	if len(in.Note) > 200 {
		return ErrNoteTooLong
	}
	return in.Type.Validate()
}

// ValidateCategory rejects categories that are empty after trimming or
// longer than 50 characters.
func ValidateCategory(category string) error {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return ErrEmptyCategory
	}
	if len(trimmed) > 50 {
		return ErrCategoryTooLong
	}
	return nil
}

func (b CategoryBudget) Validate() error {
	if err := ValidateCategory(b.Category); err != nil {
		return err
	}
	if b.Limit.Cents < 0 {
		return ErrInvalidLimit
	}
	return nil
}

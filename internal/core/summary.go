package core

// CategoryStatus is the per-category row of a monthly summary.
type CategoryStatus struct {
	Category   string  `json:"category"`
	Spent      Money   `json:"spent"`
	Limit      Money   `json:"limit"`
	Percentage float64 `json:"percentage"`
}

// OverBudget names a category whose current spend exceeds its limit.
type OverBudget struct {
	Category string `json:"category"`
	Spent    Money  `json:"spent"`
	Limit    Money  `json:"limit"`
}

// MonthSummary is a compact report for a specific (month, year).
// Month is zero-based.
type MonthSummary struct {
	Month                 int              `json:"month"`
	Year                  int              `json:"year"`
	TotalSpent            Money            `json:"totalSpent"`
	TotalLimit            Money            `json:"totalLimit"`
	TransactionCount      int              `json:"transactionCount"`
	AveragePerTransaction Money            `json:"averagePerTransaction"`
	Categories            []CategoryStatus `json:"categories"`
	OverBudget            []OverBudget     `json:"overBudget"`
}

// MonthComparison is one row of the twelve-month yearly report:
// actual spend against the derived total limit.
type MonthComparison struct {
	Month int   `json:"month"`
	Spent Money `json:"spent"`
	Limit Money `json:"limit"`
	Over  Money `json:"over"`
}

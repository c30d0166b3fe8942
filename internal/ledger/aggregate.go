package ledger

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"chitieu/internal/core"
)

// The aggregation functions recompute from the current records on
// every call. Data volumes are small; correctness over caching.

// TotalCategoryLimit is the derived sum of all budget limits. It is
// the only "total monthly budget" in the model; there is no separate
// global limit field.
func (l *Ledger) TotalCategoryLimit() core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return totalCategoryLimit(l.budgets)
}

// TotalMonthlyExpenses sums expense amounts in the given zero-based
// calendar month and year. Income never participates.
func (l *Ledger) TotalMonthlyExpenses(month, year int) core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return totalMonthlyExpenses(l.transactions, month, year)
}

// TotalExpenses is TotalMonthlyExpenses for the current calendar month.
func (l *Ledger) TotalExpenses() core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	month, year := l.currentPeriod()
	return totalMonthlyExpenses(l.transactions, month, year)
}

// CategoryBudgetLimit returns the configured limit for a category, or
// zero cents when none is set. Presence must be checked separately
// when an explicit zero-limit budget matters.
func (l *Ledger) CategoryBudgetLimit(category string) core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	limit, _ := categoryBudgetLimit(l.budgets, category)
	return limit
}

// TotalCategoryExpenses sums expense amounts for one category in the
// given zero-based month and year.
func (l *Ledger) TotalCategoryExpenses(category string, month, year int) core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return totalCategoryExpenses(l.transactions, category, month, year)
}

// CurrentCategoryExpenses is TotalCategoryExpenses for the current
// calendar month.
func (l *Ledger) CurrentCategoryExpenses(category string) core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	month, year := l.currentPeriod()
	return totalCategoryExpenses(l.transactions, category, month, year)
}

// CategoryExpensePercentage is current-month spend over the category
// limit, as a percentage. A category without a budget yields exactly 0.
func (l *Ledger) CategoryExpensePercentage(category string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	limit, ok := categoryBudgetLimit(l.budgets, category)
	if !ok || limit.IsZero() {
		return 0
	}
	month, year := l.currentPeriod()
	spent := totalCategoryExpenses(l.transactions, category, month, year)
	return spent.PercentageOf(limit)
}

// OverBudgetCategories returns every budgeted category whose
// current-month spend strictly exceeds its limit. No ordering is
// imposed beyond budget insertion order.
func (l *Ledger) OverBudgetCategories() []core.OverBudget {
	l.mu.Lock()
	defer l.mu.Unlock()
	month, year := l.currentPeriod()
	return overBudgetCategories(l.transactions, l.budgets, month, year)
}

// AllUniqueCategories is the union of categories used by expense
// transactions and categories with a budget, deduplicated and sorted
// with Vietnamese collation, case-insensitively.
func (l *Ledger) AllUniqueCategories() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]struct{})
	var out []string
	add := func(c string) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, tx := range l.transactions {
		if tx.Type == core.Expense {
			add(tx.Category)
		}
	}
	for _, b := range l.budgets {
		add(b.Category)
	}

	sortCollated(out, func(s string) string { return s })
	return out
}

// AvailableReportPeriods lists the distinct (month, year) pairs with at
// least one expense transaction, most recent first: year descending,
// then month descending, no secondary key.
func (l *Ledger) AvailableReportPeriods() []core.Period {
	l.mu.Lock()
	defer l.mu.Unlock()
	return availableReportPeriods(l.transactions)
}

// MonthSummary assembles the monthly report: totals, per-category
// status rows, the over-budget subset, and the per-transaction
// average, which is defined as 0 when the month has no expenses.
func (l *Ledger) MonthSummary(month, year int) core.MonthSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	summary := core.MonthSummary{
		Month:      month,
		Year:       year,
		TotalSpent: totalMonthlyExpenses(l.transactions, month, year),
		TotalLimit: totalCategoryLimit(l.budgets),
	}

	for _, tx := range l.transactions {
		if tx.Type == core.Expense && tx.Date.In(month, year) {
			summary.TransactionCount++
		}
	}
	if summary.TransactionCount > 0 {
		summary.AveragePerTransaction = core.Money{
			Cents: summary.TotalSpent.Cents / int64(summary.TransactionCount),
		}
	}

	for _, b := range l.budgets {
		spent := totalCategoryExpenses(l.transactions, b.Category, month, year)
		summary.Categories = append(summary.Categories, core.CategoryStatus{
			Category:   b.Category,
			Spent:      spent,
			Limit:      b.Limit,
			Percentage: spent.PercentageOf(b.Limit),
		})
	}
	summary.OverBudget = overBudgetCategories(l.transactions, l.budgets, month, year)
	return summary
}

// YearlyComparison returns one row per calendar month of the given
// year: spend against the derived total limit, with the over-limit
// remainder clamped at zero.
func (l *Ledger) YearlyComparison(year int) []core.MonthComparison {
	l.mu.Lock()
	defer l.mu.Unlock()

	limit := totalCategoryLimit(l.budgets)
	rows := make([]core.MonthComparison, 12)
	for month := 0; month < 12; month++ {
		spent := totalMonthlyExpenses(l.transactions, month, year)
		over := core.Money{}
		if spent.GreaterThan(limit) {
			over = core.Money{Cents: spent.Cents - limit.Cents}
		}
		rows[month] = core.MonthComparison{Month: month, Spent: spent, Limit: limit, Over: over}
	}
	return rows
}

// CurrentPeriod returns the zero-based month and year of the session
// clock. Callers that default a report to "now" use this rather than
// the wall clock so an injected clock covers them too.
func (l *Ledger) CurrentPeriod() (month, year int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentPeriod()
}

// currentPeriod must be called with l.mu held.
func (l *Ledger) currentPeriod() (month, year int) {
	now := l.now()
	return int(now.Month()) - 1, now.Year()
}

func totalCategoryLimit(budgets []core.CategoryBudget) core.Money {
	var sum core.Money
	for _, b := range budgets {
		sum = sum.Add(b.Limit)
	}
	return sum
}

func categoryBudgetLimit(budgets []core.CategoryBudget, category string) (core.Money, bool) {
	for _, b := range budgets {
		if b.Category == category {
			return b.Limit, true
		}
	}
	return core.Money{}, false
}

func totalMonthlyExpenses(transactions []core.Transaction, month, year int) core.Money {
	var sum core.Money
	for _, tx := range transactions {
		if tx.Type == core.Expense && tx.Date.In(month, year) {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

func totalCategoryExpenses(transactions []core.Transaction, category string, month, year int) core.Money {
	var sum core.Money
	for _, tx := range transactions {
		if tx.Type == core.Expense && tx.Category == category && tx.Date.In(month, year) {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

func overBudgetCategories(transactions []core.Transaction, budgets []core.CategoryBudget, month, year int) []core.OverBudget {
	var out []core.OverBudget
	for _, b := range budgets {
		spent := totalCategoryExpenses(transactions, b.Category, month, year)
		if spent.GreaterThan(b.Limit) {
			out = append(out, core.OverBudget{Category: b.Category, Spent: spent, Limit: b.Limit})
		}
	}
	return out
}

func availableReportPeriods(transactions []core.Transaction) []core.Period {
	seen := make(map[core.Period]struct{})
	var periods []core.Period
	for _, tx := range transactions {
		if tx.Type != core.Expense {
			continue
		}
		p := core.Period{Month: tx.Date.MonthIndex(), Year: tx.Date.Year()}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Year != periods[j].Year {
			return periods[i].Year > periods[j].Year
		}
		return periods[i].Month > periods[j].Month
	})
	return periods
}

// sortCollated orders items by their key using Vietnamese collation,
// ignoring case and diacritic width differences. Category names are
// expected to contain non-ASCII text, so byte order would misplace
// them.
func sortCollated[T any](items []T, key func(T) string) {
	c := collate.New(language.Vietnamese, collate.Loose)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(key(items[i]), key(items[j])) < 0
	})
}

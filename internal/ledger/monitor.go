package ledger

import (
	"fmt"

	"chitieu/internal/core"
)

const (
	ScopeTotal    AlertScope = "total"
	ScopeCategory AlertScope = "category"
)

// AlertScope says which limit a threshold crossing was measured
// against: the derived total of all budgets, or one category's budget.
type AlertScope string

// Alert describes a budget threshold crossing. Alerts feed the
// notification queue synchronously and may additionally be published
// to external sinks by the caller.
type Alert struct {
	Scope    AlertScope `json:"scope"`
	Category string     `json:"category,omitempty"`
	Spent    core.Money `json:"spent"`
	Limit    core.Money `json:"limit"`
}

// checkThresholds runs the two budget checks for a just-added expense,
// in fixed order: total first, then the transaction's category. Both
// may fire on the same addition; neither fires when its limit is zero
// (unconfigured). Totals already include the new transaction, so a
// crossing fires on exactly the addition that pushes the cumulative
// sum past the limit.
//
// Must be called with l.mu held.
func (l *Ledger) checkThresholds(tx core.Transaction) []Alert {
	month, year := l.currentPeriod()
	var alerts []Alert

	totalLimit := totalCategoryLimit(l.budgets)
	if !totalLimit.IsZero() {
		total := totalMonthlyExpenses(l.transactions, month, year)
		if total.GreaterThan(totalLimit) {
			alerts = append(alerts, Alert{Scope: ScopeTotal, Spent: total, Limit: totalLimit})
			l.pushNotification(
				fmt.Sprintf("You have spent %s this month, exceeding the total monthly budget!", total),
				core.NotificationError,
			)
		}
	}

	limit, ok := categoryBudgetLimit(l.budgets, tx.Category)
	if ok && !limit.IsZero() {
		spent := totalCategoryExpenses(l.transactions, tx.Category, month, year)
		if spent.GreaterThan(limit) {
			alerts = append(alerts, Alert{Scope: ScopeCategory, Category: tx.Category, Spent: spent, Limit: limit})
			l.pushNotification(
				fmt.Sprintf("Budget exceeded for category %q! (%s / %s)", tx.Category, spent, limit),
				core.NotificationWarning,
			)
		}
	}

	return alerts
}

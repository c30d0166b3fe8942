// Package ledger holds the authoritative in-memory transaction and
// budget records for one user session and derives every aggregate the
// presentation layers consume.
//
// A Ledger is an explicit per-session object: construct one per user
// session and inject it, never share a package-level instance. One
// mutex guards each mutation together with the threshold evaluation it
// triggers, so the monitor never observes a partially applied add.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chitieu/internal/core"
	"chitieu/internal/notify"
)

var (
	ErrDuplicateBudget     = errors.New("budget for this category already exists")
	ErrBudgetNotFound      = errors.New("budget not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Notifier receives the user-facing messages the ledger emits on
// removals and threshold crossings. *notify.Queue satisfies it.
type Notifier interface {
	Push(message string, typ core.NotificationType) notify.Notification
}

// Ledger is the record store for one session.
type Ledger struct {
	mu           sync.Mutex
	transactions []core.Transaction // newest first
	budgets      []core.CategoryBudget
	lastDate     core.Date

	notifier Notifier
	now      func() time.Time
	newID    func() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithNotifier routes removal and threshold notifications to q.
func WithNotifier(q Notifier) Option {
	return func(l *Ledger) { l.notifier = q }
}

// WithClock overrides the current-time source. Tests use this to pin
// "the current calendar month".
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides transaction id assignment.
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) { l.newID = gen }
}

// New creates an empty per-session ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the ledger contents with a persisted snapshot. No
// notifications fire and no thresholds are evaluated.
func (l *Ledger) Load(transactions []core.Transaction, budgets []core.CategoryBudget) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.transactions = append([]core.Transaction(nil), transactions...)
	l.budgets = append([]core.CategoryBudget(nil), budgets...)
	for _, tx := range transactions {
		if l.lastDate.IsZero() || tx.Date.After(l.lastDate.Time) {
			l.lastDate = tx.Date
		}
	}
}

// Reset drops every transaction and budget.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.transactions = nil
	l.budgets = nil
	l.lastDate = core.Date{}
}

// AddTransaction validates and records a transaction, assigns its id,
// and evaluates budget thresholds for expense entries. The returned
// alerts describe the crossings that fired; the matching notifications
// have already been pushed.
func (l *Ledger) AddTransaction(in core.TransactionInput) (core.Transaction, []Alert, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx := core.Transaction{
		ID:       l.newID(),
		Amount:   in.Amount,
		Category: strings.TrimSpace(in.Category),
		Date:     in.Date,
		Note:     strings.TrimSpace(in.Note),
		Type:     in.Type,
	}

	// Newest first, matching display order.
	l.transactions = append([]core.Transaction{tx}, l.transactions...)
	l.lastDate = tx.Date

	var alerts []Alert
	if tx.Type == core.Expense {
		alerts = l.checkThresholds(tx)
	}
	return tx, alerts, nil
}

// AddExpense is the dedicated expense-entry flow: the type is forced
// to expense regardless of input.
func (l *Ledger) AddExpense(in core.TransactionInput) (core.Transaction, []Alert, error) {
	in.Type = core.Expense
	return l.AddTransaction(in)
}

// TransactionPatch updates individual transaction fields; nil fields
// keep their current value.
type TransactionPatch struct {
	Amount   *core.Money
	Category *string
	Date     *core.Date
	Note     *string
	Type     *core.TransactionType
}

// UpdateTransaction applies a patch to an existing transaction. The
// patched record is re-validated as a whole before it replaces the
// old one. Thresholds are not re-evaluated on update.
func (l *Ledger) UpdateTransaction(id string, patch TransactionPatch) (core.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, tx := range l.transactions {
		if tx.ID != id {
			continue
		}
		updated := tx
		if patch.Amount != nil {
			updated.Amount = *patch.Amount
		}
		if patch.Category != nil {
			updated.Category = strings.TrimSpace(*patch.Category)
		}
		if patch.Date != nil {
			updated.Date = *patch.Date
		}
		if patch.Note != nil {
			updated.Note = strings.TrimSpace(*patch.Note)
		}
		if patch.Type != nil {
			updated.Type = *patch.Type
		}

		check := core.TransactionInput{
			Amount:   updated.Amount,
			Category: updated.Category,
			Date:     updated.Date,
			Note:     updated.Note,
			Type:     updated.Type,
		}
		if err := check.Validate(); err != nil {
			return core.Transaction{}, err
		}

		l.transactions[i] = updated
		return updated, nil
	}
	return core.Transaction{}, ErrTransactionNotFound
}

// RemoveTransaction deletes the transaction with the given id and
// pushes a success notification naming its category. An unknown id is
// a silent no-op; the removal contract is idempotent.
func (l *Ledger) RemoveTransaction(id string) bool {
	l.mu.Lock()
	var removed *core.Transaction
	for i, tx := range l.transactions {
		if tx.ID == id {
			removed = &tx
			l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
			break
		}
	}
	l.mu.Unlock()

	if removed == nil {
		return false
	}
	l.pushNotification(
		fmt.Sprintf("Transaction %q removed successfully.", removed.Category),
		core.NotificationSuccess,
	)
	return true
}

// AddCategoryBudget creates a budget for a category that has none yet.
// Creating a second budget for the same category is a caller-visible
// error; update must be used instead.
func (l *Ledger) AddCategoryBudget(category string, limit core.Money) error {
	budget := core.CategoryBudget{Category: strings.TrimSpace(category), Limit: limit}
	if err := budget.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, b := range l.budgets {
		if b.Category == budget.Category {
			return ErrDuplicateBudget
		}
	}
	l.budgets = append(l.budgets, budget)
	return nil
}

// UpdateCategoryBudget changes the limit of an existing budget and
// optionally renames its category. A rename that would collide with a
// different budget is rejected; matching against the budget being
// updated is not a collision.
func (l *Ledger) UpdateCategoryBudget(category, newCategory string, limit core.Money) error {
	category = strings.TrimSpace(category)
	newCategory = strings.TrimSpace(newCategory)
	if newCategory == "" {
		newCategory = category
	}

	updated := core.CategoryBudget{Category: newCategory, Limit: limit}
	if err := updated.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, b := range l.budgets {
		if b.Category == category {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrBudgetNotFound
	}
	if newCategory != category {
		for i, b := range l.budgets {
			if i != idx && b.Category == newCategory {
				return ErrDuplicateBudget
			}
		}
	}
	l.budgets[idx] = updated
	return nil
}

// RemoveCategoryBudget deletes the budget for a category if present and
// pushes a success notification. An unknown category is a no-op.
func (l *Ledger) RemoveCategoryBudget(category string) bool {
	category = strings.TrimSpace(category)

	l.mu.Lock()
	found := false
	for i, b := range l.budgets {
		if b.Category == category {
			l.budgets = append(l.budgets[:i], l.budgets[i+1:]...)
			found = true
			break
		}
	}
	l.mu.Unlock()

	if !found {
		return false
	}
	l.pushNotification(
		fmt.Sprintf("Budget for category %q removed successfully.", category),
		core.NotificationSuccess,
	)
	return true
}

// TransactionFilter narrows Transactions output. Zero values mean
// "no constraint"; From and To are inclusive.
type TransactionFilter struct {
	Category string
	Type     core.TransactionType
	From     core.Date
	To       core.Date
}

// Transactions returns a filtered copy of the record list, sorted by
// date descending with insertion recency as the tie break.
func (l *Ledger) Transactions(filter TransactionFilter) []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]core.Transaction, 0, len(l.transactions))
	for _, tx := range l.transactions {
		if filter.Category != "" && tx.Category != filter.Category {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if !filter.From.IsZero() && tx.Date.Before(filter.From.Time) {
			continue
		}
		if !filter.To.IsZero() && tx.Date.After(filter.To.Time) {
			continue
		}
		out = append(out, tx)
	}

	// The backing slice is newest-insertion-first, so a stable sort by
	// date keeps recent entries ahead within the same day.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// Budgets returns a copy of the budget list in collated category order.
func (l *Ledger) Budgets() []core.CategoryBudget {
	l.mu.Lock()
	out := append([]core.CategoryBudget(nil), l.budgets...)
	l.mu.Unlock()

	sortCollated(out, func(b core.CategoryBudget) string { return b.Category })
	return out
}

// LastTransactionDate is the date of the most recently added
// transaction, kept as a form-prefill convenience.
func (l *Ledger) LastTransactionDate() core.Date {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastDate
}

func (l *Ledger) pushNotification(message string, typ core.NotificationType) {
	if l.notifier == nil {
		return
	}
	l.notifier.Push(message, typ)
}

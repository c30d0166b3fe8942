// Package services wires the session ledger to its external
// collaborators: the SQLite snapshot and the AMQP alert exchange. The
// ledger stays authoritative; persistence and publishing are
// best-effort side channels that never fail a mutation that already
// took effect in memory.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"chitieu/internal/core"
	"chitieu/internal/ledger"
)

// Repository is the snapshot store behind the ledger. A nil Repository
// means memory-only operation.
type Repository interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	InsertTransaction(ctx context.Context, tx core.Transaction) error
	UpdateTransaction(ctx context.Context, tx core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	ListBudgets(ctx context.Context) ([]core.CategoryBudget, error)
	InsertBudget(ctx context.Context, b core.CategoryBudget) error
	UpdateBudget(ctx context.Context, category string, b core.CategoryBudget) error
	DeleteBudget(ctx context.Context, category string) error
	DeleteAll(ctx context.Context) error
	Close() error
}

// AlertPublisher forwards threshold crossings to an external sink.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, alert ledger.Alert) error
	Close() error
}

// Tracker orchestrates one session's ledger, snapshot, and alerts.
type Tracker struct {
	ledger *ledger.Ledger
	repo   Repository
	alerts AlertPublisher
}

func NewTracker(l *ledger.Ledger, repo Repository, alerts AlertPublisher) *Tracker {
	return &Tracker{ledger: l, repo: repo, alerts: alerts}
}

// Ledger exposes the read accessors of the underlying record store.
func (t *Tracker) Ledger() *ledger.Ledger {
	return t.ledger
}

// Hydrate loads the persisted snapshot into the ledger. Without a
// repository the session simply starts empty.
func (t *Tracker) Hydrate(ctx context.Context) error {
	if t.repo == nil {
		return nil
	}
	txs, err := t.repo.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	budgets, err := t.repo.ListBudgets(ctx)
	if err != nil {
		return fmt.Errorf("load budgets: %w", err)
	}
	t.ledger.Load(txs, budgets)
	slog.InfoContext(ctx, "Session hydrated", "transactions", len(txs), "budgets", len(budgets))
	return nil
}

// AddTransaction records a transaction (income allowed), persists it,
// and publishes any threshold alerts that fired. The alerts are also
// returned so the caller can surface them inline.
func (t *Tracker) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, []ledger.Alert, error) {
	tx, alerts, err := t.ledger.AddTransaction(in)
	if err != nil {
		return core.Transaction{}, nil, err
	}
	t.persistInsert(ctx, tx)
	t.publishAlerts(ctx, alerts)
	return tx, alerts, nil
}

// AddExpense is the dedicated expense-entry flow.
func (t *Tracker) AddExpense(ctx context.Context, in core.TransactionInput) (core.Transaction, []ledger.Alert, error) {
	tx, alerts, err := t.ledger.AddExpense(in)
	if err != nil {
		return core.Transaction{}, nil, err
	}
	t.persistInsert(ctx, tx)
	t.publishAlerts(ctx, alerts)
	return tx, alerts, nil
}

// UpdateTransaction patches a transaction and rewrites its snapshot row.
func (t *Tracker) UpdateTransaction(ctx context.Context, id string, patch ledger.TransactionPatch) (core.Transaction, error) {
	tx, err := t.ledger.UpdateTransaction(id, patch)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.repo != nil {
		if err := t.repo.UpdateTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to persist transaction update", "id", id, "error", err)
		}
	}
	return tx, nil
}

// RemoveTransaction deletes from the ledger and the snapshot. Unknown
// ids are a quiet no-op in both.
func (t *Tracker) RemoveTransaction(ctx context.Context, id string) bool {
	removed := t.ledger.RemoveTransaction(id)
	if t.repo != nil {
		if err := t.repo.DeleteTransaction(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to persist transaction removal", "id", id, "error", err)
		}
	}
	return removed
}

// AddCategoryBudget creates a budget; duplicates surface to the caller.
// The category is canonicalized here, before the ledger and the
// snapshot see it, so both stores hold the same name.
func (t *Tracker) AddCategoryBudget(ctx context.Context, category string, limit core.Money) error {
	category = strings.TrimSpace(category)
	if err := t.ledger.AddCategoryBudget(category, limit); err != nil {
		return err
	}
	if t.repo != nil {
		b := core.CategoryBudget{Category: category, Limit: limit}
		if err := t.repo.InsertBudget(ctx, b); err != nil {
			slog.ErrorContext(ctx, "Failed to persist budget", "category", category, "error", err)
		}
	}
	return nil
}

// UpdateCategoryBudget updates or renames a budget. Both names are
// canonicalized so the snapshot row is keyed and rewritten exactly as
// the ledger stores it.
func (t *Tracker) UpdateCategoryBudget(ctx context.Context, category, newCategory string, limit core.Money) error {
	category = strings.TrimSpace(category)
	newCategory = strings.TrimSpace(newCategory)
	if err := t.ledger.UpdateCategoryBudget(category, newCategory, limit); err != nil {
		return err
	}
	if t.repo != nil {
		name := newCategory
		if name == "" {
			name = category
		}
		b := core.CategoryBudget{Category: name, Limit: limit}
		if err := t.repo.UpdateBudget(ctx, category, b); err != nil {
			slog.ErrorContext(ctx, "Failed to persist budget update", "category", category, "error", err)
		}
	}
	return nil
}

// RemoveCategoryBudget removes a budget if present.
func (t *Tracker) RemoveCategoryBudget(ctx context.Context, category string) bool {
	category = strings.TrimSpace(category)
	removed := t.ledger.RemoveCategoryBudget(category)
	if t.repo != nil {
		if err := t.repo.DeleteBudget(ctx, category); err != nil {
			slog.ErrorContext(ctx, "Failed to persist budget removal", "category", category, "error", err)
		}
	}
	return removed
}

// Reset clears the session records and the persisted snapshot.
func (t *Tracker) Reset(ctx context.Context) error {
	t.ledger.Reset()
	if t.repo != nil {
		if err := t.repo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear snapshot: %w", err)
		}
	}
	slog.InfoContext(ctx, "Session reset")
	return nil
}

func (t *Tracker) persistInsert(ctx context.Context, tx core.Transaction) {
	if t.repo == nil {
		return
	}
	if err := t.repo.InsertTransaction(ctx, tx); err != nil {
		// The ledger already holds the record; losing the snapshot row
		// must not fail the request.
		slog.ErrorContext(ctx, "Failed to persist transaction", "id", tx.ID, "error", err)
	}
}

func (t *Tracker) publishAlerts(ctx context.Context, alerts []ledger.Alert) {
	if t.alerts == nil || len(alerts) == 0 {
		return
	}
	for _, a := range alerts {
		if err := t.alerts.PublishBudgetAlert(ctx, a); err != nil {
			slog.ErrorContext(ctx, "Failed to publish budget alert",
				"scope", string(a.Scope), "category", a.Category, "error", err)
		}
	}
}

// Close closes the snapshot store and the alert publisher.
func (t *Tracker) Close() error {
	var errs []error

	if t.repo != nil {
		if err := t.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if t.alerts != nil {
		if err := t.alerts.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close tracker: %v", errs)
	}
	return nil
}

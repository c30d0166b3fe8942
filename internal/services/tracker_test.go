package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"chitieu/internal/core"
	"chitieu/internal/ledger"
	"chitieu/internal/notify"
)

type fakeRepo struct {
	transactions []core.Transaction
	budgets      []core.CategoryBudget
	insertErr    error
	closed       bool
}

func (f *fakeRepo) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return f.transactions, nil
}

func (f *fakeRepo) InsertTransaction(ctx context.Context, tx core.Transaction) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.transactions = append(f.transactions, tx)
	return nil
}

func (f *fakeRepo) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	for i := range f.transactions {
		if f.transactions[i].ID == tx.ID {
			f.transactions[i] = tx
		}
	}
	return nil
}

func (f *fakeRepo) DeleteTransaction(ctx context.Context, id string) error {
	kept := f.transactions[:0]
	for _, tx := range f.transactions {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	f.transactions = kept
	return nil
}

func (f *fakeRepo) ListBudgets(ctx context.Context) ([]core.CategoryBudget, error) {
	return f.budgets, nil
}

func (f *fakeRepo) InsertBudget(ctx context.Context, b core.CategoryBudget) error {
	f.budgets = append(f.budgets, b)
	return nil
}

func (f *fakeRepo) UpdateBudget(ctx context.Context, category string, b core.CategoryBudget) error {
	for i := range f.budgets {
		if f.budgets[i].Category == category {
			f.budgets[i] = b
		}
	}
	return nil
}

func (f *fakeRepo) DeleteBudget(ctx context.Context, category string) error {
	kept := f.budgets[:0]
	for _, b := range f.budgets {
		if b.Category != category {
			kept = append(kept, b)
		}
	}
	f.budgets = kept
	return nil
}

func (f *fakeRepo) DeleteAll(ctx context.Context) error {
	f.transactions = nil
	f.budgets = nil
	return nil
}

func (f *fakeRepo) Close() error {
	f.closed = true
	return nil
}

type fakePublisher struct {
	published []ledger.Alert
	err       error
}

func (f *fakePublisher) PublishBudgetAlert(ctx context.Context, alert ledger.Alert) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, alert)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func newTestTracker(repo Repository, alerts AlertPublisher) *Tracker {
	l := ledger.New(
		ledger.WithNotifier(notify.NewQueue(time.Minute)),
		ledger.WithClock(func() time.Time {
			return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
		}),
	)
	return NewTracker(l, repo, alerts)
}

func juneInput(amount int64, category string) core.TransactionInput {
	return core.TransactionInput{
		Amount:   core.Money{Cents: amount},
		Category: category,
		Date:     core.NewDate(2025, 6, 10),
	}
}

func TestTrackerAddExpensePersistsAndPublishes(t *testing.T) {
	repo := &fakeRepo{}
	pub := &fakePublisher{}
	tracker := newTestTracker(repo, pub)
	ctx := context.Background()

	if err := tracker.AddCategoryBudget(ctx, "Food", core.Money{Cents: 100000}); err != nil {
		t.Fatalf("AddCategoryBudget() error = %v", err)
	}
	// Keep the derived total limit above the spend so only the
	// category check fires.
	if err := tracker.AddCategoryBudget(ctx, "Rent", core.Money{Cents: 500000}); err != nil {
		t.Fatalf("AddCategoryBudget() error = %v", err)
	}

	tx, alerts, err := tracker.AddExpense(ctx, juneInput(110000, "Food"))
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}
	if tx.ID == "" {
		t.Fatal("expected assigned id")
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if len(repo.transactions) != 1 || repo.transactions[0].ID != tx.ID {
		t.Fatalf("transaction not persisted: %+v", repo.transactions)
	}
	if len(pub.published) != 1 {
		t.Fatalf("published = %d, want 1", len(pub.published))
	}
	if pub.published[0].Scope != ledger.ScopeCategory || pub.published[0].Category != "Food" {
		t.Fatalf("unexpected alert: %+v", pub.published[0])
	}
}

func TestTrackerSurvivesPersistenceFailure(t *testing.T) {
	repo := &fakeRepo{insertErr: errors.New("disk full")}
	tracker := newTestTracker(repo, nil)

	tx, _, err := tracker.AddExpense(context.Background(), juneInput(5000, "Food"))
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	got, ok := findTransaction(tracker, tx.ID)
	if !ok {
		t.Fatal("transaction missing from ledger")
	}
	if got.Amount.Cents != 5000 {
		t.Fatalf("amount = %d, want 5000", got.Amount.Cents)
	}
}

func TestTrackerWorksWithoutRepositoryOrPublisher(t *testing.T) {
	tracker := newTestTracker(nil, nil)
	ctx := context.Background()

	if err := tracker.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if _, _, err := tracker.AddExpense(ctx, juneInput(2500, "Coffee")); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}
	if err := tracker.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if got := tracker.Ledger().Transactions(ledger.TransactionFilter{}); len(got) != 0 {
		t.Fatalf("ledger not empty after reset: %d records", len(got))
	}
}

func TestTrackerHydrateLoadsSnapshot(t *testing.T) {
	repo := &fakeRepo{
		transactions: []core.Transaction{
			{
				ID:       "tx-1",
				Amount:   core.Money{Cents: 40000},
				Category: "Food",
				Date:     core.NewDate(2025, 6, 5),
				Type:     core.Expense,
			},
		},
		budgets: []core.CategoryBudget{
			{Category: "Food", Limit: core.Money{Cents: 100000}},
		},
	}
	tracker := newTestTracker(repo, nil)

	if err := tracker.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}

	l := tracker.Ledger()
	if got := l.TotalExpenses().Cents; got != 40000 {
		t.Fatalf("TotalExpenses = %d, want 40000", got)
	}
	if got := l.TotalCategoryLimit().Cents; got != 100000 {
		t.Fatalf("TotalCategoryLimit = %d, want 100000", got)
	}
}

func TestTrackerUpdateAndRemovePropagate(t *testing.T) {
	repo := &fakeRepo{}
	tracker := newTestTracker(repo, nil)
	ctx := context.Background()

	tx, _, err := tracker.AddExpense(ctx, juneInput(3000, "Transport"))
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	newAmount := core.Money{Cents: 4500}
	updated, err := tracker.UpdateTransaction(ctx, tx.ID, ledger.TransactionPatch{Amount: &newAmount})
	if err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	if updated.Amount.Cents != 4500 {
		t.Fatalf("amount = %d, want 4500", updated.Amount.Cents)
	}
	if repo.transactions[0].Amount.Cents != 4500 {
		t.Fatalf("snapshot amount = %d, want 4500", repo.transactions[0].Amount.Cents)
	}

	if !tracker.RemoveTransaction(ctx, tx.ID) {
		t.Fatal("RemoveTransaction() = false, want true")
	}
	if len(repo.transactions) != 0 {
		t.Fatalf("snapshot not empty: %+v", repo.transactions)
	}
	if tracker.RemoveTransaction(ctx, tx.ID) {
		t.Fatal("second removal should report false")
	}
}

func TestTrackerBudgetLifecyclePropagates(t *testing.T) {
	repo := &fakeRepo{}
	tracker := newTestTracker(repo, nil)
	ctx := context.Background()

	if err := tracker.AddCategoryBudget(ctx, "Food", core.Money{Cents: 50000}); err != nil {
		t.Fatalf("AddCategoryBudget() error = %v", err)
	}
	if err := tracker.UpdateCategoryBudget(ctx, "Food", "Groceries", core.Money{Cents: 60000}); err != nil {
		t.Fatalf("UpdateCategoryBudget() error = %v", err)
	}
	if len(repo.budgets) != 1 || repo.budgets[0].Category != "Groceries" || repo.budgets[0].Limit.Cents != 60000 {
		t.Fatalf("snapshot budget = %+v", repo.budgets)
	}
	if !tracker.RemoveCategoryBudget(ctx, "Groceries") {
		t.Fatal("RemoveCategoryBudget() = false, want true")
	}
	if len(repo.budgets) != 0 {
		t.Fatalf("snapshot not empty: %+v", repo.budgets)
	}
}

func TestTrackerBudgetCategoryCanonicalized(t *testing.T) {
	repo := &fakeRepo{}
	tracker := newTestTracker(repo, nil)
	ctx := context.Background()

	// Padded input must land trimmed in the ledger and the snapshot
	// alike; a diverging snapshot row would resurrect as a second
	// budget for the same visible category after hydration.
	if err := tracker.AddCategoryBudget(ctx, "  Food  ", core.Money{Cents: 1000}); err != nil {
		t.Fatalf("AddCategoryBudget() error = %v", err)
	}
	budgets := tracker.Ledger().Budgets()
	if len(budgets) != 1 || budgets[0].Category != "Food" {
		t.Fatalf("ledger budgets = %+v, want one %q entry", budgets, "Food")
	}
	if len(repo.budgets) != 1 || repo.budgets[0].Category != "Food" {
		t.Fatalf("snapshot budgets = %+v, want one %q entry", repo.budgets, "Food")
	}

	if err := tracker.AddCategoryBudget(ctx, " Food ", core.Money{Cents: 2000}); !errors.Is(err, ledger.ErrDuplicateBudget) {
		t.Fatalf("padded duplicate error = %v, want ErrDuplicateBudget", err)
	}

	if err := tracker.UpdateCategoryBudget(ctx, " Food ", "  Groceries  ", core.Money{Cents: 3000}); err != nil {
		t.Fatalf("UpdateCategoryBudget() error = %v", err)
	}
	if len(repo.budgets) != 1 || repo.budgets[0].Category != "Groceries" {
		t.Fatalf("snapshot after rename = %+v, want one %q entry", repo.budgets, "Groceries")
	}

	if !tracker.RemoveCategoryBudget(ctx, "  Groceries ") {
		t.Fatal("RemoveCategoryBudget() = false, want true")
	}
	if len(repo.budgets) != 0 {
		t.Fatalf("snapshot not empty after removal: %+v", repo.budgets)
	}
}

func TestTrackerCloseClosesRepository(t *testing.T) {
	repo := &fakeRepo{}
	tracker := newTestTracker(repo, &fakePublisher{})

	if err := tracker.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !repo.closed {
		t.Fatal("repository not closed")
	}
}

func findTransaction(tr *Tracker, id string) (core.Transaction, bool) {
	for _, tx := range tr.Ledger().Transactions(ledger.TransactionFilter{}) {
		if tx.ID == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

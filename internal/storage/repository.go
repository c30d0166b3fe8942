// Package storage persists the session snapshot of transactions and
// budgets in SQLite. Credentials and session tokens are never part of
// this snapshot; it holds the two record tables only.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"chitieu/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListTransactions loads the full transaction snapshot, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, category, tx_date, note, tx_type
		FROM transactions
		ORDER BY tx_date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx      core.Transaction
			dateStr string
			typStr  string
		)
		if err := rows.Scan(&tx.ID, &tx.Amount.Cents, &tx.Category, &dateStr, &tx.Note, &typStr); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", dateStr, err)
		}
		tx.Date = date
		tx.Type = core.TransactionType(typStr)
		out = append(out, tx)
	}
	return out, rows.Err()
}

// InsertTransaction writes one transaction through to the snapshot.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, amount_cents, category, tx_date, note, tx_type)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Amount.Cents, tx.Category, tx.Date.ISO(), tx.Note, string(tx.Type))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"category", tx.Category,
		"amount_cents", tx.Amount.Cents,
		"date", tx.Date.ISO(),
		"type", string(tx.Type))
	return nil
}

// UpdateTransaction replaces the stored fields of an existing record.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount_cents = ?, category = ?, tx_date = ?, note = ?, tx_type = ?
		WHERE id = ?`,
		tx.Amount.Cents, tx.Category, tx.Date.ISO(), tx.Note, string(tx.Type), tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// DeleteTransaction removes a record; deleting an absent id is not an
// error, matching the store's idempotent removal contract.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// ListBudgets loads the budget snapshot.
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.CategoryBudget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, limit_cents FROM budgets ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryBudget
	for rows.Next() {
		var b core.CategoryBudget
		if err := rows.Scan(&b.Category, &b.Limit.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// InsertBudget writes a new category budget. The category column is
// the primary key, so a duplicate insert fails at the database too;
// the ledger rejects duplicates before getting here.
func (r *SQLiteRepository) InsertBudget(ctx context.Context, b core.CategoryBudget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (category, limit_cents) VALUES (?, ?)`,
		b.Category, b.Limit.Cents)
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

// UpdateBudget rewrites a budget row, renaming its category when the
// two names differ.
func (r *SQLiteRepository) UpdateBudget(ctx context.Context, category string, b core.CategoryBudget) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET category = ?, limit_cents = ? WHERE category = ?`,
		b.Category, b.Limit.Cents, category)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return nil
}

// DeleteBudget removes a budget row; absent categories are a no-op.
func (r *SQLiteRepository) DeleteBudget(ctx context.Context, category string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE category = ?`, category); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

// DeleteAll clears both record tables. Used by session reset.
func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM budgets`); err != nil {
		return fmt.Errorf("clear budgets: %w", err)
	}
	slog.InfoContext(ctx, "Snapshot cleared")
	return nil
}

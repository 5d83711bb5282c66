package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"glance/internal/core"
	"glance/internal/records"
)

const metaCategoriesSeeded = "categories_seeded"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Expenses

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		d, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("expense %s: %w", row.ID, err)
		}
		out = append(out, core.Expense{
			ID:          row.ID,
			Amount:      core.Money{Cents: row.AmountCents},
			Description: row.Description,
			Date:        d,
			CategoryID:  row.CategoryID,
		})
	}
	return out, nil
}

func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	id, err := r.newID(ctx, records.ExpensePrefix, tableExpenses)
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = id
	if err := r.queries.InsertExpense(ctx, expenseRow(e)); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.String(),
		"category_id", e.CategoryID)

	return e, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	n, err := r.queries.UpdateExpense(ctx, expenseRow(e))
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if n == 0 {
		return core.Expense{}, fmt.Errorf("expense %s: %w", e.ID, core.ErrNotFound)
	}
	return e, nil
}

func (r *SQLiteRepository) RemoveExpense(ctx context.Context, id string) error {
	if err := r.queries.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

func expenseRow(e core.Expense) ExpenseRow {
	return ExpenseRow{
		ID:          e.ID,
		AmountCents: e.Amount.Cents,
		Description: e.Description,
		Date:        e.Date.String(),
		CategoryID:  e.CategoryID,
	}
}

// Budgets

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Budget{
			ID:         row.ID,
			CategoryID: row.CategoryID,
			Amount:     core.Money{Cents: row.AmountCents},
			Period:     core.Period(row.Period),
		})
	}
	return out, nil
}

func (r *SQLiteRepository) AddBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	id, err := r.newID(ctx, records.BudgetPrefix, tableBudgets)
	if err != nil {
		return core.Budget{}, err
	}
	b.ID = id
	if err := r.queries.InsertBudget(ctx, budgetRow(b)); err != nil {
		return core.Budget{}, budgetWriteError("create budget", b, err)
	}
	return b, nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	n, err := r.queries.UpdateBudget(ctx, budgetRow(b))
	if err != nil {
		return core.Budget{}, budgetWriteError("update budget", b, err)
	}
	if n == 0 {
		return core.Budget{}, fmt.Errorf("budget %s: %w", b.ID, core.ErrNotFound)
	}
	return b, nil
}

func (r *SQLiteRepository) RemoveBudget(ctx context.Context, id string) error {
	if err := r.queries.DeleteBudget(ctx, id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

func budgetRow(b core.Budget) BudgetRow {
	return BudgetRow{
		ID:          b.ID,
		CategoryID:  b.CategoryID,
		AmountCents: b.Amount.Cents,
		Period:      string(b.Period),
	}
}

func budgetWriteError(op string, b core.Budget, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s budget for category %s already exists: %w", b.Period, b.CategoryID, core.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT:
		return true
	}
	return false
}

// Categories

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Category{ID: row.ID, Name: row.Name, Color: row.Color, Icon: row.Icon})
	}
	return out, nil
}

func (r *SQLiteRepository) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	id, err := r.newID(ctx, records.CategoryPrefix, tableCategories)
	if err != nil {
		return core.Category{}, err
	}
	c.ID = id
	if err := r.queries.InsertCategory(ctx, categoryRow(c)); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	n, err := r.queries.UpdateCategory(ctx, categoryRow(c))
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if n == 0 {
		return core.Category{}, fmt.Errorf("category %s: %w", c.ID, core.ErrNotFound)
	}
	return c, nil
}

// RemoveCategory does not cascade; referencing records keep the dangling id.
func (r *SQLiteRepository) RemoveCategory(ctx context.Context, id string) error {
	if err := r.queries.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func categoryRow(c core.Category) CategoryRow {
	return CategoryRow{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon}
}

// SeedDefaultCategories inserts the default categories inside one
// transaction, the first time the database is initialized. Removing every
// category afterwards does not bring them back.
func (r *SQLiteRepository) SeedDefaultCategories(ctx context.Context) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	first, err := q.MarkOnce(ctx, metaCategoriesSeeded)
	if err != nil {
		return false, fmt.Errorf("mark categories seeded: %w", err)
	}
	if !first {
		return false, nil
	}

	defaults := core.DefaultCategories()
	for _, c := range defaults {
		if err := q.InsertCategory(ctx, categoryRow(c)); err != nil {
			return false, fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit seed transaction: %w", err)
	}

	slog.InfoContext(ctx, "Seeded default categories", "count", len(defaults))
	return true, nil
}

func (r *SQLiteRepository) newID(ctx context.Context, prefix, table string) (string, error) {
	var qerr error
	id, err := records.NewID(prefix, func(id string) bool {
		exists, err := r.queries.idExists(ctx, table, id)
		if err != nil {
			qerr = err
			return false
		}
		return exists
	})
	if qerr != nil {
		return "", fmt.Errorf("check %s id: %w", table, qerr)
	}
	return id, err
}

var _ records.Store = (*SQLiteRepository)(nil)

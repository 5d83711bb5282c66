package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the typed statements used by SQLiteRepository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type CategoryRow struct {
	ID    string
	Name  string
	Color string
	Icon  string
}

type ExpenseRow struct {
	ID          string
	AmountCents int64
	Description string
	Date        string
	CategoryID  string
}

type BudgetRow struct {
	ID          string
	CategoryID  string
	AmountCents int64
	Period      string
}

// Categories

const listCategories = `SELECT id, name, color, icon FROM categories ORDER BY rowid`

func (q *Queries) ListCategories(ctx context.Context) ([]CategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CategoryRow{}
	for rows.Next() {
		var i CategoryRow
		if err := rows.Scan(&i.ID, &i.Name, &i.Color, &i.Icon); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const markOnce = `INSERT OR IGNORE INTO meta (key, value) VALUES (?, '1')`

// MarkOnce records key in meta and reports whether this call set it.
func (q *Queries) MarkOnce(ctx context.Context, key string) (bool, error) {
	res, err := q.db.ExecContext(ctx, markOnce, key)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

const insertCategory = `INSERT INTO categories (id, name, color, icon) VALUES (?, ?, ?, ?)`

func (q *Queries) InsertCategory(ctx context.Context, arg CategoryRow) error {
	_, err := q.db.ExecContext(ctx, insertCategory, arg.ID, arg.Name, arg.Color, arg.Icon)
	return err
}

const updateCategory = `UPDATE categories SET name = ?, color = ?, icon = ? WHERE id = ?`

func (q *Queries) UpdateCategory(ctx context.Context, arg CategoryRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateCategory, arg.Name, arg.Color, arg.Icon, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteCategory = `DELETE FROM categories WHERE id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteCategory, id)
	return err
}

// Expenses

const listExpenses = `SELECT id, amount_cents, description, date, category_id FROM expenses ORDER BY rowid`

func (q *Queries) ListExpenses(ctx context.Context) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ExpenseRow{}
	for rows.Next() {
		var i ExpenseRow
		if err := rows.Scan(&i.ID, &i.AmountCents, &i.Description, &i.Date, &i.CategoryID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const insertExpense = `INSERT INTO expenses (id, amount_cents, description, date, category_id) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) InsertExpense(ctx context.Context, arg ExpenseRow) error {
	_, err := q.db.ExecContext(ctx, insertExpense, arg.ID, arg.AmountCents, arg.Description, arg.Date, arg.CategoryID)
	return err
}

const updateExpense = `UPDATE expenses
SET amount_cents = ?, description = ?, date = ?, category_id = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

func (q *Queries) UpdateExpense(ctx context.Context, arg ExpenseRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateExpense, arg.AmountCents, arg.Description, arg.Date, arg.CategoryID, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteExpense, id)
	return err
}

// Budgets

const listBudgets = `SELECT id, category_id, amount_cents, period FROM budgets ORDER BY rowid`

func (q *Queries) ListBudgets(ctx context.Context) ([]BudgetRow, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []BudgetRow{}
	for rows.Next() {
		var i BudgetRow
		if err := rows.Scan(&i.ID, &i.CategoryID, &i.AmountCents, &i.Period); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const insertBudget = `INSERT INTO budgets (id, category_id, amount_cents, period) VALUES (?, ?, ?, ?)`

func (q *Queries) InsertBudget(ctx context.Context, arg BudgetRow) error {
	_, err := q.db.ExecContext(ctx, insertBudget, arg.ID, arg.CategoryID, arg.AmountCents, arg.Period)
	return err
}

const updateBudget = `UPDATE budgets
SET category_id = ?, amount_cents = ?, period = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

func (q *Queries) UpdateBudget(ctx context.Context, arg BudgetRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateBudget, arg.CategoryID, arg.AmountCents, arg.Period, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteBudget = `DELETE FROM budgets WHERE id = ?`

func (q *Queries) DeleteBudget(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteBudget, id)
	return err
}

// idExists checks table for id. table is always one of the package constants.
func (q *Queries) idExists(ctx context.Context, table, id string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM "+table+" WHERE id = ?)", id).Scan(&exists)
	return exists, err
}

const (
	tableExpenses   = "expenses"
	tableBudgets    = "budgets"
	tableCategories = "categories"
)

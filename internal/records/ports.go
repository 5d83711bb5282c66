// Package records defines the record store contract shared by the memory and
// SQLite backends.
package records

import (
	"context"

	"glance/internal/core"
)

// Ports for record storage. Add* assigns the id; Update* fails with
// core.ErrNotFound when the id is absent; Remove* is a no-op when it is.
type (
	ExpenseStore interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		AddExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		RemoveExpense(ctx context.Context, id string) error
	}

	// BudgetStore rejects a second budget for the same category and period
	// with core.ErrConflict.
	BudgetStore interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		AddBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		RemoveBudget(ctx context.Context, id string) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		AddCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
		RemoveCategory(ctx context.Context, id string) error
	}

	// Seeder loads the default categories on first initialization only;
	// later calls are no-ops even if every category was removed since. It
	// reports whether anything was inserted.
	Seeder interface {
		SeedDefaultCategories(ctx context.Context) (bool, error)
	}

	// Store is the full record store handle injected into services.
	Store interface {
		ExpenseStore
		BudgetStore
		CategoryStore
		Seeder
		Close() error
	}

	// SnapshotReader returns every collection at once.
	SnapshotReader interface {
		Snapshot(ctx context.Context) (core.Snapshot, error)
	}
)

// Id prefixes per collection.
const (
	ExpensePrefix  = "exp_"
	BudgetPrefix   = "bud_"
	CategoryPrefix = "cat_"
)

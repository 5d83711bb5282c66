// Package recordstest holds the behaviour every records.Store must share.
// Backends run it from their own tests.
package recordstest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glance/internal/core"
	"glance/internal/records"
)

// Factory returns an empty store. Cleanup is registered on t.
type Factory func(t *testing.T) records.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("expense lifecycle", func(t *testing.T) { expenseLifecycle(t, newStore(t)) })
	t.Run("update missing is not found", func(t *testing.T) { updateMissing(t, newStore(t)) })
	t.Run("remove is idempotent", func(t *testing.T) { removeIdempotent(t, newStore(t)) })
	t.Run("add rejects invalid records", func(t *testing.T) { rejectsInvalid(t, newStore(t)) })
	t.Run("budget uniqueness", func(t *testing.T) { budgetUniqueness(t, newStore(t)) })
	t.Run("seed runs once", func(t *testing.T) { seedOnce(t, newStore(t)) })
	t.Run("seed does not restore removed defaults", func(t *testing.T) { seedAfterRemovingAll(t, newStore(t)) })
	t.Run("category removal leaves references", func(t *testing.T) { danglingReferences(t, newStore(t)) })
}

func date(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func expenseLifecycle(t *testing.T, s records.Store) {
	ctx := context.Background()

	first, err := s.AddExpense(ctx, core.Expense{Amount: core.Money{Cents: 120000}, Description: "Rent", Date: date("2025-04-01"), CategoryID: "cat_housing"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.ID, records.ExpensePrefix))

	second, err := s.AddExpense(ctx, core.Expense{Amount: core.Money{Cents: 8500}, Description: "Groceries", Date: date("2025-04-05"), CategoryID: "cat_food"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	all, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []core.Expense{first, second}, all)

	second.Amount = core.Money{Cents: 9000}
	second.Description = "Groceries and wine"
	updated, err := s.UpdateExpense(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, second, updated)

	all, err = s.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Expense{first, second}, all)

	require.NoError(t, s.RemoveExpense(ctx, first.ID))
	all, err = s.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Expense{second}, all)
}

func updateMissing(t *testing.T, s records.Store) {
	ctx := context.Background()

	_, err := s.UpdateExpense(ctx, core.Expense{ID: "exp_missing", Amount: core.Money{Cents: 1}, Description: "x", Date: date("2025-01-01"), CategoryID: "c"})
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = s.UpdateBudget(ctx, core.Budget{ID: "bud_missing", CategoryID: "c", Amount: core.Money{Cents: 1}, Period: core.Monthly})
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = s.UpdateCategory(ctx, core.Category{ID: "cat_missing", Name: "Missing"})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func removeIdempotent(t *testing.T, s records.Store) {
	ctx := context.Background()

	assert.NoError(t, s.RemoveExpense(ctx, "exp_missing"))
	assert.NoError(t, s.RemoveBudget(ctx, "bud_missing"))
	assert.NoError(t, s.RemoveCategory(ctx, "cat_missing"))

	b, err := s.AddBudget(ctx, core.Budget{CategoryID: "cat_food", Amount: core.Money{Cents: 50000}, Period: core.Monthly})
	require.NoError(t, err)
	require.NoError(t, s.RemoveBudget(ctx, b.ID))
	require.NoError(t, s.RemoveBudget(ctx, b.ID))

	budgets, err := s.ListBudgets(ctx)
	require.NoError(t, err)
	assert.Empty(t, budgets)
}

func rejectsInvalid(t *testing.T, s records.Store) {
	ctx := context.Background()

	_, err := s.AddExpense(ctx, core.Expense{Amount: core.Money{Cents: 0}, Description: "zero", Date: date("2025-01-01"), CategoryID: "c"})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = s.AddExpense(ctx, core.Expense{Amount: core.Money{Cents: -5}, Description: "negative", Date: date("2025-01-01"), CategoryID: "c"})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = s.AddBudget(ctx, core.Budget{CategoryID: "c", Amount: core.Money{Cents: 100}, Period: "daily"})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = s.AddCategory(ctx, core.Category{Name: "   "})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	expenses, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func budgetUniqueness(t *testing.T, s records.Store) {
	ctx := context.Background()

	monthly, err := s.AddBudget(ctx, core.Budget{CategoryID: "cat_food", Amount: core.Money{Cents: 50000}, Period: core.Monthly})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(monthly.ID, records.BudgetPrefix))

	_, err = s.AddBudget(ctx, core.Budget{CategoryID: "cat_food", Amount: core.Money{Cents: 70000}, Period: core.Monthly})
	assert.ErrorIs(t, err, core.ErrConflict)

	weekly, err := s.AddBudget(ctx, core.Budget{CategoryID: "cat_food", Amount: core.Money{Cents: 10000}, Period: core.Weekly})
	require.NoError(t, err)

	weekly.Period = core.Monthly
	_, err = s.UpdateBudget(ctx, weekly)
	assert.ErrorIs(t, err, core.ErrConflict)

	monthly.Amount = core.Money{Cents: 60000}
	_, err = s.UpdateBudget(ctx, monthly)
	require.NoError(t, err)

	budgets, err := s.ListBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, int64(60000), budgets[0].Amount.Cents)
}

func seedOnce(t *testing.T, s records.Store) {
	ctx := context.Background()

	seeded, err := s.SeedDefaultCategories(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultCategories(), cats)

	require.NoError(t, s.RemoveCategory(ctx, "cat_other"))

	seeded, err = s.SeedDefaultCategories(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	cats, err = s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 7)

	added, err := s.AddCategory(ctx, core.Category{Name: " Pets "})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(added.ID, records.CategoryPrefix))
	assert.Equal(t, "Pets", added.Name)
	assert.Equal(t, core.DefaultColor, added.Color)
	assert.Equal(t, core.DefaultIcon, added.Icon)
}

func seedAfterRemovingAll(t *testing.T, s records.Store) {
	ctx := context.Background()

	seeded, err := s.SeedDefaultCategories(ctx)
	require.NoError(t, err)
	require.True(t, seeded)

	for _, c := range core.DefaultCategories() {
		require.NoError(t, s.RemoveCategory(ctx, c.ID))
	}

	seeded, err = s.SeedDefaultCategories(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func danglingReferences(t *testing.T, s records.Store) {
	ctx := context.Background()

	c, err := s.AddCategory(ctx, core.Category{Name: "Travel", Color: "bg-budget-blue-500", Icon: "plane"})
	require.NoError(t, err)
	_, err = s.AddExpense(ctx, core.Expense{Amount: core.Money{Cents: 30000}, Description: "Train", Date: date("2025-06-01"), CategoryID: c.ID})
	require.NoError(t, err)
	_, err = s.AddBudget(ctx, core.Budget{CategoryID: c.ID, Amount: core.Money{Cents: 100000}, Period: core.Yearly})
	require.NoError(t, err)

	require.NoError(t, s.RemoveCategory(ctx, c.ID))

	expenses, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, c.ID, expenses[0].CategoryID)

	budgets, err := s.ListBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
}

// Package memory is an in-process record store. Collections keep insertion
// order and every read returns a copy.
package memory

import (
	"context"
	"fmt"
	"sync"

	"glance/internal/core"
	"glance/internal/records"
)

type Store struct {
	mu         sync.Mutex
	expenses   []core.Expense
	budgets    []core.Budget
	categories []core.Category
	seeded     bool
}

func New() *Store {
	return &Store{}
}

// NewSeeded returns a store pre-populated with snap. A snapshot carrying
// categories counts as already seeded.
func NewSeeded(snap core.Snapshot) *Store {
	c := snap.Clone()
	return &Store{expenses: c.Expenses, budgets: c.Budgets, categories: c.Categories, seeded: len(c.Categories) > 0}
}

func (s *Store) Close() error { return nil }

// Expenses

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense{}, s.expenses...), nil
}

func (s *Store) AddExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := records.NewID(records.ExpensePrefix, func(id string) bool { return indexOf(s.expenses, id, expenseID) >= 0 })
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = id
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.expenses, e.ID, expenseID)
	if i < 0 {
		return core.Expense{}, fmt.Errorf("expense %s: %w", e.ID, core.ErrNotFound)
	}
	s.expenses[i] = e
	return e, nil
}

func (s *Store) RemoveExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = without(s.expenses, id, expenseID)
	return nil
}

// Budgets

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget{}, s.budgets...), nil
}

func (s *Store) AddBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkBudgetUnique(b, ""); err != nil {
		return core.Budget{}, err
	}
	id, err := records.NewID(records.BudgetPrefix, func(id string) bool { return indexOf(s.budgets, id, budgetID) >= 0 })
	if err != nil {
		return core.Budget{}, err
	}
	b.ID = id
	s.budgets = append(s.budgets, b)
	return b, nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.budgets, b.ID, budgetID)
	if i < 0 {
		return core.Budget{}, fmt.Errorf("budget %s: %w", b.ID, core.ErrNotFound)
	}
	if err := s.checkBudgetUnique(b, b.ID); err != nil {
		return core.Budget{}, err
	}
	s.budgets[i] = b
	return b, nil
}

func (s *Store) RemoveBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = without(s.budgets, id, budgetID)
	return nil
}

// checkBudgetUnique must be called with s.mu held.
func (s *Store) checkBudgetUnique(b core.Budget, selfID string) error {
	for _, other := range s.budgets {
		if other.ID != selfID && other.CategoryID == b.CategoryID && other.Period == b.Period {
			return fmt.Errorf("%s budget for category %s already exists: %w", b.Period, b.CategoryID, core.ErrConflict)
		}
	}
	return nil
}

// Categories

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category{}, s.categories...), nil
}

func (s *Store) AddCategory(_ context.Context, c core.Category) (core.Category, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := records.NewID(records.CategoryPrefix, func(id string) bool { return indexOf(s.categories, id, categoryID) >= 0 })
	if err != nil {
		return core.Category{}, err
	}
	c.ID = id
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.categories, c.ID, categoryID)
	if i < 0 {
		return core.Category{}, fmt.Errorf("category %s: %w", c.ID, core.ErrNotFound)
	}
	s.categories[i] = c
	return c, nil
}

// RemoveCategory leaves referencing expenses and budgets in place.
func (s *Store) RemoveCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = without(s.categories, id, categoryID)
	return nil
}

func (s *Store) SeedDefaultCategories(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return false, nil
	}
	s.seeded = true
	if len(s.categories) > 0 {
		return false, nil
	}
	s.categories = core.DefaultCategories()
	return true, nil
}

func expenseID(e core.Expense) string   { return e.ID }
func budgetID(b core.Budget) string     { return b.ID }
func categoryID(c core.Category) string { return c.ID }

func indexOf[T any](items []T, id string, key func(T) string) int {
	for i, it := range items {
		if key(it) == id {
			return i
		}
	}
	return -1
}

func without[T any](items []T, id string, key func(T) string) []T {
	out := items[:0:0]
	for _, it := range items {
		if key(it) != id {
			out = append(out, it)
		}
	}
	return out
}

var _ records.Store = (*Store)(nil)

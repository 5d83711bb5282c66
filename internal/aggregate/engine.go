// Package aggregate turns snapshots of expenses, budgets and categories into
// the derived views shown by the dashboard, calendar, ledger and reports.
//
// Every function is pure: inputs are never modified and results are freshly
// allocated, so calling the same function twice with the same input yields
// identical output. Empty input and unknown category ids degrade to zero
// values rather than errors.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"glance/internal/core"
)

var hundred = decimal.NewFromInt(100)

// MonthLabels are the short month names used by MonthlyTrend, January first.
var MonthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// TotalSpending sums the amount of every expense.
func TotalSpending(expenses []core.Expense) core.Money {
	var total core.Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// TotalBudget sums the amount of every budget regardless of period.
func TotalBudget(budgets []core.Budget) core.Money {
	var total core.Money
	for _, b := range budgets {
		total = total.Add(b.Amount)
	}
	return total
}

// SpendingByCategory sums the expenses referencing categoryID.
func SpendingByCategory(expenses []core.Expense, categoryID string) core.Money {
	var total core.Money
	for _, e := range expenses {
		if e.CategoryID == categoryID {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// ExpensesForCategory returns the expenses referencing categoryID.
func ExpensesForCategory(expenses []core.Expense, categoryID string) []core.Expense {
	out := make([]core.Expense, 0)
	for _, e := range expenses {
		if e.CategoryID == categoryID {
			out = append(out, e)
		}
	}
	return out
}

// Percentage returns part/whole*100, or zero when whole is not positive.
func Percentage(part, whole core.Money) decimal.Decimal {
	if whole.Cents <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part.Cents).Mul(hundred).Div(decimal.NewFromInt(whole.Cents))
}

// CategoryBreakdown groups expenses by category id. Groups appear in the order
// their category is first seen; use SortBreakdown for a display order.
func CategoryBreakdown(expenses []core.Expense) []core.CategorySpending {
	out := make([]core.CategorySpending, 0)
	index := make(map[string]int)
	var total core.Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
		i, ok := index[e.CategoryID]
		if !ok {
			i = len(out)
			index[e.CategoryID] = i
			out = append(out, core.CategorySpending{CategoryID: e.CategoryID})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	for i := range out {
		out[i].Percentage = Percentage(out[i].Amount, total)
	}
	return out
}

// SortBreakdown returns a copy ordered by descending amount, ties broken by category id.
func SortBreakdown(rows []core.CategorySpending) []core.CategorySpending {
	out := append([]core.CategorySpending(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

// MonthlyTrend returns exactly twelve entries, January to December, with the
// spending of each month of year. Expenses from other years are ignored.
func MonthlyTrend(expenses []core.Expense, year int) []core.MonthlySpending {
	out := make([]core.MonthlySpending, 12)
	for i := range out {
		out[i].Month = MonthLabels[i]
	}
	for _, e := range expenses {
		if e.Date.IsZero() || e.Date.Year() != year {
			continue
		}
		m := e.Date.Month() - 1
		out[m].Amount = out[m].Amount.Add(e.Amount)
	}
	return out
}

// BudgetUtilization compares the spending in expenses against budget.
// The caller decides which expenses count (category, period window).
func BudgetUtilization(budget core.Budget, expenses []core.Expense) core.Utilization {
	spent := TotalSpending(expenses)
	return Utilize(budget.Amount, spent)
}

// Utilize computes utilization of limit given spent. A non-positive limit is
// fully used as soon as anything is spent.
func Utilize(limit, spent core.Money) core.Utilization {
	u := core.Utilization{
		Spent:         spent,
		Limit:         limit,
		Percentage:    decimal.Zero,
		RawPercentage: decimal.Zero,
		IsOverBudget:  spent.Cents > limit.Cents,
	}
	switch {
	case limit.Cents > 0:
		u.RawPercentage = Percentage(spent, limit)
		u.Percentage = decimal.Min(hundred, u.RawPercentage)
	case spent.Cents > 0:
		u.RawPercentage = hundred
		u.Percentage = hundred
	}
	if u.IsOverBudget {
		u.Overage = spent.Sub(limit)
	} else {
		u.Remaining = limit.Sub(spent)
	}
	u.Level = core.LevelFor(u.Percentage)
	return u
}

// Summary is the overall budget card: every budget against every expense supplied.
type Summary struct {
	TotalBudget core.Money            `json:"totalBudget"`
	TotalSpent  core.Money            `json:"totalSpent"`
	Remaining   core.Money            `json:"remaining"` // negative when overspent
	PercentUsed decimal.Decimal       `json:"percentUsed"`
	Level       core.UtilizationLevel `json:"level"`
}

// BudgetSummary totals budgets and expenses. PercentUsed is zero without budgets.
func BudgetSummary(budgets []core.Budget, expenses []core.Expense) Summary {
	total := TotalBudget(budgets)
	spent := TotalSpending(expenses)
	pct := Percentage(spent, total)
	return Summary{
		TotalBudget: total,
		TotalSpent:  spent,
		Remaining:   total.Sub(spent),
		PercentUsed: pct,
		Level:       core.LevelFor(pct),
	}
}

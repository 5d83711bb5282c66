package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glance/internal/core"
)

func expense(id string, amount int64, categoryID, date string) core.Expense {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Expense{ID: id, Amount: cents(amount), Description: "expense " + id, Date: d, CategoryID: categoryID}
}

func aprilExpenses() []core.Expense {
	return []core.Expense{
		expense("e1", 120000, "1", "2025-04-01"),
		expense("e2", 8500, "2", "2025-04-05"),
	}
}

func TestTotalSpending(t *testing.T) {
	assert.Equal(t, cents(128500), TotalSpending(aprilExpenses()))
	assert.True(t, TotalSpending(nil).IsZero())
}

func TestTotalBudget(t *testing.T) {
	budgets := []core.Budget{
		{ID: "b1", CategoryID: "1", Amount: cents(130000), Period: core.Monthly},
		{ID: "b2", CategoryID: "2", Amount: cents(5000), Period: core.Weekly},
	}
	assert.Equal(t, cents(135000), TotalBudget(budgets))
	assert.True(t, TotalBudget(nil).IsZero())
}

func TestSpendingByCategory(t *testing.T) {
	expenses := append(aprilExpenses(), expense("e3", 1500, "2", "2025-04-09"))

	assert.Equal(t, cents(120000), SpendingByCategory(expenses, "1"))
	assert.Equal(t, cents(10000), SpendingByCategory(expenses, "2"))
	assert.True(t, SpendingByCategory(expenses, "missing").IsZero())
}

func TestCategoryBreakdown(t *testing.T) {
	rows := CategoryBreakdown(aprilExpenses())
	require.Len(t, rows, 2)

	assert.Equal(t, "1", rows[0].CategoryID)
	assert.Equal(t, cents(120000), rows[0].Amount)
	assert.Equal(t, "93.38", rows[0].Percentage.Truncate(2).String())

	assert.Equal(t, "2", rows[1].CategoryID)
	assert.Equal(t, cents(8500), rows[1].Amount)
	assert.Equal(t, "6.61", rows[1].Percentage.Truncate(2).String())
}

func TestCategoryBreakdownEmpty(t *testing.T) {
	rows := CategoryBreakdown(nil)
	require.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestCategoryBreakdownPartitionsTotal(t *testing.T) {
	cases := map[string][]core.Expense{
		"single": {expense("a", 1, "x", "2025-01-01")},
		"two categories": aprilExpenses(),
		"thirds": {
			expense("a", 100, "x", "2025-01-01"),
			expense("b", 100, "y", "2025-01-02"),
			expense("c", 100, "z", "2025-01-03"),
		},
		"many": {
			expense("a", 1999, "x", "2025-02-01"),
			expense("b", 1, "y", "2025-02-02"),
			expense("c", 333, "x", "2025-02-03"),
			expense("d", 7777, "z", "2025-02-04"),
			expense("e", 42, "w", "2025-02-05"),
		},
	}
	tolerance := decimal.RequireFromString("0.0001")

	for name, expenses := range cases {
		t.Run(name, func(t *testing.T) {
			rows := CategoryBreakdown(expenses)

			var sum core.Money
			pct := decimal.Zero
			for _, r := range rows {
				sum = sum.Add(r.Amount)
				pct = pct.Add(r.Percentage)
			}
			assert.Equal(t, TotalSpending(expenses), sum)
			assert.True(t, pct.Sub(decimal.NewFromInt(100)).Abs().LessThan(tolerance), "percentages sum to %s", pct)
		})
	}
}

func TestCategoryBreakdownDoesNotMutateInput(t *testing.T) {
	in := aprilExpenses()
	before := append([]core.Expense(nil), in...)

	_ = CategoryBreakdown(in)
	_ = SortBreakdown(CategoryBreakdown(in))
	_ = SortByDateDesc(in)

	assert.Equal(t, before, in)
}

func TestSortBreakdown(t *testing.T) {
	rows := []core.CategorySpending{
		{CategoryID: "b", Amount: cents(100)},
		{CategoryID: "c", Amount: cents(900)},
		{CategoryID: "a", Amount: cents(100)},
	}
	sorted := SortBreakdown(rows)

	ids := make([]string, 0, len(sorted))
	for _, r := range sorted {
		ids = append(ids, r.CategoryID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
	assert.Equal(t, "b", rows[0].CategoryID)
}

func TestMonthlyTrend(t *testing.T) {
	expenses := []core.Expense{
		expense("a", 1000, "x", "2025-01-15"),
		expense("b", 2000, "x", "2025-01-31"),
		expense("c", 500, "y", "2025-12-01"),
		expense("d", 9999, "y", "2024-12-01"),
	}

	trend := MonthlyTrend(expenses, 2025)
	require.Len(t, trend, 12)
	for i, m := range trend {
		assert.Equal(t, MonthLabels[i], m.Month)
	}
	assert.Equal(t, cents(3000), trend[0].Amount)
	assert.Equal(t, cents(500), trend[11].Amount)
	for _, m := range trend[1:11] {
		assert.True(t, m.Amount.IsZero())
	}
}

func TestMonthlyTrendEmpty(t *testing.T) {
	trend := MonthlyTrend(nil, 2025)
	require.Len(t, trend, 12)
	assert.Equal(t, "Jan", trend[0].Month)
	assert.Equal(t, "Dec", trend[11].Month)
}

func TestMonthlyTrendIdempotent(t *testing.T) {
	expenses := aprilExpenses()
	assert.Equal(t, MonthlyTrend(expenses, 2025), MonthlyTrend(expenses, 2025))
	assert.Equal(t, CategoryBreakdown(expenses), CategoryBreakdown(expenses))
}

func TestBudgetUtilization(t *testing.T) {
	budget := core.Budget{ID: "b1", CategoryID: "1", Amount: cents(130000), Period: core.Monthly}

	tests := []struct {
		name      string
		spent     int64
		pct       string
		over      bool
		overage   int64
		remaining int64
		level     core.UtilizationLevel
	}{
		{"under budget", 120000, "92.31", false, 0, 10000, core.LevelDanger},
		{"over budget", 140000, "100.00", true, 10000, 0, core.LevelDanger},
		{"exactly on budget", 130000, "100.00", false, 0, 0, core.LevelDanger},
		{"nothing spent", 0, "0.00", false, 0, 130000, core.LevelOK},
		{"warning band", 104000, "80.00", false, 0, 26000, core.LevelWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var expenses []core.Expense
			if tt.spent > 0 {
				expenses = []core.Expense{expense("e", tt.spent, "1", "2025-04-01")}
			}
			u := BudgetUtilization(budget, expenses)

			assert.Equal(t, cents(tt.spent), u.Spent)
			assert.Equal(t, tt.pct, u.Percentage.StringFixed(2))
			assert.Equal(t, tt.over, u.IsOverBudget)
			assert.Equal(t, cents(tt.overage), u.Overage)
			assert.Equal(t, cents(tt.remaining), u.Remaining)
			assert.Equal(t, tt.level, u.Level)
		})
	}
}

func TestBudgetUtilizationReportsRawPercentage(t *testing.T) {
	u := Utilize(cents(10000), cents(15000))
	assert.Equal(t, "100", u.Percentage.String())
	assert.Equal(t, "150", u.RawPercentage.String())
}

func TestBudgetUtilizationMonotonic(t *testing.T) {
	limit := cents(130000)
	prev := Utilize(limit, core.Money{})
	for spent := int64(0); spent <= 300000; spent += 2500 {
		u := Utilize(limit, cents(spent))
		assert.False(t, u.Percentage.LessThan(prev.Percentage), "percentage decreased at %d", spent)
		assert.False(t, prev.IsOverBudget && !u.IsOverBudget, "over budget flag reverted at %d", spent)
		prev = u
	}
}

func TestUtilizeNonPositiveLimit(t *testing.T) {
	u := Utilize(core.Money{}, core.Money{})
	assert.True(t, u.Percentage.IsZero())
	assert.False(t, u.IsOverBudget)

	u = Utilize(core.Money{}, cents(1))
	assert.Equal(t, "100", u.Percentage.String())
	assert.True(t, u.IsOverBudget)
	assert.Equal(t, cents(1), u.Overage)
}

func TestBudgetSummary(t *testing.T) {
	budgets := []core.Budget{
		{ID: "b1", CategoryID: "1", Amount: cents(130000), Period: core.Monthly},
		{ID: "b2", CategoryID: "2", Amount: cents(20000), Period: core.Monthly},
	}
	s := BudgetSummary(budgets, aprilExpenses())

	assert.Equal(t, cents(150000), s.TotalBudget)
	assert.Equal(t, cents(128500), s.TotalSpent)
	assert.Equal(t, cents(21500), s.Remaining)
	assert.Equal(t, "85.67", s.PercentUsed.StringFixed(2))
	assert.Equal(t, core.LevelWarning, s.Level)

	empty := BudgetSummary(nil, aprilExpenses())
	assert.True(t, empty.PercentUsed.IsZero())
	assert.Equal(t, cents(-128500), empty.Remaining)
}

func cents(n int64) core.Money { return core.Money{Cents: n} }

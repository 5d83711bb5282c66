package aggregate

import (
	"fmt"
	"time"

	"glance/internal/core"
)

// WindowKind selects how a reporting window is laid over a reference date.
type WindowKind string

const (
	KindLastMonths  WindowKind = "last"
	KindSingleMonth WindowKind = "month"
	KindYear        WindowKind = "year"
)

// Window is a reporting range relative to a reference date.
type Window struct {
	Kind   WindowKind `json:"kind"`
	Months int        `json:"months,omitempty"` // only for KindLastMonths
}

func LastMonths(n int) Window { return Window{Kind: KindLastMonths, Months: n} }
func SingleMonth() Window     { return Window{Kind: KindSingleMonth} }
func Year() Window            { return Window{Kind: KindYear} }

// ParseWindow builds a window from its query form ("month", "year", "last" + n).
func ParseWindow(kind string, months int) (Window, error) {
	switch WindowKind(kind) {
	case KindSingleMonth, "":
		return SingleMonth(), nil
	case KindYear:
		return Year(), nil
	case KindLastMonths:
		if months < 1 || months > 120 {
			return Window{}, fmt.Errorf("%w: months must be between 1 and 120", core.ErrInvalidArgument)
		}
		return LastMonths(months), nil
	default:
		return Window{}, fmt.Errorf("%w: unknown period %q", core.ErrInvalidArgument, kind)
	}
}

// Bounds returns the first and last day covered by w around ref, both inclusive.
// KindLastMonths covers the n calendar months ending with ref's month.
func (w Window) Bounds(ref core.Date) (first, last core.Date) {
	y, m := ref.Year(), ref.Time.Month()
	switch w.Kind {
	case KindYear:
		return core.NewDate(y, 1, 1), core.NewDate(y, 12, 31)
	case KindLastMonths:
		n := w.Months
		if n < 1 {
			n = 1
		}
		start := time.Date(y, m-time.Month(n-1), 1, 0, 0, 0, 0, time.UTC)
		return core.Date{Time: start}, lastOfMonth(y, m)
	default:
		return core.NewDate(y, int(m), 1), lastOfMonth(y, m)
	}
}

func lastOfMonth(y int, m time.Month) core.Date {
	return core.Date{Time: time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)}
}

// Contains reports whether d falls inside [first, last] inclusive.
func Contains(first, last, d core.Date) bool {
	return !d.Before(first.Time) && !d.After(last.Time)
}

// FilterByPeriod keeps the expenses dated within w around ref.
func FilterByPeriod(expenses []core.Expense, ref core.Date, w Window) []core.Expense {
	first, last := w.Bounds(ref)
	return FilterBetween(expenses, first, last)
}

// FilterBetween keeps the expenses dated within [first, last] inclusive.
func FilterBetween(expenses []core.Expense, first, last core.Date) []core.Expense {
	out := make([]core.Expense, 0)
	for _, e := range expenses {
		if Contains(first, last, e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// PeriodStrategy lays a budget period over a reference date.
type PeriodStrategy interface {
	Bounds(ref core.Date) (first, last core.Date)
}

// WeeklyWindow covers Monday to Sunday of ref's week.
type WeeklyWindow struct{}

func (WeeklyWindow) Bounds(ref core.Date) (core.Date, core.Date) {
	offset := (int(ref.Weekday()) + 6) % 7 // Monday = 0
	first := core.Date{Time: ref.AddDate(0, 0, -offset)}
	return first, core.Date{Time: first.AddDate(0, 0, 6)}
}

// MonthlyWindow covers ref's calendar month.
type MonthlyWindow struct{}

func (MonthlyWindow) Bounds(ref core.Date) (core.Date, core.Date) {
	return SingleMonth().Bounds(ref)
}

// YearlyWindow covers ref's calendar year.
type YearlyWindow struct{}

func (YearlyWindow) Bounds(ref core.Date) (core.Date, core.Date) {
	return Year().Bounds(ref)
}

var periodStrategies = map[core.Period]PeriodStrategy{
	core.Weekly:  WeeklyWindow{},
	core.Monthly: MonthlyWindow{},
	core.Yearly:  YearlyWindow{},
}

// PeriodWindow returns the budget period containing ref. Unknown periods fall
// back to the calendar month.
func PeriodWindow(p core.Period, ref core.Date) (core.Date, core.Date) {
	s, ok := periodStrategies[p]
	if !ok {
		s = MonthlyWindow{}
	}
	return s.Bounds(ref)
}

// CurrentPeriodUtilization measures budget against the expenses of its
// category that fall inside the budget period containing ref.
func CurrentPeriodUtilization(budget core.Budget, expenses []core.Expense, ref core.Date) core.Utilization {
	first, last := PeriodWindow(budget.Period, ref)
	inPeriod := FilterBetween(ExpensesForCategory(expenses, budget.CategoryID), first, last)
	return BudgetUtilization(budget, inPeriod)
}

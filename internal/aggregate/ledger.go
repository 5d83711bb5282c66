package aggregate

import (
	"sort"
	"strings"
	"time"

	"glance/internal/core"
)

// CategoryIndex resolves weak category references.
type CategoryIndex struct {
	byID map[string]core.Category
}

func NewCategoryIndex(categories []core.Category) CategoryIndex {
	idx := CategoryIndex{byID: make(map[string]core.Category, len(categories))}
	for _, c := range categories {
		if _, dup := idx.byID[c.ID]; !dup {
			idx.byID[c.ID] = c
		}
	}
	return idx
}

// Lookup returns the category with id, if it still exists.
func (idx CategoryIndex) Lookup(id string) (core.Category, bool) {
	c, ok := idx.byID[id]
	return c, ok
}

// Resolve returns the category with id or the Unknown Category placeholder
// carrying the dangling id.
func (idx CategoryIndex) Resolve(id string) core.Category {
	if c, ok := idx.byID[id]; ok {
		return c
	}
	unknown := core.UnknownCategory
	unknown.ID = id
	return unknown
}

// BudgetFor returns the first budget for categoryID and period. An empty
// period matches any period.
func BudgetFor(budgets []core.Budget, categoryID string, period core.Period) (core.Budget, bool) {
	for _, b := range budgets {
		if b.CategoryID == categoryID && (period == "" || b.Period == period) {
			return b, true
		}
	}
	return core.Budget{}, false
}

// SortByDateDesc returns a copy with the newest expense first. Expenses on
// the same day keep their relative order.
func SortByDateDesc(expenses []core.Expense) []core.Expense {
	out := append([]core.Expense(nil), expenses...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// Recent returns at most n expenses, newest first.
func Recent(expenses []core.Expense, n int) []core.Expense {
	sorted := SortByDateDesc(expenses)
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Search keeps expenses whose description contains term (case-insensitive)
// and, when categoryID is set, that reference it.
func Search(expenses []core.Expense, term, categoryID string) []core.Expense {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]core.Expense, 0)
	for _, e := range expenses {
		if categoryID != "" && e.CategoryID != categoryID {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(e.Description), term) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// DailyTotals returns one entry per day of the given month, in calendar order.
func DailyTotals(expenses []core.Expense, year, month int) []core.DailySpending {
	days := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	out := make([]core.DailySpending, days)
	for i := range out {
		out[i].Date = core.NewDate(year, month, i+1)
	}
	for _, e := range expenses {
		if e.Date.Year() != year || e.Date.Month() != month {
			continue
		}
		d := e.Date.Day() - 1
		out[d].Amount = out[d].Amount.Add(e.Amount)
		out[d].Count++
	}
	return out
}

// ByDay groups the expenses of a month by calendar day (1-based).
func ByDay(expenses []core.Expense, year, month int) map[int][]core.Expense {
	out := make(map[int][]core.Expense)
	for _, e := range expenses {
		if e.Date.Year() == year && e.Date.Month() == month {
			out[e.Date.Day()] = append(out[e.Date.Day()], e)
		}
	}
	return out
}

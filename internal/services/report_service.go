package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"glance/internal/aggregate"
	"glance/internal/cache"
	"glance/internal/core"
	applog "glance/internal/log"
	"glance/internal/records"
)

const (
	dashboardBudgetCards = 4
	dashboardRecent      = 5
)

// View types returned by ReportService. Category references are resolved
// so that a dangling id shows up as the Unknown Category.
type (
	CategoryRow struct {
		Category   core.Category   `json:"category"`
		Amount     core.Money      `json:"amount"`
		Percentage decimal.Decimal `json:"percentage"`
	}

	BudgetCard struct {
		Budget      core.Budget      `json:"budget"`
		Category    core.Category    `json:"category"`
		From        core.Date        `json:"from"`
		To          core.Date        `json:"to"`
		Utilization core.Utilization `json:"utilization"`
	}

	Transaction struct {
		core.Expense
		Category core.Category `json:"category"`
	}

	Dashboard struct {
		Date       core.Date              `json:"date"`
		MonthTotal core.Money             `json:"monthTotal"`
		Summary    aggregate.Summary      `json:"summary"`
		Breakdown  []CategoryRow          `json:"breakdown"`
		Budgets    []BudgetCard           `json:"budgets"`
		Trend      []core.MonthlySpending `json:"trend"`
		Recent     []Transaction          `json:"recent"`
	}

	CalendarDay struct {
		core.DailySpending
		Expenses []Transaction `json:"expenses"`
	}

	Calendar struct {
		Year  int           `json:"year"`
		Month int           `json:"month"`
		Total core.Money    `json:"total"`
		Days  []CalendarDay `json:"days"`
	}

	YearTrend struct {
		Year   int                    `json:"year"`
		Months []core.MonthlySpending `json:"months"`
	}

	Report struct {
		Window    aggregate.Window `json:"window"`
		From      core.Date        `json:"from"`
		To        core.Date        `json:"to"`
		Total     core.Money       `json:"total"`
		Count     int              `json:"count"`
		Breakdown []CategoryRow    `json:"breakdown"`
		Trend     []YearTrend      `json:"trend"`
	}
)

// ReportService builds read models from a snapshot and caches them until
// the next write.
type ReportService struct {
	snapshots records.SnapshotReader
	cache     cache.Cache[any]
	logger    *applog.Logger

	// gen counts invalidations; a view built from an older snapshot is not stored.
	mu  sync.Mutex
	gen uint64
}

func NewReportService(snapshots records.SnapshotReader, c cache.Cache[any], logger *applog.Logger) *ReportService {
	return &ReportService{
		snapshots: snapshots,
		cache:     c,
		logger:    logger.WithComponent(applog.ComponentReports),
	}
}

// Invalidate drops every cached view.
func (s *ReportService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *ReportService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// store caches view unless an invalidation happened since gen was read.
func (s *ReportService) store(key string, view any, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.cache.Set(key, view)
	}
}

func cached[T any](ctx context.Context, s *ReportService, key string, build func(core.Snapshot) T) (T, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if view, ok := v.(T); ok {
				return view, nil
			}
		}
	}

	var zero T
	gen := s.generation()
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return zero, err
	}

	start := time.Now()
	view := build(snap)
	s.logger.DebugContext(ctx, "Report built", "key", key, applog.FieldDuration, time.Since(start).Milliseconds())

	if s.cache != nil {
		s.store(key, view, gen)
	}
	return view, nil
}

// Dashboard summarizes the month containing ref.
func (s *ReportService) Dashboard(ctx context.Context, ref core.Date) (Dashboard, error) {
	return cached(ctx, s, "dashboard:"+ref.String(), func(snap core.Snapshot) Dashboard {
		idx := aggregate.NewCategoryIndex(snap.Categories)
		month := aggregate.FilterByPeriod(snap.Expenses, ref, aggregate.SingleMonth())

		cards := make([]BudgetCard, 0, dashboardBudgetCards)
		for _, b := range snap.Budgets {
			if len(cards) == dashboardBudgetCards {
				break
			}
			from, to := aggregate.PeriodWindow(b.Period, ref)
			cards = append(cards, BudgetCard{
				Budget:      b,
				Category:    idx.Resolve(b.CategoryID),
				From:        from,
				To:          to,
				Utilization: aggregate.CurrentPeriodUtilization(b, snap.Expenses, ref),
			})
		}

		return Dashboard{
			Date:       ref,
			MonthTotal: aggregate.TotalSpending(month),
			Summary:    aggregate.BudgetSummary(snap.Budgets, month),
			Breakdown:  breakdownRows(idx, month),
			Budgets:    cards,
			Trend:      aggregate.MonthlyTrend(snap.Expenses, ref.Year()),
			Recent:     transactions(idx, aggregate.Recent(snap.Expenses, dashboardRecent)),
		}
	})
}

// Calendar returns the daily totals of a month with each day's expenses.
func (s *ReportService) Calendar(ctx context.Context, year, month int) (Calendar, error) {
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return Calendar{}, fmt.Errorf("%w: month %d-%d", core.ErrInvalidArgument, year, month)
	}
	return cached(ctx, s, fmt.Sprintf("calendar:%04d-%02d", year, month), func(snap core.Snapshot) Calendar {
		idx := aggregate.NewCategoryIndex(snap.Categories)
		byDay := aggregate.ByDay(snap.Expenses, year, month)

		cal := Calendar{Year: year, Month: month}
		for _, d := range aggregate.DailyTotals(snap.Expenses, year, month) {
			cal.Total = cal.Total.Add(d.Amount)
			cal.Days = append(cal.Days, CalendarDay{
				DailySpending: d,
				Expenses:      transactions(idx, byDay[d.Date.Day()]),
			})
		}
		return cal
	})
}

// Report covers the window around ref: totals, breakdown and the monthly
// trend of every year the window touches.
func (s *ReportService) Report(ctx context.Context, ref core.Date, w aggregate.Window) (Report, error) {
	key := fmt.Sprintf("report:%s:%s:%d", ref, w.Kind, w.Months)
	return cached(ctx, s, key, func(snap core.Snapshot) Report {
		idx := aggregate.NewCategoryIndex(snap.Categories)
		from, to := w.Bounds(ref)
		inWindow := aggregate.FilterBetween(snap.Expenses, from, to)

		r := Report{
			Window:    w,
			From:      from,
			To:        to,
			Total:     aggregate.TotalSpending(inWindow),
			Count:     len(inWindow),
			Breakdown: breakdownRows(idx, inWindow),
		}
		for y := from.Year(); y <= to.Year(); y++ {
			r.Trend = append(r.Trend, YearTrend{Year: y, Months: aggregate.MonthlyTrend(inWindow, y)})
		}
		return r
	})
}

// Trend returns the twelve monthly totals of year.
func (s *ReportService) Trend(ctx context.Context, year int) ([]core.MonthlySpending, error) {
	return cached(ctx, s, fmt.Sprintf("trend:%04d", year), func(snap core.Snapshot) []core.MonthlySpending {
		return aggregate.MonthlyTrend(snap.Expenses, year)
	})
}

// Ledger lists expenses matching term and category, newest first.
func (s *ReportService) Ledger(ctx context.Context, term, categoryID string) ([]Transaction, error) {
	key := fmt.Sprintf("ledger:%q:%q", categoryID, term)
	return cached(ctx, s, key, func(snap core.Snapshot) []Transaction {
		idx := aggregate.NewCategoryIndex(snap.Categories)
		found := aggregate.Search(snap.Expenses, term, categoryID)
		return transactions(idx, aggregate.SortByDateDesc(found))
	})
}

func breakdownRows(idx aggregate.CategoryIndex, expenses []core.Expense) []CategoryRow {
	sorted := aggregate.SortBreakdown(aggregate.CategoryBreakdown(expenses))
	rows := make([]CategoryRow, 0, len(sorted))
	for _, cs := range sorted {
		rows = append(rows, CategoryRow{
			Category:   idx.Resolve(cs.CategoryID),
			Amount:     cs.Amount,
			Percentage: cs.Percentage,
		})
	}
	return rows
}

func transactions(idx aggregate.CategoryIndex, expenses []core.Expense) []Transaction {
	out := make([]Transaction, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, Transaction{Expense: e, Category: idx.Resolve(e.CategoryID)})
	}
	return out
}

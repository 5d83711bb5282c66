package sheets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"glance/internal/aggregate"
	"glance/internal/core"
	"glance/internal/services"
)

func TestReportRows(t *testing.T) {
	expenses := []core.Expense{
		{Amount: core.Money{Cents: 120000}, Date: core.NewDate(2025, 4, 1), CategoryID: "1"},
		{Amount: core.Money{Cents: 8550}, Date: core.NewDate(2025, 4, 5), CategoryID: "2"},
	}
	r := services.Report{
		Window: aggregate.SingleMonth(),
		From:   core.NewDate(2025, 4, 1),
		To:     core.NewDate(2025, 4, 30),
		Total:  core.Money{Cents: 128550},
		Count:  2,
		Breakdown: []services.CategoryRow{
			{Category: core.Category{Name: "Housing"}, Amount: core.Money{Cents: 120000}, Percentage: decimal.RequireFromString("93.349")},
			{Category: core.UnknownCategory, Amount: core.Money{Cents: 8550}, Percentage: decimal.RequireFromString("6.651")},
		},
		Trend: []services.YearTrend{{Year: 2025, Months: aggregate.MonthlyTrend(expenses, 2025)}},
	}
	generated := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	rows := ReportRows(r, generated)

	// summary(4) + blank + header + 2 categories + blank + year header + 12 months
	if len(rows) != 22 {
		t.Fatalf("got %d rows, want 22", len(rows))
	}
	if got := rows[0]; got[1] != "month" || got[2] != "2025-04-01" || got[3] != "2025-04-30" {
		t.Errorf("header row = %v", got)
	}
	if got := rows[1][1]; got != "2025-05-01T08:00:00Z" {
		t.Errorf("generated = %v", got)
	}
	if got := rows[2][1]; got != "1285.50" {
		t.Errorf("total = %v", got)
	}
	if got := rows[6]; got[0] != "Housing" || got[1] != "1200.00" || got[2] != "93.35" {
		t.Errorf("first category row = %v", got)
	}
	if got := rows[7][0]; got != core.UnknownCategoryName {
		t.Errorf("dangling category rendered as %v", got)
	}
	if got := rows[13]; got[0] != "Apr" || got[1] != "1285.50" {
		t.Errorf("April trend row = %v", got)
	}
}

func TestReportRowsEmpty(t *testing.T) {
	rows := ReportRows(services.Report{Window: aggregate.Year()}, time.Now())
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(rows))
	}
}

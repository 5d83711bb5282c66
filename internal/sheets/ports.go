// Package sheets renders reports as spreadsheet rows and defines the port
// used to push them to an external spreadsheet.
package sheets

import (
	"context"
	"time"

	"glance/internal/services"
)

// ReportWriter replaces the content of a report sheet. It returns the range
// that was written.
type ReportWriter interface {
	WriteReport(ctx context.Context, r services.Report, generated time.Time) (string, error)
}

// ReportRows lays out a report as a value matrix: a summary block, the
// category breakdown and the monthly trend of each year, separated by blank
// rows. Amounts are plain decimal strings so the sheet can parse them.
func ReportRows(r services.Report, generated time.Time) [][]any {
	rows := [][]any{
		{"Report", string(r.Window.Kind), r.From.String(), r.To.String()},
		{"Generated", generated.UTC().Format(time.RFC3339)},
		{"Total", r.Total.Decimal().StringFixed(2)},
		{"Expenses", r.Count},
		{},
		{"Category", "Amount", "Percentage"},
	}
	for _, row := range r.Breakdown {
		rows = append(rows, []any{row.Category.Name, row.Amount.Decimal().StringFixed(2), row.Percentage.StringFixed(2)})
	}
	for _, yt := range r.Trend {
		rows = append(rows, []any{}, []any{"Month", yt.Year})
		for _, m := range yt.Months {
			rows = append(rows, []any{m.Month, m.Amount.Decimal().StringFixed(2)})
		}
	}
	return rows
}

package worker

import (
	"context"
	"fmt"
	"time"

	"glance/internal/aggregate"
	"glance/internal/amqp"
	"glance/internal/core"
	applog "glance/internal/log"
	"glance/internal/services"
	"glance/internal/sheets"
)

// ReportBuilder produces the report exported to the sheet.
type ReportBuilder interface {
	Report(ctx context.Context, ref core.Date, w aggregate.Window) (services.Report, error)
}

// ExportWorker rewrites the report sheet whenever a record changes.
type ExportWorker struct {
	reports ReportBuilder
	writer  sheets.ReportWriter
	window  aggregate.Window
	logger  *applog.Logger
	now     func() time.Time
}

func NewExportWorker(reports ReportBuilder, writer sheets.ReportWriter, logger *applog.Logger) *ExportWorker {
	return &ExportWorker{
		reports: reports,
		writer:  writer,
		window:  aggregate.SingleMonth(),
		logger:  logger.WithComponent(applog.ComponentWorker),
		now:     time.Now,
	}
}

// HandleRecordChanged exports the month of the changed expense, or the
// current month for any other change.
func (w *ExportWorker) HandleRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	ref := core.DateOf(w.now())
	if msg.Entity == amqp.EntityExpense && msg.Date != "" {
		if d, err := core.ParseDate(msg.Date); err == nil {
			ref = d
		} else {
			w.logger.WarnContext(ctx, "Ignoring malformed date in message",
				applog.FieldRecordID, msg.ID,
				applog.FieldDate, msg.Date)
		}
	}

	w.logger.InfoContext(ctx, "Processing record change",
		applog.FieldEntity, msg.Entity,
		applog.FieldOperation, msg.Operation,
		applog.FieldRecordID, msg.ID)

	return w.export(ctx, ref)
}

// ExportNow exports the current month.
func (w *ExportWorker) ExportNow(ctx context.Context) error {
	return w.export(ctx, core.DateOf(w.now()))
}

func (w *ExportWorker) export(ctx context.Context, ref core.Date) error {
	start := time.Now()

	report, err := w.reports.Report(ctx, ref, w.window)
	if err != nil {
		return fmt.Errorf("build report for %s: %w", ref, err)
	}

	rng, err := w.writer.WriteReport(ctx, report, w.now())
	if err != nil {
		return fmt.Errorf("write report for %s: %w", ref, err)
	}

	w.logger.InfoContext(ctx, "Report exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldDate, ref.String(),
		applog.FieldSheetRange, rng,
		applog.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"glance/internal/amqp"
	"glance/internal/backend"
	"glance/internal/cli"
	"glance/internal/config"
	applog "glance/internal/log"
	"glance/internal/services"
	gsheet "glance/internal/sheets/google"
	"glance/internal/worker"
)

func main() {
	// Load .env file for local development (ignore a missing file)
	envErr := cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	if envErr != nil {
		logger.Warn("Failed to load .env file", applog.FieldError, envErr.Error())
	}
	logger.Info("Starting glance-worker")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateExport)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}
	if backendConfig.Type == backend.MemoryBackend {
		logger.Warn("Memory backend is not shared with the server; exports will only see this process's records")
	}
	// The worker only reads records, so it never publishes.
	backendConfig.AMQPURL = ""

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	be, err := backend.NewFactory(logger).CreateBackend(startCtx, backendConfig)
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// The server seeds the store; the worker only reads it.
	records := services.NewRecordService(be.Store, nil, logger)
	// Every export reads fresh data: the server's writes never reach a cache here.
	reports := services.NewReportService(records, nil, logger)

	sheetsClient, err := gsheet.NewClient(startCtx, cfg.GoogleSpreadsheetID, cfg.GoogleReportSheetName, gsheet.Credentials{
		JSON: cfg.GoogleServiceAccountJSON,
		File: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err.Error())
		_ = be.Cleanup()
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleReportSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
		_ = be.Cleanup()
		os.Exit(1)
	}

	exporter := worker.NewExportWorker(reports, sheetsClient, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", applog.FieldError, err.Error())
		}
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err.Error())
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// On startup, export the current month in case messages were missed
		if err := exporter.ExportNow(gctx); err != nil {
			logger.Error("Startup export failed", applog.FieldError, err.Error())
		}
		return nil
	})
	g.Go(func() error {
		err := amqpClient.ConsumeRecordChanged(gctx, exporter.HandleRecordChanged)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", applog.FieldError, err.Error())
		_ = amqpClient.Close()
		_ = be.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}

package main

import (
	"context"
	"os"
	"time"

	"glance/internal/backend"
	"glance/internal/cache"
	"glance/internal/cli"
	apphttp "glance/internal/http"
	applog "glance/internal/log"
	"glance/internal/services"
)

func main() {
	// Load .env file for local development (ignore a missing file)
	envErr := cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	if envErr != nil {
		logger.Warn("Failed to load .env file", applog.FieldError, envErr.Error())
	}

	cfg := cli.LoadAndValidateConfig(logger, nil)
	logger.Info("Starting glance", "port", cfg.Port, "backend", cfg.DataBackend)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	be, err := backend.NewFactory(logger).CreateBackend(startCtx, backendConfig)
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}

	records := services.NewRecordService(be.Store, be.Publisher, logger)
	if err := records.Init(startCtx); err != nil {
		logger.Error("Failed to initialize records", applog.FieldError, err.Error())
		_ = be.Cleanup()
		os.Exit(1)
	}

	reportCache := cache.NewLRUCache[any](cfg.CacheSize, cfg.CacheTTL)
	caches := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	caches.Register(reportCache)

	reports := services.NewReportService(records, reportCache, logger)
	records.OnChange(reports.Invalidate)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrendMonths:        cfg.TrendMonths,
	}, records, reports, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		caches.Stop()
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err.Error())
		}
	})
	caches.StartCleanup(ctx, time.Minute)

	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		_ = be.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

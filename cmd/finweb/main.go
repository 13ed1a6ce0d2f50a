package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"finweb/internal/backend"
	"finweb/internal/cache"
	"finweb/internal/cli"
	"finweb/internal/config"
	"finweb/internal/export"
	apphttp "finweb/internal/http"
	"finweb/internal/log"
	"finweb/internal/services"
	"finweb/internal/session"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// Session store
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid session backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize session backend", log.FieldError, err.Error(), "backend", cfg.SessionBackend)
		os.Exit(1)
	}

	caches := cache.NewManager(logger)
	if result.Cleaner != nil {
		caches.Register(result.Cleaner)
	}
	caches.StartCleanup(time.Minute)

	sessions := session.NewManager(result.Store, session.NewCodec(cfg.SessionSecret), cfg.SessionTTL, logger)

	gateway := cli.NewGateway(cfg, logger)
	publisher, closePublisher := cli.NewPublisher(cfg, logger)
	expenses := services.NewExpenseService(gateway, publisher, services.NewGenerationGuard(), logger)

	deps := apphttp.Deps{
		Gateway:            gateway,
		Expenses:           expenses,
		Sessions:           sessions,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}

	if cfg.SheetsEnabled() {
		exporter, err := newSheetsExporter(ctx, cfg, logger)
		if err != nil {
			logger.Warn("Sheets export disabled", log.FieldError, err.Error())
		} else {
			deps.Exporter = exporter
			logger.Info("Sheets export enabled", "sheet", cfg.GoogleSheetName)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps)

	// Configure server timeouts and limits. Writes may wait for a full backend call.
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.APITimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		caches.Stop()
		closePublisher()
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Session backend cleanup failed", log.FieldError, err.Error())
			}
		}
	})

	logger.Info("Starting finweb server",
		"port", cfg.Port,
		"api", cfg.APIRoot(),
		"session_backend", cfg.SessionBackend,
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}

// newSheetsExporter reads Google credentials from the configured file, or
// inline JSON when no file is set.
func newSheetsExporter(ctx context.Context, cfg *config.Config, logger *log.Logger) (*export.SheetsExporter, error) {
	creds := []byte(cfg.GoogleServiceAccountJSON)
	if cfg.GoogleServiceAccountFile != "" {
		b, err := os.ReadFile(cfg.GoogleServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials: %w", err)
		}
		creds = b
	}
	return export.NewSheetsExporter(ctx, export.SheetsConfig{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: creds,
	}, logger)
}

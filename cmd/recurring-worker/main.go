package main

import (
	"context"
	"os"
	"time"

	"finweb/internal/cli"
	"finweb/internal/log"
	"finweb/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	logger.Info("Starting recurring-worker")

	gateway := cli.NewGateway(cfg, logger)
	publisher, closePublisher := cli.NewPublisher(cfg, logger)
	defer closePublisher()

	triggerCfg := services.DefaultRecurringTriggerConfig()
	triggerCfg.Interval = cfg.RecurringTriggerInterval
	triggerCfg.CallTimeout = cfg.APITimeout

	trigger := services.NewRecurringTrigger(gateway, publisher, triggerCfg, logger)

	logger.Info("Recurring trigger configured",
		"interval", triggerCfg.Interval,
		"api", cfg.APIRoot(),
	)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := trigger.Stop(ctx); err != nil {
			logger.Error("Failed to stop recurring trigger", log.FieldError, err.Error())
		}
	})

	if err := trigger.Start(ctx); err != nil {
		logger.Error("Failed to start recurring trigger", log.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("Recurring-worker started, waiting for shutdown signal")
	cli.WaitForShutdown(ctx, done)
	logger.Info("Recurring-worker stopped")
}

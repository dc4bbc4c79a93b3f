package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"spendtrack/internal/amqp"
	"spendtrack/internal/cli"
	"spendtrack/internal/export"
	"spendtrack/internal/services"
	"spendtrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	result := cli.InitBackend(logger, cfg)
	if result.AMQP == nil {
		logger.Error("AMQP connection unavailable, cannot consume export jobs")
		os.Exit(1)
	}

	exportStore := export.NewMemoryStore()
	exportService := services.NewExportService(result.Store, exportStore, exportStore, nil)
	exportWorker := worker.NewExportWorker(exportService, exportStore)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := result.AMQP.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	})

	if err := exportWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup check failed", "error", err)
	}

	logger.Info("Starting export worker",
		"backend", cfg.DataBackend,
		"queue", cfg.AMQPQueue,
		"sweep_interval", cfg.SweepInterval.String())

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return result.AMQP.ConsumeExportJobs(egCtx, func(msg *amqp.ExportJobMessage) error {
			return exportWorker.HandleJobMessage(egCtx, msg)
		})
	})
	eg.Go(func() error {
		return exportWorker.RunScheduleSweeper(egCtx, cfg.SweepInterval)
	})

	if err := eg.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Export worker stopped gracefully")
}

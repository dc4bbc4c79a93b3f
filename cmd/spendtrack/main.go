package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"spendtrack/internal/cli"
	"spendtrack/internal/export"
	apphttp "spendtrack/internal/http"
	"spendtrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	result := cli.InitBackend(logger, cfg)

	exportStore := export.NewMemoryStore()
	expenseService := services.NewExpenseService(result.Store)
	exportService := services.NewExportService(result.Store, exportStore, exportStore, result.AMQP)

	srv := apphttp.NewServer(":"+cfg.Port, expenseService, exportService, logger, cfg.CacheTTL)
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := exportService.Close(); err != nil {
			logger.Error("Export service close error", "error", err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	})

	logger.Info("Starting spendtrack server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp_enabled", result.AMQP != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

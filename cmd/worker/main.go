package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/telaris-erp/telaris/internal/app"
	"github.com/telaris-erp/telaris/internal/platform/db"
	"github.com/telaris-erp/telaris/internal/reports"
	"github.com/telaris-erp/telaris/internal/shared"
	"github.com/telaris-erp/telaris/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		logger.Error("create export dir", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := jobs.NewMetrics(nil)
	idempotencyStore := shared.NewIdempotencyStore(pool)
	reportsService := reports.NewService(reports.NewRepository(pool), nil)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDeliveryNotification, Handler: jobs.NewDeliveryNotificationHandler(logger, metrics)},
			{Type: jobs.TaskReportExport, Handler: jobs.NewReportExportHandler(logger, metrics, reportsService, cfg.ExportDir)},
			{Type: jobs.TaskIdempotencyCleanup, Handler: jobs.NewIdempotencyCleanupHandler(logger, metrics, idempotencyStore, cfg.IdempotencyRetention)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.IdempotencyCleanupCron, Task: jobs.NewIdempotencyCleanupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil {
		logger.Error("worker exited", slog.Any("error", err))
		os.Exit(1)
	}
}

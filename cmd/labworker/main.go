package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/exam-lab-uploader/internal/bootstrap"
	"github.com/kirillkom/exam-lab-uploader/internal/config"
	"github.com/kirillkom/exam-lab-uploader/internal/observability/logging"
	"github.com/kirillkom/exam-lab-uploader/internal/observability/metrics"
)

const serviceName = "labworker"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		return 1
	}
	defer app.Close()

	if err := app.CheckWorkerDependencies(); err != nil {
		logger.Error("worker_dependencies_missing", "error", err)
		return 1
	}

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Events.SubscribeUploadAccepted(ctx, func(handlerCtx context.Context, uploadID string) error {
		if record, err := app.Registry.GetByID(handlerCtx, uploadID); err == nil {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(record.CreatedAt))
		}

		processCtx, cancel := context.WithTimeout(handlerCtx, time.Minute)
		defer cancel()

		start := time.Now()
		workerMetrics.StartUpload()
		err := app.ProcessUC.ProcessByID(processCtx, uploadID)
		workerMetrics.FinishUpload(serviceName, time.Since(start), err)

		if err != nil {
			return err
		}
		logger.Info("upload_processed", "upload_id", uploadID, "duration_ms", time.Since(start).Milliseconds())
		return nil
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		return 1
	}
	return 0
}

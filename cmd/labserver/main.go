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

	httpadapter "github.com/kirillkom/exam-lab-uploader/internal/adapters/http"
	"github.com/kirillkom/exam-lab-uploader/internal/bootstrap"
	"github.com/kirillkom/exam-lab-uploader/internal/config"
	"github.com/kirillkom/exam-lab-uploader/internal/observability/logging"
	"github.com/kirillkom/exam-lab-uploader/internal/observability/metrics"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}
	logger := logging.NewJSONLogger("labserver", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		return 1
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, app.IngestUC, app.Registry, metrics.NewHTTPServerMetrics("labserver")).Handler()
	server := &http.Server{
		Addr:              ":" + cfg.LabPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("labserver_listening", "port", cfg.LabPort, "route", cfg.LabUploadRoute)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("labserver_shutdown_failed", "error", err)
	}

	select {
	case err := <-serveErr:
		logger.Error("labserver_failed", "error", err)
		return 1
	default:
		return 0
	}
}

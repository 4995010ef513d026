package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/exam-lab-uploader/internal/config"
	"github.com/kirillkom/exam-lab-uploader/internal/core/ports"
	"github.com/kirillkom/exam-lab-uploader/internal/core/usecase"
	"github.com/kirillkom/exam-lab-uploader/internal/infrastructure/pdfinspect"
	"github.com/kirillkom/exam-lab-uploader/internal/infrastructure/queue/nats"
	"github.com/kirillkom/exam-lab-uploader/internal/infrastructure/repository/memory"
	"github.com/kirillkom/exam-lab-uploader/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/exam-lab-uploader/internal/infrastructure/resilience"
	"github.com/kirillkom/exam-lab-uploader/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/exam-lab-uploader/internal/infrastructure/uploadclient"
)

// App wires the lab server and worker dependencies.
type App struct {
	Config config.Config

	Registry ports.UploadRegistry
	// SharedRegistry is true when records live outside this process.
	SharedRegistry bool

	Events    *nats.UploadEvents
	IngestUC  ports.UploadIngestor
	ProcessUC ports.UploadProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry, db, err := newRegistry(ctx, cfg)
	if err != nil {
		return nil, err
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	var (
		events     *nats.UploadEvents
		eventsPort ports.UploadEvents
	)
	if strings.TrimSpace(cfg.NATSURL) != "" {
		resilienceCfg := resilience.DefaultConfig()
		resilienceCfg.BreakerEnabled = cfg.BreakerEnabled
		events, err = nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: resilience.NewExecutor(resilienceCfg, logger),
			Logger:             logger,
		})
		if err != nil {
			closeDB(db)
			return nil, fmt.Errorf("init upload events: %w", err)
		}
		eventsPort = events
	} else {
		logger.Warn("upload_events_disabled", "reason", "NATS_URL is empty")
	}

	inspector := pdfinspect.NewInspector()
	ingestUC := usecase.NewIngestUploadUseCase(registry, storage, inspector, eventsPort, cfg.LabMaxUploadBytes)
	processUC := usecase.NewProcessUploadUseCase(registry, storage, inspector)

	return &App{
		Config:         cfg,
		Registry:       registry,
		SharedRegistry: db != nil,
		Events:         events,
		IngestUC:       ingestUC,
		ProcessUC:      processUC,

		closeFn: func() {
			if events != nil {
				events.Close()
			}
			closeDB(db)
		},
	}, nil
}

// CheckWorkerDependencies reports why the worker cannot consume events from
// the lab server: it needs the event bus and a registry shared with the server.
func (a *App) CheckWorkerDependencies() error {
	if a.Events == nil {
		return errors.New("worker requires NATS_URL")
	}
	if !a.SharedRegistry {
		return errors.New("worker requires POSTGRES_DSN: the in-memory registry is not shared with labserver")
	}
	return nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// NewUploadController builds the client side: an HTTP transport pointed at
// the configured endpoint and the controller that classifies its results.
func NewUploadController(cfg config.Config, logger *slog.Logger) (*usecase.UploadController, error) {
	endpoint := strings.TrimSpace(cfg.UploadEndpoint)
	if endpoint == "" {
		return nil, errors.New("upload endpoint is empty")
	}
	client := uploadclient.New(endpoint, uploadclient.Options{Timeout: cfg.UploadTimeout()})
	return usecase.NewUploadController(client, logger), nil
}

func newRegistry(ctx context.Context, cfg config.Config) (ports.UploadRegistry, *sql.DB, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return memory.NewUploadRegistry(), nil, nil
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	registry := postgres.NewUploadRegistry(db)
	if err := registry.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return registry, db, nil
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}

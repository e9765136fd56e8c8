package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mfaber/hindsight/internal/api"
	"github.com/mfaber/hindsight/internal/api/job"
	"github.com/mfaber/hindsight/internal/config"
	"github.com/mfaber/hindsight/internal/core"
	"github.com/mfaber/hindsight/internal/metrics"
	"github.com/mfaber/hindsight/internal/storage/archive"
)

const shutdownTimeout = 10 * time.Second

// App wires config, logging, metrics, artifact storage and the HTTP server
// into a runnable service.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  archive.Storage
	jobs   *job.Store
	server *api.Server
}

// New builds the service from a validated config.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := newArchive(cfg.Archive)
	if err != nil {
		return nil, err
	}

	reg := metrics.NewRegistry()
	jobs := job.NewStore(cfg.Server.MaxJobs,
		time.Duration(cfg.Server.JobTTLMinutes)*time.Minute)

	server := api.NewServer(api.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		APIKey:    cfg.Server.APIKey,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
	}, jobs, store, reg, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
		jobs:   jobs,
		server: server,
	}, nil
}

// newArchive selects the artifact backend from config.
func newArchive(cfg config.ArchiveConfig) (archive.Storage, error) {
	switch cfg.Backend {
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return archive.NewLocalFS(cfg.Path)
	}
}

// Archive exposes the artifact store for CLI commands sharing the app wiring.
func (a *App) Archive() archive.Storage {
	return a.store
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return core.WrapError(core.ErrInternal, err)
	}
	return <-errCh
}

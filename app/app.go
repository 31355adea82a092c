// Package app wires the configured client, offset store and repository
// together for the command line tools.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pevans/sfnews/config"
	"github.com/pevans/sfnews/listing"
	"github.com/pevans/sfnews/pagination"
	"github.com/pevans/sfnews/remote"
	"github.com/pevans/sfnews/repository"
)

// App holds the long-lived pieces shared by every command.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *remote.Metrics
	Client  *remote.Client
	Store   *pagination.SQLiteStore
	Repo    *repository.ArticleRepository
}

// Option configures New.
type Option func(*options)

type options struct {
	connectivity remote.Connectivity
	forced       bool
}

// WithConnectivity overrides the probe built from the config, e.g. to force
// offline mode.
func WithConnectivity(c remote.Connectivity) Option {
	return func(o *options) {
		o.connectivity = c
		o.forced = true
	}
}

// New opens the offset store and builds the repository described by cfg.
// Close releases the store.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !o.forced && !cfg.Connectivity.Disabled {
		o.connectivity = remote.DialProbe{
			Address: cfg.Connectivity.ProbeAddress,
			Timeout: cfg.Connectivity.ProbeTimeout,
		}
	}

	client, err := remote.NewClient(cfg.API.BaseURL,
		remote.WithTimeout(cfg.API.Timeout),
		remote.WithRateLimit(cfg.API.RequestsPerSecond),
		remote.WithUserAgent(cfg.API.UserAgent),
		remote.WithClientLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	if err := ensureDir(cfg.Storage.DSN); err != nil {
		return nil, err
	}
	store, err := pagination.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open offset store: %w", err)
	}

	metrics := remote.NewMetrics()
	pipeline := &remote.Pipeline{
		Connectivity: o.connectivity,
		Metrics:      metrics,
		Logger:       logger,
	}

	coord := pagination.NewCoordinator(client, store,
		pagination.WithPipeline(pipeline),
		pagination.WithPageSize(cfg.API.PageSize),
		pagination.WithLogger(logger),
	)

	logger.Debug("app initialized",
		"base_url", cfg.API.BaseURL,
		"dsn", cfg.Storage.DSN,
		"page_size", cfg.API.PageSize,
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		Client:  client,
		Store:   store,
		Repo:    repository.NewArticleRepository(client, coord, pipeline, logger),
	}, nil
}

// NewSession creates a list session configured from the app.
func (a *App) NewSession() *listing.Session {
	return listing.NewSession(a.Repo,
		listing.WithDebounce(a.Config.Search.Debounce),
		listing.WithLogger(a.Logger),
	)
}

// NewDetailSession creates a detail session over the app's repository.
func (a *App) NewDetailSession() *listing.DetailSession {
	return listing.NewDetailSession(a.Repo, a.Logger)
}

// Close closes the offset store.
func (a *App) Close() error {
	return a.Store.Close()
}

// ensureDir creates the directory holding a file DSN.
func ensureDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	gcstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/jaeha-dev/music-metrics-crawler/internal/archive"
	archivegcs "github.com/jaeha-dev/music-metrics-crawler/internal/archive/gcs"
	archivelocal "github.com/jaeha-dev/music-metrics-crawler/internal/archive/local"
	archivemem "github.com/jaeha-dev/music-metrics-crawler/internal/archive/memory"
	"github.com/jaeha-dev/music-metrics-crawler/internal/clock/system"
	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
	"github.com/jaeha-dev/music-metrics-crawler/internal/config"
	"github.com/jaeha-dev/music-metrics-crawler/internal/fetch"
	"github.com/jaeha-dev/music-metrics-crawler/internal/id/uuid"
	"github.com/jaeha-dev/music-metrics-crawler/internal/logging"
	"github.com/jaeha-dev/music-metrics-crawler/internal/platform"
	publishpubsub "github.com/jaeha-dev/music-metrics-crawler/internal/publish/pubsub"
	"github.com/jaeha-dev/music-metrics-crawler/internal/resolve"
	"github.com/jaeha-dev/music-metrics-crawler/internal/runlog"
	storememory "github.com/jaeha-dev/music-metrics-crawler/internal/store/memory"
	storepostgres "github.com/jaeha-dev/music-metrics-crawler/internal/store/postgres"
)

// app bundles the wired services behind the CLI commands.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	engine *collect.Engine
	store  collect.MetricStore

	closers []func()
}

// buildApp assembles the full collection stack from configuration.
func buildApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	policy := fetch.NewRetryPolicy(
		cfg.HTTP.MaxRetries,
		time.Duration(cfg.HTTP.BackoffInitialMs)*time.Millisecond,
		time.Duration(cfg.HTTP.BackoffMaxMs)*time.Millisecond,
	)

	static := fetch.NewStatic(fetch.StaticConfig{
		UserAgent: cfg.Collector.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	}, policy, logging.Named(logger, "static"))

	var headless collect.Fetcher
	if cfg.Headless.Enabled {
		hf := fetch.NewHeadless(fetch.HeadlessConfig{
			UserAgent:         cfg.Collector.UserAgent,
			NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
			SettleWait:        time.Duration(cfg.Headless.SettleWaitMs) * time.Millisecond,
		}, policy, logging.Named(logger, "headless"))
		a.closers = append(a.closers, hf.Close)
		headless = hf
	}

	registry := platform.NewRegistry()
	resolver := resolve.New(static, registry, logging.Named(logger, "resolver"))

	store, err := a.buildStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, store.Close)

	var runLogger collect.RunLogger
	if cfg.RunLog.Enabled {
		fileLog, err := runlog.New(runlog.Config{BaseDir: cfg.RunLog.BaseDir})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init run log: %w", err)
		}
		runLogger = fileLog
	}

	archiveStore, err := a.buildArchive(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	publisher, err := a.buildPublisher(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	engine, err := collect.NewEngine(
		static,
		headless,
		registry,
		resolver,
		store,
		runLogger,
		archiveStore,
		publisher,
		system.New(),
		uuid.New(),
		collect.EngineConfig{
			Mode:     cfg.Mode(),
			Enabled:  cfg.EnabledPlatforms(),
			Topic:    cfg.Collector.Topic,
			Archive:  archiveStore != nil,
			Language: cfg.Collector.Language,
		},
		logging.Named(logger, "engine"),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init engine: %w", err)
	}
	a.engine = engine
	return a, nil
}

func (a *app) buildStore(ctx context.Context) (collect.MetricStore, error) {
	if a.cfg.DB.DSN == "" {
		a.logger.Warn("no db.dsn configured, metrics stay in memory")
		return storememory.New(), nil
	}
	store, err := storepostgres.New(ctx, storepostgres.Config{
		DSN:      a.cfg.DB.DSN,
		MaxConns: int32(a.cfg.DB.MaxConns),
		MinConns: int32(a.cfg.DB.MinConns),
	})
	if err != nil {
		return nil, fmt.Errorf("init metric store: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func (a *app) buildArchive(ctx context.Context) (collect.ArchiveStore, error) {
	switch a.cfg.Archive.Provider {
	case "", "none":
		return archive.Noop{}, nil
	case "memory":
		return archivemem.New(), nil
	case "local":
		store, err := archivelocal.New(archivelocal.Config{BaseDir: a.cfg.Archive.BaseDir})
		if err != nil {
			return nil, fmt.Errorf("init local archive: %w", err)
		}
		return store, nil
	case "gcs":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		store, err := archivegcs.New(client, archivegcs.Config{Bucket: a.cfg.Archive.GCSBucket})
		if err != nil {
			return nil, fmt.Errorf("init gcs archive: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown archive provider %q", a.cfg.Archive.Provider)
	}
}

func (a *app) buildPublisher(ctx context.Context) (collect.Publisher, error) {
	if !a.cfg.PubSub.Enabled {
		return nil, nil
	}
	client, err := pubsub.NewClient(ctx, a.cfg.PubSub.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("init pubsub client: %w", err)
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	publisher, err := publishpubsub.New(client)
	if err != nil {
		return nil, fmt.Errorf("init publisher: %w", err)
	}
	return publisher, nil
}

// Close releases everything in reverse construction order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

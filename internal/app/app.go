// Package app initializes and holds long-lived application services, acting
// as a dependency injection container. It is initialized once at startup and
// passed to the command layer.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/tpbkitchens/maintsync/internal/api"
	"github.com/tpbkitchens/maintsync/internal/archive"
	"github.com/tpbkitchens/maintsync/internal/config"
	"github.com/tpbkitchens/maintsync/internal/fetch"
	"github.com/tpbkitchens/maintsync/internal/logging"
	"github.com/tpbkitchens/maintsync/internal/metrics"
	"github.com/tpbkitchens/maintsync/internal/progress"
	"github.com/tpbkitchens/maintsync/internal/publisher"
	"github.com/tpbkitchens/maintsync/internal/remote"
	"github.com/tpbkitchens/maintsync/internal/state"
	"github.com/tpbkitchens/maintsync/internal/syncer"
	"github.com/tpbkitchens/maintsync/internal/traverse"
)

// App holds the shared, long-lived services for one process instance.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	states    state.Store
	remote    remote.Store
	pub       publisher.Publisher
	snapshots archive.Store
	hub       *progress.Hub
	opsServer *http.Server
}

// New builds every service the configuration asks for. It fails fast: any
// provider that cannot be initialized aborts startup.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	metrics.Init()

	a := &App{cfg: cfg, logger: logger}

	a.states, err = state.NewSQLiteStore(cfg.State.Path)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	if a.remote, err = newRemoteStore(ctx, cfg, logger); err != nil {
		a.closeQuietly()
		return nil, err
	}
	if a.pub, err = newPublisher(ctx, cfg, logger); err != nil {
		a.closeQuietly()
		return nil, err
	}
	if a.snapshots, err = newArchive(ctx, cfg, logger); err != nil {
		a.closeQuietly()
		return nil, err
	}

	a.hub = progress.NewHub(progress.Config{Logger: logger},
		progress.NewLogSink(logger),
		progress.NewPromSink(),
	)

	if cfg.Server.Enabled {
		a.startOpsServer()
	}

	return a, nil
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// States returns the durable traversal-state store.
func (a *App) States() state.Store { return a.states }

// Remote returns the configured remote record store.
func (a *App) Remote() remote.Store { return a.remote }

// NewController assembles a traversal controller over the app's services.
// The fetcher is built per controller; chromedp holds a browser process that
// should not outlive the run.
func (a *App) NewController() (*traverse.Controller, func(), error) {
	fetcher, err := a.newFetcher()
	if err != nil {
		return nil, nil, err
	}
	ctrl := traverse.New(
		traverse.Config{
			ListingURL: a.cfg.Portal.ListingURL,
			Pace:       a.cfg.Pace(),
		},
		a.states,
		fetcher,
		syncer.New(a.remote, a.logger),
		a.snapshots,
		a.hub,
		a.pub,
		nil,
		a.logger,
	)
	cleanup := func() {
		if err := fetcher.Close(); err != nil {
			a.logger.Warn("fetcher close failed", zap.Error(err))
		}
	}
	return ctrl, cleanup, nil
}

// Close shuts services down in reverse dependency order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.opsServer != nil {
		if err := a.opsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("ops server shutdown: %w", err))
		}
	}
	if a.hub != nil {
		if err := a.hub.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.snapshots != nil {
		if err := a.snapshots.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close archive: %w", err))
		}
	}
	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if a.remote != nil {
		if err := a.remote.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close remote store: %w", err))
		}
	}
	if a.states != nil {
		if err := a.states.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close state store: %w", err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}

func (a *App) closeQuietly() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.Close(ctx)
}

func (a *App) newFetcher() (fetch.Fetcher, error) {
	fcfg := fetch.Config{
		UserAgent:  a.cfg.Portal.UserAgent,
		Cookie:     a.cfg.Portal.Cookie,
		Timeout:    a.cfg.FetchTimeout(),
		NavTimeout: a.cfg.NavTimeout(),
	}
	switch a.cfg.Fetch.Renderer {
	case "chromedp":
		a.logger.Info("using headless renderer")
		return fetch.NewChromedp(fcfg)
	default:
		return fetch.NewColly(fcfg), nil
	}
}

func (a *App) startOpsServer() {
	srv := api.NewServer(a.states, a.logger)
	a.opsServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.logger.Info("ops server listening", zap.Int("port", a.cfg.Server.Port))
	go func() {
		if err := a.opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("ops server failed", zap.Error(err))
		}
	}()
}

func newRemoteStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (remote.Store, error) {
	switch cfg.Remote.Provider {
	case "supabase":
		logger.Info("using Supabase remote store", zap.String("url", cfg.Remote.Supabase.URL))
		return remote.NewSupabaseStore(remote.SupabaseConfig{
			BaseURL:    cfg.Remote.Supabase.URL,
			APIKey:     cfg.Remote.Supabase.APIKey,
			JobsTable:  cfg.Remote.Supabase.JobsTable,
			ItemsTable: cfg.Remote.Supabase.ItemsTable,
		}, logger), nil
	case "postgres":
		logger.Info("connecting to PostgreSQL")
		store, err := remote.NewPostgresStore(ctx, cfg.Remote.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres store: %w", err)
		}
		return store, nil
	case "noop":
		logger.Info("using no-op remote store; records will be discarded")
		return remote.NoOpStore{}, nil
	default:
		return nil, fmt.Errorf("unknown remote provider: %s", cfg.Remote.Provider)
	}
}

func newPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (publisher.Publisher, error) {
	switch cfg.Publisher.Provider {
	case "pubsub":
		logger.Info("connecting to Pub/Sub", zap.String("topic", cfg.Publisher.TopicID))
		pub, err := publisher.NewPubSub(ctx, publisher.PubSubConfig{
			ProjectID: cfg.Publisher.ProjectID,
			TopicID:   cfg.Publisher.TopicID,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize publisher: %w", err)
		}
		return pub, nil
	case "noop":
		return publisher.NoOpPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown publisher provider: %s", cfg.Publisher.Provider)
	}
}

func newArchive(ctx context.Context, cfg config.Config, logger *zap.Logger) (archive.Store, error) {
	switch cfg.Archive.Provider {
	case "fs":
		logger.Info("archiving snapshots to filesystem", zap.String("dir", cfg.Archive.Dir))
		store, err := archive.NewFS(archive.FSConfig{BaseDir: cfg.Archive.Dir})
		if err != nil {
			return nil, fmt.Errorf("initialize snapshot archive: %w", err)
		}
		return store, nil
	case "gcs":
		logger.Info("archiving snapshots to GCS", zap.String("bucket", cfg.Archive.Bucket))
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		store, err := archive.NewGCS(client, archive.GCSConfig{
			Bucket: cfg.Archive.Bucket,
			Prefix: cfg.Archive.Prefix,
		})
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("initialize snapshot archive: %w", err)
		}
		return store, nil
	case "noop":
		return archive.NoOpStore{}, nil
	default:
		return nil, fmt.Errorf("unknown archive provider: %s", cfg.Archive.Provider)
	}
}

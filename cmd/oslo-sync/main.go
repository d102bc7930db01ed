// Command oslo-sync synchronises OSLO records into a search index.
package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/custodia-labs/oslo-sync/internal/adapters/driven/config/file"
	esengine "github.com/custodia-labs/oslo-sync/internal/adapters/driven/engine/elasticsearch"
	memengine "github.com/custodia-labs/oslo-sync/internal/adapters/driven/engine/memory"
	"github.com/custodia-labs/oslo-sync/internal/adapters/driven/events/nats"
	"github.com/custodia-labs/oslo-sync/internal/adapters/driven/metrics/prometheus"
	records "github.com/custodia-labs/oslo-sync/internal/adapters/driven/records/file"
	memstore "github.com/custodia-labs/oslo-sync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/oslo-sync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/oslo-sync/internal/adapters/driving/cli"
	"github.com/custodia-labs/oslo-sync/internal/core/domain"
	"github.com/custodia-labs/oslo-sync/internal/core/ports/driven"
	"github.com/custodia-labs/oslo-sync/internal/core/services"
	"github.com/custodia-labs/oslo-sync/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(cli.Execute(version, wire))
}

// wire builds the services for one command invocation.
func wire(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
	if err := file.LoadEnv(); err != nil {
		logger.Warn("Ignoring .env: %v", err)
	}

	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, nil, err
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, err
	}

	var closers []func()
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	engine, err := newEngine(settings.Engine, opts.DryRun)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, func() { _ = engine.Close() })

	runStore, closeStore, err := newRunStore(opts)
	if err != nil {
		release()
		return nil, nil, err
	}
	closers = append(closers, closeStore)

	syncOpts := []services.Option{
		services.WithConcurrency(settings.Sync.Concurrency),
		services.WithRateLimit(settings.Sync.RateLimit),
		services.WithRunStore(runStore),
	}

	if settings.Metrics.Addr != "" {
		observer := prometheus.NewObserver()
		metricsCtx, stop := context.WithCancel(ctx)
		closers = append(closers, stop)
		go func() {
			if err := observer.Serve(metricsCtx, settings.Metrics.Addr); err != nil {
				logger.Warn("Metrics endpoint stopped: %v", err)
			}
		}()
		syncOpts = append(syncOpts, services.WithObserver(observer))
	}

	if settings.Events.NatsURL != "" {
		publisher, err := nats.Connect(settings.Events.NatsURL, settings.Events.Subject)
		if err != nil {
			logger.Warn("Run events disabled: %v", err)
		} else {
			closers = append(closers, func() { _ = publisher.Close() })
			syncOpts = append(syncOpts, services.WithPublisher(publisher))
		}
	}

	synchronizer, err := services.NewSynchronizer(engine, syncOpts...)
	if err != nil {
		release()
		return nil, nil, err
	}
	closers = append(closers, synchronizer.Close)

	return &cli.Services{
		Synchronizer: synchronizer,
		History:      services.NewHistoryService(runStore),
		Settings:     settingsService,
		Loader:       records.NewLoader(),
	}, release, nil
}

func newEngine(settings domain.EngineSettings, dryRun bool) (driven.SearchEngine, error) {
	if dryRun {
		logger.Info("Dry run: using in-memory search engine")
		return memengine.New(memengine.WithAutoCreate(true)), nil
	}
	engine, err := esengine.New(settings)
	if err != nil {
		return nil, errors.Join(domain.ErrEngineUnavailable, err)
	}
	return engine, nil
}

// newRunStore keeps dry runs out of the persistent history.
func newRunStore(opts cli.Options) (driven.RunStore, func(), error) {
	if opts.DryRun {
		return memstore.NewRunStore(), func() {}, nil
	}

	dataDir := ""
	if opts.ConfigDir != "" {
		dataDir = filepath.Join(opts.ConfigDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Run history at %s", store.Path())
	return store.RunStore(), func() { _ = store.Close() }, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/reqsync/internal/adapters/driven/ai"
	badgercache "github.com/custodia-labs/reqsync/internal/adapters/driven/cache/badger"
	"github.com/custodia-labs/reqsync/internal/adapters/driven/cache/filecache"
	gcscache "github.com/custodia-labs/reqsync/internal/adapters/driven/cache/gcs"
	"github.com/custodia-labs/reqsync/internal/adapters/driven/config/file"
	csvexport "github.com/custodia-labs/reqsync/internal/adapters/driven/export/csv"
	"github.com/custodia-labs/reqsync/internal/adapters/driven/extractor"
	"github.com/custodia-labs/reqsync/internal/adapters/driven/metrics"
	"github.com/custodia-labs/reqsync/internal/adapters/driven/report"
	"github.com/custodia-labs/reqsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/reqsync/internal/connectors/filesystem"
	"github.com/custodia-labs/reqsync/internal/connectors/google"
	"github.com/custodia-labs/reqsync/internal/connectors/google/drive"
	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
	"github.com/custodia-labs/reqsync/internal/core/services"
	"github.com/custodia-labs/reqsync/internal/logger"
	"github.com/custodia-labs/reqsync/internal/normalisers"
)

// closers collects cleanup functions in opening order.
type closers []func() error

func (c *closers) add(f func() error) {
	*c = append(*c, f)
}

// close runs cleanups in reverse order and joins their errors.
func (c closers) close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// bootstrap builds every service from the settings in configDir.
// A missing source leaves the reconciler unset so settings can still be edited.
func bootstrap(ctx context.Context, configDir string) (_ *cli.Services, err error) {
	var cleanup closers
	defer func() {
		if err != nil {
			_ = cleanup.close()
		}
	}()

	// 1. Settings
	home := configDir
	if home == "" {
		if home, err = file.HomeDir(); err != nil {
			return nil, err
		}
	}
	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	logger.Debug("Using configuration %s", configStore.Path())

	// 2. Template and stores
	tmpl, err := file.NewTemplateLoader().Load(settings.Records.TemplatePath)
	if err != nil {
		return nil, err
	}
	dataDir := settings.Records.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(home, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	cleanup.add(store.Close)

	cacheStore, err := openCache(ctx, settings, home, store, &cleanup)
	if err != nil {
		return nil, err
	}

	var exporter driven.RecordExporter
	if settings.Records.ExportCSV != "" {
		exporter = csvexport.New(settings.Records.ExportCSV, true)
	}

	svc := &cli.Services{
		Settings:  settingsService,
		Records:   services.NewRecordService(store.RecordStore(tmpl.IdentityField), exporter, tmpl),
		Cache:     services.NewChangeCache(cacheStore),
		Validator: ai.NewConfigValidator(),
	}

	// 3. Source, oracle and reconciler
	source, watcher, err := openSource(ctx, settings)
	if err != nil {
		return nil, err
	}
	if source == nil {
		logger.Info("No requirements source configured")
		svc.Close = cleanup.close
		return svc, nil
	}

	oracle, err := ai.CreateOracle(ctx, &settings.Oracle)
	if err != nil {
		// Runs that need no generation still work.
		logger.Error("oracle unavailable: %v", err)
		oracle = nil
	}
	if oracle != nil {
		cleanup.add(oracle.Close)
	}

	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"), services.DefaultPrompts())
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	reportDir := settings.Report.Dir
	if reportDir == "" {
		reportDir = filepath.Join(home, "reports")
	}
	var metricsSink driven.MetricsSink
	if settings.Report.MetricsTextfile != "" {
		metricsSink = metrics.NewTextfile(settings.Report.MetricsTextfile)
	}

	reconciler, err := services.NewReconciler(services.ReconcilerPorts{
		Source:    source,
		Extractor: extractor.New(),
		Records:   store.RecordStore(tmpl.IdentityField),
		Cache:     cacheStore,
		Oracle:    oracle,
		Prompts:   prompts,
		Runs:      store.RunStore(),
		Reports:   report.NewFromEnv(reportDir),
		Metrics:   metricsSink,
		Exporter:  exporter,
	}, services.ReconcilerConfig{
		Template: tmpl,
		Mode:     settings.Run.Mode,
		Retry:    services.NewRetryPolicy(settings.Run.MaxRetries+1, settings.Run.RetryBase),
		Generator: services.GeneratorConfig{
			BatchSize:   settings.Run.BatchSize,
			Concurrency: settings.Run.Concurrency,
			MaxTokens:   settings.Oracle.MaxTokens,
			Temperature: settings.Oracle.Temperature,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create reconciler: %w", err)
	}

	svc.Reconciler = reconciler
	if watcher != nil {
		svc.Watcher = watcher
	}
	svc.Close = cleanup.close
	return svc, nil
}

// openCache opens the configured change cache backend.
func openCache(
	ctx context.Context,
	settings *domain.AppSettings,
	home string,
	store *sqlite.Store,
	cleanup *closers,
) (driven.CacheStore, error) {
	dir := settings.Cache.Dir
	if dir == "" {
		dir = filepath.Join(home, "cache")
	}

	switch settings.Cache.Backend {
	case domain.CacheBackendFile, "":
		return filecache.New(dir)
	case domain.CacheBackendSQLite:
		return store.CacheStore(), nil
	case domain.CacheBackendBadger:
		c, err := badgercache.Open(badgercache.Config{Path: dir})
		if err != nil {
			return nil, fmt.Errorf("open badger cache: %w", err)
		}
		cleanup.add(c.Close)
		return c, nil
	case domain.CacheBackendGCS:
		c, err := gcscache.New(ctx, gcscache.Config{
			Bucket:          settings.Cache.GCSBucket,
			Object:          settings.Cache.GCSObject,
			CredentialsFile: settings.GoogleCredentialsFile,
		})
		if err != nil {
			return nil, fmt.Errorf("open gcs cache: %w", err)
		}
		cleanup.add(c.Close)
		return c, nil
	default:
		return nil, &domain.ConfigurationError{
			Key:    "cache.backend",
			Reason: fmt.Sprintf("unknown backend %q", settings.Cache.Backend),
			Err:    domain.ErrInvalidInput,
		}
	}
}

// openSource returns the configured document source. Local files can also
// be watched; the watcher is nil for Drive.
func openSource(ctx context.Context, settings *domain.AppSettings) (driven.DocumentSource, cli.Watcher, error) {
	registry := normalisers.Default()

	switch {
	case settings.Source.DriveFileID != "":
		ts, err := google.NewTokenSource(ctx, settings.GoogleCredentialsFile, google.ScopeDriveReadOnly)
		if err != nil {
			return nil, nil, err
		}
		svc, err := google.NewDriveService(ctx, ts)
		if err != nil {
			return nil, nil, err
		}
		src, err := drive.New(svc, drive.Config{FileID: settings.Source.DriveFileID}, registry)
		if err != nil {
			return nil, nil, err
		}
		return src, nil, nil
	case settings.Source.Path != "":
		src := filesystem.New(settings.Source.Path, registry)
		return src, src, nil
	default:
		return nil, nil, nil
	}
}

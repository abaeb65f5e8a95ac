package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"bastion-hq/gateway/pkg/audit"
	auditstorage "bastion-hq/gateway/pkg/audit/storage"
	"bastion-hq/gateway/pkg/config"
	"bastion-hq/gateway/pkg/guardrail"
	"bastion-hq/gateway/pkg/pipeline"
	"bastion-hq/gateway/pkg/providers"
	"bastion-hq/gateway/pkg/retrieval"
	"bastion-hq/gateway/pkg/retrieval/corpus"
	"bastion-hq/gateway/pkg/routing"
	"bastion-hq/gateway/pkg/server"
	"bastion-hq/gateway/pkg/telemetry/health"
	"bastion-hq/gateway/pkg/telemetry/metrics"
	"bastion-hq/gateway/pkg/telemetry/tracing"
)

// gateway holds every component of a running Bastion instance.
type gateway struct {
	cfg *config.Config

	guardrails *guardrail.Engine
	router     *routing.Engine
	monitor    *routing.Monitor
	dispatcher *providers.Dispatcher
	documents  *retrieval.Store
	corpusDB   *corpus.SQLiteStore
	watcher    *corpus.Watcher
	sink       audit.Sink
	audit      *audit.Logger
	tracer     *tracing.Tracer
	metrics    *metrics.Collector
	health     *health.Checker
	pipeline   *pipeline.Orchestrator

	wg sync.WaitGroup
}

// newGateway builds the component graph described by cfg. Nothing runs in
// the background until start is called. On error every component opened so
// far is closed.
func newGateway(ctx context.Context, cfg *config.Config) (*gateway, error) {
	g := &gateway{cfg: cfg}
	built := false
	defer func() {
		if !built {
			_ = g.close(context.Background())
		}
	}()

	var err error

	if g.guardrails, err = newGuardrailEngine(&cfg.Guardrails); err != nil {
		return nil, err
	}

	g.router = newRoutingEngine(&cfg.Routing)
	g.dispatcher = newDispatcher(&cfg.Providers)

	if g.documents, g.corpusDB, err = openDocumentStore(ctx, &cfg.Retrieval); err != nil {
		return nil, err
	}

	if cfg.Retrieval.SeedFile != "" && cfg.Retrieval.WatchSeedFile {
		if g.watcher, err = corpus.NewWatcher(cfg.Retrieval.SeedFile, g.documents, 0); err != nil {
			return nil, fmt.Errorf("failed to create seed file watcher: %w", err)
		}
	}

	if g.sink, err = openAuditSink(&cfg.Audit); err != nil {
		return nil, err
	}
	g.audit = audit.NewLogger(g.sink)

	if g.tracer, err = tracing.New(&cfg.Telemetry.Tracing, Version); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	opts := []pipeline.Option{pipeline.WithTracer(g.tracer.Tracer())}
	if cfg.Telemetry.Metrics.Enabled {
		g.metrics = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		if err = g.metrics.RegisterProviderStatus(g.router); err != nil {
			return nil, fmt.Errorf("failed to register provider metrics: %w", err)
		}
		if err = g.metrics.RegisterDocumentCount(g.documents); err != nil {
			return nil, fmt.Errorf("failed to register corpus metrics: %w", err)
		}
		opts = append(opts, pipeline.WithObserver(g.metrics))
	}

	g.pipeline, err = pipeline.New(pipeline.Services{
		Guardrails: g.guardrails,
		Augmenter:  g.documents,
		Router:     g.router,
		Dispatcher: g.dispatcher,
		Audit:      g.audit,
	}, opts...)
	if err != nil {
		return nil, err
	}

	if cfg.Routing.Monitor.Enabled {
		g.monitor = routing.NewMonitor(g.router, g.dispatcher, routing.MonitorConfig{
			Schedule:     cfg.Routing.Monitor.Schedule,
			ProbeTimeout: cfg.Routing.Monitor.ProbeTimeout,
			Capacity:     cfg.Routing.Monitor.Capacity,
		})
	}

	g.health = health.New(cfg.Telemetry.Health.CheckTimeout)
	g.health.RegisterCheck(health.CheckProviders, health.ProvidersCheck(g.router, cfg.Telemetry.Health.MinAvailableProviders))
	g.health.RegisterCheck(health.CheckAudit, health.AuditCheck(g.sink))
	g.health.RegisterCheck(health.CheckDocuments, health.DocumentsCheck(g.documents))

	built = true
	return g, nil
}

// start launches the provider monitor and the seed file watcher.
func (g *gateway) start(ctx context.Context) error {
	if g.monitor != nil {
		if err := g.monitor.Start(ctx); err != nil {
			return fmt.Errorf("failed to start provider monitor: %w", err)
		}
	}

	if g.watcher != nil {
		g.wg.Add(1)
		go func() {
			defer g.wg.Done()
			if err := g.watcher.Watch(ctx); err != nil {
				slog.Error("seed file watcher failed", "error", err)
			}
		}()
	}
	return nil
}

// dependencies returns what the HTTP server routes to.
func (g *gateway) dependencies() server.Dependencies {
	deps := server.Dependencies{
		Pipeline:  g.pipeline,
		Audit:     g.audit,
		Documents: g.documents,
		Providers: g.router,
		Health:    g.health,
		Build: server.BuildInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
		},
	}
	if g.metrics != nil {
		deps.Metrics = g.metrics.Handler()
	}
	return deps
}

// close stops background work and releases storage. It is safe to call on
// a partially built gateway.
func (g *gateway) close(ctx context.Context) error {
	var errs []error

	if g.monitor != nil {
		g.monitor.Stop()
	}
	if g.watcher != nil {
		if err := g.watcher.Stop(); err != nil {
			errs = append(errs, err)
		}
		g.wg.Wait()
	}
	if g.tracer != nil {
		if err := g.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if g.audit != nil {
		if err := g.audit.Close(); err != nil {
			errs = append(errs, fmt.Errorf("audit close: %w", err))
		}
	} else if g.sink != nil {
		if err := g.sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("audit close: %w", err))
		}
	}
	if g.corpusDB != nil {
		if err := g.corpusDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("corpus close: %w", err))
		}
	}

	return errors.Join(errs...)
}

func newGuardrailEngine(cfg *config.GuardrailsConfig) (*guardrail.Engine, error) {
	custom := make([]guardrail.CustomRule, 0, len(cfg.CustomInjectionRules))
	for _, rule := range cfg.CustomInjectionRules {
		custom = append(custom, guardrail.CustomRule{Category: rule.Category, Pattern: rule.Pattern})
	}

	engine, err := guardrail.NewEngine(guardrail.Config{
		MaxInputLength:       cfg.MaxInputLength,
		MaxURLCount:          cfg.MaxURLCount,
		InjectionConfidence:  cfg.InjectionConfidence,
		CustomInjectionRules: custom,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create guardrail engine: %w", err)
	}
	return engine, nil
}

func newRoutingEngine(cfg *config.RoutingConfig) *routing.Engine {
	seeds := make([]routing.ProviderStatus, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		seeds = append(seeds, routing.ProviderStatus{
			Provider:       p.Name,
			Available:      p.Available,
			Latency:        p.Latency,
			LoadPercentage: p.LoadPercentage,
		})
	}
	return routing.NewEngine(seeds)
}

func newDispatcher(cfg *config.ProvidersConfig) *providers.Dispatcher {
	opts := []providers.Option{providers.WithCallTimeout(cfg.CallTimeout)}
	if !cfg.SimulateLatency {
		opts = append(opts, providers.WithDelayProvider(providers.NoDelay))
	}
	return providers.NewDispatcher(opts...)
}

// openDocumentStore assembles the corpus from the built-in documents, the
// seed file and the documents persisted by earlier runs. The returned
// database is nil when persistence is disabled.
func openDocumentStore(ctx context.Context, cfg *config.RetrievalConfig) (*retrieval.Store, *corpus.SQLiteStore, error) {
	var seed []retrieval.Document
	if cfg.LoadBuiltin {
		seed = append(seed, retrieval.DefaultDocuments()...)
	}
	if cfg.SeedFile != "" {
		docs, err := corpus.LoadFile(cfg.SeedFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load seed file: %w", err)
		}
		seed = append(seed, docs...)
	}

	opts := []retrieval.Option{
		retrieval.WithEmbedder(retrieval.NewHashEmbedder(cfg.EmbeddingDimension)),
		retrieval.WithAugmentation(cfg.AugmentTopK, cfg.AugmentMinSimilarity),
	}

	var db *corpus.SQLiteStore
	if cfg.DatabasePath != "" {
		if err := ensureParentDir(cfg.DatabasePath); err != nil {
			return nil, nil, err
		}
		var err error
		db, err = corpus.NewSQLiteStoreWithConfig(corpus.SQLiteConfig{
			Path:        cfg.DatabasePath,
			BusyTimeout: cfg.BusyTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open corpus database: %w", err)
		}
		persisted, err := db.Load(ctx)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to load persisted documents: %w", err)
		}
		seed = append(seed, persisted...)
		opts = append(opts, retrieval.WithPersister(db))
	}

	store := retrieval.NewStore(seed, opts...)
	slog.Info("document corpus loaded", "documents", store.Len(), "persistent", db != nil)
	return store, db, nil
}

// openAuditSink opens the configured audit backend.
func openAuditSink(cfg *config.AuditConfig) (audit.Sink, error) {
	switch cfg.Backend {
	case "memory":
		return auditstorage.NewMemorySink(), nil
	case "sqlite":
		if err := ensureParentDir(cfg.SQLite.Path); err != nil {
			return nil, err
		}
		sink, err := auditstorage.NewSQLiteSink(&auditstorage.SQLiteConfig{
			Path:         cfg.SQLite.Path,
			MaxOpenConns: cfg.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.SQLite.MaxIdleConns,
			WALMode:      cfg.SQLite.WALMode,
			BusyTimeout:  cfg.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open audit database: %w", err)
		}
		return sink, nil
	}
	return nil, fmt.Errorf("unsupported audit backend: %s (supported: sqlite, memory)", cfg.Backend)
}

func ensureParentDir(path string) error {
	if path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

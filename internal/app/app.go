// Package app wires adapters and core services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/versesearch/internal/adapters/driven/bleve"
	"github.com/custodia-labs/versesearch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/versesearch/internal/adapters/driven/elasticsearch"
	"github.com/custodia-labs/versesearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/versesearch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/core/ports/driven"
	"github.com/custodia-labs/versesearch/internal/core/services"
	"github.com/custodia-labs/versesearch/internal/logger"
)

// App holds the wired services and the resources they depend on.
type App struct {
	Search *services.SearchService
	Ingest *services.IngestCoordinator
	Index  *services.IndexManager
	Health *services.HealthService
	Locks  *services.IndexLocks

	// IndexName is the configured verse index.
	IndexName string

	backend driven.SearchBackend
	store   *sqlite.Store
}

// New builds the application from a validated configuration.
// No backend request is made; readiness is awaited on first use.
func New(_ context.Context, cfg file.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	compiler, err := services.NewQueryCompiler(CompilerConfig(cfg.Search))
	if err != nil {
		return nil, fmt.Errorf("query compiler: %w", err)
	}

	backend, err := newBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	a := &App{
		IndexName: cfg.Index.Name,
		Locks:     services.NewIndexLocks(),
		backend:   backend,
	}

	history, err := a.newHistory(cfg.History)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	replicas := 0
	if cfg.Index.Replicas != nil {
		replicas = *cfg.Index.Replicas
	}
	schema := domain.VerseSchema(cfg.Index.Name, cfg.Index.Shards, replicas)

	prober := services.NewReadinessProber(backend)
	a.Index = services.NewIndexManager(backend, prober, Backoff(cfg.Readiness), schema)
	a.Ingest = services.NewIngestCoordinator(backend, a.Index)
	a.Ingest.SetHistory(history)
	a.Search = services.NewSearchService(backend, compiler, cfg.Index.Name)
	a.Health = services.NewHealthService(backend, cfg.Index.Name)

	logger.Debug("Application wired (backend: %s, index: %s, history: %s)",
		cfg.Backend.Kind, cfg.Index.Name, cfg.History.Driver)
	return a, nil
}

// Close releases the backend and the history store.
func (a *App) Close() error {
	var errs []error
	if a.backend != nil {
		errs = append(errs, a.backend.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}

func newBackend(cfg file.BackendConfig) (driven.SearchBackend, error) {
	switch cfg.Kind {
	case file.BackendEmbedded:
		logger.Debug("Using embedded backend (data dir: %q)", cfg.DataDir)
		return bleve.NewBackend(cfg.DataDir), nil
	case file.BackendElasticsearch:
		conn, err := elasticsearch.NewConnection(ElasticsearchConfig(cfg))
		if err != nil {
			return nil, err
		}
		return elasticsearch.NewBackend(conn), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", domain.ErrInvalidInput, cfg.Kind)
	}
}

func (a *App) newHistory(cfg file.HistoryConfig) (driven.IngestionHistory, error) {
	switch cfg.Driver {
	case file.HistoryMemory:
		return memory.NewHistoryStore(), nil
	case file.HistorySQLite:
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		a.store = store
		logger.Debug("Ingestion history at %s", store.Path())
		return store.IngestionHistory(), nil
	default:
		return nil, fmt.Errorf("%w: unknown history driver %q", domain.ErrInvalidInput, cfg.Driver)
	}
}

// ElasticsearchConfig converts backend settings to client settings.
// Unset optional values keep the client defaults.
func ElasticsearchConfig(cfg file.BackendConfig) elasticsearch.Config {
	out := elasticsearch.DefaultConfig()
	if len(cfg.Addresses) > 0 {
		out.Addresses = cfg.Addresses
	}
	out.Username = cfg.Username
	out.Password = cfg.Password
	if cfg.InsecureSkipVerify != nil {
		out.InsecureSkipVerify = *cfg.InsecureSkipVerify
	}
	if cfg.MaxRetries != nil {
		out.MaxRetries = *cfg.MaxRetries
	}
	if cfg.RequestTimeout.Duration > 0 {
		out.RequestTimeout = cfg.RequestTimeout.Duration
	}
	if cfg.Compression != nil {
		out.Compression = *cfg.Compression
	}
	if cfg.MaxIdleConns > 0 {
		out.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.KeepAlive.Duration > 0 {
		out.KeepAlive = cfg.KeepAlive.Duration
	}
	return out
}

// Backoff converts readiness settings to a retry budget.
func Backoff(cfg file.ReadinessConfig) services.Backoff {
	return services.Backoff{
		MaxAttempts:   cfg.MaxAttempts,
		InitialDelay:  cfg.InitialDelay.Duration,
		MaxDelay:      cfg.MaxDelay.Duration,
		Multiplier:    cfg.Multiplier,
		HealthTimeout: cfg.HealthTimeout.Duration,
	}
}

// CompilerConfig converts search settings to compiler settings.
// Fields missing from the boost maps keep their default weight.
func CompilerConfig(cfg file.SearchConfig) services.QueryCompilerConfig {
	out := services.DefaultQueryCompilerConfig()
	applyBoosts(out.Boosts.Fuzzy, cfg.FuzzyBoosts)
	applyBoosts(out.Boosts.Phrase, cfg.PhraseBoosts)
	if cfg.PreTag != "" {
		out.PreTag = cfg.PreTag
	}
	if cfg.PostTag != "" {
		out.PostTag = cfg.PostTag
	}
	return out
}

// applyBoosts copies known field weights from src into dst.
// Unknown names are rejected earlier by file.Config.Validate.
func applyBoosts(dst map[domain.TextField]float64, src map[string]float64) {
	for name, boost := range src {
		f, err := domain.ParseTextField(name)
		if err != nil {
			continue
		}
		dst[f] = boost
	}
}

// Package bootstrap wires persisted settings, environment overrides, driven
// adapters and core services into a ready-to-use App.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/env"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/builtin"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

// App holds the wired services for one process.
type App struct {
	// Settings are the effective settings after environment overrides.
	Settings *domain.AppSettings

	Store     driven.ChunkStore
	StorePath string

	// Provider is nil when no completion provider is configured.
	Provider driven.CompletionProvider

	Ingest    *services.IngestService
	Watch     *services.WatchService
	Retrieval *services.RetrievalService
	Answer    *services.AnswerService
}

// OpenSettings returns the settings service over configDir/config.toml.
// An empty configDir selects ~/.sercha-rag.
func OpenSettings(configDir string) (*services.SettingsService, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return services.NewSettingsService(store), nil
}

// LoadSettings returns the persisted settings with environment overrides
// applied, validated.
func LoadSettings(configDir string) (*domain.AppSettings, error) {
	svc, err := OpenSettings(configDir)
	if err != nil {
		return nil, err
	}
	settings, err := svc.Get()
	if err != nil {
		return nil, err
	}
	if err := env.Load(settings); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// New loads settings for configDir and wires an App from them.
func New(ctx context.Context, configDir string) (*App, error) {
	settings, err := LoadSettings(configDir)
	if err != nil {
		return nil, err
	}
	return NewWithSettings(ctx, settings, configDir)
}

// NewWithSettings wires an App from settings. A missing completion provider
// is not an error: questions are then answered with an error notice.
func NewWithSettings(ctx context.Context, settings *domain.AppSettings, configDir string) (*App, error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	embedder, err := ai.CreateEmbeddingService(settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("creating embedding service: %w", err)
	}
	ranker, err := ai.CreateRanker(settings.RAG, embedder)
	if err != nil {
		return nil, fmt.Errorf("creating ranker: %w", err)
	}

	pipeline, err := postprocessors.NewIngestPipeline(settings.RAG)
	if err != nil {
		return nil, fmt.Errorf("building ingest pipeline: %w", err)
	}

	store, storePath, err := OpenStore(ctx, settings.Storage, configDir, ranker)
	if err != nil {
		return nil, err
	}

	provider, err := ai.CreateCompletionProvider(settings.Provider)
	if err != nil {
		logger.Warn("Completion provider unavailable: %v", err)
		provider = nil
	}

	var prompts driven.PromptStore
	if ps, err := file.NewPromptStore(filepath.Join(configDir, "prompts")); err != nil {
		logger.Warn("Prompt store unavailable: %v", err)
	} else {
		prompts = ps
	}

	ingest := services.NewIngestService(
		store,
		builtin.NewRegistry(),
		pipeline,
		filesystem.Factory{},
		services.WithWorkers(settings.Ingest.Workers),
	)
	retrieval := services.NewRetrievalService(store, settings.RAG.TopK)

	logger.Debug("Storage: %s %s", settings.Storage.Backend, storePath)
	logger.Debug("Ranker: %s", settings.RAG.Ranker)
	if provider != nil {
		logger.Debug("Provider: %s (%s)", provider.Name(), provider.ModelName())
	}

	return &App{
		Settings:  settings,
		Store:     store,
		StorePath: storePath,
		Provider:  provider,
		Ingest:    ingest,
		Watch:     services.NewWatchService(ingest),
		Retrieval: retrieval,
		Answer: services.NewAnswerService(retrieval, provider, prompts,
			services.WithProviderTimeout(settings.Provider.Timeout)),
	}, nil
}

// OpenStore opens the chunk store selected by the storage settings and
// returns it with a display path. SQLite defaults to configDir/data.
func OpenStore(
	ctx context.Context,
	settings domain.StorageSettings,
	configDir string,
	ranker driven.Ranker,
) (driven.ChunkStore, string, error) {
	switch settings.Backend {
	case domain.StorageMemory:
		return memory.NewChunkStore(ranker), "", nil

	case domain.StorageSQLite, "":
		dataDir := settings.Path
		if dataDir == "" {
			dataDir = filepath.Join(configDir, "data")
		}
		store, err := sqlite.NewStore(dataDir, ranker)
		if err != nil {
			return nil, "", fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, store.Path(), nil

	case domain.StoragePostgres:
		store, err := postgres.NewStore(ctx, settings.PostgresURL, ranker)
		if err != nil {
			return nil, "", fmt.Errorf("opening postgres store: %w", err)
		}
		return store, "postgres", nil

	default:
		return nil, "", &domain.ValidationError{
			Field:  "storage.backend",
			Reason: fmt.Sprintf("unknown backend %q", settings.Backend),
		}
	}
}

// Close releases the provider and the store.
func (a *App) Close() error {
	var errs []error
	if a.Provider != nil {
		errs = append(errs, a.Provider.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}

package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkSize       = "rag.chunk_size"
	keyChunkOverlap    = "rag.chunk_overlap"
	keyTopK            = "rag.top_k"
	keyRanker          = "rag.ranker"
	keyMinSimilarity   = "rag.min_similarity"
	keyProvider        = "provider.name"
	keyProviderModel   = "provider.model"
	keyProviderBaseURL = "provider.base_url"
	keyProviderAPIKey  = "provider.api_key"
	keyMaxTokens       = "provider.max_tokens"
	keyTimeout         = "provider.timeout"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyStorageBackend  = "storage.backend"
	keyStoragePath     = "storage.path"
	keyPostgresURL     = "storage.postgres_url"
	keyServerAddr      = "server.addr"
	keyIngestDir       = "ingest.dir"
	keyIngestWorkers   = "ingest.workers"
	keyIngestOnStart   = "ingest.on_start"
)

// settingKeys lists every key accepted by Set, in display order.
var settingKeys = []string{
	keyChunkSize, keyChunkOverlap, keyTopK, keyRanker, keyMinSimilarity,
	keyProvider, keyProviderModel, keyProviderBaseURL, keyProviderAPIKey, keyMaxTokens, keyTimeout,
	keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey,
	keyStorageBackend, keyStoragePath, keyPostgresURL,
	keyServerAddr,
	keyIngestDir, keyIngestWorkers, keyIngestOnStart,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Missing or unrecognised
// values fall back to the defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(keyProvider, defaults.Provider.Provider)

	settings := &domain.AppSettings{
		RAG: domain.RAGSettings{
			ChunkSize:     s.getInt(keyChunkSize, defaults.RAG.ChunkSize),
			ChunkOverlap:  s.getInt(keyChunkOverlap, defaults.RAG.ChunkOverlap),
			TopK:          s.getInt(keyTopK, defaults.RAG.TopK),
			Ranker:        s.getRanker(defaults.RAG.Ranker),
			MinSimilarity: s.getFloat(keyMinSimilarity, defaults.RAG.MinSimilarity),
		},
		Provider: domain.ProviderSettings{
			Provider:  provider,
			Model:     s.getString(keyProviderModel, domain.DefaultModelFor(provider)),
			BaseURL:   s.configStore.GetString(keyProviderBaseURL), // empty selects the provider default
			APIKey:    s.configStore.GetString(keyProviderAPIKey),
			MaxTokens: s.getInt(keyMaxTokens, defaults.Provider.MaxTokens),
			Timeout:   s.getDuration(keyTimeout, defaults.Provider.Timeout),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Storage: domain.StorageSettings{
			Backend:     s.getBackend(defaults.Storage.Backend),
			Path:        s.configStore.GetString(keyStoragePath),
			PostgresURL: s.configStore.GetString(keyPostgresURL),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
		Ingest: domain.IngestSettings{
			Dir:     s.getString(keyIngestDir, defaults.Ingest.Dir),
			Workers: s.getInt(keyIngestWorkers, defaults.Ingest.Workers),
			OnStart: s.getBool(keyIngestOnStart, defaults.Ingest.OnStart),
		},
	}

	return settings, nil
}

// Save persists application settings. API keys are written only when set.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyChunkSize, settings.RAG.ChunkSize},
		{keyChunkOverlap, settings.RAG.ChunkOverlap},
		{keyTopK, settings.RAG.TopK},
		{keyRanker, settings.RAG.Ranker.String()},
		{keyMinSimilarity, settings.RAG.MinSimilarity},
		{keyProvider, settings.Provider.Provider.String()},
		{keyProviderModel, settings.Provider.Model},
		{keyProviderBaseURL, settings.Provider.BaseURL},
		{keyMaxTokens, settings.Provider.MaxTokens},
		{keyTimeout, settings.Provider.Timeout.String()},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyStorageBackend, settings.Storage.Backend.String()},
		{keyStoragePath, settings.Storage.Path},
		{keyPostgresURL, settings.Storage.PostgresURL},
		{keyServerAddr, settings.Server.Addr},
		{keyIngestDir, settings.Ingest.Dir},
		{keyIngestWorkers, settings.Ingest.Workers},
		{keyIngestOnStart, settings.Ingest.OnStart},
	}
	if settings.Provider.APIKey != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyProviderAPIKey, settings.Provider.APIKey})
	}
	if settings.Embedding.APIKey != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyEmbedAPIKey, settings.Embedding.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value for key, validates the resulting settings and saves them.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := apply(settings, key, strings.TrimSpace(value)); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.Save(settings)
}

// SetProvider switches the completion provider. An empty model selects
// the provider's default model.
func (s *SettingsService) SetProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return &domain.ValidationError{Field: keyProvider, Reason: fmt.Sprintf("unknown provider %q", provider)}
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Provider.Provider = provider
	settings.Provider.Model = model
	if model == "" {
		settings.Provider.Model = domain.DefaultModelFor(provider)
	}
	if apiKey != "" {
		settings.Provider.APIKey = apiKey
	}
	if !provider.IsLocal() {
		settings.Provider.BaseURL = ""
	}

	return s.Save(settings)
}

// Keys returns the settable keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	copy(keys, settingKeys)
	return keys
}

// Validate checks that current settings are consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if settings.RAG.Ranker.RequiresEmbedding() && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("ranker %q: %w", settings.RAG.Ranker.Description(), domain.ErrEmbeddingUnavailable)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

//nolint:gocyclo // one case per key
func apply(settings *domain.AppSettings, key, value string) error {
	var err error
	switch key {
	case keyChunkSize:
		settings.RAG.ChunkSize, err = parseInt(key, value)
	case keyChunkOverlap:
		settings.RAG.ChunkOverlap, err = parseInt(key, value)
	case keyTopK:
		settings.RAG.TopK, err = parseInt(key, value)
	case keyRanker:
		settings.RAG.Ranker = domain.RankerType(value)
	case keyMinSimilarity:
		settings.RAG.MinSimilarity, err = strconv.ParseFloat(value, 64)
		if err != nil {
			err = &domain.ValidationError{Field: key, Reason: "must be a number"}
		}
	case keyProvider:
		settings.Provider.Provider = domain.AIProvider(value)
		settings.Provider.Model = domain.DefaultModelFor(settings.Provider.Provider)
	case keyProviderModel:
		settings.Provider.Model = value
	case keyProviderBaseURL:
		settings.Provider.BaseURL = value
	case keyProviderAPIKey:
		settings.Provider.APIKey = value
	case keyMaxTokens:
		settings.Provider.MaxTokens, err = parseInt(key, value)
	case keyTimeout:
		settings.Provider.Timeout, err = time.ParseDuration(value)
		if err != nil {
			err = &domain.ValidationError{Field: key, Reason: "must be a duration such as 30s"}
		}
	case keyEmbedProvider:
		settings.Embedding.Provider = domain.AIProvider(value)
	case keyEmbedModel:
		settings.Embedding.Model = value
	case keyEmbedBaseURL:
		settings.Embedding.BaseURL = value
	case keyEmbedAPIKey:
		settings.Embedding.APIKey = value
	case keyStorageBackend:
		settings.Storage.Backend = domain.StorageBackend(value)
	case keyStoragePath:
		settings.Storage.Path = value
	case keyPostgresURL:
		settings.Storage.PostgresURL = value
	case keyServerAddr:
		settings.Server.Addr = value
	case keyIngestDir:
		settings.Ingest.Dir = value
	case keyIngestWorkers:
		settings.Ingest.Workers, err = parseInt(key, value)
	case keyIngestOnStart:
		settings.Ingest.OnStart, err = strconv.ParseBool(value)
		if err != nil {
			err = &domain.ValidationError{Field: key, Reason: "must be true or false"}
		}
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return err
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &domain.ValidationError{Field: key, Reason: "must be an integer"}
	}
	return n, nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getRanker(defaultVal domain.RankerType) domain.RankerType {
	ranker := domain.RankerType(s.configStore.GetString(keyRanker))
	if !ranker.IsValid() {
		return defaultVal
	}
	return ranker
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

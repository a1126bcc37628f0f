// Package env overlays environment variables on top of the persisted
// settings. A .env file in the working directory is loaded first when
// present; variables already set in the process win over the file.
package env

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Overrides holds the environment values that may replace file settings.
// Nil pointers and empty strings mean "not set".
type Overrides struct {
	ChunkSize     *int     `env:"SERCHA_RAG_CHUNK_SIZE"`
	ChunkOverlap  *int     `env:"SERCHA_RAG_CHUNK_OVERLAP"`
	TopK          *int     `env:"SERCHA_RAG_TOP_K"`
	Ranker        string   `env:"SERCHA_RAG_RANKER"`
	MinSimilarity *float64 `env:"SERCHA_RAG_MIN_SIMILARITY"`

	Provider  string         `env:"SERCHA_RAG_PROVIDER"`
	Model     string         `env:"SERCHA_RAG_MODEL"`
	BaseURL   string         `env:"SERCHA_RAG_BASE_URL"`
	APIKey    string         `env:"SERCHA_RAG_API_KEY"`
	MaxTokens *int           `env:"SERCHA_RAG_MAX_TOKENS"`
	Timeout   *time.Duration `env:"SERCHA_RAG_TIMEOUT"`

	EmbeddingProvider string `env:"SERCHA_RAG_EMBEDDING_PROVIDER"`
	EmbeddingModel    string `env:"SERCHA_RAG_EMBEDDING_MODEL"`
	EmbeddingBaseURL  string `env:"SERCHA_RAG_EMBEDDING_BASE_URL"`
	EmbeddingAPIKey   string `env:"SERCHA_RAG_EMBEDDING_API_KEY"`

	StorageBackend string `env:"SERCHA_RAG_STORAGE"`
	StoragePath    string `env:"SERCHA_RAG_DATA_DIR"`
	PostgresURL    string `env:"SERCHA_RAG_POSTGRES_URL"`

	ServerAddr string `env:"SERCHA_RAG_ADDR"`

	IngestDir     string `env:"SERCHA_RAG_DOCUMENTS_DIR"`
	IngestWorkers *int   `env:"SERCHA_RAG_INGEST_WORKERS"`
	IngestOnStart *bool  `env:"SERCHA_RAG_INGEST_ON_START"`

	// Vendor credentials used when no sercha-rag key is set.
	OpenAIKey    string `env:"OPENAI_API_KEY"`
	AnthropicKey string `env:"ANTHROPIC_API_KEY"`
}

// LoadDotEnv loads variables from the given files, or ./.env when none
// are given. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Parse reads overrides from the process environment.
func Parse() (Overrides, error) {
	return env.ParseAs[Overrides]()
}

// ParseFrom reads overrides from environ instead of the process environment.
func ParseFrom(environ map[string]string) (Overrides, error) {
	var o Overrides
	err := env.ParseWithOptions(&o, env.Options{Environment: environ})
	return o, err
}

// Apply writes every set override into settings. The provider is
// applied before its model so a changed provider gets its default model
// unless a model is also given.
func (o Overrides) Apply(s *domain.AppSettings) {
	setInt(&s.RAG.ChunkSize, o.ChunkSize)
	setInt(&s.RAG.ChunkOverlap, o.ChunkOverlap)
	setInt(&s.RAG.TopK, o.TopK)
	if o.Ranker != "" {
		s.RAG.Ranker = domain.RankerType(o.Ranker)
	}
	if o.MinSimilarity != nil {
		s.RAG.MinSimilarity = *o.MinSimilarity
	}

	if o.Provider != "" && domain.AIProvider(o.Provider) != s.Provider.Provider {
		s.Provider.Provider = domain.AIProvider(o.Provider)
		s.Provider.Model = domain.DefaultModelFor(s.Provider.Provider)
	}
	setString(&s.Provider.Model, o.Model)
	setString(&s.Provider.BaseURL, o.BaseURL)
	setString(&s.Provider.APIKey, o.APIKey)
	if s.Provider.APIKey == "" {
		s.Provider.APIKey = o.vendorKey(s.Provider.Provider)
	}
	setInt(&s.Provider.MaxTokens, o.MaxTokens)
	if o.Timeout != nil {
		s.Provider.Timeout = *o.Timeout
	}

	if o.EmbeddingProvider != "" {
		s.Embedding.Provider = domain.AIProvider(o.EmbeddingProvider)
	}
	setString(&s.Embedding.Model, o.EmbeddingModel)
	setString(&s.Embedding.BaseURL, o.EmbeddingBaseURL)
	setString(&s.Embedding.APIKey, o.EmbeddingAPIKey)
	if s.Embedding.APIKey == "" {
		s.Embedding.APIKey = o.vendorKey(s.Embedding.Provider)
	}

	if o.StorageBackend != "" {
		s.Storage.Backend = domain.StorageBackend(o.StorageBackend)
	}
	setString(&s.Storage.Path, o.StoragePath)
	setString(&s.Storage.PostgresURL, o.PostgresURL)

	setString(&s.Server.Addr, o.ServerAddr)

	setString(&s.Ingest.Dir, o.IngestDir)
	setInt(&s.Ingest.Workers, o.IngestWorkers)
	if o.IngestOnStart != nil {
		s.Ingest.OnStart = *o.IngestOnStart
	}
}

// Load reads ./.env, parses the environment and applies it to settings.
func Load(s *domain.AppSettings) error {
	if err := LoadDotEnv(); err != nil {
		return err
	}
	o, err := Parse()
	if err != nil {
		return err
	}
	o.Apply(s)
	return nil
}

func (o Overrides) vendorKey(p domain.AIProvider) string {
	switch p {
	case domain.AIProviderOpenAI:
		return o.OpenAIKey
	case domain.AIProviderAnthropic:
		return o.AnthropicKey
	default:
		return ""
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for completions or embeddings.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is the OpenAI cloud API (or any compatible endpoint).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderLMStudio is a local LM Studio server speaking the OpenAI protocol.
	AIProviderLMStudio AIProvider = "lmstudio"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama, AIProviderLMStudio:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLMStudio
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderLMStudio:
		return "LM Studio (local)"
	default:
		return unknownDescription
	}
}

// RankerType selects the relevance strategy used by chunk stores.
type RankerType string

// Available rankers.
const (
	// RankerSubstring matches chunks containing the whole query.
	RankerSubstring RankerType = "substring"

	// RankerLexical scores chunks by token overlap with the query.
	RankerLexical RankerType = "lexical"

	// RankerSemantic scores chunks by embedding cosine similarity.
	RankerSemantic RankerType = "semantic"
)

// IsValid returns true if the ranker is recognised.
func (r RankerType) IsValid() bool {
	switch r {
	case RankerSubstring, RankerLexical, RankerSemantic:
		return true
	default:
		return false
	}
}

// RequiresEmbedding returns true if the ranker needs an embedding provider.
func (r RankerType) RequiresEmbedding() bool {
	return r == RankerSemantic
}

// String returns the string representation.
func (r RankerType) String() string {
	return string(r)
}

// Description returns a human-readable description of the ranker.
func (r RankerType) Description() string {
	switch r {
	case RankerSubstring:
		return "Substring (whole-query containment)"
	case RankerLexical:
		return "Lexical (token overlap)"
	case RankerSemantic:
		return "Semantic (embedding similarity)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects where chunks are kept.
type StorageBackend string

// Available storage backends.
const (
	StorageMemory   StorageBackend = "memory"
	StorageSQLite   StorageBackend = "sqlite"
	StoragePostgres StorageBackend = "postgres"
)

// IsValid returns true if the backend is recognised.
func (s StorageBackend) IsValid() bool {
	switch s {
	case StorageMemory, StorageSQLite, StoragePostgres:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s StorageBackend) String() string {
	return string(s)
}

// Default values used when nothing is configured.
const (
	DefaultChunkSize       = 500
	DefaultChunkOverlap    = 100
	DefaultTopK            = 3
	DefaultMaxTokens       = 300
	DefaultProviderTimeout = 30 * time.Second
	DefaultIngestWorkers   = 4
	DefaultServerAddr      = ":8080"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultAnthropicModel  = "claude-3-5-haiku-latest"
	DefaultOllamaModel     = "llama3.2"
	DefaultLMStudioModel   = "local-model"
	DefaultEmbeddingModel  = "text-embedding-3-small"
	DefaultMinSimilarity   = 0.2
)

// RAGSettings controls chunking and retrieval.
type RAGSettings struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by consecutive chunks.
	ChunkOverlap int

	// TopK is the number of chunks retrieved per query.
	TopK int

	// Ranker selects the relevance strategy.
	Ranker RankerType

	// MinSimilarity is the cut-off for the semantic ranker.
	MinSimilarity float64
}

// ProviderSettings configures the completion provider.
type ProviderSettings struct {
	// Provider is the completion service provider.
	Provider AIProvider

	// Model is the model identifier sent with each request.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is the bearer credential. Never persisted by default.
	APIKey string

	// MaxTokens bounds the completion length.
	MaxTokens int

	// Timeout is the budget for one completion call.
	Timeout time.Duration
}

// IsConfigured returns true if the provider can be used.
func (p ProviderSettings) IsConfigured() bool {
	if !p.Provider.IsValid() {
		return false
	}
	if p.Provider.RequiresAPIKey() && p.APIKey == "" {
		return false
	}
	return true
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if e.Provider != AIProviderOpenAI && e.Provider != AIProviderOllama {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// StorageSettings selects and locates the chunk store.
type StorageSettings struct {
	// Backend is the store implementation.
	Backend StorageBackend

	// Path is the SQLite data directory. Empty means the config directory.
	Path string

	// PostgresURL is the connection string for the postgres backend.
	PostgresURL string
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// IngestSettings configures corpus ingestion.
type IngestSettings struct {
	// Dir is the corpus directory used when none is given.
	Dir string

	// Workers is the number of documents processed in parallel.
	Workers int

	// OnStart ingests Dir before serving queries.
	OnStart bool
}

// AppSettings holds all application configuration.
type AppSettings struct {
	RAG       RAGSettings
	Provider  ProviderSettings
	Embedding EmbeddingSettings
	Storage   StorageSettings
	Server    ServerSettings
	Ingest    IngestSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		RAG: RAGSettings{
			ChunkSize:     DefaultChunkSize,
			ChunkOverlap:  DefaultChunkOverlap,
			TopK:          DefaultTopK,
			Ranker:        RankerLexical,
			MinSimilarity: DefaultMinSimilarity,
		},
		Provider: ProviderSettings{
			Provider:  AIProviderOpenAI,
			Model:     DefaultOpenAIModel,
			MaxTokens: DefaultMaxTokens,
			Timeout:   DefaultProviderTimeout,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModel,
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
		Ingest: IngestSettings{
			Dir:     "documents",
			Workers: DefaultIngestWorkers,
		},
	}
}

// DefaultModelFor returns the default completion model for a provider.
func DefaultModelFor(p AIProvider) string {
	switch p {
	case AIProviderAnthropic:
		return DefaultAnthropicModel
	case AIProviderOllama:
		return DefaultOllamaModel
	case AIProviderLMStudio:
		return DefaultLMStudioModel
	default:
		return DefaultOpenAIModel
	}
}

// Validate checks that settings are internally consistent.
func (s AppSettings) Validate() error {
	if s.RAG.ChunkSize <= 0 {
		return &ValidationError{Field: "rag.chunk_size", Reason: "must be positive"}
	}
	if s.RAG.ChunkOverlap < 0 || s.RAG.ChunkOverlap >= s.RAG.ChunkSize {
		return &ValidationError{
			Field:  "rag.chunk_overlap",
			Reason: fmt.Sprintf("must be in [0, %d)", s.RAG.ChunkSize),
		}
	}
	if s.RAG.TopK < 0 {
		return &ValidationError{Field: "rag.top_k", Reason: "must not be negative"}
	}
	if !s.RAG.Ranker.IsValid() {
		return &ValidationError{Field: "rag.ranker", Reason: fmt.Sprintf("unknown ranker %q", s.RAG.Ranker)}
	}
	if !s.Provider.Provider.IsValid() {
		return &ValidationError{Field: "provider.name", Reason: fmt.Sprintf("unknown provider %q", s.Provider.Provider)}
	}
	if s.Provider.MaxTokens <= 0 {
		return &ValidationError{Field: "provider.max_tokens", Reason: "must be positive"}
	}
	if s.Provider.Timeout <= 0 {
		return &ValidationError{Field: "provider.timeout", Reason: "must be positive"}
	}
	if !s.Storage.Backend.IsValid() {
		return &ValidationError{Field: "storage.backend", Reason: fmt.Sprintf("unknown backend %q", s.Storage.Backend)}
	}
	if s.Storage.Backend == StoragePostgres && s.Storage.PostgresURL == "" {
		return &ValidationError{Field: "storage.postgres_url", Reason: "required for postgres backend"}
	}
	if s.Ingest.Workers <= 0 {
		return &ValidationError{Field: "ingest.workers", Reason: "must be positive"}
	}
	return nil
}

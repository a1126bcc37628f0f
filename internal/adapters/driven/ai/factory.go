// Package ai provides factory functions for creating completion,
// embedding and ranking adapters from settings.
package ai

import (
	"fmt"

	ollamaembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/anthropic"
	lmstudiollm "github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/lmstudio"
	ollamallm "github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/ranking/lexical"
	"github.com/custodia-labs/sercha-rag/internal/ranking/semantic"
	"github.com/custodia-labs/sercha-rag/internal/ranking/substring"
)

// CreateCompletionProvider creates the completion provider selected by settings.
// An unconfigured provider yields an error wrapping domain.ErrLLMUnavailable.
func CreateCompletionProvider(settings domain.ProviderSettings) (driven.CompletionProvider, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: %s provider is not configured. Set provider.api_key or %s",
			domain.ErrLLMUnavailable, settings.Provider, apiKeyEnv(settings.Provider))
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		p, err := openaillm.NewProvider(openaillm.Config{
			APIKey:    settings.APIKey,
			BaseURL:   settings.BaseURL,
			Model:     settings.Model,
			MaxTokens: settings.MaxTokens,
			Timeout:   settings.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil

	case domain.AIProviderAnthropic:
		p, err := anthropicllm.NewProvider(anthropicllm.Config{
			APIKey:    settings.APIKey,
			BaseURL:   settings.BaseURL,
			Model:     settings.Model,
			MaxTokens: settings.MaxTokens,
			Timeout:   settings.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil

	case domain.AIProviderOllama:
		return ollamallm.NewProvider(ollamallm.Config{
			BaseURL:   settings.BaseURL,
			Model:     settings.Model,
			MaxTokens: settings.MaxTokens,
			Timeout:   settings.Timeout,
		}), nil

	case domain.AIProviderLMStudio:
		return lmstudiollm.NewProvider(lmstudiollm.Config{
			BaseURL:   settings.BaseURL,
			Model:     settings.Model,
			APIKey:    settings.APIKey,
			MaxTokens: settings.MaxTokens,
			Timeout:   settings.Timeout,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", settings.Provider)
	}
}

// CreateEmbeddingService creates the embedding service selected by settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateRanker creates the ranker selected by settings. The semantic
// ranker requires an embedding service.
func CreateRanker(settings domain.RAGSettings, embedder driven.EmbeddingService) (driven.Ranker, error) {
	switch settings.Ranker {
	case domain.RankerSubstring:
		return substring.New(), nil

	case domain.RankerLexical, "":
		return lexical.New(), nil

	case domain.RankerSemantic:
		if embedder == nil {
			return nil, fmt.Errorf("%w: semantic ranker needs embedding.provider to be configured",
				domain.ErrEmbeddingUnavailable)
		}
		r, err := semantic.New(embedder, semantic.WithMinSimilarity(settings.MinSimilarity))
		if err != nil {
			return nil, err
		}
		return r, nil

	default:
		return nil, &domain.ValidationError{Field: "rag.ranker", Reason: fmt.Sprintf("unknown ranker %q", settings.Ranker)}
	}
}

func apiKeyEnv(p domain.AIProvider) string {
	switch p {
	case domain.AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// Package lmstudio provides a completion provider for an LM Studio
// server through its OpenAI-compatible API.
package lmstudio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.CompletionProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:1234/v1"
	DefaultModel   = domain.DefaultLMStudioModel

	// placeholderKey is sent when none is configured; LM Studio ignores it.
	placeholderKey = "lm-studio"
)

// Config holds configuration for the LM Studio provider.
type Config struct {
	BaseURL   string
	Model     string
	APIKey    string
	MaxTokens int
	Timeout   time.Duration
}

// Provider wraps a go-openai client pointed at LM Studio.
type Provider struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewProvider creates an LM Studio completion provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.APIKey == "" {
		cfg.APIKey = placeholderKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultProviderTimeout
	}

	oaiCfg := openai.DefaultConfig(cfg.APIKey)
	oaiCfg.BaseURL = cfg.BaseURL
	oaiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Provider{
		client:    openai.NewClientWithConfig(oaiCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Complete sends the system and user texts as one chat exchange.
func (p *Provider) Complete(ctx context.Context, systemText, userText string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemText},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", toProviderError(err))
	}
	if len(resp.Choices) == 0 {
		return "", driven.ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return string(domain.AIProviderLMStudio)
}

// ModelName returns the configured model.
func (p *Provider) ModelName() string {
	return p.model
}

// Close releases resources.
func (p *Provider) Close() error {
	return nil
}

func toProviderError(err error) error {
	pe := &domain.ProviderError{Provider: string(domain.AIProviderLMStudio), Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		pe.StatusCode = reqErr.HTTPStatusCode
	}
	return pe
}

// Package openai provides a completion provider for the OpenAI chat API
// and compatible endpoints.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/httpclient"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.CompletionProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = domain.DefaultOpenAIModel
)

// Config holds configuration for the OpenAI provider.
type Config struct {
	// APIKey is the bearer credential (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// MaxTokens bounds the reply length (default: 300).
	MaxTokens int

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// ClientOptions are appended to the transport options.
	ClientOptions []httpclient.Option
}

// Provider calls POST {base}/chat/completions.
type Provider struct {
	client    *httpclient.Client
	baseURL   string
	model     string
	maxTokens int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewProvider creates an OpenAI completion provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, &domain.ValidationError{Field: "provider.api_key", Reason: "required for openai"}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = domain.DefaultMaxTokens
	}

	opts := []httpclient.Option{
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithBearerToken(cfg.APIKey),
	}
	opts = append(opts, cfg.ClientOptions...)

	return &Provider{
		client:    httpclient.New(string(domain.AIProviderOpenAI), opts...),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Complete sends the system and user texts as one chat exchange.
func (p *Provider) Complete(ctx context.Context, systemText, userText string) (string, error) {
	req := chatCompletionRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: driven.RoleSystem, Content: systemText},
			{Role: driven.RoleUser, Content: userText},
		},
		MaxTokens: p.maxTokens,
	}

	var resp chatCompletionResponse
	if err := p.client.PostJSON(ctx, p.baseURL+"/chat/completions", req, &resp); err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", driven.ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return string(domain.AIProviderOpenAI)
}

// ModelName returns the configured model.
func (p *Provider) ModelName() string {
	return p.model
}

// Close releases resources.
func (p *Provider) Close() error {
	return nil
}

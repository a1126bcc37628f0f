// Package ollama provides a completion provider using a local Ollama server.
package ollama

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
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = domain.DefaultOllamaModel
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Ollama provider.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the model to use (default: llama3.2).
	Model string

	// MaxTokens maps to options.num_predict.
	MaxTokens int

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	ClientOptions []httpclient.Option
}

// Provider calls POST {base}/api/chat without streaming.
type Provider struct {
	client    *httpclient.Client
	baseURL   string
	model     string
	maxTokens int
}

type options struct {
	NumPredict int `json:"num_predict,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *options      `json:"options,omitempty"`
}

type chatResponse struct {
	Message *chatMessage `json:"message"`
	Done    bool         `json:"done"`
}

// NewProvider creates an Ollama completion provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := append([]httpclient.Option{httpclient.WithTimeout(cfg.Timeout)}, cfg.ClientOptions...)

	return &Provider{
		client:    httpclient.New(string(domain.AIProviderOllama), opts...),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Complete runs one non-streaming chat exchange.
func (p *Provider) Complete(ctx context.Context, systemText, userText string) (string, error) {
	req := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: driven.RoleSystem, Content: systemText},
			{Role: driven.RoleUser, Content: userText},
		},
	}
	if p.maxTokens > 0 {
		req.Options = &options{NumPredict: p.maxTokens}
	}

	var resp chatResponse
	if err := p.client.PostJSON(ctx, p.baseURL+"/api/chat", req, &resp); err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	if resp.Message == nil {
		return "", driven.ErrNoChoices
	}
	return resp.Message.Content, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return string(domain.AIProviderOllama)
}

// ModelName returns the configured model.
func (p *Provider) ModelName() string {
	return p.model
}

// Close releases resources.
func (p *Provider) Close() error {
	return nil
}

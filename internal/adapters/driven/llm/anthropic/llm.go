// Package anthropic provides a completion provider for the Anthropic
// Messages API.
package anthropic

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
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = domain.DefaultAnthropicModel
	APIVersion     = "2023-06-01"
)

// Config holds configuration for the Anthropic provider.
type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	MaxTokens     int
	Timeout       time.Duration
	ClientOptions []httpclient.Option
}

// Provider calls POST {base}/v1/messages.
type Provider struct {
	client    *httpclient.Client
	baseURL   string
	model     string
	maxTokens int
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesRequest carries the system text outside the message list.
type messagesRequest struct {
	Model     string    `json:"model"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewProvider creates an Anthropic completion provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, &domain.ValidationError{Field: "provider.api_key", Reason: "required for anthropic"}
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
		httpclient.WithHeader("x-api-key", cfg.APIKey),
		httpclient.WithHeader("anthropic-version", APIVersion),
	}
	opts = append(opts, cfg.ClientOptions...)

	return &Provider{
		client:    httpclient.New(string(domain.AIProviderAnthropic), opts...),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Complete sends userText with systemText as the system prompt.
// Text blocks of the reply are concatenated.
func (p *Provider) Complete(ctx context.Context, systemText, userText string) (string, error) {
	req := messagesRequest{
		Model:     p.model,
		System:    systemText,
		Messages:  []message{{Role: driven.RoleUser, Content: userText}},
		MaxTokens: p.maxTokens,
	}

	var resp messagesResponse
	if err := p.client.PostJSON(ctx, p.baseURL+"/v1/messages", req, &resp); err != nil {
		return "", fmt.Errorf("messages: %w", err)
	}

	var sb strings.Builder
	found := false
	for _, block := range resp.Content {
		if block.Type != "" && block.Type != "text" {
			continue
		}
		found = true
		sb.WriteString(block.Text)
	}
	if !found {
		return "", driven.ErrNoChoices
	}
	return sb.String(), nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return string(domain.AIProviderAnthropic)
}

// ModelName returns the configured model.
func (p *Provider) ModelName() string {
	return p.model
}

// Close releases resources.
func (p *Provider) Close() error {
	return nil
}

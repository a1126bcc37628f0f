// Package httpclient is the JSON-over-HTTP transport shared by the
// completion and embedding adapters. Requests are rate limited and
// retried on temporary provider failures.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

const (
	defaultAttempts = 3
	defaultDelay    = 200 * time.Millisecond
	defaultMaxDelay = 2 * time.Second

	// maxErrorBody caps how much of an error response is kept in messages.
	maxErrorBody = 512
)

// Client posts JSON to a provider API.
type Client struct {
	provider string
	http     *http.Client
	limiter  *rate.Limiter
	headers  http.Header
	attempts uint
	delay    time.Duration
	maxDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit limits outgoing requests to rps per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetry sets the attempt count and backoff bounds.
func WithRetry(attempts uint, delay, maxDelay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if delay > 0 {
			c.delay = delay
		}
		if maxDelay > 0 {
			c.maxDelay = maxDelay
		}
	}
}

// WithBearerToken sends "Authorization: Bearer <token>" when token is set.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if value != "" {
			c.headers.Set(key, value)
		}
	}
}

// New creates a client whose errors are attributed to provider.
func New(provider string, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		http:     &http.Client{Timeout: domain.DefaultProviderTimeout},
		headers:  make(http.Header),
		attempts: defaultAttempts,
		delay:    defaultDelay,
		maxDelay: defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider name used in errors.
func (c *Client) Provider() string {
	return c.provider
}

// PostJSON sends body as JSON to url and decodes the response into out.
// Failures are returned as *domain.ProviderError.
func (c *Client) PostJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &domain.ProviderError{Provider: c.provider, Err: domain.NonRetryable(fmt.Errorf("encode request: %w", err))}
	}

	return retry.Do(
		func() error { return c.post(ctx, url, payload, out) },
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(c.maxDelay),
		retry.RetryIf(isTemporary),
		retry.LastErrorOnly(true),
	)
}

func (c *Client) post(ctx context.Context, url string, payload []byte, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &domain.ProviderError{Provider: c.provider, Err: domain.NonRetryable(err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &domain.ProviderError{Provider: c.provider, Err: domain.NonRetryable(fmt.Errorf("create request: %w", err))}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &domain.ProviderError{Provider: c.provider, Err: domain.NonRetryable(ctx.Err())}
		}
		return &domain.ProviderError{Provider: c.provider, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ProviderError{Provider: c.provider, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.ProviderError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Err:        errors.New(errorMessage(data)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.ProviderError{Provider: c.provider, StatusCode: resp.StatusCode, Err: domain.NonRetryable(fmt.Errorf("decode response: %w", err))}
	}
	return nil
}

func isTemporary(err error) bool {
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return pe.Temporary()
	}
	return false
}

// errorMessage extracts {"error": {"message": ...}} or {"error": "..."}
// bodies and falls back to the trimmed raw text.
func errorMessage(body []byte) string {
	var structured struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &structured) == nil && len(structured.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(structured.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		var flat string
		if json.Unmarshal(structured.Error, &flat) == nil && flat != "" {
			return flat
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	if msg == "" {
		msg = "empty response body"
	}
	return msg
}

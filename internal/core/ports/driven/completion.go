package driven

import (
	"context"
	"errors"
)

// ErrNoChoices is returned by a CompletionProvider when the response
// carried zero candidate answers. It is not a parse failure.
var ErrNoChoices = errors.New("response contained no choices")

// CompletionProvider produces an assistant reply grounded by a system text.
//
// Implementations may include:
//   - OpenAI (or any compatible endpoint)
//   - Anthropic (Claude)
//   - Ollama (local models)
//   - LM Studio (local inference server)
type CompletionProvider interface {
	// Complete sends the system and user texts and returns the reply verbatim.
	// Failures are reported as *domain.ProviderError; a response with no
	// candidates is reported as ErrNoChoices.
	Complete(ctx context.Context, systemText, userText string) (string, error)

	// Name returns the provider identifier (e.g. "openai").
	Name() string

	// ModelName returns the model sent with each request.
	ModelName() string

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// Roles used in ChatMessage.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

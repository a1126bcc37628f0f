package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Answerer answers questions grounded in the corpus.
// It never returns an error: every failure is converted to text.
type Answerer interface {
	// Ask answers query and reports how the answer was produced.
	Ask(ctx context.Context, query string) domain.Answer

	// Answer returns only the answer text.
	Answer(ctx context.Context, query string) string
}

// Conversation answers questions as identified turns.
type Conversation interface {
	Answerer

	// Turn answers query and assigns the exchange a fresh ID.
	Turn(ctx context.Context, query string) domain.ConversationTurn
}

package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockConversation answers every question with a fixed text.
type mockConversation struct {
	answer   domain.Answer
	question string
}

func (m *mockConversation) Ask(_ context.Context, query string) domain.Answer {
	m.question = query
	return m.answer
}

func (m *mockConversation) Answer(ctx context.Context, query string) string {
	return m.Ask(ctx, query).Text
}

func (m *mockConversation) Turn(ctx context.Context, query string) domain.ConversationTurn {
	return domain.ConversationTurn{ID: "turn-1", Question: query, Answer: m.Ask(ctx, query)}
}

// mockRetrieval returns canned chunks and records the requested topK.
type mockRetrieval struct {
	chunks []domain.Chunk
	count  int
	err    error
	topK   int
}

func (m *mockRetrieval) Retrieve(_ context.Context, _ string) (domain.RetrievalContext, error) {
	return domain.RetrievalContext{Chunks: m.chunks, Found: len(m.chunks) > 0}, m.err
}

func (m *mockRetrieval) Search(_ context.Context, _ string, topK int) ([]domain.Chunk, error) {
	m.topK = topK
	if m.err != nil {
		return nil, m.err
	}
	if topK < len(m.chunks) {
		return m.chunks[:topK], nil
	}
	return m.chunks, nil
}

func (m *mockRetrieval) Count(_ context.Context) (int, error) {
	return m.count, m.err
}

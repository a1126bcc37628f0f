package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

const testPolicy = "You are a student advisor."

// mockProvider records every completion request.
type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Complete(ctx context.Context, systemText, userText string) (string, error) {
	args := m.Called(ctx, systemText, userText)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) Name() string      { return "mock" }
func (m *mockProvider) ModelName() string { return "mock-model" }
func (m *mockProvider) Close() error      { return nil }

// staticPrompts serves a fixed system policy.
type staticPrompts struct {
	policy string
	err    error
}

func (p staticPrompts) Load(string) (string, error) { return p.policy, p.err }
func (p staticPrompts) Reload()                     {}

// countingRetrieval counts Retrieve calls.
type countingRetrieval struct {
	driving.RetrievalService
	calls int
}

func (c *countingRetrieval) Retrieve(ctx context.Context, query string) (domain.RetrievalContext, error) {
	c.calls++
	return c.RetrievalService.Retrieve(ctx, query)
}

func newAnswerer(t *testing.T, provider driven.CompletionProvider, texts ...string) *AnswerService {
	t.Helper()
	retrieval := NewRetrievalService(seededStore(t, texts...), domain.DefaultTopK)
	return NewAnswerService(retrieval, provider, staticPrompts{policy: testPolicy})
}

func TestAnswerService_Ask_EmptyQueryShortCircuits(t *testing.T) {
	provider := &mockProvider{}
	retrieval := &countingRetrieval{RetrievalService: NewRetrievalService(memory.NewChunkStore(nil), 3)}
	svc := NewAnswerService(retrieval, provider, staticPrompts{policy: testPolicy})

	for _, q := range []string{"", "   ", "\t\n"} {
		answer := svc.Ask(context.Background(), q)
		assert.Equal(t, domain.EmptyQueryHint, answer.Text)
		assert.Equal(t, domain.OutcomeValidation, answer.Outcome)
	}

	provider.AssertNumberOfCalls(t, "Complete", 0)
	assert.Zero(t, retrieval.calls)
}

func TestAnswerService_Ask_Grounded(t *testing.T) {
	provider := &mockProvider{}
	provider.On("Complete", mock.Anything, testPolicy+"\n\nLibrary hours: 9am-5pm", "When are the library hours?").
		Return("The library is open from 9am to 5pm.", nil).Once()

	svc := newAnswerer(t, provider, "Library hours: 9am-5pm")
	answer := svc.Ask(context.Background(), "When are the library hours?")

	assert.Equal(t, "The library is open from 9am to 5pm.", answer.Text)
	assert.Equal(t, domain.OutcomeAnswered, answer.Outcome)
	assert.True(t, answer.Grounded())
	provider.AssertExpectations(t)
}

func TestAnswerService_Ask_NoContext(t *testing.T) {
	provider := &mockProvider{}
	provider.On("Complete", mock.Anything, testPolicy+"\n\n"+domain.NoContextNotice, "Who is the dean?").
		Return("I do not know.", nil).Once()

	svc := newAnswerer(t, provider)
	answer := svc.Ask(context.Background(), "Who is the dean?")

	assert.Equal(t, "I do not know.", answer.Text)
	provider.AssertExpectations(t)
}

func TestAnswerService_Ask_EmptyReplyIsVerbatim(t *testing.T) {
	provider := &mockProvider{}
	provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", nil)

	answer := newAnswerer(t, provider).Ask(context.Background(), "anything")

	assert.Empty(t, answer.Text)
	assert.Equal(t, domain.OutcomeAnswered, answer.Outcome)
}

func TestAnswerService_Ask_NoChoices(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"sentinel", driven.ErrNoChoices},
		{"wrapped", fmt.Errorf("chat completion: %w", driven.ErrNoChoices)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{}
			provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", tt.err).Once()

			answer := newAnswerer(t, provider).Ask(context.Background(), "hours?")

			assert.Equal(t, domain.NoResponseAvailable, answer.Text)
			assert.Equal(t, domain.OutcomeNoResponse, answer.Outcome)
			provider.AssertNumberOfCalls(t, "Complete", 1)
		})
	}
}

func TestAnswerService_Ask_ProviderError(t *testing.T) {
	provider := &mockProvider{}
	perr := &domain.ProviderError{Provider: "openai", StatusCode: 503, Err: errors.New("overloaded")}
	provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", perr).Once()

	answer := newAnswerer(t, provider).Ask(context.Background(), "hours?")

	assert.Equal(t, "Error: openai: status 503: overloaded", answer.Text)
	assert.Equal(t, domain.OutcomeProviderError, answer.Outcome)
	provider.AssertNumberOfCalls(t, "Complete", 1)
}

func TestAnswerService_Ask_PlainErrorIsWrapped(t *testing.T) {
	provider := &mockProvider{}
	provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("boom")).Once()

	answer := newAnswerer(t, provider).Ask(context.Background(), "hours?")

	assert.Equal(t, "Error: mock: boom", answer.Text)
	assert.Equal(t, domain.OutcomeProviderError, answer.Outcome)
}

func TestAnswerService_Ask_Timeout(t *testing.T) {
	provider := &mockProvider{}
	provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return("", context.DeadlineExceeded).Once()

	retrieval := NewRetrievalService(memory.NewChunkStore(nil), 3)
	svc := NewAnswerService(retrieval, provider, nil, WithProviderTimeout(50*time.Millisecond))

	start := time.Now()
	answer := svc.Ask(context.Background(), "hours?")

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, domain.OutcomeProviderError, answer.Outcome)
	assert.Contains(t, answer.Text, domain.ErrorPrefix)
	assert.Contains(t, answer.Text, context.DeadlineExceeded.Error())
}

func TestAnswerService_Ask_NoProvider(t *testing.T) {
	svc := NewAnswerService(NewRetrievalService(memory.NewChunkStore(nil), 3), nil, nil)

	answer := svc.Ask(context.Background(), "hours?")

	assert.Equal(t, domain.OutcomeProviderError, answer.Outcome)
	assert.Equal(t, domain.ErrorPrefix+"none: "+domain.ErrLLMUnavailable.Error(), answer.Text)
}

func TestAnswerService_Ask_WithoutPolicy(t *testing.T) {
	tests := []struct {
		name    string
		prompts driven.PromptStore
	}{
		{"nil store", nil},
		{"load error", staticPrompts{err: errors.New("unreadable")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{}
			provider.On("Complete", mock.Anything, "Library hours: 9am-5pm", "library hours").Return("ok", nil).Once()

			retrieval := NewRetrievalService(seededStore(t, "Library hours: 9am-5pm"), 3)
			svc := NewAnswerService(retrieval, provider, tt.prompts)

			assert.Equal(t, "ok", svc.Answer(context.Background(), "library hours"))
			provider.AssertExpectations(t)
		})
	}
}

func TestAnswerService_Turn(t *testing.T) {
	provider := &mockProvider{}
	provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("9 to 5", nil)

	svc := newAnswerer(t, provider, "Library hours: 9am-5pm")
	first := svc.Turn(context.Background(), "library hours?")
	second := svc.Turn(context.Background(), "library hours?")

	_, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "library hours?", first.Question)
	assert.Equal(t, "9 to 5", first.Answer.Text)
}

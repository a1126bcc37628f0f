package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.Conversation = (*AnswerService)(nil)

// AnswerService answers questions from retrieved context. Every failure
// is turned into answer text; callers never see an error.
type AnswerService struct {
	retrieval driving.RetrievalService
	provider  driven.CompletionProvider
	prompts   driven.PromptStore
	timeout   time.Duration
}

// AnswerOption configures an AnswerService.
type AnswerOption func(*AnswerService)

// WithProviderTimeout bounds each completion call. Non-positive values
// keep the default.
func WithProviderTimeout(d time.Duration) AnswerOption {
	return func(s *AnswerService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewAnswerService creates an answer service. A nil provider makes
// every grounded question answer with domain.ErrLLMUnavailable.
// A nil prompt store sends the retrieved context without a policy.
func NewAnswerService(
	retrieval driving.RetrievalService,
	provider driven.CompletionProvider,
	prompts driven.PromptStore,
	opts ...AnswerOption,
) *AnswerService {
	s := &AnswerService{
		retrieval: retrieval,
		provider:  provider,
		prompts:   prompts,
		timeout:   domain.DefaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask answers query and reports how the answer was produced.
func (s *AnswerService) Ask(ctx context.Context, query string) domain.Answer {
	if strings.TrimSpace(query) == "" {
		return domain.Answer{Text: domain.EmptyQueryHint, Outcome: domain.OutcomeValidation}
	}

	rc, err := s.retrieval.Retrieve(ctx, query)
	if err != nil {
		logger.Warn("retrieve context: %v", err)
		rc = domain.RetrievalContext{Text: domain.NoRelevantInformation}
	}

	if s.provider == nil {
		return failure(&domain.ProviderError{Provider: "none", Err: domain.ErrLLMUnavailable})
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.provider.Complete(callCtx, s.systemText(rc), query)
	logger.Debug("%s/%s answered in %s", s.provider.Name(), s.provider.ModelName(), time.Since(start))

	switch {
	case err == nil:
		return domain.Answer{Text: text, Outcome: domain.OutcomeAnswered}
	case errors.Is(err, driven.ErrNoChoices):
		return domain.Answer{Text: domain.NoResponseAvailable, Outcome: domain.OutcomeNoResponse}
	default:
		var perr *domain.ProviderError
		if !errors.As(err, &perr) {
			perr = &domain.ProviderError{Provider: s.provider.Name(), Err: err}
		}
		return failure(perr)
	}
}

// Answer returns only the answer text.
func (s *AnswerService) Answer(ctx context.Context, query string) string {
	return s.Ask(ctx, query).Text
}

// Turn answers query and records it as a conversation turn.
func (s *AnswerService) Turn(ctx context.Context, query string) domain.ConversationTurn {
	return domain.ConversationTurn{
		ID:       uuid.New().String(),
		Question: query,
		Answer:   s.Ask(ctx, query),
	}
}

// systemText joins the policy with the retrieved context, or with the
// no-context notice when nothing was found.
func (s *AnswerService) systemText(rc domain.RetrievalContext) string {
	body := rc.Text
	if !rc.Found {
		body = domain.NoContextNotice
	}

	policy := s.policy()
	if policy == "" {
		return body
	}
	return policy + "\n\n" + body
}

func (s *AnswerService) policy() string {
	if s.prompts == nil {
		return ""
	}
	policy, err := s.prompts.Load(driven.PromptSystemPolicy)
	if err != nil {
		logger.Warn("load system policy: %v", err)
		return ""
	}
	return strings.TrimSpace(policy)
}

func failure(err *domain.ProviderError) domain.Answer {
	logger.Error("completion failed: %v", err)
	return domain.Answer{Text: domain.ErrorPrefix + err.Error(), Outcome: domain.OutcomeProviderError}
}

package domain

import "strings"

// Sentinel strings returned to callers instead of errors.
const (
	// NoRelevantInformation is the retrieval result when nothing matched.
	NoRelevantInformation = "No relevant information found."

	// NoResponseAvailable is returned when the provider sent zero choices.
	NoResponseAvailable = "No response available."

	// EmptyQueryHint is returned for empty or whitespace-only questions.
	EmptyQueryHint = "Hey, the text box is lonely! Fill it up."

	// NoContextNotice replaces the context block when retrieval found nothing.
	NoContextNotice = "No relevant documents were found. Please answer based on your knowledge base."

	// ErrorPrefix precedes provider failure descriptions.
	ErrorPrefix = "Error: "
)

// AnswerOutcome classifies how an answer was produced.
type AnswerOutcome string

// Possible answer outcomes.
const (
	OutcomeAnswered      AnswerOutcome = "answered"
	OutcomeValidation    AnswerOutcome = "validation"
	OutcomeNoResponse    AnswerOutcome = "no_response"
	OutcomeProviderError AnswerOutcome = "provider_error"
)

// String returns the string representation.
func (o AnswerOutcome) String() string {
	return string(o)
}

// Answer is the text returned for a question plus how it came about.
type Answer struct {
	Text    string
	Outcome AnswerOutcome
}

// Grounded reports whether the text came from the provider.
func (a Answer) Grounded() bool {
	return a.Outcome == OutcomeAnswered
}

// RetrievalContext is the ranked chunks for one query joined into a block.
type RetrievalContext struct {
	// Chunks are the ranked chunks, best first.
	Chunks []Chunk

	// Text is the joined chunk text, or NoRelevantInformation.
	Text string

	// Found is false when nothing was retrieved.
	Found bool
}

// NewRetrievalContext joins chunk texts one per line, best first.
// With no chunks the text is NoRelevantInformation.
func NewRetrievalContext(chunks []Chunk) RetrievalContext {
	if len(chunks) == 0 {
		return RetrievalContext{Text: NoRelevantInformation}
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return RetrievalContext{
		Chunks: chunks,
		Text:   strings.Join(texts, "\n"),
		Found:  true,
	}
}

// ConversationTurn is a question/answer pair with a stable identity.
type ConversationTurn struct {
	ID       string
	Question string
	Answer   Answer
}

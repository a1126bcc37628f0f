package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the document corpus"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	ID      string `json:"id"`
	Answer  string `json:"answer"`
	Outcome string `json:"outcome"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the text to find relevant passages for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of passages to return (default from settings)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput is one retrieved chunk.
type PassageOutput struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	Position int    `json:"position"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the indexed documents as context",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the passages most relevant to a query",
	}, s.handleRetrieve)
}

// handleAsk never fails: provider problems come back as answer text.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	turn := s.ports.Conversation.Turn(ctx, input.Question)
	return nil, AskOutput{
		ID:      turn.ID,
		Answer:  turn.Answer.Text,
		Outcome: turn.Answer.Outcome.String(),
	}, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = s.topK
	}

	chunks, err := s.ports.Retrieval.Search(ctx, input.Query, topK)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Passages: make([]PassageOutput, len(chunks)),
		Count:    len(chunks),
	}
	for i, c := range chunks {
		output.Passages[i] = PassageOutput{
			Text:     c.Text,
			Source:   c.SourceLabel,
			Position: c.Position,
		}
	}
	return nil, output, nil
}

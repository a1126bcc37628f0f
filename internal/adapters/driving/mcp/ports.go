package mcp

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Conversation answers questions.
	Conversation driving.Conversation

	// Retrieval ranks stored chunks.
	Retrieval driving.RetrievalService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Conversation == nil {
		return ErrMissingConversation
	}
	if p.Retrieval == nil {
		return ErrMissingRetrieval
	}
	return nil
}

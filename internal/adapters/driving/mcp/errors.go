// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants ask grounded questions and fetch context from
// the local corpus.
package mcp

import "errors"

// ErrMissingConversation is returned when the answer service is not provided.
var ErrMissingConversation = errors.New("mcp: conversation service is required")

// ErrMissingRetrieval is returned when the retrieval service is not provided.
var ErrMissingRetrieval = errors.New("mcp: retrieval service is required")

// Package mcp provides an MCP (Model Context Protocol) server adapter for kilde.
// It lets AI assistants retrieve context from the store and ask grounded questions.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

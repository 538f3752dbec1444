package mcp

import (
	"context"

	"github.com/nordvik-labs/kilde/internal/core/ports/driving"
)

// IndexStats reports the size of the store.
type IndexStats interface {
	Count(ctx context.Context) (int, error)
}

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Retrieval provides hybrid retrieval.
	Retrieval driving.RetrievalService

	// Answer generates grounded answers. Optional; without it the ask tool
	// is not registered.
	Answer driving.AnswerService

	// Stats backs the index resource. Optional.
	Stats IndexStats

	// Backend names the store, for the index resource.
	Backend string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}

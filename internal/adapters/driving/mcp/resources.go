package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "kilde://"

// indexInfo is the body of the index resource.
type indexInfo struct {
	Backend   string `json:"backend"`
	Documents int    `json:"documents"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Stats == nil {
		return
	}
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index",
		Name:        "index",
		Description: "Store backend and number of indexed documents",
		MIMEType:    "application/json",
	}, s.handleIndexResource)
}

// handleIndexResource reports the store backend and document count.
func (s *Server) handleIndexResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	n, err := s.ports.Stats.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	data, err := json.Marshal(indexInfo{Backend: s.ports.Backend, Documents: n})
	if err != nil {
		return nil, fmt.Errorf("encoding index info: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

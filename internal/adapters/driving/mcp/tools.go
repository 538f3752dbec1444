package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

// maxTake bounds the number of results one retrieve call may request.
const maxTake = 50

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the question or keywords to retrieve context for"`
	Site  string `json:"site,omitempty" jsonschema:"restrict results to documents tagged with this site"`
	Take  int    `json:"take,omitempty" jsonschema:"number of results to return (default 8)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []RetrievedContext `json:"results"`
	Count   int                `json:"count"`
}

// RetrievedContext is one fused retrieval result.
type RetrievedContext struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Source     string  `json:"source"`
	Page       *int    `json:"page,omitempty"`
	Score      float64 `json:"score"`
	Context    string  `json:"context"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	Site     string `json:"site,omitempty" jsonschema:"restrict the answer to documents tagged with this site"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string       `json:"answer"`
	Sources []SourceLink `json:"sources"`
}

// SourceLink is a reference shown with an answer.
type SourceLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve the most relevant passages from the indexed documents using hybrid keyword and vector search",
	}, s.handleRetrieve)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question in Norwegian, grounded in the indexed documents, with source links",
		}, s.handleAsk)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, RetrieveOutput{}, domain.ErrInvalidInput
	}
	take := min(input.Take, maxTake)

	res, err := s.ports.Retrieval.Retrieve(ctx, input.Query, domain.RetrieveOptions{Site: input.Site, Take: take})
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{Results: make([]RetrievedContext, 0, res.Len())}
	for i, src := range res.Sources {
		output.Results = append(output.Results, RetrievedContext{
			DocumentID: src.ID,
			Title:      src.Title,
			Source:     src.SourcePath,
			Page:       src.Page,
			Score:      src.Score,
			Context:    res.Contexts[i],
		})
	}
	output.Count = len(output.Results)
	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, domain.ErrInvalidInput
	}

	ans, err := s.ports.Answer.Answer(ctx, input.Question, input.Site)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{Answer: ans.Text, Sources: make([]SourceLink, 0, len(ans.Links))}
	for _, l := range ans.Links {
		output.Sources = append(output.Sources, SourceLink{Title: l.Title, URL: l.URL})
	}
	return nil, output, nil
}

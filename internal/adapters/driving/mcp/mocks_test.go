package mcp

import (
	"context"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

type mockRetrievalService struct {
	result *domain.RetrievalResult
	err    error
	query  string
	opts   domain.RetrieveOptions
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context, query string, opts domain.RetrieveOptions,
) (*domain.RetrievalResult, error) {
	m.query, m.opts = query, opts
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.RetrievalResult{}, nil
	}
	return m.result, nil
}

type mockAnswerService struct {
	answer   *domain.Answer
	err      error
	question string
	site     string
}

func (m *mockAnswerService) Answer(_ context.Context, question, site string) (*domain.Answer, error) {
	m.question, m.site = question, site
	return m.answer, m.err
}

type mockStats struct {
	n   int
	err error
}

func (m *mockStats) Count(context.Context) (int, error) {
	return m.n, m.err
}

package driving

import (
	"context"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

// RetrievalService provides hybrid retrieval over the persistent store.
type RetrievalService interface {
	// Retrieve embeds the query, ranks lexically and by vector, and fuses the rankings.
	Retrieve(ctx context.Context, query string, opts domain.RetrieveOptions) (*domain.RetrievalResult, error)
}

// AnswerService answers questions grounded in retrieved context.
type AnswerService interface {
	// Answer retrieves context for question and generates a reply with source links.
	Answer(ctx context.Context, question, site string) (*domain.Answer, error)
}

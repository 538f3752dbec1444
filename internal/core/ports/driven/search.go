package driven

import (
	"context"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

// Hit is one ranked document from a single ranking.
type Hit struct {
	// ID is the document identity used to merge rankings.
	ID string

	// Score is the ranker's native score. Only order matters to fusion.
	Score float64

	// Doc carries the fields needed to build a result.
	Doc domain.Document

	// Highlight is an optional lexical snippet.
	Highlight string
}

// LexicalQuery is a keyword query.
type LexicalQuery struct {
	Text  string
	Site  string
	Limit int
}

// VectorQuery is a nearest-neighbour query.
type VectorQuery struct {
	Vector []float32
	Site   string
	Limit  int
}

// LexicalRanker ranks documents by keyword relevance, best first.
type LexicalRanker interface {
	RankLexical(ctx context.Context, q LexicalQuery) ([]Hit, error)
}

// VectorRanker ranks documents by embedding similarity, best first.
type VectorRanker interface {
	RankVector(ctx context.Context, q VectorQuery) ([]Hit, error)
}

// SearchStore is a persistent document store that can rank both ways.
type SearchStore interface {
	LexicalRanker
	VectorRanker

	// EnsureIndex creates the index or schema when missing.
	EnsureIndex(ctx context.Context, dims int) error

	// DeleteIndex drops the index. Missing indexes are not an error.
	DeleteIndex(ctx context.Context) error

	// Upsert writes doc keyed by doc.ID, replacing any previous version.
	// Rejections are reported as *domain.StoreError.
	Upsert(ctx context.Context, doc domain.Document) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

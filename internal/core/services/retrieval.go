package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/core/ports/driving"
	"github.com/nordvik-labs/kilde/internal/logger"
	"github.com/nordvik-labs/kilde/internal/normalisers"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// RetrieverConfig tunes one retrieval backend.
type RetrieverConfig struct {
	// RRFK is the fusion constant.
	RRFK int
	// Take is the default number of fused results.
	Take int
	// LexicalLimit and VectorLimit bound each ranking.
	LexicalLimit int
	VectorLimit  int
	// SnippetChars bounds a context taken from raw content.
	SnippetChars int
}

// StoreRetrieverConfig returns the settings for a persistent search store.
func StoreRetrieverConfig(cfg domain.RetrievalConfig) RetrieverConfig {
	return RetrieverConfig{
		RRFK:         cfg.RRFK,
		Take:         cfg.Take,
		LexicalLimit: 20,
		VectorLimit:  50,
		SnippetChars: 800,
	}
}

// CorpusRetrieverConfig returns the settings for an in-memory crawl corpus.
func CorpusRetrieverConfig(cfg domain.RetrievalConfig) RetrieverConfig {
	return RetrieverConfig{
		RRFK:         cfg.RRFK,
		Take:         cfg.AskTake,
		LexicalLimit: corpusRankLimit,
		VectorLimit:  corpusRankLimit,
		SnippetChars: 1200,
	}
}

// Retriever runs hybrid retrieval: a lexical and a vector ranking fused
// with reciprocal rank fusion. The same code serves every backend.
type Retriever struct {
	embedder driven.EmbeddingService
	lexical  driven.LexicalRanker
	vector   driven.VectorRanker
	cfg      RetrieverConfig
}

// NewRetriever creates a retriever over the given rankers.
func NewRetriever(
	embedder driven.EmbeddingService,
	lexical driven.LexicalRanker,
	vector driven.VectorRanker,
	cfg RetrieverConfig,
) *Retriever {
	if cfg.Take <= 0 {
		cfg.Take = domain.DefaultTake
	}
	if cfg.SnippetChars <= 0 {
		cfg.SnippetChars = 800
	}
	return &Retriever{embedder: embedder, lexical: lexical, vector: vector, cfg: cfg}
}

// Retrieve returns the fused top results for query. A failing vector
// ranking is logged and retrieval continues with the lexical ranking only.
// With a site filter, results from other sites are never returned.
func (r *Retriever) Retrieve(
	ctx context.Context, query string, opts domain.RetrieveOptions,
) (*domain.RetrievalResult, error) {
	logger.Section("Retrieve")
	result := &domain.RetrievalResult{}

	query = strings.TrimSpace(query)
	if query == "" {
		return result, nil
	}
	take := opts.Take
	if take <= 0 {
		take = r.cfg.Take
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	lexical, err := r.lexical.RankLexical(ctx, driven.LexicalQuery{
		Text:  query,
		Site:  opts.Site,
		Limit: r.cfg.LexicalLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	vector, err := r.vector.RankVector(ctx, driven.VectorQuery{
		Vector: vec,
		Site:   opts.Site,
		Limit:  r.cfg.VectorLimit,
	})
	if err != nil {
		logger.Warn("retrieve: %v", fmt.Errorf("%w: %w", domain.ErrVectorSearchUnavailable, err))
		vector = nil
	}
	logger.Debug("Query %q: %d lexical, %d vector hits", query, len(lexical), len(vector))

	for _, f := range Fuse(r.cfg.RRFK, lexical, vector) {
		if result.Len() >= take {
			break
		}
		doc := f.Hit.Doc
		if opts.Site != "" && doc.Site != opts.Site {
			continue
		}
		snippet := strings.TrimSpace(f.Hit.Highlight)
		if snippet == "" {
			snippet = normalisers.Truncate(doc.Content, r.cfg.SnippetChars)
		}
		result.Add(snippet, domain.Source{
			ID:         f.Hit.ID,
			Title:      doc.Title,
			SourcePath: doc.SourcePath,
			Page:       doc.Page,
			Score:      f.Score,
		})
	}
	logger.Info("Retrieved %d results", result.Len())
	return result, nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
)

func storeHit(id, site, content string) driven.Hit {
	return driven.Hit{
		ID:  id,
		Doc: domain.Document{ID: id, Title: "Tittel " + id, Content: content, Site: site, SourcePath: "https://x.com/" + id},
	}
}

func newStoreRetriever(store *fakeStore, embedder *fakeEmbedder) *Retriever {
	return NewRetriever(embedder, store, store, StoreRetrieverConfig(domain.DefaultConfig().Retrieval))
}

func TestRetriever_FusesBothRankings(t *testing.T) {
	store := newFakeStore()
	store.lexical = []driven.Hit{storeHit("a", "", "alpha"), storeHit("b", "", "beta")}
	store.vector = []driven.Hit{storeHit("b", "", "beta"), storeHit("c", "", "gamma")}
	r := newStoreRetriever(store, &fakeEmbedder{})

	res, err := r.Retrieve(context.Background(), "hylle", domain.RetrieveOptions{})
	require.NoError(t, err)

	require.Equal(t, 3, res.Len())
	assert.Equal(t, "b", res.Sources[0].ID)
	assert.Equal(t, []string{"beta", "alpha", "gamma"}, res.Contexts)
	assert.Equal(t, res.Contexts[1], res.Sources[1].Snippet)
	assert.Equal(t, 20, store.lastLex.Limit)
	assert.Equal(t, 50, store.lastVec.Limit)
	assert.Len(t, store.lastVec.Vector, 3)
}

func TestRetriever_VectorFailureDegradesToLexical(t *testing.T) {
	store := newFakeStore()
	store.lexical = []driven.Hit{storeHit("a", "", "alpha"), storeHit("b", "", "beta")}
	store.vectorErr = errors.New("knn not supported")
	r := newStoreRetriever(store, &fakeEmbedder{})

	res, err := r.Retrieve(context.Background(), "hylle", domain.RetrieveOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, res.Contexts)
}

func TestRetriever_LexicalFailurePropagates(t *testing.T) {
	store := newFakeStore()
	store.lexErr = errors.New("index missing")
	r := newStoreRetriever(store, &fakeEmbedder{})

	_, err := r.Retrieve(context.Background(), "hylle", domain.RetrieveOptions{})
	assert.ErrorContains(t, err, "index missing")
}

func TestRetriever_EmbedFailurePropagates(t *testing.T) {
	store := newFakeStore()
	r := newStoreRetriever(store, &fakeEmbedder{err: domain.ErrEmbeddingFailure})

	_, err := r.Retrieve(context.Background(), "hylle", domain.RetrieveOptions{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailure)
}

func TestRetriever_EmptyQuery(t *testing.T) {
	embedder := &fakeEmbedder{}
	r := newStoreRetriever(newFakeStore(), embedder)

	res, err := r.Retrieve(context.Background(), "   ", domain.RetrieveOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
	assert.Equal(t, 0, embedder.callCount())
}

func TestRetriever_SiteFilter(t *testing.T) {
	store := newFakeStore()
	store.lexical = []driven.Hit{storeHit("a", "other", "alpha"), storeHit("b", "butikk", "beta")}
	store.vector = []driven.Hit{storeHit("c", "", "gamma"), storeHit("b", "butikk", "beta")}
	r := newStoreRetriever(store, &fakeEmbedder{})

	res, err := r.Retrieve(context.Background(), "hylle", domain.RetrieveOptions{Site: "butikk"})
	require.NoError(t, err)
	assert.Equal(t, "butikk", store.lastLex.Site)
	assert.Equal(t, "butikk", store.lastVec.Site)
	require.Equal(t, 1, res.Len())
	assert.Equal(t, "b", res.Sources[0].ID)
}

func TestRetriever_Take(t *testing.T) {
	store := newFakeStore()
	for _, id := range []string{"a", "b", "c", "d"} {
		store.lexical = append(store.lexical, storeHit(id, "", id))
	}
	r := newStoreRetriever(store, &fakeEmbedder{})

	res, err := r.Retrieve(context.Background(), "hylle", domain.RetrieveOptions{Take: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Contexts)
}

func TestRetriever_HighlightOverContent(t *testing.T) {
	store := newFakeStore()
	hit := storeHit("a", "", strings.Repeat("lang tekst ", 200))
	hit.Highlight = "  <em>hylle</em> med skruer  "
	store.lexical = []driven.Hit{hit}
	store.vector = []driven.Hit{storeHit("b", "", strings.Repeat("x", 2000))}
	r := newStoreRetriever(store, &fakeEmbedder{})

	res, err := r.Retrieve(context.Background(), "hylle", domain.RetrieveOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, res.Len())
	assert.Equal(t, "<em>hylle</em> med skruer", res.Contexts[0])
	assert.LessOrEqual(t, len([]rune(res.Contexts[1])), 801)
}

func TestRetriever_PageCarriedToSource(t *testing.T) {
	page := 4
	store := newFakeStore()
	hit := storeHit("a", "", "side fire")
	hit.Doc.Page = &page
	store.lexical = []driven.Hit{hit}
	r := newStoreRetriever(store, &fakeEmbedder{})

	res, err := r.Retrieve(context.Background(), "hylle", domain.RetrieveOptions{})
	require.NoError(t, err)
	require.NotNil(t, res.Sources[0].Page)
	assert.Equal(t, 4, *res.Sources[0].Page)
	assert.Greater(t, res.Sources[0].Score, 0.0)
}

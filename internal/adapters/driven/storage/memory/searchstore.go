package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
)

// Ensure SearchStore implements the interface.
var _ driven.SearchStore = (*SearchStore)(nil)

// titleWeight scales term hits in the title relative to the body.
const titleWeight = 2

// SearchStore keeps documents in a map. Nothing survives Close.
type SearchStore struct {
	mu   sync.RWMutex
	dims int
	docs map[string]domain.Document
}

// NewSearchStore creates an empty store.
func NewSearchStore() *SearchStore {
	return &SearchStore{docs: make(map[string]domain.Document)}
}

// EnsureIndex records the vector width. A second call with a different
// width is rejected.
func (s *SearchStore) EnsureIndex(_ context.Context, dims int) error {
	if dims <= 0 {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dims != 0 && s.dims != dims {
		return domain.ErrInvalidInput
	}
	s.dims = dims
	return nil
}

// DeleteIndex drops every document.
func (s *SearchStore) DeleteIndex(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]domain.Document)
	s.dims = 0
	return nil
}

// Upsert stores doc under doc.ID.
func (s *SearchStore) Upsert(ctx context.Context, doc domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.ID == "" {
		return &domain.StoreError{Reason: "missing id"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dims != 0 && len(doc.Embedding) != 0 && len(doc.Embedding) != s.dims {
		return &domain.StoreError{ID: doc.ID, Reason: "embedding dimension mismatch"}
	}
	doc.Embedding = append([]float32(nil), doc.Embedding...)
	s.docs[doc.ID] = doc
	return nil
}

// Count returns the number of stored documents.
func (s *SearchStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// RankLexical scores documents by query term frequency. Documents that
// match no term are left out.
func (s *SearchStore) RankLexical(ctx context.Context, q driven.LexicalQuery) ([]driven.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms := tokenize(q.Text)
	if len(terms) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var hits []driven.Hit
	for _, doc := range s.docs {
		if q.Site != "" && doc.Site != q.Site {
			continue
		}
		if score := termScore(doc, terms); score > 0 {
			hits = append(hits, driven.Hit{ID: doc.ID, Score: score, Doc: doc})
		}
	}
	return rank(hits, q.Limit), nil
}

// RankVector scores documents by cosine similarity.
func (s *SearchStore) RankVector(ctx context.Context, q driven.VectorQuery) ([]driven.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(q.Vector) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var hits []driven.Hit
	for _, doc := range s.docs {
		if q.Site != "" && doc.Site != q.Site {
			continue
		}
		if len(doc.Embedding) != len(q.Vector) {
			continue
		}
		hits = append(hits, driven.Hit{ID: doc.ID, Score: cosine(q.Vector, doc.Embedding), Doc: doc})
	}
	return rank(hits, q.Limit), nil
}

// Close is a no-op.
func (s *SearchStore) Close() error {
	return nil
}

func termScore(doc domain.Document, terms []string) float64 {
	counts := make(map[string]int)
	for _, tok := range tokenize(doc.Content) {
		counts[tok]++
	}
	for _, tok := range tokenize(doc.Title) {
		counts[tok] += titleWeight
	}
	var score float64
	for _, t := range terms {
		if n := counts[t]; n > 0 {
			score += 1 + math.Log(float64(n))
		}
	}
	return score
}

// rank sorts by score, then by ID so that map order never leaks.
func rank(hits []driven.Hit, limit int) []driven.Hit {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

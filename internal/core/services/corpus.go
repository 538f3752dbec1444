package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
)

// Ensure Corpus implements both rankers.
var (
	_ driven.LexicalRanker = (*Corpus)(nil)
	_ driven.VectorRanker  = (*Corpus)(nil)
)

// corpusRankLimit is the default number of hits per ranking.
const corpusRankLimit = 50

// Corpus is an in-memory set of crawled pages with a document-frequency
// table built once at construction. It is read-only afterwards and safe
// for concurrent queries.
type Corpus struct {
	entries []domain.CorpusEntry
	tf      []map[string]int
	idf     map[string]float64
}

// NewCorpus builds the IDF table over entries.
func NewCorpus(entries []domain.CorpusEntry) *Corpus {
	c := &Corpus{
		entries: entries,
		tf:      make([]map[string]int, len(entries)),
	}

	df := make(map[string]int)
	for i, e := range entries {
		counts := make(map[string]int)
		for _, tok := range Tokenize(e.Content) {
			counts[tok]++
		}
		c.tf[i] = counts
		for tok := range counts {
			df[tok]++
		}
	}

	n := float64(len(entries))
	c.idf = make(map[string]float64, len(df))
	for tok, d := range df {
		c.idf[tok] = math.Log((n+1)/(float64(d)+1)) + 1
	}
	return c
}

// Len returns the number of pages.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns the pages in crawl order.
func (c *Corpus) Entries() []domain.CorpusEntry {
	return c.entries
}

// IDF returns the smoothed inverse document frequency of term, or 1 for
// terms that never occur in the corpus.
func (c *Corpus) IDF(term string) float64 {
	if v, ok := c.idf[term]; ok {
		return v
	}
	return 1
}

// KeywordScore sums term frequency times IDF over the query terms of at
// least two characters.
func (c *Corpus) KeywordScore(index int, query []string) float64 {
	var score float64
	for _, term := range query {
		if f := c.tf[index][term]; f > 0 {
			score += float64(f) * c.IDF(term)
		}
	}
	return score
}

// RankLexical ranks pages by KeywordScore. Pages without any query term are
// left out. The site filter does not apply to a single-site corpus.
func (c *Corpus) RankLexical(ctx context.Context, q driven.LexicalQuery) ([]driven.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var terms []string
	for _, tok := range Tokenize(q.Text) {
		if utf8.RuneCountInString(tok) >= 2 {
			terms = append(terms, tok)
		}
	}
	if len(terms) == 0 {
		return nil, nil
	}

	hits := make([]driven.Hit, 0, len(c.entries))
	for i := range c.entries {
		if score := c.KeywordScore(i, terms); score > 0 {
			hits = append(hits, c.hit(i, score))
		}
	}
	return topHits(hits, q.Limit), nil
}

// RankVector ranks pages by cosine similarity to the query vector.
func (c *Corpus) RankVector(ctx context.Context, q driven.VectorQuery) ([]driven.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hits := make([]driven.Hit, 0, len(c.entries))
	for i, e := range c.entries {
		if len(e.Embedding) == 0 {
			continue
		}
		hits = append(hits, c.hit(i, Cosine(q.Vector, e.Embedding)))
	}
	return topHits(hits, q.Limit), nil
}

func (c *Corpus) hit(i int, score float64) driven.Hit {
	e := c.entries[i]
	return driven.Hit{
		ID:    e.URL,
		Score: score,
		Doc: domain.Document{
			ID:         e.URL,
			Title:      e.Title,
			Content:    e.Content,
			SourcePath: e.URL,
		},
	}
}

// topHits sorts by score, keeping corpus order for ties, and cuts to limit.
func topHits(hits []driven.Hit, limit int) []driven.Hit {
	if limit <= 0 {
		limit = corpusRankLimit
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// Tokenize lower-cases s and splits it into runs of letters and digits.
// Every other rune is a boundary.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Cosine returns the cosine similarity of a and b over their common length.
// It is 0 when either vector has zero magnitude.
func Cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(-1, math.Min(1, sim))
}

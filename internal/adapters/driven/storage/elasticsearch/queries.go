package elasticsearch

import (
	"fmt"
	"strings"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
)

// Query tuning.
const (
	highlightFragment = 300
	minCandidates     = 1000
)

// DefaultBoostTerms raise documents that look like assembly or installation
// guides without requiring them to match.
var DefaultBoostTerms = []string{
	"monter", "montering", "monteringsanvisning", "montasje",
	"installasjon", "installasjonsveiledning", "manual", "veiledning",
}

// sourceFields are the stored fields returned with every hit.
var sourceFields = []string{"title", "content", "site", "sourcePath", "page"}

// lexicalRequest is the body of a BM25 search.
type lexicalRequest struct {
	Size      int       `json:"size"`
	Query     query     `json:"query"`
	Highlight highlight `json:"highlight"`
	Source    []string  `json:"_source"`
}

type query struct {
	Bool boolQuery `json:"bool"`
}

// boolQuery combines a required content match with optional boosts and
// non-scoring filters.
type boolQuery struct {
	Must               mustClause     `json:"must"`
	Should             []shouldClause `json:"should"`
	MinimumShouldMatch int            `json:"minimum_should_match"`
	Filter             []termFilter   `json:"filter,omitempty"`
}

type mustClause struct {
	Match matchClause `json:"match"`
}

// matchClause is a full-text match on the content field.
type matchClause struct {
	Content matchField `json:"content"`
}

type matchField struct {
	Query    string `json:"query"`
	Operator string `json:"operator"`
}

type shouldClause struct {
	MultiMatch multiMatchClause `json:"multi_match"`
}

type multiMatchClause struct {
	Query  string   `json:"query"`
	Fields []string `json:"fields"`
	Type   string   `json:"type"`
}

// termFilter is an exact keyword match on the site field.
type termFilter struct {
	Term siteTerm `json:"term"`
}

type siteTerm struct {
	Site string `json:"site"`
}

type highlight struct {
	Fields map[string]highlightField `json:"fields"`
}

type highlightField struct {
	FragmentSize      int `json:"fragment_size"`
	NumberOfFragments int `json:"number_of_fragments"`
}

// knnRequest is the body of an approximate nearest-neighbour search.
type knnRequest struct {
	Size   int      `json:"size"`
	Knn    knnQuery `json:"knn"`
	Source []string `json:"_source"`
}

type knnQuery struct {
	Field         string       `json:"field"`
	QueryVector   []float32    `json:"query_vector"`
	K             int          `json:"k"`
	NumCandidates int          `json:"num_candidates"`
	Filter        []termFilter `json:"filter,omitempty"`
}

// indexBody is the index body created by EnsureIndex.
type indexBody struct {
	Mappings mappings `json:"mappings"`
}

type mappings struct {
	Properties map[string]fieldMapping `json:"properties"`
}

type fieldMapping struct {
	Type       string `json:"type"`
	Analyzer   string `json:"analyzer,omitempty"`
	Dims       int    `json:"dims,omitempty"`
	Index      bool   `json:"index,omitempty"`
	Similarity string `json:"similarity,omitempty"`
}

// boostFields are searched for guide-like words, title weighted highest.
var boostFields = []string{"title^3", "content", "sourcePath^2"}

// newLexicalRequest requires every query term in content, boosts guide-like
// documents and filters by site when set.
func newLexicalRequest(q driven.LexicalQuery, boost []string) (lexicalRequest, error) {
	if strings.TrimSpace(q.Text) == "" {
		return lexicalRequest{}, fmt.Errorf("%w: empty lexical query", domain.ErrInvalidInput)
	}
	if q.Limit <= 0 {
		return lexicalRequest{}, fmt.Errorf("%w: lexical limit %d", domain.ErrInvalidInput, q.Limit)
	}

	should := make([]shouldClause, 0, len(boost))
	for _, w := range boost {
		should = append(should, shouldClause{MultiMatch: multiMatchClause{
			Query:  w,
			Fields: boostFields,
			Type:   "best_fields",
		}})
	}

	bq := boolQuery{
		Must:   mustClause{Match: matchClause{Content: matchField{Query: q.Text, Operator: "and"}}},
		Should: should,
	}
	if q.Site != "" {
		bq.Filter = []termFilter{siteFilter(q.Site)}
	}

	return lexicalRequest{
		Size:  q.Limit,
		Query: query{Bool: bq},
		Highlight: highlight{Fields: map[string]highlightField{
			"content": {FragmentSize: highlightFragment, NumberOfFragments: 1},
		}},
		Source: sourceFields,
	}, nil
}

// newKNNRequest searches the embedding field with the site as a pre-filter.
func newKNNRequest(q driven.VectorQuery) (knnRequest, error) {
	if len(q.Vector) == 0 {
		return knnRequest{}, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}
	if q.Limit <= 0 {
		return knnRequest{}, fmt.Errorf("%w: vector limit %d", domain.ErrInvalidInput, q.Limit)
	}

	knn := knnQuery{
		Field:         "embedding",
		QueryVector:   q.Vector,
		K:             q.Limit,
		NumCandidates: max(minCandidates, q.Limit),
	}
	if q.Site != "" {
		knn.Filter = []termFilter{siteFilter(q.Site)}
	}
	return knnRequest{Size: q.Limit, Knn: knn, Source: sourceFields}, nil
}

func siteFilter(site string) termFilter {
	return termFilter{Term: siteTerm{Site: site}}
}

func indexMapping(dims int) indexBody {
	return indexBody{Mappings: mappings{Properties: map[string]fieldMapping{
		"title":      {Type: "keyword"},
		"site":       {Type: "keyword"},
		"sourcePath": {Type: "keyword"},
		"content":    {Type: "text", Analyzer: "norwegian"},
		"page":       {Type: "integer"},
		"embedding":  {Type: "dense_vector", Dims: dims, Index: true, Similarity: "cosine"},
	}}}
}

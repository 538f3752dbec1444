// Package elasticsearch provides the primary SearchStore backed by an
// Elasticsearch 8 index with a norwegian-analysed content field and a
// cosine dense_vector embedding field.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SearchStore = (*Store)(nil)

// Config holds connection settings.
type Config struct {
	// URL is the cluster endpoint (default: http://localhost:9200).
	// Several endpoints may be given comma-separated.
	URL string

	// Index is the index name (default: kilde).
	Index string

	Username string
	Password string

	// BoostTerms overrides DefaultBoostTerms. An empty non-nil slice disables boosting.
	BoostTerms []string

	// Transport replaces the HTTP transport.
	Transport http.RoundTripper
}

// Store is an Elasticsearch-backed search store.
type Store struct {
	client *es.Client
	index  string
	boost  []string
}

// document is the stored JSON shape.
type document struct {
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Site       string    `json:"site,omitempty"`
	SourcePath string    `json:"sourcePath"`
	Page       *int      `json:"page,omitempty"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID        string              `json:"_id"`
			Score     *float64            `json:"_score"`
			Source    document            `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
}

type errorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// NewStore creates a client for the configured cluster. It does not
// contact the cluster.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		cfg.URL = "http://localhost:9200"
	}
	if cfg.Index == "" {
		cfg.Index = domain.DefaultIndexName
	}
	boost := cfg.BoostTerms
	if boost == nil {
		boost = DefaultBoostTerms
	}

	var addresses []string
	for _, a := range strings.Split(cfg.URL, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addresses = append(addresses, a)
		}
	}

	client, err := es.NewClient(es.Config{
		Addresses: addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: elasticsearch client: %w", domain.ErrStoreUnavailable, err)
	}

	return &Store{client: client, index: cfg.Index, boost: boost}, nil
}

// Index returns the index name.
func (s *Store) Index() string {
	return s.index
}

// EnsureIndex creates the index with its mapping when missing.
func (s *Store) EnsureIndex(ctx context.Context, dims int) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{s.index}}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, err := json.Marshal(indexMapping(dims))
	if err != nil {
		return fmt.Errorf("encoding mapping: %w", err)
	}
	res, err = esapi.IndicesCreateRequest{Index: s.index, Body: bytes.NewReader(body)}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %w", s.index, responseError(res))
	}
	return nil
}

// DeleteIndex drops the index. A missing index is not an error.
func (s *Store) DeleteIndex(ctx context.Context) error {
	res, err := esapi.IndicesDeleteRequest{Index: []string{s.index}}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete index %s: %w", s.index, responseError(res))
	}
	return nil
}

// Upsert indexes doc under its ID, replacing any previous version.
func (s *Store) Upsert(ctx context.Context, doc domain.Document) error {
	body, err := json.Marshal(document{
		Title:      doc.Title,
		Content:    doc.Content,
		Site:       doc.Site,
		SourcePath: doc.SourcePath,
		Page:       doc.Page,
		Embedding:  doc.Embedding,
	})
	if err != nil {
		return &domain.StoreError{ID: doc.ID, Reason: err.Error()}
	}

	res, err := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, s.client)
	if err != nil {
		return &domain.StoreError{ID: doc.ID, Reason: err.Error()}
	}
	defer res.Body.Close()
	if res.IsError() {
		return &domain.StoreError{ID: doc.ID, Reason: responseError(res).Error()}
	}
	return nil
}

// Count returns the number of documents in the index.
func (s *Store) Count(ctx context.Context) (int, error) {
	res, err := esapi.CountRequest{Index: []string{s.index}}.Do(ctx, s.client)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("count %s: %w", s.index, responseError(res))
	}

	var out struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decoding count: %w", err)
	}
	return out.Count, nil
}

// RankLexical runs the BM25 query with a content highlight.
func (s *Store) RankLexical(ctx context.Context, q driven.LexicalQuery) ([]driven.Hit, error) {
	req, err := newLexicalRequest(q, s.boost)
	if err != nil {
		return nil, err
	}
	return s.search(ctx, req)
}

// RankVector runs the kNN query against the embedding field.
func (s *Store) RankVector(ctx context.Context, q driven.VectorQuery) ([]driven.Hit, error) {
	req, err := newKNNRequest(q)
	if err != nil {
		return nil, err
	}
	return s.search(ctx, req)
}

func (s *Store) search(ctx context.Context, payload any) ([]driven.Hit, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	res, err := esapi.SearchRequest{Index: []string{s.index}, Body: bytes.NewReader(body)}.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %w", s.index, responseError(res))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	hits := make([]driven.Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hit := driven.Hit{
			ID: h.ID,
			Doc: domain.Document{
				ID:         h.ID,
				Title:      h.Source.Title,
				Content:    h.Source.Content,
				Site:       h.Source.Site,
				SourcePath: h.Source.SourcePath,
				Page:       h.Source.Page,
			},
		}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		if frags := h.Highlight["content"]; len(frags) > 0 {
			hit.Highlight = frags[0]
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Close releases resources. The HTTP client needs no teardown.
func (s *Store) Close() error {
	return nil
}

// responseError extracts the error type and reason from an error response.
func responseError(res *esapi.Response) error {
	data, _ := io.ReadAll(io.LimitReader(res.Body, 8192))

	var parsed errorResponse
	if json.Unmarshal(data, &parsed) == nil && parsed.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", res.Status(), parsed.Error.Type, parsed.Error.Reason)
	}
	return fmt.Errorf("%s: %s", res.Status(), strings.TrimSpace(string(data)))
}

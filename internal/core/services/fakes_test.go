package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"iter"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
)

// --- Fake implementations ---

// fakeEmbedder implements driven.EmbeddingService. Vectors are derived
// from the text so similar texts get similar vectors.
type fakeEmbedder struct {
	mu      sync.Mutex
	calls   []string
	failFor map[string]bool
	err     error
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	for needle := range f.failFor {
		if strings.Contains(text, needle) {
			return nil, errors.New("embedding service unavailable")
		}
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{float32(len(text)%7 + 1), 1, 0.5}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int              { return 3 }
func (f *fakeEmbedder) ModelName() string            { return "fake-embed" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeStore implements driven.SearchStore over a map.
type fakeStore struct {
	mu        sync.Mutex
	docs      map[string]domain.Document
	upsertErr map[string]error
	lexical   []driven.Hit
	vector    []driven.Hit
	vectorErr error
	lexErr    error
	ensured   int
	deleted   int
	lastLex   driven.LexicalQuery
	lastVec   driven.VectorQuery
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]domain.Document), upsertErr: make(map[string]error)}
}

func (s *fakeStore) RankLexical(_ context.Context, q driven.LexicalQuery) ([]driven.Hit, error) {
	s.lastLex = q
	return s.lexical, s.lexErr
}

func (s *fakeStore) RankVector(_ context.Context, q driven.VectorQuery) ([]driven.Hit, error) {
	s.lastVec = q
	return s.vector, s.vectorErr
}

func (s *fakeStore) EnsureIndex(_ context.Context, _ int) error {
	s.ensured++
	return nil
}

func (s *fakeStore) DeleteIndex(_ context.Context) error {
	s.deleted++
	return nil
}

func (s *fakeStore) Upsert(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.upsertErr[doc.SourcePath]; ok {
		return err
	}
	s.docs[doc.ID] = doc
	return nil
}

func (s *fakeStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs), nil
}

func (s *fakeStore) Close() error { return nil }

// bySource returns stored documents sorted by source path.
func (s *fakeStore) bySource() []domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].SourcePath < out[j].SourcePath })
	return out
}

// fakeLLM implements driven.LLMService and records prompts.
type fakeLLM struct {
	reply   string
	err     error
	prompts []string
	opts    []driven.GenerateOptions
}

func (m *fakeLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	return m.reply, m.err
}

func (m *fakeLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return m.reply, m.err
}

func (m *fakeLLM) ModelName() string            { return "fake-llm" }
func (m *fakeLLM) Ping(_ context.Context) error { return nil }
func (m *fakeLLM) Close() error                 { return nil }

// fakeCaptioner implements driven.ImageCaptioner.
type fakeCaptioner struct {
	mu      sync.Mutex
	caption string
	hints   []string
	sites   []string
}

func (c *fakeCaptioner) Describe(_ context.Context, _ []byte, site, hint string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hints = append(c.hints, hint)
	c.sites = append(c.sites, site)
	return c.caption
}

func (c *fakeCaptioner) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hints)
}

// fakeRasterizer implements driven.Rasterizer and records rendered pages.
type fakeRasterizer struct {
	mu       sync.Mutex
	rendered []int
	fail     map[int]bool
}

func (r *fakeRasterizer) RenderPage(_ context.Context, _ string, page int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rendered = append(r.rendered, page)
	if r.fail[page] {
		return nil, errors.New("render failed")
	}
	return []byte{byte(page)}, nil
}

func (r *fakeRasterizer) Pages(ctx context.Context, path string, count int) iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		for i := 0; i < count; i++ {
			img, err := r.RenderPage(ctx, path, i)
			if err != nil {
				continue
			}
			if !yield(i, img) {
				return
			}
		}
	}
}

// stubExtractor implements driven.Extractor with canned output.
type stubExtractor struct {
	exts   []string
	result map[string]*domain.Extraction
	err    error
}

func (s *stubExtractor) Extensions() []string { return s.exts }

func (s *stubExtractor) Extract(_ context.Context, path string) (*domain.Extraction, error) {
	if s.err != nil {
		return nil, s.err
	}
	for suffix, ex := range s.result {
		if strings.HasSuffix(path, suffix) {
			return ex, nil
		}
	}
	return &domain.Extraction{
		Title:  "doc",
		Format: domain.FormatPDF,
		Pages:  []domain.PageText{{Index: 0, Text: "standard pdf tekst"}},
		Paged:  true,
	}, nil
}

// fakeFetcher implements driven.PageFetcher from a URL map.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]*driven.FetchedPage
	calls map[string]int
	order []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: make(map[string]*driven.FetchedPage), calls: make(map[string]int)}
}

func (f *fakeFetcher) html(rawURL, body string) {
	f.add(rawURL, "text/html; charset=utf-8", []byte(body))
}

func (f *fakeFetcher) add(rawURL, contentType string, body []byte) {
	u, _ := url.Parse(rawURL)
	f.pages[rawURL] = &driven.FetchedPage{URL: u, ContentType: contentType, Body: body}
}

func (f *fakeFetcher) Fetch(_ context.Context, u *url.URL) (*driven.FetchedPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := u.String()
	f.calls[key]++
	f.order = append(f.order, key)
	if p, ok := f.pages[key]; ok {
		return p, nil
	}
	return nil, errors.New("404 Not Found")
}

// pngOfWidth returns an encoded PNG of the given size.
func pngOfWidth(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

package services

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/core/ports/driving"
	"github.com/nordvik-labs/kilde/internal/logger"
)

// Ensure Asker implements the interface.
var _ driving.AnswerService = (*Asker)(nil)

const (
	// NoAnswer is returned when there is nothing to ground an answer in.
	NoAnswer = "Jeg vet dessverre ikke."

	contextSeparator = "\n\n---\n\n"
	maxSourceLinks   = 5
	maxFallbackTitle = 5
	answerTemp       = 0.2
	siteAnswerTokens = 300
)

// Asker answers questions from the persistent store.
type Asker struct {
	retriever driving.RetrievalService
	llm       driven.LLMService
	prompts   driven.PromptStore
	take      int
}

// NewAsker creates an answer service.
// The llm parameter is optional (can be nil); without it answers list the
// matching documents instead of generating prose.
func NewAsker(
	retriever driving.RetrievalService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	take int,
) *Asker {
	if take <= 0 {
		take = domain.DefaultTake
	}
	return &Asker{retriever: retriever, llm: llm, prompts: prompts, take: take}
}

// Answer retrieves context for question and generates a grounded reply.
func (a *Asker) Answer(ctx context.Context, question, site string) (*domain.Answer, error) {
	res, err := a.retriever.Retrieve(ctx, question, domain.RetrieveOptions{Site: site, Take: a.take})
	if err != nil {
		return nil, err
	}
	links := SourceLinks(res.Sources)

	if a.llm == nil {
		return &domain.Answer{Text: localAnswer(question, res), Links: links}, nil
	}
	if res.Len() == 0 {
		return &domain.Answer{Text: NoAnswer, Links: links}, nil
	}

	prompt := fmt.Sprintf(loadPrompt(a.prompts, driven.PromptAnswer),
		strings.Join(res.Contexts, contextSeparator), question)
	text, err := a.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: answerTemp})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	return &domain.Answer{Text: strings.TrimSpace(text), Links: links}, nil
}

// localAnswer lists the matched document titles when no LLM is configured.
func localAnswer(question string, res *domain.RetrievalResult) string {
	if res.Len() == 0 {
		return "Echo: " + question
	}
	seen := make(map[string]struct{})
	var titles []string
	for _, src := range res.Sources {
		t := strings.TrimSpace(src.Title)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		titles = append(titles, t)
		if len(titles) == maxFallbackTitle {
			break
		}
	}
	return "(Lokalt søk) " + question + "\n\nBasert på dokumenter:\n- " + strings.Join(titles, "\n- ")
}

// SourceLinks builds at most five unique http(s) links from sources. PDF
// links get a #page fragment when the page is known. PDFs sort first, then
// links sort by title.
func SourceLinks(sources []domain.Source) []domain.SourceLink {
	seen := make(map[string]struct{})
	var links []domain.SourceLink
	for _, src := range sources {
		raw := strings.TrimSpace(src.SourcePath)
		lower := strings.ToLower(raw)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			continue
		}
		if src.Page != nil && strings.HasSuffix(lower, ".pdf") {
			raw = fmt.Sprintf("%s#page=%d", raw, *src.Page)
		}
		link := cleanURL(raw)

		key := strings.ToLower(link)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		title := strings.TrimSpace(src.Title)
		if title == "" {
			title = linkTitle(link)
		}
		links = append(links, domain.SourceLink{Title: title, URL: link})
	}

	sort.SliceStable(links, func(i, j int) bool {
		pi, pj := isPDFLink(links[i].URL), isPDFLink(links[j].URL)
		if pi != pj {
			return pi
		}
		return strings.ToLower(links[i].Title) < strings.ToLower(links[j].Title)
	})
	if len(links) > maxSourceLinks {
		links = links[:maxSourceLinks]
	}
	return links
}

// cleanURL escapes spaces and parentheses without touching the query or fragment.
func cleanURL(raw string) string {
	return strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29").Replace(raw)
}

func isPDFLink(link string) bool {
	base, _, _ := strings.Cut(link, "#")
	return strings.HasSuffix(strings.ToLower(base), ".pdf")
}

// linkTitle names a link by its last path segment, or its host.
func linkTitle(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if seg := strings.Trim(path.Base(u.Path), "/"); seg != "" && seg != "." {
		return seg
	}
	return u.Host
}

// SiteSession answers questions from one crawled corpus.
type SiteSession struct {
	corpus    *Corpus
	retriever *Retriever
	llm       driven.LLMService
	prompts   driven.PromptStore
}

// Ensure SiteSession implements the interface.
var _ driving.SiteSession = (*SiteSession)(nil)

// NewSiteSession creates a session over corpus. llm may be nil.
func NewSiteSession(
	corpus *Corpus,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	cfg domain.RetrievalConfig,
) *SiteSession {
	return &SiteSession{
		corpus:    corpus,
		retriever: NewRetriever(embedder, corpus, corpus, CorpusRetrieverConfig(cfg)),
		llm:       llm,
		prompts:   prompts,
	}
}

// Pages returns the number of crawled pages.
func (s *SiteSession) Pages() int {
	return s.corpus.Len()
}

// Corpus returns the underlying corpus.
func (s *SiteSession) Corpus() *Corpus {
	return s.corpus
}

// Ask answers question from the crawled pages.
func (s *SiteSession) Ask(ctx context.Context, question string) (string, error) {
	if s.corpus.Len() == 0 {
		return NoAnswer, nil
	}
	res, err := s.retriever.Retrieve(ctx, question, domain.RetrieveOptions{})
	if err != nil {
		return "", err
	}
	if s.llm == nil {
		return localAnswer(question, res), nil
	}
	if res.Len() == 0 {
		return NoAnswer, nil
	}

	blocks := make([]string, res.Len())
	for i, src := range res.Sources {
		blocks[i] = fmt.Sprintf("[Kilde] %s — %s\n%s", src.Title, src.SourcePath, res.Contexts[i])
	}
	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptSiteAnswer),
		strings.Join(blocks, contextSeparator), question)

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   siteAnswerTokens,
		Temperature: answerTemp,
	})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	if text = strings.TrimSpace(text); text == "" {
		logger.Debug("Empty completion for %q", question)
		return NoAnswer, nil
	}
	return text, nil
}

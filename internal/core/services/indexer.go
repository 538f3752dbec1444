package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/core/ports/driving"
	"github.com/nordvik-labs/kilde/internal/logger"
	"github.com/nordvik-labs/kilde/internal/normalisers"
)

// Ensure FileIndexer implements the interface.
var _ driving.IndexService = (*FileIndexer)(nil)

// pageHintChars is the page text budget passed to the captioner as context.
const pageHintChars = 800

// FileIndexer extracts, captions, embeds and stores local documents.
type FileIndexer struct {
	store      driven.SearchStore
	embedder   driven.EmbeddingService
	extractors driven.ExtractorRegistry
	rasterizer driven.Rasterizer
	captioner  driven.ImageCaptioner
	indexer    domain.IndexerConfig
	caption    domain.CaptionConfig
}

// NewFileIndexer creates a file indexer.
// The rasterizer and captioner are optional (can be nil); without them no
// page is captioned.
func NewFileIndexer(
	store driven.SearchStore,
	embedder driven.EmbeddingService,
	extractors driven.ExtractorRegistry,
	rasterizer driven.Rasterizer,
	captioner driven.ImageCaptioner,
	cfg domain.Config,
) *FileIndexer {
	return &FileIndexer{
		store:      store,
		embedder:   embedder,
		extractors: extractors,
		rasterizer: rasterizer,
		captioner:  captioner,
		indexer:    cfg.Indexer,
		caption:    cfg.Caption,
	}
}

// IndexFolder indexes every file in req.Folder matching req.Patterns.
// It returns the number of files discovered; per-file failures are logged
// and never abort the batch.
func (ix *FileIndexer) IndexFolder(ctx context.Context, req driving.IndexRequest) (int, error) {
	folder := req.Folder
	if folder == "" {
		folder = ix.indexer.Folder
	}
	if folder == "" {
		return 0, fmt.Errorf("%w: no folder to index", domain.ErrInvalidInput)
	}

	patterns := SplitPatterns(req.Patterns)
	if len(patterns) == 0 {
		patterns = SplitPatterns(ix.indexer.Patterns)
	}
	if len(patterns) == 0 {
		patterns = SplitPatterns(domain.DefaultPatterns)
	}

	files, err := DiscoverFiles(folder, patterns, req.Recursive)
	if err != nil {
		return 0, err
	}
	logger.Info("index: %d files in %s (patterns %s, recursive %t)",
		len(files), folder, strings.Join(patterns, ","), req.Recursive)

	limit := ix.indexer.MaxConcurrency
	if limit < 1 {
		limit = domain.DefaultIngestConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			err := ix.IndexFile(ctx, path, req.Site)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrUnsupportedFormat):
				logger.Warn("index: skipping %s: unsupported file type", filepath.Base(path))
			case errors.Is(err, domain.ErrEmptyContent):
				logger.Warn("index: skipping %s: empty content", filepath.Base(path))
			default:
				logger.Warn("index: %s: %v", filepath.Base(path), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return len(files), ctx.Err()
}

// IndexFile indexes one local file. The file path is its source identity.
func (ix *FileIndexer) IndexFile(ctx context.Context, path, site string) error {
	return ix.ingest(ctx, ingestTarget{path: path, sourcePath: path, site: site})
}

// ingestTarget names a local file to read and the identity to store it under.
type ingestTarget struct {
	// path is the local file to extract.
	path string
	// sourcePath is the stored identity, the file path or a download URL.
	sourcePath string
	// title overrides the extracted title when set.
	title string
	site  string
}

// ingest runs extract, caption, embed and store for one file.
func (ix *FileIndexer) ingest(ctx context.Context, t ingestTarget) error {
	extractor, err := ix.extractors.For(t.path)
	if err != nil {
		return err
	}
	extraction, err := extractor.Extract(ctx, t.path)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	title := t.title
	if title == "" {
		title = extraction.Title
	}
	if title == "" {
		title = normalisers.FileTitle(t.path)
	}

	var docs []domain.Document
	captions := 0
	if extraction.Paged {
		var blocks []pageBlock
		blocks, captions = ix.composePages(ctx, t, extraction.Pages)
		docs = ix.pageDocuments(t, title, blocks)
	} else {
		docs = []domain.Document{{
			ID:         DocumentID(t.sourcePath),
			Title:      title,
			Content:    extraction.Text(),
			Site:       t.site,
			SourcePath: t.sourcePath,
		}}
	}

	written := 0
	for _, doc := range docs {
		if !doc.HasContent() {
			continue
		}
		if err := ix.write(ctx, doc); err != nil {
			return err
		}
		written++
	}
	if written == 0 {
		return fmt.Errorf("%s: %w", filepath.Base(t.path), domain.ErrEmptyContent)
	}

	if extraction.Paged {
		logger.Info("index: %s indexed (%d documents, %d captions)", filepath.Base(t.path), written, captions)
	} else {
		logger.Info("index: %s indexed", filepath.Base(t.path))
	}
	return nil
}

// write embeds doc and upserts it. Store rejections are returned as-is so
// the caller logs the store's reason.
func (ix *FileIndexer) write(ctx context.Context, doc domain.Document) error {
	vec, err := ix.embedder.Embed(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	doc.Embedding = vec
	if err := ix.store.Upsert(ctx, doc); err != nil {
		return err
	}
	return nil
}

// pageBlock is the final content of one PDF page.
type pageBlock struct {
	page    int
	content string
}

// composePages builds per-page content: a text block followed by a caption
// block when the page qualifies and a caption was produced. Pages are
// rendered only once the first caption is needed.
func (ix *FileIndexer) composePages(
	ctx context.Context, t ingestTarget, pages []domain.PageText,
) ([]pageBlock, int) {
	cache := newPageCache(func(index int) ([]byte, error) {
		return ix.rasterizer.RenderPage(ctx, t.path, index)
	})

	canCaption := ix.rasterizer != nil && ix.captioner != nil
	blocks := make([]pageBlock, 0, len(pages))
	captions := 0

	for _, page := range pages {
		if ctx.Err() != nil {
			break
		}
		text := strings.TrimSpace(page.Text)
		var b strings.Builder
		if text != "" {
			writeSection(&b, fmt.Sprintf("[Side %d – tekst]", page.Number()), text)
		}

		if canCaption && ShouldCaption(text, ix.caption) {
			if img, err := cache.get(page.Index); err == nil {
				caption := ix.captioner.Describe(ctx, img, t.site, pageHint(page.Number(), text))
				if caption = strings.TrimSpace(caption); caption != "" {
					writeSection(&b, fmt.Sprintf("[Side %d – bilde/figur]", page.Number()), caption)
					captions++
				}
			} else {
				logger.Warn("index: %s page %d not rendered, caption skipped: %v", filepath.Base(t.path), page.Number(), err)
			}
		}

		if b.Len() > 0 {
			blocks = append(blocks, pageBlock{page: page.Number(), content: strings.TrimSpace(b.String())})
		}
	}
	return blocks, captions
}

// pageDocuments turns page blocks into one document, or one per page when
// per-page indexing is on.
func (ix *FileIndexer) pageDocuments(t ingestTarget, title string, blocks []pageBlock) []domain.Document {
	if !ix.indexer.PerPage {
		parts := make([]string, len(blocks))
		for i, blk := range blocks {
			parts[i] = blk.content
		}
		return []domain.Document{{
			ID:         DocumentID(t.sourcePath),
			Title:      title,
			Content:    strings.Join(parts, "\n\n"),
			Site:       t.site,
			SourcePath: t.sourcePath,
		}}
	}

	docs := make([]domain.Document, 0, len(blocks))
	for _, blk := range blocks {
		page := blk.page
		docs = append(docs, domain.Document{
			ID:         DocumentID(fmt.Sprintf("%s#page=%d", t.sourcePath, page)),
			Title:      title,
			Content:    blk.content,
			Site:       t.site,
			SourcePath: t.sourcePath,
			Page:       &page,
		})
	}
	return docs
}

// pageHint is the captioning task for one PDF page.
func pageHint(number int, text string) string {
	hint := fmt.Sprintf("PDF-side %d. Les bildet og beskriv kort figur/bilde/tabell. "+
		"Knytt beskrivelsen til teksten på denne siden når relevant (terminologi, steg, mål).", number)
	if text != "" {
		hint += ` Tekst på siden (kontekst): "` + normalisers.Truncate(text, pageHintChars) + `"`
	}
	return hint
}

func writeSection(b *strings.Builder, marker, body string) {
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	b.WriteString(marker)
	b.WriteByte('\n')
	b.WriteString(body)
}

package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// CaptionMode controls when a PDF page is sent to the image captioner.
type CaptionMode string

// Available caption modes.
const (
	// CaptionModeAlways captions every rendered page.
	CaptionModeAlways CaptionMode = "always"

	// CaptionModeAuto captions sparse pages and pages that mention figures or tables.
	CaptionModeAuto CaptionMode = "auto"

	// CaptionModeNever disables page captions.
	CaptionModeNever CaptionMode = "never"
)

// IsValid returns true if the caption mode is recognised.
func (m CaptionMode) IsValid() bool {
	switch m {
	case CaptionModeAlways, CaptionModeAuto, CaptionModeNever:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m CaptionMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m CaptionMode) Description() string {
	switch m {
	case CaptionModeAlways:
		return "Always (caption every page)"
	case CaptionModeAuto:
		return "Auto (sparse pages and figures)"
	case CaptionModeNever:
		return "Never"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an AI service provider for embeddings, answers or vision.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p != AIProviderOllama
}

// SupportsEmbeddings returns true if the provider can generate embeddings.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI || p == AIProviderGemini
}

// SupportsChat returns true if the provider can answer and describe images.
func (p AIProvider) SupportsChat() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// APIKeySetting is the config key under which a provider's API key is stored.
func APIKeySetting(p AIProvider) string {
	return "keys." + p.String()
}

// Setting is one rendered configuration entry.
type Setting struct {
	Key   string
	Value string
}

// StoreBackend identifies the persistent search store.
type StoreBackend string

// Available store backends.
const (
	StoreElasticsearch StoreBackend = "elasticsearch"
	StoreSQLite        StoreBackend = "sqlite"
	StorePostgres      StoreBackend = "postgres"
	StoreMemory        StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreElasticsearch, StoreSQLite, StorePostgres, StoreMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// IndexerConfig configures folder ingestion.
type IndexerConfig struct {
	Folder         string
	Patterns       string
	Recursive      bool
	Site           string
	MaxConcurrency int
	DeleteFirst    bool
	RunOnStartup   bool

	// PerPage stores each PDF page as its own document with Page set,
	// so answers can deep-link to the page.
	PerPage bool
}

// CaptionConfig configures page rendering and image captioning.
type CaptionConfig struct {
	// ImageCaptions enables captioning.
	ImageCaptions bool

	// RenderPages enables PDF rasterisation.
	RenderPages bool

	Mode CaptionMode

	// TextMinChars is the threshold below which a page counts as sparse.
	TextMinChars int

	// MaxWidth is the widest image sent to the vision model.
	MaxWidth int

	// TargetWidth is the width rendered pages are downsampled to.
	TargetWidth int

	// RenderDPI is the intermediate rasterisation resolution.
	RenderDPI int

	Timeout        time.Duration
	MaxConcurrency int
	MaxRetries     int
}

// CrawlerConfig configures the crawl frontier.
type CrawlerConfig struct {
	StartURL         string
	AllowedHosts     []string
	UseSitemap       bool
	IncludeImages    bool
	MaxPages         int
	SiteIndexPages   int
	CaptionMaxImages int
	RequestsPerSec   float64
	UserAgent        string
	RunOnStartup     bool
}

// RetrievalConfig configures the hybrid retrieval engine.
type RetrievalConfig struct {
	Take    int
	AskTake int
	RRFK    int
}

// ProviderConfig selects an AI provider and model.
type ProviderConfig struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

// IsConfigured returns true if the provider is set up.
func (p ProviderConfig) IsConfigured() bool {
	if !p.Provider.IsValid() {
		return false
	}
	if p.Provider.RequiresAPIKey() && p.APIKey == "" {
		return false
	}
	return true
}

// StoreConfig selects and locates the persistent search store.
type StoreConfig struct {
	Backend StoreBackend

	// URL is the Elasticsearch endpoint or the Postgres DSN.
	URL string

	// Index is the Elasticsearch index or SQL table name.
	Index string

	// Path is the SQLite database file.
	Path string

	Username string
	Password string
}

// Config is the immutable configuration passed to components at construction.
type Config struct {
	Indexer   IndexerConfig
	Caption   CaptionConfig
	Crawler   CrawlerConfig
	Retrieval RetrievalConfig
	Embedding ProviderConfig
	LLM       ProviderConfig
	Vision    ProviderConfig
	Store     StoreConfig
}

// Defaults for values not set by the user.
const (
	DefaultPatterns          = "*.pdf,*.docx,*.txt"
	DefaultIngestConcurrency = 2
	DefaultTextMinChars      = 200
	DefaultCaptionMaxWidth   = 1024
	DefaultTargetWidth       = 1280
	DefaultRenderDPI         = 110
	DefaultCaptionTimeout    = 30 * time.Second
	DefaultCaptionGate       = 1
	DefaultCaptionRetries    = 2
	DefaultCrawlMaxPages     = 200
	DefaultSiteIndexPages    = 500
	DefaultCrawlMaxImages    = 3
	DefaultTake              = 8
	DefaultAskTake           = 6
	DefaultRRFK              = 60
	DefaultEmbeddingDims     = 1536
	DefaultIndexName         = "kilde"
)

// DefaultConfig returns configuration with sensible defaults.
// Captioning is off until explicitly enabled.
func DefaultConfig() Config {
	return Config{
		Indexer: IndexerConfig{
			Patterns:       DefaultPatterns,
			Recursive:      true,
			MaxConcurrency: DefaultIngestConcurrency,
		},
		Caption: CaptionConfig{
			Mode:           CaptionModeAuto,
			TextMinChars:   DefaultTextMinChars,
			MaxWidth:       DefaultCaptionMaxWidth,
			TargetWidth:    DefaultTargetWidth,
			RenderDPI:      DefaultRenderDPI,
			Timeout:        DefaultCaptionTimeout,
			MaxConcurrency: DefaultCaptionGate,
			MaxRetries:     DefaultCaptionRetries,
		},
		Crawler: CrawlerConfig{
			UseSitemap:       true,
			IncludeImages:    true,
			MaxPages:         DefaultCrawlMaxPages,
			SiteIndexPages:   DefaultSiteIndexPages,
			CaptionMaxImages: DefaultCrawlMaxImages,
			RequestsPerSec:   4,
			UserAgent:        "kilde-indexer/1.0",
		},
		Retrieval: RetrievalConfig{
			Take:    DefaultTake,
			AskTake: DefaultAskTake,
			RRFK:    DefaultRRFK,
		},
		Embedding: ProviderConfig{
			Provider: AIProviderOpenAI,
			Model:    "text-embedding-3-small",
		},
		LLM: ProviderConfig{
			Provider: AIProviderOpenAI,
			Model:    "gpt-4o-mini",
		},
		Vision: ProviderConfig{
			Provider: AIProviderOpenAI,
			Model:    "gpt-4o-mini",
		},
		Store: StoreConfig{
			Backend: StoreElasticsearch,
			URL:     "http://localhost:9200",
			Index:   DefaultIndexName,
		},
	}
}

// Validate checks enum values and limits.
func (c Config) Validate() error {
	if !c.Caption.Mode.IsValid() {
		return fmt.Errorf("%w: caption mode %q", ErrInvalidInput, c.Caption.Mode)
	}
	if !c.Store.Backend.IsValid() {
		return fmt.Errorf("%w: store backend %q", ErrInvalidInput, c.Store.Backend)
	}
	if c.Embedding.Provider != "" && !c.Embedding.Provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: embedding provider %q", ErrInvalidInput, c.Embedding.Provider)
	}
	for _, p := range []AIProvider{c.LLM.Provider, c.Vision.Provider} {
		if p != "" && !p.SupportsChat() {
			return fmt.Errorf("%w: chat provider %q", ErrInvalidInput, p)
		}
	}
	switch {
	case c.Indexer.MaxConcurrency < 1:
		return fmt.Errorf("%w: indexer max concurrency must be positive", ErrInvalidInput)
	case c.Caption.MaxConcurrency < 1:
		return fmt.Errorf("%w: caption max concurrency must be positive", ErrInvalidInput)
	case c.Caption.MaxRetries < 0:
		return fmt.Errorf("%w: caption max retries must not be negative", ErrInvalidInput)
	case c.Crawler.MaxPages < 1:
		return fmt.Errorf("%w: crawler max pages must be positive", ErrInvalidInput)
	case c.Retrieval.RRFK < 1:
		return fmt.Errorf("%w: rrf k must be positive", ErrInvalidInput)
	}
	return nil
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each chat provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2-vision",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-1.5-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}

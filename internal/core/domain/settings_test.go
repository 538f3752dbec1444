package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCaptionMode_IsValid tests all valid and invalid caption modes
func TestCaptionMode_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		mode     CaptionMode
		expected bool
	}{
		{name: "always is valid", mode: CaptionModeAlways, expected: true},
		{name: "auto is valid", mode: CaptionModeAuto, expected: true},
		{name: "never is valid", mode: CaptionModeNever, expected: true},
		{name: "empty string is invalid", mode: CaptionMode(""), expected: false},
		{name: "unknown mode is invalid", mode: CaptionMode("sometimes"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.mode.IsValid())
		})
	}
}

func TestCaptionMode_Description(t *testing.T) {
	assert.Equal(t, "Never", CaptionModeNever.Description())
	assert.Equal(t, unknownDescription, CaptionMode("x").Description())
	assert.Equal(t, "auto", CaptionModeAuto.String())
}

func TestAIProvider_Capabilities(t *testing.T) {
	assert.True(t, AIProviderGemini.SupportsEmbeddings())
	assert.True(t, AIProviderGemini.SupportsChat())
	assert.True(t, AIProviderAnthropic.SupportsChat())
	assert.False(t, AIProviderAnthropic.SupportsEmbeddings())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.False(t, AIProvider("bogus").IsValid())
}

func TestProviderConfig_IsConfigured(t *testing.T) {
	assert.False(t, ProviderConfig{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, ProviderConfig{Provider: AIProviderOpenAI, APIKey: "sk"}.IsConfigured())
	assert.True(t, ProviderConfig{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, ProviderConfig{}.IsConfigured())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Indexer.MaxConcurrency)
	assert.Equal(t, CaptionModeAuto, cfg.Caption.Mode)
	assert.Equal(t, 200, cfg.Caption.TextMinChars)
	assert.Equal(t, 1024, cfg.Caption.MaxWidth)
	assert.Equal(t, 1, cfg.Caption.MaxConcurrency)
	assert.Equal(t, 2, cfg.Caption.MaxRetries)
	assert.Equal(t, 200, cfg.Crawler.MaxPages)
	assert.Equal(t, 3, cfg.Crawler.CaptionMaxImages)
	assert.Equal(t, 60, cfg.Retrieval.RRFK)
	assert.False(t, cfg.Caption.ImageCaptions)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad caption mode", func(c *Config) { c.Caption.Mode = "maybe" }},
		{"bad store", func(c *Config) { c.Store.Backend = "mongo" }},
		{"anthropic embeddings", func(c *Config) { c.Embedding.Provider = AIProviderAnthropic }},
		{"bogus chat provider", func(c *Config) { c.LLM.Provider = "bogus" }},
		{"zero ingest concurrency", func(c *Config) { c.Indexer.MaxConcurrency = 0 }},
		{"zero caption gate", func(c *Config) { c.Caption.MaxConcurrency = 0 }},
		{"negative retries", func(c *Config) { c.Caption.MaxRetries = -1 }},
		{"zero page budget", func(c *Config) { c.Crawler.MaxPages = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestEmbeddingDimensions(t *testing.T) {
	dims := EmbeddingDimensions()
	for provider, model := range DefaultEmbeddingModels() {
		_, ok := dims[model]
		assert.True(t, ok, "no dimensions for %s default %s", provider, model)
	}
	assert.Equal(t, 1536, dims["text-embedding-3-small"])
}

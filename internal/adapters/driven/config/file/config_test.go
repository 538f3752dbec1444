package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func newStore(t *testing.T, content string) *ConfigStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	store, err := NewConfigStore(path)
	require.NoError(t, err)
	return store
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "KILDE_CAPTION_MAX_WIDTH", EnvName("caption.max-width"))
	assert.Equal(t, "KILDE_STORE_URL", EnvName("store.url"))
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(nil, envMap(nil))

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	store := newStore(t, `
[caption]
mode = "always"
image-captions = true
timeout-seconds = 12
text-min-chars = 150

[crawler]
allowed-hosts = ["example.no"]
requests-per-second = 2

[store]
backend = "sqlite"
path = "/tmp/kilde.db"

[keys]
openai = "sk-file"
`)

	cfg, err := LoadConfig(store, envMap(map[string]string{
		"KILDE_CAPTION_TEXT_MIN_CHARS": "90",
		"KILDE_INDEXER_PER_PAGE":       "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, domain.CaptionModeAlways, cfg.Caption.Mode)
	assert.True(t, cfg.Caption.ImageCaptions)
	assert.Equal(t, 12*time.Second, cfg.Caption.Timeout)
	assert.Equal(t, 90, cfg.Caption.TextMinChars)
	assert.True(t, cfg.Indexer.PerPage)
	assert.Equal(t, []string{"example.no"}, cfg.Crawler.AllowedHosts)
	assert.InDelta(t, 2.0, cfg.Crawler.RequestsPerSec, 1e-9)
	assert.Equal(t, domain.StoreSQLite, cfg.Store.Backend)
	assert.Equal(t, "sk-file", cfg.Embedding.APIKey)
	assert.Equal(t, "sk-file", cfg.LLM.APIKey)
}

func TestLoadConfig_ProviderKeyPrecedence(t *testing.T) {
	store := newStore(t, `
[keys]
openai = "sk-file"

[vision]
api-key = "sk-explicit"
`)

	cfg, err := LoadConfig(store, envMap(map[string]string{"OPENAI_API_KEY": "sk-env"}))
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.Embedding.APIKey)
	assert.Equal(t, "sk-explicit", cfg.Vision.APIKey)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
		env  map[string]string
	}{
		{name: "wrong type", toml: "[caption]\nmax-width = \"wide\"\n"},
		{name: "bad env int", env: map[string]string{"KILDE_CRAWLER_MAX_PAGES": "many"}},
		{name: "bad env bool", env: map[string]string{"KILDE_CAPTION_RENDER_PAGES": "kanskje"}},
		{name: "validation", toml: "[caption]\nmode = \"sometimes\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(newStore(t, tt.toml), envMap(tt.env))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestEffective_MasksSecrets(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.LLM.APIKey = "sk-abcdefghijkl"
	cfg.Store.Password = "hemmelig"

	values := map[string]string{}
	for _, kv := range Effective(cfg) {
		values[kv.Key] = kv.Value
	}

	assert.Equal(t, "****ijkl", values["llm.api-key"])
	assert.Equal(t, "****", values["store.password"])
	assert.Equal(t, "", values["embedding.api-key"])
	assert.Equal(t, "auto", values["caption.mode"])
	assert.Equal(t, "30", values["caption.timeout-seconds"])
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("KILDE_TEST_LOADENV=fra-fil\n"), 0600))
	t.Setenv("KILDE_TEST_LOADENV", "")
	require.NoError(t, os.Unsetenv("KILDE_TEST_LOADENV"))

	require.NoError(t, LoadEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "fra-fil", os.Getenv("KILDE_TEST_LOADENV"))
}

func TestResolver(t *testing.T) {
	store := newStore(t, "[store]\nbackend = \"sqlite\"\npassword = \"hemmelig-passord\"\n")
	r := NewResolver(store, envMap(map[string]string{"KILDE_RETRIEVAL_TAKE": "4"}))

	cfg, err := r.Config()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Retrieval.Take)

	settings, err := r.Effective()
	require.NoError(t, err)
	assert.Contains(t, settings, domain.Setting{Key: "store.backend", Value: "sqlite"})
	assert.Contains(t, settings, domain.Setting{Key: "store.password", Value: "****sord"})

	require.NoError(t, store.Set("caption.mode", "sometimes"))
	_, err = r.Effective()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

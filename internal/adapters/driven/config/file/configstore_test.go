package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_DefaultPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".kilde", "config.toml"), store.Path())
}

func TestNewConfigStore_MissingFileStartsEmpty(t *testing.T) {
	store, err := NewConfigStore(filepath.Join(t.TempDir(), "config.toml"))

	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_LoadNested(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[caption]
mode = "always"
max-width = 800
image-captions = true

[crawler]
allowed-hosts = ["example.no", "www.example.no"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	store, err := NewConfigStore(path)
	require.NoError(t, err)

	assert.Equal(t, "always", store.GetString("caption.mode"))
	assert.Equal(t, 800, store.GetInt("caption.max-width"))
	assert.True(t, store.GetBool("caption.image-captions"))
	assert.Equal(t, []string{"example.no", "www.example.no"}, store.GetStringSlice("crawler.allowed-hosts"))
	assert.Equal(t, []string{
		"caption.image-captions", "caption.max-width", "caption.mode", "crawler.allowed-hosts",
	}, store.Keys())
}

func TestConfigStore_TypeMismatch(t *testing.T) {
	store, err := NewConfigStore(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	require.NoError(t, store.Set("k", 42))
	assert.Equal(t, "", store.GetString("k"))
	assert.False(t, store.GetBool("k"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.Nil(t, store.GetStringSlice("k"))

	require.NoError(t, store.Set("hosts", "a.no, b.no"))
	assert.Equal(t, []string{"a.no", "b.no"}, store.GetStringSlice("hosts"))
}

func TestConfigStore_SaveWritesNestedTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	store, err := NewConfigStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Set("keys.openai", "sk-test"))
	require.NoError(t, store.Set("store.backend", "sqlite"))
	require.NoError(t, store.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[keys]")
	assert.Contains(t, string(data), "[store]")

	reloaded, err := NewConfigStore(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", reloaded.GetString("keys.openai"))
	assert.Equal(t, "sqlite", reloaded.GetString("store.backend"))

	require.NoError(t, reloaded.Delete("keys.openai"))
	require.NoError(t, reloaded.Save())
	again, err := NewConfigStore(path)
	require.NoError(t, err)
	_, ok := again.Get("keys.openai")
	assert.False(t, ok)
}

func TestConfigStore_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("caption = [unclosed"), 0600))

	_, err := NewConfigStore(path)
	assert.Error(t, err)
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{"a.b.c": 1, "a.d": "x", "e": true})

	assert.Equal(t, map[string]any{
		"a": map[string]any{"b": map[string]any{"c": 1}, "d": "x"},
		"e": true,
	}, nested)
	assert.Equal(t, map[string]any{"a.b.c": 1, "a.d": "x", "e": true}, flattenMap(nested, ""))
}

package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SeedIsCopied(t *testing.T) {
	seed := map[string]any{"caption.mode": "always"}
	store := NewConfigStore(seed)

	seed["caption.mode"] = "never"
	assert.Equal(t, "always", store.GetString("caption.mode"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"s":      "tekst",
		"i64":    int64(7),
		"f":      float64(3),
		"b":      true,
		"hosts":  []any{"a.no", 1, "b.no"},
		"labels": []string{"x"},
	})

	assert.Equal(t, "tekst", store.GetString("s"))
	assert.Equal(t, "", store.GetString("i64"))
	assert.Equal(t, 7, store.GetInt("i64"))
	assert.Equal(t, 3, store.GetInt("f"))
	assert.Equal(t, 0, store.GetInt("s"))
	assert.True(t, store.GetBool("b"))
	assert.False(t, store.GetBool("missing"))
	assert.Equal(t, []string{"a.no", "b.no"}, store.GetStringSlice("hosts"))
	assert.Equal(t, []string{"x"}, store.GetStringSlice("labels"))
	assert.Nil(t, store.GetStringSlice("s"))
}

func TestConfigStore_SetAndKeys(t *testing.T) {
	store := NewConfigStore(nil)

	require.NoError(t, store.Set("store.url", "http://es:9200"))
	require.NoError(t, store.Set("caption.mode", "auto"))
	require.NoError(t, store.Save())
	require.NoError(t, store.Load())

	assert.Equal(t, []string{"caption.mode", "store.url"}, store.Keys())
	assert.Equal(t, ":memory:", store.Path())

	require.NoError(t, store.Delete("store.url"))
	require.NoError(t, store.Delete("missing"))
	assert.Equal(t, []string{"caption.mode"}, store.Keys())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("k", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("k")
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"k"}, store.Keys())
}

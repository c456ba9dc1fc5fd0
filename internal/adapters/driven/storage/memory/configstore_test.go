package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Load())
	assert.NoError(t, store.Save())
}

func TestNewConfigStoreFrom_Copies(t *testing.T) {
	seed := map[string]any{"chunking.size": 4}
	store := NewConfigStoreFrom(seed)

	seed["chunking.size"] = 99

	assert.Equal(t, 4, store.GetInt("chunking.size"))
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("key", "original"))
	require.NoError(t, store.Set("key", "updated"))

	val, ok := store.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "updated", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStoreFrom(map[string]any{
		"str":       "hello",
		"int":       42,
		"int64":     int64(7),
		"float":     2.5,
		"bool":      true,
		"strings":   []string{"a", "b"},
		"anys":      []any{"x", 1, "y"},
		"wrongtype": struct{}{},
	})

	assert.Equal(t, "hello", store.GetString("str"))
	assert.Equal(t, "", store.GetString("int"))
	assert.Equal(t, 42, store.GetInt("int"))
	assert.Equal(t, 7, store.GetInt("int64"))
	assert.Equal(t, 2, store.GetInt("float"))
	assert.Equal(t, 2.5, store.GetFloat("float"))
	assert.Equal(t, 42.0, store.GetFloat("int"))
	assert.Equal(t, 0, store.GetInt("wrongtype"))
	assert.True(t, store.GetBool("bool"))
	assert.False(t, store.GetBool("str"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("strings"))
	assert.Equal(t, []string{"x", "y"}, store.GetStringSlice("anys"))
	assert.Nil(t, store.GetStringSlice("str"))
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("counter", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("counter")
		}()
	}
	wg.Wait()

	_, ok := store.Get("counter")
	assert.True(t, ok)
}

package providers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpschema/wpschema/internal/content"
	"github.com/wpschema/wpschema/internal/hooks"
	"github.com/wpschema/wpschema/internal/page"
	"github.com/wpschema/wpschema/internal/web/cache"
)

func stub(name string, priority int, pieces ...map[string]any) Func {
	return Func{
		ProviderName:     name,
		ProviderPriority: priority,
		Build: func(context.Context, *page.Context) ([]map[string]any, error) {
			return pieces, nil
		},
	}
}

func homeContext() *page.Context {
	return &page.Context{Kind: page.KindHome, Site: &content.Site{Name: "Blog", URL: "https://blog.test"}}
}

func names(list []Provider) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.Name())
	}
	return out
}

func TestRegistry_OrderAndReplace(t *testing.T) {
	r := NewRegistry(Options{})
	r.Register(stub("b", 20))
	r.Register(stub("a", 20))
	r.Register(stub("first", 5))
	assert.Equal(t, []string{"first", "a", "b"}, names(r.All()))

	r.Register(stub("first", 30))
	assert.Equal(t, []string{"a", "b", "first"}, names(r.All()))

	assert.True(t, r.Unregister("a"))
	assert.False(t, r.Unregister("a"))
	_, ok := r.Get("a")
	assert.False(t, ok)
}

func TestRegistry_ForContext(t *testing.T) {
	r := NewRegistry(Options{})
	r.Register(stub("always", 10))
	r.Register(Func{ProviderName: "never", Applies: func(*page.Context) bool { return false }})
	r.Register(Func{ProviderName: "panics", Applies: func(*page.Context) bool { panic("boom") }})

	assert.Equal(t, []string{"always"}, names(r.ForContext(homeContext())))
}

func TestRegistry_CollectIsolatesFailures(t *testing.T) {
	h := hooks.NewRegistry(nil)
	var failed []string
	hooks.AddAction(h, hooks.ProviderError, 10, func(ctx context.Context, args ...any) {
		failed = append(failed, args[0].(string))
		assert.Error(t, args[1].(error))
	})

	r := NewRegistry(Options{Hooks: h})
	r.Register(stub("ok", 10, map[string]any{"@type": "Thing", "@id": "#ok"}))
	r.Register(Func{ProviderName: "errors", ProviderPriority: 20, Build: func(context.Context, *page.Context) ([]map[string]any, error) {
		return []map[string]any{{"@type": "Thing"}}, errors.New("database down")
	}})
	r.Register(Func{ProviderName: "panics", ProviderPriority: 30, Build: func(context.Context, *page.Context) ([]map[string]any, error) {
		panic("nil map")
	}})
	r.Register(stub("late", 40, map[string]any{"@type": "Thing", "@id": "#late"}))

	out := r.Collect(context.Background(), homeContext())
	require.Len(t, out, 2)
	assert.Equal(t, "#ok", out[0]["@id"])
	assert.Equal(t, "#late", out[1]["@id"])
	assert.Equal(t, []string{"errors", "panics"}, failed)
}

func TestRegistry_ProviderDataFilter(t *testing.T) {
	h := hooks.NewRegistry(nil)
	hooks.AddFilter(h, hooks.ProviderData, 10, func(ctx context.Context, pieces []map[string]any, args ...any) []map[string]any {
		if args[0] == "drop" {
			return nil
		}
		return pieces
	})
	r := NewRegistry(Options{Hooks: h})
	r.Register(stub("keep", 10, map[string]any{"@type": "Thing"}))
	r.Register(stub("drop", 20, map[string]any{"@type": "Thing"}))

	assert.Len(t, r.Collect(context.Background(), homeContext()), 1)
}

func countingProvider(calls *int32) Func {
	return Func{
		ProviderName:     "counted",
		ProviderPriority: 10,
		Build: func(context.Context, *page.Context) ([]map[string]any, error) {
			atomic.AddInt32(calls, 1)
			return []map[string]any{{"@type": "Thing", "name": "cached"}}, nil
		},
	}
}

func TestRegistry_CachesProviderOutput(t *testing.T) {
	c := cache.NewMemoryCache()
	t.Cleanup(func() { c.Close() })
	var calls int32
	r := NewRegistry(Options{Cache: c})
	r.Register(countingProvider(&calls))
	ctx := context.Background()

	first := r.Collect(ctx, homeContext())
	second := r.Collect(ctx, homeContext())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, first, second)

	require.NoError(t, r.Flush(ctx))
	r.Collect(ctx, homeContext())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRegistry_OptionsHashChangesKey(t *testing.T) {
	c := cache.NewMemoryCache()
	t.Cleanup(func() { c.Close() })
	var calls int32
	r := NewRegistry(Options{Cache: c})
	r.Register(countingProvider(&calls))
	ctx := context.Background()

	pc := homeContext()
	r.Collect(ctx, pc)
	pc.OptionsHash = page.HashOptions(map[string]any{"blogname": "Renamed"})
	r.Collect(ctx, pc)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRegistry_ZeroTTLDisablesCache(t *testing.T) {
	c := cache.NewMemoryCache()
	t.Cleanup(func() { c.Close() })
	h := hooks.NewRegistry(nil)
	hooks.AddFilter(h, hooks.CacheTTL, 10, func(ctx context.Context, ttl time.Duration, args ...any) time.Duration {
		return 0
	})
	var calls int32
	r := NewRegistry(Options{Cache: c, Hooks: h})
	r.Register(countingProvider(&calls))

	r.Collect(context.Background(), homeContext())
	r.Collect(context.Background(), homeContext())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 0, c.Len())
}

func TestRegistry_CorruptCacheEntry(t *testing.T) {
	c := cache.NewMemoryCache()
	t.Cleanup(func() { c.Close() })
	h := hooks.NewRegistry(nil)
	hooks.AddFilter(h, hooks.CacheKey, 10, func(ctx context.Context, key string, args ...any) string {
		return "fixed"
	})
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "fixed", []byte("{not json"), time.Minute))

	var calls int32
	r := NewRegistry(Options{Cache: c, Hooks: h})
	r.Register(countingProvider(&calls))

	out := r.Collect(ctx, homeContext())
	require.Len(t, out, 1)
	assert.Equal(t, "cached", out[0]["name"])
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	r.Collect(ctx, homeContext())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "rewritten entry should be served")
}

func TestTTLConfig_For(t *testing.T) {
	ttl := DefaultTTLs()
	assert.Equal(t, time.Hour, ttl.For(page.KindHome))
	assert.Equal(t, 30*time.Minute, ttl.For(page.KindSingular))
	assert.Equal(t, 15*time.Minute, ttl.For(page.KindSearch))
}

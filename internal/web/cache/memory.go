package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryCache is an in-process cache with per-entry TTLs. A janitor
// goroutine evicts expired entries until Close is called.
type MemoryCache struct {
	data   sync.Map
	config Config
	cancel context.CancelFunc
	done   chan struct{}
}

type entry struct {
	value   []byte
	expires time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// NewMemoryCache creates an in-memory cache with the default config
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithConfig(DefaultConfig(), time.Minute)
}

// NewMemoryCacheWithConfig creates an in-memory cache whose janitor runs
// every sweep interval
func NewMemoryCacheWithConfig(config Config, sweep time.Duration) *MemoryCache {
	if sweep <= 0 {
		sweep = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	mc := &MemoryCache{
		config: config,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go mc.janitor(ctx, sweep)
	return mc
}

// Get retrieves a value from the cache
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full := m.config.Prefix + key
	v, ok := m.data.Load(full)
	if !ok {
		return nil, ErrCacheMiss{Key: key}
	}
	e := v.(entry)
	if e.expired(time.Now()) {
		m.data.Delete(full)
		return nil, ErrCacheMiss{Key: key}
	}
	return e.value, nil
}

// Set stores a value. A zero TTL uses the default; a negative TTL stores
// the value without expiry.
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	m.data.Store(m.config.Prefix+key, e)
	return nil
}

// Delete removes a value from the cache
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data.Delete(m.config.Prefix + key)
	return nil
}

// Clear removes every entry under the prefix
func (m *MemoryCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data.Range(func(k, _ any) bool {
		if strings.HasPrefix(k.(string), m.config.Prefix) {
			m.data.Delete(k)
		}
		return true
	})
	return nil
}

// Exists checks if a live key exists in the cache
func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	if IsCacheMiss(err) {
		return false, nil
	}
	return err == nil, err
}

// Len returns the number of stored entries, expired ones included
func (m *MemoryCache) Len() int {
	n := 0
	m.data.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close stops the janitor and waits for it to exit
func (m *MemoryCache) Close() error {
	m.cancel()
	<-m.done
	return nil
}

func (m *MemoryCache) janitor(ctx context.Context, every time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

func (m *MemoryCache) sweep(now time.Time) {
	m.data.Range(func(k, v any) bool {
		if v.(entry).expired(now) {
			m.data.Delete(k)
		}
		return true
	})
}

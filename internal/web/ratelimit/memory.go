package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory is a per-process token bucket limiter. Limit tokens refill
// evenly over Window.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
	now     func() time.Time

	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// MemoryConfig configures a Memory limiter
type MemoryConfig struct {
	Limit  int
	Window time.Duration
	// CleanupInterval drops idle buckets; zero disables the janitor
	CleanupInterval time.Duration
}

// NewMemory creates a token bucket limiter
func NewMemory(config MemoryConfig) *Memory {
	m := &Memory{
		buckets: make(map[string]*bucket),
		limit:   config.Limit,
		window:  config.Window,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		m.ticker = time.NewTicker(config.CleanupInterval)
		go m.cleanupLoop()
	}
	return m
}

// Allow takes a token from the key's bucket
func (m *Memory) Allow(_ context.Context, key string) (*Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{tokens: m.limit, lastRefill: now}
		m.buckets[key] = b
	}

	if elapsed := now.Sub(b.lastRefill); elapsed > 0 && m.window > 0 {
		refill := int(float64(m.limit) * elapsed.Seconds() / m.window.Seconds())
		if refill > 0 {
			b.tokens = min(m.limit, b.tokens+refill)
			b.lastRefill = now
		}
	}

	info := &Info{Limit: m.limit, ResetAt: b.lastRefill.Add(m.window)}
	if b.tokens > 0 {
		b.tokens--
		info.Allowed = true
	}
	info.Remaining = b.tokens
	return info, nil
}

func (m *Memory) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			m.cleanup()
		case <-m.done:
			return
		}
	}
}

// cleanup drops buckets idle for two windows; they would be full anyway
func (m *Memory) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	threshold := m.now().Add(-2 * m.window)
	for key, b := range m.buckets {
		if b.lastRefill.Before(threshold) {
			delete(m.buckets, key)
		}
	}
}

// Close stops the janitor
func (m *Memory) Close() error {
	m.once.Do(func() {
		close(m.done)
		if m.ticker != nil {
			m.ticker.Stop()
		}
	})
	return nil
}

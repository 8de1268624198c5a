package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/wpschema/wpschema/internal/hooks"
	"github.com/wpschema/wpschema/internal/observability"
	"github.com/wpschema/wpschema/internal/page"
	"github.com/wpschema/wpschema/internal/web/cache"
)

// TTLConfig sets the provider cache lifetime per page kind. A
// non-positive TTL disables caching for that kind.
type TTLConfig struct {
	Home     time.Duration
	Singular time.Duration
	Default  time.Duration
}

// DefaultTTLs returns one hour for the home page, 30 minutes for
// singular pages and 15 minutes for everything else
func DefaultTTLs() TTLConfig {
	return TTLConfig{
		Home:     time.Hour,
		Singular: 30 * time.Minute,
		Default:  15 * time.Minute,
	}
}

// For returns the TTL for a page kind
func (c TTLConfig) For(kind page.Kind) time.Duration {
	switch kind {
	case page.KindHome:
		return c.Home
	case page.KindSingular:
		return c.Singular
	}
	return c.Default
}

// Options configure a Registry. Every field is optional.
type Options struct {
	Cache   cache.Cache
	Hooks   *hooks.Registry
	Logger  *zap.Logger
	Metrics *observability.Collector
	Tracer  trace.Tracer
	TTL     *TTLConfig
}

// Registry holds the providers and runs them for a page
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider

	cache   cache.Cache
	hooks   *hooks.Registry
	logger  *zap.Logger
	metrics *observability.Collector
	tracer  trace.Tracer
	ttl     TTLConfig
}

// NewRegistry creates an empty registry
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		cache:     opts.Cache,
		hooks:     opts.Hooks,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		tracer:    opts.Tracer,
		ttl:       DefaultTTLs(),
	}
	if r.cache == nil {
		r.cache = cache.Noop{}
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.tracer == nil {
		r.tracer = noop.NewTracerProvider().Tracer(observability.TracerName)
	}
	if opts.TTL != nil {
		r.ttl = *opts.TTL
	}
	return r
}

// Register adds a provider. A provider with the same name is replaced.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Unregister removes a provider and reports whether it existed
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.providers[name]
	delete(r.providers, name)
	return ok
}

// Get returns a provider by name
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// All returns every provider ordered by priority, then name
func (r *Registry) All() []Provider {
	r.mu.RLock()
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority() != out[j].Priority() {
			return out[i].Priority() < out[j].Priority()
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

// ForContext returns the providers that apply to the page, in order.
// A provider whose CanProvide panics is left out.
func (r *Registry) ForContext(pc *page.Context) []Provider {
	var out []Provider
	for _, p := range r.All() {
		if r.applies(p, pc) {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) applies(p Provider, pc *page.Context) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("provider panicked in CanProvide", zap.String("provider", p.Name()), zap.Any("panic", rec))
			ok = false
		}
	}()
	return p.CanProvide(pc)
}

// Collect runs every applicable provider and concatenates their pieces.
// Failing providers contribute nothing.
func (r *Registry) Collect(ctx context.Context, pc *page.Context) []map[string]any {
	var out []map[string]any
	for _, p := range r.ForContext(pc) {
		out = append(out, r.collectOne(ctx, p, pc)...)
	}
	return out
}

func (r *Registry) collectOne(ctx context.Context, p Provider, pc *page.Context) []map[string]any {
	name := p.Name()
	ctx, span := r.tracer.Start(ctx, "schema.provider", trace.WithAttributes(
		attribute.String("provider", name),
		attribute.String("page.kind", string(pc.Kind)),
	))
	defer span.End()

	key := cache.NamespacedKey("provider", name, pc.Key(), pc.OptionsHash)
	key = hooks.ApplyFilters(r.hooks, ctx, hooks.CacheKey, key, name, pc)
	ttl := hooks.ApplyFilters(r.hooks, ctx, hooks.CacheTTL, r.ttl.For(pc.Kind), name, pc)

	pieces, hit := r.cached(ctx, key, ttl)
	span.SetAttributes(attribute.Bool("cache.hit", hit))
	if !hit {
		start := time.Now()
		var err error
		pieces, err = r.run(ctx, p, pc)
		r.metrics.RecordProvider(name, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			r.logger.Warn("provider failed", zap.String("provider", name), zap.String("page", pc.PageURL()), zap.Error(err))
			r.hooks.DoAction(ctx, hooks.ProviderError, name, err, pc)
			return nil
		}
		r.logger.Debug("provider ran", zap.String("provider", name), zap.Int("pieces", len(pieces)), zap.Duration("took", time.Since(start)))
		r.store(ctx, key, ttl, pieces)
	}

	return hooks.ApplyFilters(r.hooks, ctx, hooks.ProviderData, pieces, name, pc)
}

// run calls the provider, turning a panic into an error
func (r *Registry) run(ctx context.Context, p Provider, pc *page.Context) (pieces []map[string]any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pieces = nil
			err = fmt.Errorf("provider %s panicked: %v", p.Name(), rec)
		}
	}()
	return p.Pieces(ctx, pc)
}

func (r *Registry) cached(ctx context.Context, key string, ttl time.Duration) ([]map[string]any, bool) {
	if ttl <= 0 {
		return nil, false
	}
	data, err := r.cache.Get(ctx, key)
	if err != nil {
		if !cache.IsCacheMiss(err) {
			r.logger.Warn("provider cache read failed", zap.String("key", key), zap.Error(err))
		}
		r.metrics.RecordCache(false)
		return nil, false
	}

	var pieces []map[string]any
	if err := json.Unmarshal(data, &pieces); err != nil {
		r.logger.Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		_ = r.cache.Delete(ctx, key)
		r.metrics.RecordCache(false)
		return nil, false
	}
	r.metrics.RecordCache(true)
	r.logger.Debug("provider cache hit", zap.String("key", key))
	return pieces, true
}

func (r *Registry) store(ctx context.Context, key string, ttl time.Duration, pieces []map[string]any) {
	if ttl <= 0 {
		return
	}
	if pieces == nil {
		pieces = []map[string]any{}
	}
	data, err := json.Marshal(pieces)
	if err != nil {
		r.logger.Warn("provider output not cacheable", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, key, data, ttl); err != nil {
		r.logger.Warn("provider cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Flush clears the provider cache
func (r *Registry) Flush(ctx context.Context) error {
	if err := r.cache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to flush provider cache: %w", err)
	}
	return nil
}

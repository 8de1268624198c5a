package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wpschema/wpschema/internal/cli/config"
	"github.com/wpschema/wpschema/internal/content"
	"github.com/wpschema/wpschema/internal/hooks"
	"github.com/wpschema/wpschema/internal/observability"
	"github.com/wpschema/wpschema/internal/providers"
	"github.com/wpschema/wpschema/internal/providers/integrations"
	"github.com/wpschema/wpschema/internal/service"
	"github.com/wpschema/wpschema/internal/web/cache"
	"github.com/wpschema/wpschema/internal/web/ratelimit"
)

// App is everything a command needs, built from the config
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Collector
	Tracing *observability.TracerProvider
	Source  content.Source
	Cache   cache.Cache
	Hooks   *hooks.Registry
	Service *service.Service
	// Integrations lists the activated plugin integrations
	Integrations []string

	closers []func(context.Context) error
}

// NewApp opens the content source and cache and registers the providers
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (app *App, err error) {
	if logger == nil {
		logger = observability.NewLogger(cfg.Site.Debug)
	}
	app = &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewCollector("wpschema"),
		Hooks:   hooks.NewRegistry(logger),
	}
	defer func() {
		if err != nil {
			_ = app.Close(context.Background())
		}
	}()

	app.Tracing = observability.InitTracing(cfg.TracingSettings(), logger)
	app.closers = append(app.closers, app.Tracing.Shutdown)

	if app.Source, err = openSource(ctx, cfg.Content); err != nil {
		return app, err
	}
	if closer, ok := app.Source.(interface{ Close() error }); ok {
		app.closers = append(app.closers, func(context.Context) error { return closer.Close() })
	}

	if app.Cache, err = openCache(ctx, cfg, logger); err != nil {
		return app, err
	}
	if closer, ok := app.Cache.(interface{ Close() error }); ok {
		app.closers = append(app.closers, func(context.Context) error { return closer.Close() })
	}

	ttl := cfg.ProviderTTLs()
	registry := providers.NewRegistry(providers.Options{
		Cache:   app.Cache,
		Hooks:   app.Hooks,
		Logger:  logger,
		Metrics: app.Metrics,
		Tracer:  app.Tracing.Tracer(),
		TTL:     &ttl,
	})
	providers.RegisterCore(registry, app.Hooks, cfg.Site.ArticleTypes)

	for _, sc := range cfg.Static {
		static, err := providers.LoadStatic(sc)
		if err != nil {
			return app, err
		}
		registry.Register(static)
	}

	settings := cfg.IntegrationSettings()
	app.Integrations, err = integrations.Activate(ctx, app.Source, registry, app.Hooks,
		integrations.Builtin(settings), settings.Overrides, logger)
	if err != nil {
		return app, err
	}

	app.Service = service.New(service.Options{
		Source:     app.Source,
		Registry:   registry,
		Hooks:      app.Hooks,
		Logger:     logger,
		Metrics:    app.Metrics,
		Tracer:     app.Tracing.Tracer(),
		SiteURL:    cfg.Site.URL,
		Debug:      cfg.Site.Debug,
		OutputMode: cfg.Output.Mode,
	})
	return app, nil
}

// Close releases the source, the cache and the tracer in reverse order
func (a *App) Close(ctx context.Context) error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// RateLimiter builds the REST limiter from server.rate_limit. It shares
// the redis connection when the cache uses redis so every instance
// counts against the same window. Nil means rate limiting is off.
func (a *App) RateLimiter() (ratelimit.Limiter, error) {
	rl := a.Config.Server.RateLimit
	if rl.Requests <= 0 {
		return nil, nil
	}
	if cb, ok := a.Cache.(*closingBreaker); ok {
		return ratelimit.NewRedis(ratelimit.RedisConfig{
			Client: cb.redis.Client(),
			Limit:  rl.Requests,
			Window: rl.Window,
			Prefix: rl.Prefix,
		})
	}
	m := ratelimit.NewMemory(ratelimit.MemoryConfig{
		Limit:           rl.Requests,
		Window:          rl.Window,
		CleanupInterval: 5 * time.Minute,
	})
	a.closers = append(a.closers, func(context.Context) error { return m.Close() })
	return m, nil
}

func openSource(ctx context.Context, cfg config.ContentConfig) (content.Source, error) {
	var dialect content.Dialect
	switch cfg.Driver {
	case config.DriverYAML:
		mem, err := content.LoadFixtures(cfg.Fixtures)
		if err != nil {
			return nil, err
		}
		return mem, nil
	case config.DriverMySQL:
		dialect = content.DialectMySQL
	case config.DriverSQLite:
		dialect = content.DialectSQLite
	case config.DriverPostgres:
		dialect = content.DialectPostgres
	default:
		return nil, fmt.Errorf("unknown content driver %q", cfg.Driver)
	}

	src, err := content.OpenSQL(content.SQLConfig{Dialect: dialect, TablePrefix: cfg.TablePrefix}, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := src.Ping(ctx); err != nil {
		src.Close()
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Driver, err)
	}
	return src, nil
}

func openCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	cacheConfig := cache.DefaultConfig()
	cacheConfig.Prefix = cfg.Cache.Prefix

	switch cfg.Cache.Driver {
	case config.CacheNone:
		return cache.Noop{}, nil
	case config.CacheRedis:
		redis, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Timeout:  cfg.Cache.Redis.Timeout,
			Cache:    cacheConfig,
		})
		if err != nil {
			return nil, err
		}
		return &closingBreaker{BreakerCache: cache.NewBreakerCache(redis, cfg.BreakerSettings(), logger), redis: redis}, nil
	default:
		return cache.NewMemoryCacheWithConfig(cacheConfig, time.Minute), nil
	}
}

// closingBreaker closes the redis client behind the breaker
type closingBreaker struct {
	*cache.BreakerCache
	redis *cache.RedisCache
}

func (c *closingBreaker) Close() error {
	return c.redis.Close()
}

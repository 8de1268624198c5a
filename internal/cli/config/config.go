// Package config loads wpschema.yaml with viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/wpschema/wpschema/internal/observability"
	"github.com/wpschema/wpschema/internal/providers"
	"github.com/wpschema/wpschema/internal/providers/integrations"
	"github.com/wpschema/wpschema/internal/web/auth"
	"github.com/wpschema/wpschema/internal/web/cache"
)

// FileName is the config file looked up in the working directory
const FileName = "wpschema.yaml"

// EnvPrefix prefixes environment overrides, e.g. WPSCHEMA_SERVER_PORT
const EnvPrefix = "WPSCHEMA"

// Config is the full wpschema configuration
type Config struct {
	Site         SiteConfig               `mapstructure:"site" yaml:"site"`
	Server       ServerConfig             `mapstructure:"server" yaml:"server"`
	Content      ContentConfig            `mapstructure:"content" yaml:"content"`
	Cache        CacheConfig              `mapstructure:"cache" yaml:"cache"`
	Auth         AuthConfig               `mapstructure:"auth" yaml:"auth"`
	Output       OutputConfig             `mapstructure:"output" yaml:"output"`
	Integrations IntegrationsConfig       `mapstructure:"integrations" yaml:"integrations"`
	Static       []providers.StaticConfig `mapstructure:"static" yaml:"static,omitempty"`
	Tracing      TracingConfig            `mapstructure:"tracing" yaml:"tracing"`
}

// SiteConfig describes the WordPress site
type SiteConfig struct {
	// URL is used when the content source has no home option
	URL   string `mapstructure:"url" yaml:"url"`
	Debug bool   `mapstructure:"debug" yaml:"debug"`
	// ArticleTypes are the post types published as Article
	ArticleTypes []string `mapstructure:"article_types" yaml:"article_types,omitempty"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string          `mapstructure:"host" yaml:"host"`
	Port            int             `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout" yaml:"write_timeout"`
	RequestTimeout  time.Duration   `mapstructure:"request_timeout" yaml:"request_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	CORSOrigins     []string        `mapstructure:"cors_origins" yaml:"cors_origins,omitempty"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	// Profiling mounts /debug/pprof for administrators
	Profiling bool `mapstructure:"profiling" yaml:"profiling"`
}

// RateLimitConfig throttles the REST API per client. Zero requests
// disables it.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests" yaml:"requests"`
	Window   time.Duration `mapstructure:"window" yaml:"window"`
	// Prefix namespaces limiter keys in redis. It must sit outside
	// cache.prefix or clearing the cache resets every window.
	Prefix string `mapstructure:"prefix" yaml:"prefix,omitempty"`
}

// DefaultRateLimitPrefix keeps limiter keys out of the cache namespace
const DefaultRateLimitPrefix = "wpschema-ratelimit:"

// Address returns host:port
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Content drivers
const (
	DriverYAML     = "yaml"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ContentConfig selects where posts, terms and options come from
type ContentConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn,omitempty"`
	// Fixtures is the YAML file read by the yaml driver
	Fixtures    string `mapstructure:"fixtures" yaml:"fixtures,omitempty"`
	TablePrefix string `mapstructure:"table_prefix" yaml:"table_prefix,omitempty"`
}

// Cache drivers
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// CacheConfig configures the provider cache
type CacheConfig struct {
	Driver  string        `mapstructure:"driver" yaml:"driver"`
	Prefix  string        `mapstructure:"prefix" yaml:"prefix"`
	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis"`
	TTL     TTLConfig     `mapstructure:"ttl" yaml:"ttl"`
	Breaker BreakerConfig `mapstructure:"breaker" yaml:"breaker"`
}

// RedisConfig holds the redis connection settings
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password,omitempty"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// TTLConfig sets the cache lifetime per page kind
type TTLConfig struct {
	Home     time.Duration `mapstructure:"home" yaml:"home"`
	Singular time.Duration `mapstructure:"singular" yaml:"singular"`
	Default  time.Duration `mapstructure:"default" yaml:"default"`
}

// BreakerConfig configures the circuit breaker in front of redis
type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests" yaml:"max_requests"`
	Interval         time.Duration `mapstructure:"interval" yaml:"interval"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold" yaml:"failure_threshold"`
	MinRequests      uint32        `mapstructure:"min_requests" yaml:"min_requests"`
}

// AuthConfig configures REST authentication
type AuthConfig struct {
	JWTSecret    string             `mapstructure:"jwt_secret" yaml:"jwt_secret,omitempty"`
	TokenTTL     time.Duration      `mapstructure:"token_ttl" yaml:"token_ttl"`
	AppPasswords []auth.AppPassword `mapstructure:"app_passwords" yaml:"app_passwords,omitempty"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	// Mode is "separate" or "graph"
	Mode string `mapstructure:"mode" yaml:"mode"`
	// Pretty indents JSON printed by the CLI
	Pretty bool `mapstructure:"pretty" yaml:"pretty"`
}

// IntegrationsConfig configures the plugin integrations
type IntegrationsConfig struct {
	// Enabled forces an integration on or off by name
	Enabled map[string]bool             `mapstructure:"enabled" yaml:"enabled,omitempty"`
	ACF     []integrations.FieldMapping `mapstructure:"acf" yaml:"acf,omitempty"`
	CPTUI   []integrations.TypeMapping  `mapstructure:"cptui" yaml:"cptui,omitempty"`
}

// TracingConfig configures span collection
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
	ServiceName string  `mapstructure:"service_name" yaml:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio" yaml:"sample_ratio"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	ttl := providers.DefaultTTLs()
	breaker := cache.DefaultBreakerConfig()
	redis := cache.DefaultRedisConfig()
	return &Config{
		Site: SiteConfig{ArticleTypes: []string{"post"}},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit:       RateLimitConfig{Requests: 120, Window: time.Minute, Prefix: DefaultRateLimitPrefix},
		},
		Content: ContentConfig{
			Driver:      DriverYAML,
			Fixtures:    "content.yaml",
			TablePrefix: "wp_",
		},
		Cache: CacheConfig{
			Driver: CacheMemory,
			Prefix: cache.DefaultConfig().Prefix,
			Redis:  RedisConfig{Addr: redis.Addr, Timeout: redis.Timeout},
			TTL:    TTLConfig{Home: ttl.Home, Singular: ttl.Singular, Default: ttl.Default},
			Breaker: BreakerConfig{
				MaxRequests:      breaker.MaxRequests,
				Interval:         breaker.Interval,
				Timeout:          breaker.Timeout,
				FailureThreshold: breaker.FailureThreshold,
				MinRequests:      breaker.MinRequests,
			},
		},
		Auth:    AuthConfig{TokenTTL: time.Hour},
		Output:  OutputConfig{Mode: "separate", Pretty: true},
		Tracing: TracingConfig{ServiceName: "wpschema", SampleRatio: 1},
	}
}

// setDefaults registers every scalar default so env overrides apply to
// keys missing from the file
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("site.url", d.Site.URL)
	v.SetDefault("site.debug", d.Site.Debug)
	v.SetDefault("site.article_types", d.Site.ArticleTypes)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.rate_limit.requests", d.Server.RateLimit.Requests)
	v.SetDefault("server.rate_limit.window", d.Server.RateLimit.Window)
	v.SetDefault("server.rate_limit.prefix", d.Server.RateLimit.Prefix)
	v.SetDefault("server.profiling", d.Server.Profiling)
	v.SetDefault("content.driver", d.Content.Driver)
	v.SetDefault("content.dsn", d.Content.DSN)
	v.SetDefault("content.fixtures", d.Content.Fixtures)
	v.SetDefault("content.table_prefix", d.Content.TablePrefix)
	v.SetDefault("cache.driver", d.Cache.Driver)
	v.SetDefault("cache.prefix", d.Cache.Prefix)
	v.SetDefault("cache.redis.addr", d.Cache.Redis.Addr)
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.timeout", d.Cache.Redis.Timeout)
	v.SetDefault("cache.ttl.home", d.Cache.TTL.Home)
	v.SetDefault("cache.ttl.singular", d.Cache.TTL.Singular)
	v.SetDefault("cache.ttl.default", d.Cache.TTL.Default)
	v.SetDefault("cache.breaker.max_requests", d.Cache.Breaker.MaxRequests)
	v.SetDefault("cache.breaker.interval", d.Cache.Breaker.Interval)
	v.SetDefault("cache.breaker.timeout", d.Cache.Breaker.Timeout)
	v.SetDefault("cache.breaker.failure_threshold", d.Cache.Breaker.FailureThreshold)
	v.SetDefault("cache.breaker.min_requests", d.Cache.Breaker.MinRequests)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", d.Auth.TokenTTL)
	v.SetDefault("output.mode", d.Output.Mode)
	v.SetDefault("output.pretty", d.Output.Pretty)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("tracing.sample_ratio", d.Tracing.SampleRatio)
}

// Load reads the config file at path, or wpschema.yaml in the working
// directory when path is empty. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// ProviderTTLs converts the cache TTLs for the provider registry
func (c *Config) ProviderTTLs() providers.TTLConfig {
	return providers.TTLConfig{Home: c.Cache.TTL.Home, Singular: c.Cache.TTL.Singular, Default: c.Cache.TTL.Default}
}

// BreakerSettings converts the breaker section for the cache package
func (c *Config) BreakerSettings() cache.BreakerConfig {
	return cache.BreakerConfig{
		Name:             "redis",
		MaxRequests:      c.Cache.Breaker.MaxRequests,
		Interval:         c.Cache.Breaker.Interval,
		Timeout:          c.Cache.Breaker.Timeout,
		FailureThreshold: c.Cache.Breaker.FailureThreshold,
		MinRequests:      c.Cache.Breaker.MinRequests,
	}
}

// TracingSettings converts the tracing section
func (c *Config) TracingSettings() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     c.Tracing.Enabled,
		ServiceName: c.Tracing.ServiceName,
		SampleRatio: c.Tracing.SampleRatio,
	}
}

// IntegrationSettings converts the integrations section
func (c *Config) IntegrationSettings() integrations.Settings {
	return integrations.Settings{
		Overrides: c.Integrations.Enabled,
		ACF:       c.Integrations.ACF,
		CPTUI:     c.Integrations.CPTUI,
	}
}

// Validate checks a configuration built outside Load
func Validate(cfg *Config) error {
	return validateConfig(cfg)
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Site.URL != "" {
		u, err := url.Parse(cfg.Site.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("site.url must be an absolute URL, got: %s", cfg.Site.URL)
		}
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got: %d", cfg.Server.Port)
	}
	if cfg.Server.RateLimit.Requests < 0 {
		return fmt.Errorf("server.rate_limit.requests must not be negative")
	}
	if cfg.Server.RateLimit.Requests > 0 && cfg.Server.RateLimit.Window <= 0 {
		return fmt.Errorf("server.rate_limit.window must be positive")
	}

	switch cfg.Content.Driver {
	case DriverYAML:
		if cfg.Content.Fixtures == "" {
			return fmt.Errorf("content.fixtures is required for the yaml driver")
		}
	case DriverMySQL, DriverSQLite, DriverPostgres:
		if cfg.Content.DSN == "" {
			return fmt.Errorf("content.dsn is required for the %s driver", cfg.Content.Driver)
		}
	default:
		return fmt.Errorf("content.driver must be one of yaml, mysql, sqlite, postgres, got: %s", cfg.Content.Driver)
	}

	switch cfg.Cache.Driver {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if cfg.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the redis driver")
		}
		if rl := cfg.Server.RateLimit; rl.Requests > 0 && (rl.Prefix == "" || strings.HasPrefix(rl.Prefix, cfg.Cache.Prefix)) {
			return fmt.Errorf("server.rate_limit.prefix must not overlap cache.prefix %q, got: %q", cfg.Cache.Prefix, rl.Prefix)
		}
	default:
		return fmt.Errorf("cache.driver must be one of memory, redis, none, got: %s", cfg.Cache.Driver)
	}
	if f := cfg.Cache.Breaker.FailureThreshold; f <= 0 || f > 1 {
		return fmt.Errorf("cache.breaker.failure_threshold must be in (0, 1], got: %v", f)
	}

	switch cfg.Output.Mode {
	case "separate", "graph":
	default:
		return fmt.Errorf("output.mode must be separate or graph, got: %s", cfg.Output.Mode)
	}

	if r := cfg.Tracing.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("tracing.sample_ratio must be between 0 and 1, got: %v", r)
	}

	for i, p := range cfg.Auth.AppPasswords {
		if p.Login == "" || p.Hash == "" {
			return fmt.Errorf("auth.app_passwords[%d] needs login and hash", i)
		}
		if !strings.HasPrefix(p.Hash, "$2") {
			return fmt.Errorf("auth.app_passwords[%d].hash must be a bcrypt hash", i)
		}
	}
	if len(cfg.Auth.AppPasswords) > 0 || cfg.Auth.JWTSecret != "" {
		if cfg.Auth.TokenTTL <= 0 {
			return fmt.Errorf("auth.token_ttl must be positive")
		}
	}

	for i, s := range cfg.Static {
		if s.Path == "" {
			return fmt.Errorf("static[%d].path is required", i)
		}
	}
	return nil
}

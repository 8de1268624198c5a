package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpschema/wpschema/internal/cli/config"
	"github.com/wpschema/wpschema/internal/web/auth"
	"github.com/wpschema/wpschema/internal/web/ratelimit"
)

const testFixtures = `
site:
  name: Gopher Blog
  url: https://blog.test
posts:
  - id: 1
    type: post
    title: Hello World
    url: https://blog.test/hello-world/
    content: "<p>Hello.</p>"
    author_id: 7
    published: 2026-01-02T10:00:00Z
  - id: 5
    type: product
    title: Mug
    url: https://blog.test/shop/mug/
    meta:
      _price: "12.50"
      _sku: MUG-1
authors:
  - {id: 7, name: Rob, url: https://blog.test/author/rob/}
active_plugins:
  - woocommerce/woocommerce.php
`

// writeProject creates a fixtures file and a config pointing at it and
// returns the config path
func writeProject(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	fixtures := filepath.Join(dir, "content.yaml")
	require.NoError(t, os.WriteFile(fixtures, []byte(testFixtures), 0o644))

	cfg := "content:\n  driver: yaml\n  fixtures: " + fixtures + "\n" +
		"cache:\n  driver: none\n" +
		"auth:\n  jwt_secret: test-secret\n" + extra
	path := filepath.Join(dir, config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func schemaTypes(t *testing.T, raw string) []string {
	t.Helper()
	var schemas []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &schemas), raw)
	var out []string
	for _, s := range schemas {
		out = append(out, s["@type"].(string))
	}
	return out
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "wpschema version:")
	assert.Contains(t, out, "Go version:")
}

func TestGenerateCommand_Home(t *testing.T) {
	cfg := writeProject(t, "")
	out, _, err := run(t, "generate", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Organization", "WebSite", "WebPage"}, schemaTypes(t, out))
	assert.Contains(t, out, "\n  {", "pretty by default")

	out, _, err = run(t, "generate", "--config", cfg, "--pretty=false")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestGenerateCommand_SingularHTML(t *testing.T) {
	cfg := writeProject(t, "")
	out, _, err := run(t, "generate", "--config", cfg, "--context", "singular", "--post", "1", "--format", "html")
	require.NoError(t, err)
	assert.Contains(t, out, `<script type="application/ld+json">`)
	assert.Contains(t, out, `"@type": "Article"`)
}

func TestGenerateCommand_WooCommerceIntegration(t *testing.T) {
	cfg := writeProject(t, "")
	out, _, err := run(t, "generate", "--config", cfg, "--context", "singular", "--post", "5")
	require.NoError(t, err)
	assert.Contains(t, schemaTypes(t, out), "Product")

	disabled := writeProject(t, "integrations:\n  enabled:\n    woocommerce: false\n")
	out, _, err = run(t, "generate", "--config", disabled, "--context", "singular", "--post", "5")
	require.NoError(t, err)
	assert.NotContains(t, schemaTypes(t, out), "Product")
}

func TestGenerateCommand_Errors(t *testing.T) {
	cfg := writeProject(t, "")

	_, stderr, err := run(t, "generate", "--config", cfg, "--context", "singlar")
	require.Error(t, err)
	assert.Contains(t, stderr, "Did you mean: singular?")

	_, _, err = run(t, "generate", "--config", cfg, "--format", "xml")
	assert.ErrorContains(t, err, "--format")

	_, _, err = run(t, "generate", "--config", cfg, "--context", "singular", "--post", "99")
	assert.Error(t, err)

	_, _, err = run(t, "generate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	cfg := writeProject(t, "")
	out, _, err := run(t, "validate", "--config", cfg, "--context", "singular", "--post", "1", "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema report: singular https://blog.test/hello-world/")
	assert.Contains(t, out, "✓ Graph is valid")

	out, _, err = run(t, "validate", "--config", cfg, "--json")
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, true, report["references"].(map[string]any)["valid"])
}

func TestValidateCommand_BrokenReference(t *testing.T) {
	dir := t.TempDir()
	static := filepath.Join(dir, "org.jsonc")
	require.NoError(t, os.WriteFile(static, []byte(`{
		// sponsor of the home page
		"@type": "Event",
		"@id": "{site_url}#launch",
		"name": "Launch",
		"organizer": {"@id": "{site_url}#missing"},
	}`), 0o644))
	cfg := writeProject(t, "static:\n  - path: "+static+"\n    contexts: [home]\n")

	out, _, err := run(t, "validate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Broken references")
	assert.Contains(t, out, "https://blog.test/#missing")

	_, _, err = run(t, "validate", "--config", cfg, "--strict")
	assert.ErrorContains(t, err, "1 broken references")
}

func TestHooksCommand(t *testing.T) {
	out, _, err := run(t, "hooks")
	require.NoError(t, err)
	assert.Contains(t, out, "wp_schema_enabled")
	assert.Contains(t, out, "wp_schema_{type}_data")

	out, _, err = run(t, "hooks", "wp_schema_article_data", "--json")
	require.NoError(t, err)
	var docs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "wp_schema_{type}_data", docs[0]["name"])

	_, stderr, err := run(t, "hooks", "wp_schema_enabld")
	require.Error(t, err)
	assert.Contains(t, stderr, "wp_schema_enabled")
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	args := []string{"init", "--yes", "--output", path, "--site-url", "https://shop.test", "--mode", "graph"}

	out, _, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.test", cfg.Site.URL)
	assert.Equal(t, "graph", cfg.Output.Mode)
	assert.Equal(t, config.DriverYAML, cfg.Content.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)

	_, _, err = run(t, args...)
	assert.ErrorContains(t, err, "already exists")

	_, _, err = run(t, append(args, "--force", "--driver", "mysql", "--source", "")...)
	assert.ErrorContains(t, err, "content.dsn")
}

func TestTokenCommand(t *testing.T) {
	cfg := writeProject(t, "")
	out, _, err := run(t, "token", "rob", "--config", cfg, "--role", "administrator")
	require.NoError(t, err)

	claims, err := auth.NewTokenService("test-secret", time.Hour).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "rob", claims.Login)
	assert.Equal(t, []string{"administrator"}, claims.Roles)

	_, _, err = run(t, "token", "rob", "--config", cfg, "--role", "overlord")
	assert.ErrorContains(t, err, "unknown role")
}

func TestNewApp(t *testing.T) {
	cfg, err := config.Load(writeProject(t, ""))
	require.NoError(t, err)

	app, err := NewApp(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer app.Close(context.Background())

	assert.Contains(t, app.Integrations, "woocommerce")
	assert.NotContains(t, app.Integrations, "edd")
	_, ok := app.Service.Registry().Get("organization")
	assert.True(t, ok)
}

func TestNewApp_MemoryCacheClosed(t *testing.T) {
	cfg, err := config.Load(writeProject(t, ""))
	require.NoError(t, err)
	cfg.Cache.Driver = config.CacheMemory

	app, err := NewApp(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NoError(t, app.Close(context.Background()))
	assert.NoError(t, app.Close(context.Background()), "second close is a no-op")
}

func TestApp_RateLimiter(t *testing.T) {
	cfg, err := config.Load(writeProject(t, ""))
	require.NoError(t, err)
	ctx := context.Background()

	app, err := NewApp(ctx, cfg, nil)
	require.NoError(t, err)
	limiter, err := app.RateLimiter()
	require.NoError(t, err)
	assert.IsType(t, &ratelimit.Memory{}, limiter)
	require.NoError(t, app.Close(ctx))

	cfg.Server.RateLimit.Requests = 0
	app, err = NewApp(ctx, cfg, nil)
	require.NoError(t, err)
	limiter, err = app.RateLimiter()
	require.NoError(t, err)
	assert.Nil(t, limiter)
	require.NoError(t, app.Close(ctx))

	mr := miniredis.RunT(t)
	cfg.Server.RateLimit.Requests = 5
	cfg.Cache.Driver = config.CacheRedis
	cfg.Cache.Redis.Addr = mr.Addr()
	app, err = NewApp(ctx, cfg, nil)
	require.NoError(t, err)
	defer app.Close(ctx)
	limiter, err = app.RateLimiter()
	require.NoError(t, err)
	require.IsType(t, &ratelimit.Redis{}, limiter)

	info, err := limiter.Allow(ctx, "ip:127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 4, info.Remaining)
	assert.True(t, mr.Exists(config.DefaultRateLimitPrefix+"ip:127.0.0.1"))

	require.NoError(t, app.Cache.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, app.Cache.Clear(ctx))
	assert.False(t, mr.Exists(cfg.Cache.Prefix+"k"))
	assert.True(t, mr.Exists(config.DefaultRateLimitPrefix+"ip:127.0.0.1"), "clearing the cache keeps rate limit windows")

	info, err = limiter.Allow(ctx, "ip:127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 3, info.Remaining)
}

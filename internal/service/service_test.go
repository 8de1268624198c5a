package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wpschema/wpschema/internal/content"
	"github.com/wpschema/wpschema/internal/generators"
	"github.com/wpschema/wpschema/internal/hooks"
	"github.com/wpschema/wpschema/internal/page"
	"github.com/wpschema/wpschema/internal/providers"
	"github.com/wpschema/wpschema/internal/schema"
)

func newSource() *content.Memory {
	src := content.NewMemory(content.Site{Name: "Blog", URL: "https://blog.test"})
	src.AddPost(content.Post{
		ID: 1, Type: "post", Title: "Hello </script> World", URL: "https://blog.test/hello/",
		Content:   "<p>Café crème is <b>great</b>.</p>",
		AuthorID:  7,
		Published: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	})
	src.AddPost(content.Post{ID: 2, Type: "post", Status: content.StatusDraft, Title: "Draft"})
	src.AddAuthor(content.Author{ID: 7, Name: "Rob", URL: "https://blog.test/author/rob/"})
	src.AddTerm(content.Term{ID: 4, Taxonomy: "category", Name: "News", URL: "https://blog.test/category/news/"})
	return src
}

func newService(t *testing.T, src content.Source, h *hooks.Registry) *Service {
	t.Helper()
	return New(Options{Source: src, Hooks: h})
}

func resolve(t *testing.T, s *Service, req page.Request) *page.Context {
	t.Helper()
	pc, err := s.Resolve(context.Background(), req)
	require.NoError(t, err)
	return pc
}

func TestGenerate_Home(t *testing.T) {
	s := newService(t, newSource(), nil)
	pc := resolve(t, s, page.Request{Kind: page.KindHome})

	got, err := s.Generate(context.Background(), pc)
	require.NoError(t, err)

	org := map[string]any{"@id": "https://blog.test/#organization"}
	want := []map[string]any{
		{
			"@context": "https://schema.org", "@type": "Organization", "@id": "https://blog.test/#organization",
			"name": "Blog", "url": "https://blog.test/",
		},
		{
			"@context": "https://schema.org", "@type": "WebSite", "@id": "https://blog.test/#website",
			"name": "Blog", "url": "https://blog.test/", "publisher": org,
		},
		{
			"@context": "https://schema.org", "@type": "WebPage", "@id": "https://blog.test/#webpage",
			"name": "Blog", "url": "https://blog.test/",
			"isPartOf":        map[string]any{"@id": "https://blog.test/#website"},
			"about":           org,
			"potentialAction": []any{map[string]any{"@type": "ReadAction", "target": []any{"https://blog.test/"}}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("home graph mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_SingularReferencesResolve(t *testing.T) {
	s := newService(t, newSource(), nil)
	pc := resolve(t, s, page.Request{Kind: page.KindSingular, PostID: 1})

	res, err := s.Run(context.Background(), pc)
	require.NoError(t, err)

	var types []string
	for _, p := range res.Schemas {
		types = append(types, schema.TypeOf(p))
	}
	assert.Equal(t, []string{"Organization", "WebSite", "WebPage", "Article", "BreadcrumbList", "Person"}, types)
	assert.True(t, res.References.Valid, "broken: %v", res.References.Broken)
	assert.Empty(t, res.Warnings)
}

func TestGenerate_NilContext(t *testing.T) {
	s := newService(t, newSource(), nil)
	_, err := s.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoContext)
}

func TestGenerate_DisabledByFilter(t *testing.T) {
	h := hooks.NewRegistry(nil)
	hooks.AddFilter(h, hooks.Enabled, 10, func(ctx context.Context, on bool, args ...any) bool {
		return args[0].(*page.Context).Kind != page.KindHome
	})
	s := newService(t, newSource(), h)

	res, err := s.Run(context.Background(), resolve(t, s, page.Request{}))
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Empty(t, res.Schemas)
}

func TestGenerate_HookOrder(t *testing.T) {
	h := hooks.NewRegistry(nil)
	var calls []string
	record := func(name string) {
		hooks.AddFilter(h, name, 10, func(ctx context.Context, pieces []map[string]any, args ...any) []map[string]any {
			calls = append(calls, name)
			return pieces
		})
	}
	record(hooks.ContextSchemas)
	record(hooks.ConsolidatedSchemas)
	record(hooks.GraphPieces)
	record(hooks.GraphOutput)
	record(hooks.FinalSchema)
	hooks.AddAction(h, hooks.BeforeGenerate, 10, func(ctx context.Context, args ...any) {
		calls = append(calls, hooks.BeforeGenerate)
	})
	hooks.AddAction(h, hooks.AfterGenerate, 10, func(ctx context.Context, args ...any) {
		calls = append(calls, hooks.AfterGenerate)
	})
	s := newService(t, newSource(), h)

	_, err := s.Generate(context.Background(), resolve(t, s, page.Request{}))
	require.NoError(t, err)
	assert.Equal(t, []string{
		hooks.BeforeGenerate,
		hooks.ContextSchemas,
		hooks.ConsolidatedSchemas,
		hooks.GraphPieces,
		hooks.GraphOutput,
		hooks.FinalSchema,
		hooks.AfterGenerate,
	}, calls)
}

func TestGenerate_TypeFilterDropsPiece(t *testing.T) {
	h := hooks.NewRegistry(nil)
	hooks.AddFilter(h, hooks.TypeData("WebSite"), 10, func(ctx context.Context, p map[string]any, args ...any) map[string]any {
		delete(p, "@type")
		return p
	})
	s := newService(t, newSource(), h)

	res, err := s.Run(context.Background(), resolve(t, s, page.Request{}))
	require.NoError(t, err)
	for _, p := range res.Schemas {
		assert.NotEqual(t, "WebSite", schema.TypeOf(p))
	}
	// WebPage.isPartOf now dangles
	assert.False(t, res.References.Valid)
}

func TestGenerate_ConsolidatesOrganizations(t *testing.T) {
	s := newService(t, newSource(), nil)
	s.Registry().Register(providers.Func{
		ProviderName:     "extra-org",
		ProviderPriority: 80,
		Build: func(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
			return []map[string]any{{
				"@type": "Organization", "@id": providers.OrganizationID(pc), "telephone": "555-0100",
			}}, nil
		},
	})

	got, err := s.Generate(context.Background(), resolve(t, s, page.Request{}))
	require.NoError(t, err)
	var orgs []map[string]any
	for _, p := range got {
		if schema.IsOrganization(p) {
			orgs = append(orgs, p)
		}
	}
	require.Len(t, orgs, 1)
	assert.Equal(t, "Blog", orgs[0]["name"])
	assert.Equal(t, "555-0100", orgs[0]["telephone"])
}

func TestGenerate_ConsolidatesBusinessSubtype(t *testing.T) {
	s := newService(t, newSource(), nil)
	s.Registry().Register(providers.Func{
		ProviderName:     "restaurant",
		ProviderPriority: 80,
		Build: func(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
			return []map[string]any{generators.LocalBusiness(map[string]any{
				"@type": "Restaurant", "@id": providers.OrganizationID(pc),
				"telephone": "555-0100", "servesCuisine": "Pizza",
			})}, nil
		},
	})

	got, err := s.Generate(context.Background(), resolve(t, s, page.Request{}))
	require.NoError(t, err)
	var orgs []map[string]any
	for _, p := range got {
		if schema.IDOf(p) == "https://blog.test/#organization" {
			orgs = append(orgs, p)
		}
	}
	require.Len(t, orgs, 1)
	assert.Equal(t, "Restaurant", schema.TypeOf(orgs[0]))
	assert.Equal(t, "Blog", orgs[0]["name"])
	assert.Equal(t, "555-0100", orgs[0]["telephone"])
	assert.Equal(t, "Pizza", orgs[0]["servesCuisine"])
}

func TestGenerate_ProviderFailureDegrades(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := New(Options{Source: newSource(), Logger: zap.New(core)})
	s.Registry().Register(providers.Func{
		ProviderName:     "broken",
		ProviderPriority: 1,
		Build: func(context.Context, *page.Context) ([]map[string]any, error) {
			return nil, errors.New("table missing")
		},
	})

	got, err := s.Generate(context.Background(), resolve(t, s, page.Request{}))
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 1, logs.FilterMessage("provider failed").Len())
}

func TestGenerate_RecursionGuard(t *testing.T) {
	s := newService(t, newSource(), nil)
	var depth, skipped int
	s.Registry().Register(providers.Func{
		ProviderName:     "recursive",
		ProviderPriority: 99,
		Build: func(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
			depth++
			res, err := s.Run(ctx, pc)
			if err != nil {
				return nil, err
			}
			if res.Skipped {
				skipped++
			}
			return nil, nil
		},
	})
	_, err := s.Generate(context.Background(), resolve(t, s, page.Request{}))
	require.NoError(t, err)
	assert.Equal(t, page.MaxDepth, depth)
	assert.Equal(t, 1, skipped)
}

func TestGenerate_ValidationWarnings(t *testing.T) {
	h := hooks.NewRegistry(nil)
	var warnings []schema.Warning
	hooks.AddAction(h, hooks.ValidationWarnings, 10, func(ctx context.Context, args ...any) {
		warnings = args[0].([]schema.Warning)
	})
	s := newService(t, newSource(), h)
	s.Registry().Register(providers.Func{
		ProviderName: "nameless",
		Build: func(context.Context, *page.Context) ([]map[string]any, error) {
			return []map[string]any{{"@type": "Product", "@id": "https://blog.test/#product"}}, nil
		},
	})

	_, err := s.Generate(context.Background(), resolve(t, s, page.Request{}))
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "name", warnings[0].Property)
}

func TestGenerate_Spans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tracer := tp.Tracer("test")
	reg := providers.NewRegistry(providers.Options{Tracer: tracer})
	providers.RegisterCore(reg, nil, nil)
	s := New(Options{Source: newSource(), Registry: reg, Tracer: tracer})

	_, err := s.Generate(context.Background(), resolve(t, s, page.Request{}))
	require.NoError(t, err)

	var generate, provider int
	for _, span := range rec.Ended() {
		switch span.Name() {
		case "schema.generate":
			generate++
		case "schema.provider":
			provider++
		}
	}
	assert.Equal(t, 1, generate)
	// organization, website, webpage and navigation apply on the home page
	assert.Equal(t, 4, provider)
}

func TestResolve(t *testing.T) {
	s := newService(t, newSource(), nil)
	ctx := context.Background()

	pc, err := s.Resolve(ctx, page.Request{Kind: page.KindTaxonomy, TermID: 4})
	require.NoError(t, err)
	assert.Equal(t, "News", pc.Term.Name)
	assert.NotEmpty(t, pc.OptionsHash)

	_, err = s.Resolve(ctx, page.Request{Kind: page.KindSingular, PostID: 99})
	assert.True(t, IsNotFound(err))

	_, err = s.Resolve(ctx, page.Request{Kind: page.KindSingular})
	assert.ErrorIs(t, err, ErrBadRequest)

	pc, err = s.Resolve(ctx, page.Request{Kind: page.KindAuthor, AuthorID: 7})
	require.NoError(t, err)
	assert.Equal(t, "https://blog.test/author/rob/", pc.PageURL())
}

func TestResolve_OptionsHashTracksOptions(t *testing.T) {
	src := newSource()
	s := newService(t, src, nil)
	before := resolve(t, s, page.Request{}).OptionsHash
	src.SetOption(providers.OrganizationOption, map[string]any{"name": "Renamed"})
	after := resolve(t, s, page.Request{}).OptionsHash
	assert.NotEqual(t, before, after)
}

func TestRenderHead_Separate(t *testing.T) {
	s := newService(t, newSource(), nil)
	out, err := s.RenderHead(context.Background(), resolve(t, s, page.Request{Kind: page.KindSingular, PostID: 1}))
	require.NoError(t, err)

	assert.Equal(t, 6, strings.Count(out, `<script type="application/ld+json">`))
	assert.Contains(t, out, `Hello <\/script> World`)
	assert.NotContains(t, out, "Hello </script>")
	assert.Contains(t, out, "Café crème")
	assert.NotContains(t, out, `\u003c`)
}

func TestRenderHead_GraphModeAndTagFilter(t *testing.T) {
	h := hooks.NewRegistry(nil)
	hooks.AddFilter(h, hooks.OutputMode, 10, func(ctx context.Context, mode string, args ...any) string {
		return ModeGraph
	})
	hooks.AddFilter(h, hooks.ScriptTag, 10, func(ctx context.Context, tag string, args ...any) string {
		return strings.Replace(tag, "<script ", `<script class="wpschema" `, 1)
	})
	s := newService(t, newSource(), h)

	out, err := s.RenderHead(context.Background(), resolve(t, s, page.Request{}))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "<script "))
	assert.Contains(t, out, `<script class="wpschema" type="application/ld+json">`)
	assert.Contains(t, out, `"@graph"`)
	assert.Equal(t, 1, strings.Count(out, `"@context"`))
}

func TestRender_Empty(t *testing.T) {
	s := newService(t, newSource(), nil)
	out, err := s.Render(context.Background(), &page.Context{}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestEncodeJSONLD(t *testing.T) {
	out, err := EncodeJSONLD(map[string]any{"name": "a & b </p>"})
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"name\": \"a & b <\\/p>\"\n}", out)
}

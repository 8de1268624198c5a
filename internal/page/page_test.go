package page

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpschema/wpschema/internal/content"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"", KindHome},
		{"home", KindHome},
		{"Singular", KindSingular},
		{"post", KindSingular},
		{"category", KindTaxonomy},
		{"search", KindSearch},
		{"404", KindNotFound},
		{"author", KindAuthor},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseKind("feed")
	assert.Error(t, err)
}

func TestContextURLs(t *testing.T) {
	site := &content.Site{URL: "https://acme.test"}

	home := &Context{Kind: KindHome, Site: site}
	assert.Equal(t, "https://acme.test/", home.SiteURL())
	assert.Equal(t, "https://acme.test/", home.PageURL())

	single := &Context{Kind: KindSingular, Site: site, Post: &content.Post{ID: 4, Type: "post", URL: "https://acme.test/hello/"}}
	assert.Equal(t, "https://acme.test/hello/", single.PageURL())
	assert.True(t, single.IsPostType("post", "page"))
	assert.False(t, single.IsPostType("product"))

	search := &Context{Kind: KindSearch, Site: site, Search: "beans"}
	assert.Equal(t, "https://acme.test/?s=beans", search.PageURL())
	assert.False(t, search.IsSingular())

	assert.Equal(t, "/", (&Context{}).SiteURL())
}

func TestContextSearchURLEscapesTerm(t *testing.T) {
	pc := &Context{Kind: KindSearch, Site: &content.Site{URL: "https://acme.test"}, Search: "caffè & tea #1"}
	assert.Equal(t, "https://acme.test/?s=caff%C3%A8+%26+tea+%231", pc.PageURL())

	u, err := url.Parse(pc.PageURL())
	require.NoError(t, err)
	assert.Equal(t, "caffè & tea #1", u.Query().Get("s"))
	assert.Empty(t, u.Fragment)
}

func TestContextKey(t *testing.T) {
	a := &Context{Kind: KindSingular, Post: &content.Post{ID: 1, URL: "https://acme.test/a/"}}
	b := &Context{Kind: KindSingular, Post: &content.Post{ID: 2, URL: "https://acme.test/b/"}}
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, a.Key(), (&Context{Kind: KindSingular, Post: &content.Post{ID: 1, URL: "https://acme.test/a/"}}).Key())
}

func TestHashOptions(t *testing.T) {
	h1 := HashOptions(map[string]any{"a": 1, "b": "x"})
	h2 := HashOptions(map[string]any{"b": "x", "a": 1})
	h3 := HashOptions(map[string]any{"a": 2, "b": "x"})
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 16)
}

func TestGuard(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, 0, Depth(ctx))

	var leaves []func()
	for i := 1; i <= MaxDepth; i++ {
		var leave func()
		var err error
		ctx, leave, err = Enter(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, Depth(ctx))
		leaves = append(leaves, leave)
	}

	_, leave, err := Enter(ctx)
	assert.ErrorIs(t, err, ErrRecursionLimit)
	leave()
	assert.Equal(t, MaxDepth, Depth(ctx))

	for i := len(leaves) - 1; i >= 0; i-- {
		leaves[i]()
	}
	assert.Equal(t, 0, Depth(ctx))

	_, leave, err = Enter(ctx)
	require.NoError(t, err)
	leave()
}

func TestGuardIsPerRequest(t *testing.T) {
	ctx1, leave1, err := Enter(context.Background())
	require.NoError(t, err)
	defer leave1()

	ctx2, leave2, err := Enter(context.Background())
	require.NoError(t, err)
	defer leave2()

	assert.Equal(t, 1, Depth(ctx1))
	assert.Equal(t, 1, Depth(ctx2))
}

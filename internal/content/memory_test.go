package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturesYAML = `
site:
  name: Acme Coffee
  url: https://acme.test
  language: en-US
posts:
  - id: 1
    type: post
    status: publish
    title: Brewing Guide
    slug: brewing-guide
    url: https://acme.test/brewing-guide/
    author_id: 7
    published: 2024-01-15T10:00:00Z
    meta:
      rating: 5
      nested:
        key: value
    terms:
      - id: 3
        taxonomy: category
        name: Guides
  - id: 2
    type: post
    status: draft
    title: Draft
authors:
  - id: 7
    name: Jane Roaster
comments:
  - id: 10
    post_id: 1
    author_name: Late
    content: second
    date: 2024-02-02T00:00:00Z
    approved: true
  - id: 11
    post_id: 1
    author_name: Early
    content: first
    date: 2024-02-01T00:00:00Z
    approved: true
  - id: 12
    post_id: 1
    author_name: Spam
    approved: false
options:
  wp_schema_integration_woocommerce: "0"
  wp_schema_organization:
    name: Acme Coffee Roasters
    sameAs:
      - https://twitter.com/acme
active_plugins:
  - woocommerce/woocommerce.php
`

func TestParseFixtures(t *testing.T) {
	src, err := ParseFixtures([]byte(fixturesYAML))
	require.NoError(t, err)
	ctx := context.Background()

	site, err := src.Site(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme Coffee", site.Name)

	post, err := src.Post(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Brewing Guide", post.Title)
	assert.True(t, post.IsPublished())
	assert.Equal(t, 2024, post.Published.Year())
	assert.Equal(t, map[string]any{"key": "value"}, post.MetaValue("nested"))
	assert.Len(t, post.TermsIn("category"), 1)
	assert.Empty(t, post.TermsIn("post_tag"))

	draft, err := src.Post(ctx, 2)
	require.NoError(t, err)
	assert.False(t, draft.IsPublished())

	_, err = src.Post(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	author, err := src.Author(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roaster", author.Name)
}

func TestMemoryCommentsApprovedInDateOrder(t *testing.T) {
	src, err := ParseFixtures([]byte(fixturesYAML))
	require.NoError(t, err)

	comments, err := src.Comments(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Early", comments[0].AuthorName)
	assert.Equal(t, "Late", comments[1].AuthorName)
}

func TestMemoryReturnsCopies(t *testing.T) {
	src := NewMemory(Site{Name: "A"})
	src.AddPost(Post{ID: 1, Title: "Original"})

	p, err := src.Post(context.Background(), 1)
	require.NoError(t, err)
	p.Title = "Changed"

	again, err := src.Post(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Title)
}

func TestOptionHelpers(t *testing.T) {
	src, err := ParseFixtures([]byte(fixturesYAML))
	require.NoError(t, err)
	ctx := context.Background()

	org, err := OptionMap(ctx, src, "wp_schema_organization")
	require.NoError(t, err)
	assert.Equal(t, "Acme Coffee Roasters", org["name"])
	assert.Equal(t, []any{"https://twitter.com/acme"}, org["sameAs"])

	missing, err := OptionMap(ctx, src, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	enabled, err := OptionEnabled(ctx, src, "wp_schema_integration_woocommerce", true)
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = OptionEnabled(ctx, src, "wp_schema_integration_edd", true)
	require.NoError(t, err)
	assert.True(t, enabled)

	active, err := PluginActive(ctx, src, "woocommerce/woocommerce.php")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = PluginActive(ctx, src, "edd/edd.php")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestLoadFixturesMissingFile(t *testing.T) {
	_, err := LoadFixtures(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixturesYAML), 0o644))

	src, err := LoadFixtures(path)
	require.NoError(t, err)
	plugins, err := src.ActivePlugins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"woocommerce/woocommerce.php"}, plugins)
}

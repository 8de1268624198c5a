package providers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpschema/wpschema/internal/content"
	"github.com/wpschema/wpschema/internal/page"
)

func TestParseStatic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"object", `{"@type": "Thing", "name": "x"}`, 1},
		{"list", `[{"@type": "Thing"}, {"@type": "Thing"},]`, 2},
		{"graph", `{"@context": "https://schema.org", "@graph": [{"@type": "Thing"}]}`, 1},
		{"comments", "// faq\n{\"@type\": \"FAQPage\" /* inline */}", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ParseStatic([]byte(tt.input))
			require.NoError(t, err)
			assert.Len(t, out, tt.want)
		})
	}

	_, err := ParseStatic([]byte("   "))
	assert.Error(t, err)
	_, err = ParseStatic([]byte("{nope"))
	assert.Error(t, err)
}

func TestStatic_LoadAndExpand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// shown on the about page only
		"@type": "FAQPage",
		"@id": "{page_url}#faq",
		"isPartOf": {"@id": "{site_url}#website"},
		"mainEntity": [{"@type": "Question", "name": "Why?"}],
	}`), 0o644))

	s, err := LoadStatic(StaticConfig{Path: path, Contexts: []string{"page"}, PostIDs: []int64{10}})
	require.NoError(t, err)
	assert.Equal(t, "static:faq", s.Name())

	site := &content.Site{URL: "https://blog.test"}
	about := &page.Context{Kind: page.KindSingular, Site: site, Post: &content.Post{ID: 10, URL: "https://blog.test/about/"}}
	other := &page.Context{Kind: page.KindSingular, Site: site, Post: &content.Post{ID: 11}}
	home := &page.Context{Kind: page.KindHome, Site: site}

	assert.True(t, s.CanProvide(about))
	assert.False(t, s.CanProvide(other))
	assert.False(t, s.CanProvide(home))

	out, err := s.Pieces(context.Background(), about)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "https://blog.test/about/#faq", out[0]["@id"])
	assert.Equal(t, map[string]any{"@id": "https://blog.test/#website"}, out[0]["isPartOf"])

	// expansion must not leak into the loaded template
	again, err := s.Pieces(context.Background(), &page.Context{Kind: page.KindSingular, Site: site, Post: &content.Post{ID: 10, URL: "https://blog.test/elsewhere/"}})
	require.NoError(t, err)
	assert.Equal(t, "https://blog.test/elsewhere/#faq", again[0]["@id"])
}

func TestLoadStatic_Errors(t *testing.T) {
	_, err := LoadStatic(StaticConfig{Path: filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "x.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"@type": "Thing"}`), 0o644))
	_, err = LoadStatic(StaticConfig{Path: path, Contexts: []string{"sideways"}})
	assert.Error(t, err)
}

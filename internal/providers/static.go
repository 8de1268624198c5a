package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/wpschema/wpschema/internal/page"
	"github.com/wpschema/wpschema/internal/schema"
)

// StaticConfig describes a hand-written JSONC piece file
type StaticConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
	// Contexts limits the file to page kinds; empty means every page
	Contexts []string `mapstructure:"contexts" yaml:"contexts,omitempty"`
	// PostIDs limits the file to singular pages of these posts
	PostIDs []int64 `mapstructure:"post_ids" yaml:"post_ids,omitempty"`
}

// Static publishes pieces read from a JSONC file. String values may
// use {site_url} and {page_url} placeholders.
type Static struct {
	name     string
	pieces   []map[string]any
	contexts map[page.Kind]bool
	postIDs  map[int64]bool
}

// LoadStatic reads and parses a static piece file
func LoadStatic(config StaticConfig) (*Static, error) {
	data, err := os.ReadFile(config.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", config.Path, err)
	}
	pieces, err := ParseStatic(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.Path, err)
	}

	s := &Static{
		name:     "static:" + strings.TrimSuffix(filepath.Base(config.Path), filepath.Ext(config.Path)),
		pieces:   pieces,
		contexts: make(map[page.Kind]bool),
		postIDs:  make(map[int64]bool),
	}
	for _, c := range config.Contexts {
		kind, err := page.ParseKind(c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.Path, err)
		}
		s.contexts[kind] = true
	}
	for _, id := range config.PostIDs {
		s.postIDs[id] = true
	}
	return s, nil
}

// ParseStatic accepts a single piece, a list of pieces or an {"@graph"}
// document, with comments and trailing commas allowed
func ParseStatic(data []byte) ([]map[string]any, error) {
	stripped := bytes.TrimSpace(jsonc.ToJSON(data))
	if len(stripped) == 0 {
		return nil, fmt.Errorf("empty piece file")
	}

	if stripped[0] == '[' {
		var list []map[string]any
		if err := json.Unmarshal(stripped, &list); err != nil {
			return nil, fmt.Errorf("parsing pieces: %w", err)
		}
		return list, nil
	}

	var doc map[string]any
	if err := json.Unmarshal(stripped, &doc); err != nil {
		return nil, fmt.Errorf("parsing piece: %w", err)
	}
	graph, ok := doc["@graph"].([]any)
	if !ok {
		delete(doc, schema.KeyContext)
		return []map[string]any{doc}, nil
	}
	out := make([]map[string]any, 0, len(graph))
	for _, item := range graph {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Static) Name() string  { return s.name }
func (s *Static) Priority() int { return PriorityStatic }

func (s *Static) CanProvide(pc *page.Context) bool {
	if len(s.contexts) > 0 && !s.contexts[pc.Kind] {
		return false
	}
	if len(s.postIDs) > 0 {
		return pc.Post != nil && s.postIDs[pc.Post.ID]
	}
	return true
}

func (s *Static) Pieces(_ context.Context, pc *page.Context) ([]map[string]any, error) {
	r := strings.NewReplacer("{site_url}", pc.SiteURL(), "{page_url}", pc.PageURL())
	out := make([]map[string]any, 0, len(s.pieces))
	for _, p := range s.pieces {
		out = append(out, expand(schema.DeepClone(p), r).(map[string]any))
	}
	return out, nil
}

func expand(v any, r *strings.Replacer) any {
	switch val := v.(type) {
	case string:
		return r.Replace(val)
	case map[string]any:
		for k, item := range val {
			val[k] = expand(item, r)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = expand(item, r)
		}
		return val
	}
	return v
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wpschema/wpschema/internal/hooks"
	"github.com/wpschema/wpschema/internal/page"
	"github.com/wpschema/wpschema/internal/schema"
)

// Output modes
const (
	ModeSeparate = "separate"
	ModeGraph    = "graph"
)

// RenderHead generates the page schema and renders it as JSON-LD
// script tags for the document head
func (s *Service) RenderHead(ctx context.Context, pc *page.Context) (string, error) {
	schemas, err := s.Generate(ctx, pc)
	if err != nil {
		return "", err
	}
	return s.Render(ctx, pc, schemas)
}

// Render turns a schema list into script tags. "separate" writes one tag
// per piece; "graph" writes a single @graph document.
func (s *Service) Render(ctx context.Context, pc *page.Context, schemas []map[string]any) (string, error) {
	if len(schemas) == 0 {
		return "", nil
	}

	mode := hooks.ApplyFilters(s.hooks, ctx, hooks.OutputMode, s.outputMode, pc)
	var docs []map[string]any
	switch mode {
	case ModeGraph:
		graph := make([]any, 0, len(schemas))
		for _, p := range schemas {
			p = schema.Clone(p)
			delete(p, schema.KeyContext)
			graph = append(graph, p)
		}
		docs = []map[string]any{{schema.KeyContext: schema.Context, "@graph": graph}}
	case ModeSeparate:
		docs = schemas
	default:
		return "", fmt.Errorf("unknown output mode %q", mode)
	}

	tags := make([]string, 0, len(docs))
	for _, doc := range docs {
		body, err := EncodeJSONLD(doc)
		if err != nil {
			return "", err
		}
		tag := `<script type="application/ld+json">` + "\n" + body + "\n</script>"
		tag = hooks.ApplyFilters(s.hooks, ctx, hooks.ScriptTag, tag, doc, pc)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return strings.Join(tags, "\n"), nil
}

// EncodeJSONLD pretty-prints v without HTML or unicode escaping. "</"
// is written as "<\/" so the payload cannot close its script tag.
func EncodeJSONLD(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encoding JSON-LD: %w", err)
	}
	out := strings.TrimRight(buf.String(), "\n")
	return strings.ReplaceAll(out, "</", `<\/`), nil
}

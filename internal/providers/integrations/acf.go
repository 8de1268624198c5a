package integrations

import (
	"context"
	"strings"

	"github.com/spf13/cast"

	"github.com/wpschema/wpschema/internal/hooks"
	"github.com/wpschema/wpschema/internal/page"
	"github.com/wpschema/wpschema/internal/providers"
	"github.com/wpschema/wpschema/internal/schema"
)

// FieldMapping copies Advanced Custom Fields values into pieces of one
// schema type on posts of the listed types
type FieldMapping struct {
	SchemaType string   `mapstructure:"schema_type" yaml:"schema_type"`
	PostTypes  []string `mapstructure:"post_types" yaml:"post_types"`
	// Fields maps ACF field names to schema properties
	Fields map[string]string `mapstructure:"fields" yaml:"fields"`
}

func (m FieldMapping) appliesTo(postType string) bool {
	if len(m.PostTypes) == 0 {
		return true
	}
	for _, t := range m.PostTypes {
		if t == postType {
			return true
		}
	}
	return false
}

// ACF merges custom field values into the page's own pieces. It works
// through the per-type data filter because assembly keeps the first
// piece for an @id.
type ACF struct {
	Mappings []FieldMapping
}

func (ACF) Name() string { return "acf" }
func (ACF) Plugins() []string {
	return []string{"advanced-custom-fields/acf.php", "advanced-custom-fields-pro/acf.php"}
}

func (a ACF) Register(_ *providers.Registry, h *hooks.Registry) {
	for _, m := range a.Mappings {
		if m.SchemaType == "" || len(m.Fields) == 0 {
			continue
		}
		mapping := m
		hooks.AddFilter(h, hooks.TypeData(mapping.SchemaType), 20, func(ctx context.Context, p map[string]any, args ...any) map[string]any {
			pc := pageArg(args)
			if pc == nil || !pc.IsSingular() || !mapping.appliesTo(pc.Post.Type) {
				return p
			}
			if !ownedBy(p, pc) {
				return p
			}
			return applyFields(p, pc, mapping.Fields)
		})
	}
}

// ownedBy reports whether the piece's @id is scoped to the page URL
func ownedBy(p map[string]any, pc *page.Context) bool {
	id := cast.ToString(p[schema.KeyID])
	return id != "" && strings.HasPrefix(id, strings.SplitN(pc.PageURL(), "#", 2)[0]+"#")
}

func applyFields(p map[string]any, pc *page.Context, fields map[string]string) map[string]any {
	out := make(map[string]any, len(p)+len(fields))
	for k, v := range p {
		out[k] = v
	}
	for field, property := range fields {
		v := pc.Post.MetaValue(field)
		if v == nil || property == "" || strings.HasPrefix(property, "@") {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		out[property] = v
	}
	return out
}

func pageArg(args []any) *page.Context {
	for _, a := range args {
		if pc, ok := a.(*page.Context); ok {
			return pc
		}
	}
	return nil
}

package integrations

import (
	"context"
	"strings"

	"github.com/spf13/cast"

	"github.com/wpschema/wpschema/internal/content"
	"github.com/wpschema/wpschema/internal/generators"
	"github.com/wpschema/wpschema/internal/hooks"
	"github.com/wpschema/wpschema/internal/page"
	"github.com/wpschema/wpschema/internal/providers"
	"github.com/wpschema/wpschema/internal/schema"
)

// MappingOption holds site-level post type -> schema type pairs
const MappingOption = "wp_schema_cptui_mappings"

// TypeMapping publishes posts of a custom post type as a schema type
type TypeMapping struct {
	PostType   string `mapstructure:"post_type" yaml:"post_type"`
	SchemaType string `mapstructure:"schema_type" yaml:"schema_type"`
	// Fields maps post meta keys to schema properties
	Fields map[string]string `mapstructure:"fields" yaml:"fields"`
}

// CPTUI publishes Custom Post Type UI post types
type CPTUI struct {
	Mappings []TypeMapping
}

func (CPTUI) Name() string      { return "cptui" }
func (CPTUI) Plugins() []string { return []string{"custom-post-type-ui/custom-post-type-ui.php"} }

func (c CPTUI) Register(r *providers.Registry, _ *hooks.Registry) {
	r.Register(providers.Func{
		ProviderName:     "cptui",
		ProviderPriority: providers.PriorityIntegration,
		Applies: func(pc *page.Context) bool {
			return pc.IsSingular() && !pc.IsPostType("post", "page", "attachment")
		},
		Build: c.pieces,
	})
}

func (c CPTUI) pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	mapping, ok, err := c.mappingFor(ctx, pc.Source, pc.Post.Type)
	if err != nil || !ok {
		return nil, err
	}

	post := pc.Post
	data := map[string]any{
		schema.KeyType:     mapping.SchemaType,
		schema.KeyID:       providers.MainEntityID(pc, strings.ToLower(mapping.SchemaType)),
		"name":             post.Title,
		"headline":         post.Title,
		"description":      productDescription(post),
		"url":              pc.PageURL(),
		"mainEntityOfPage": providers.WebPageID(pc),
		"datePublished":    post.Published,
		"dateModified":     post.Modified,
	}
	if post.AuthorID > 0 {
		data["author"] = providers.PersonID(pc, post.AuthorID)
	}
	if post.FeaturedImage != nil && post.FeaturedImage.URL != "" {
		data["image"] = post.FeaturedImage.URL
	}
	for key, property := range mapping.Fields {
		if v := post.MetaValue(key); v != nil && property != "" {
			data[property] = v
		}
	}

	if _, known := generators.For(mapping.SchemaType); known {
		p, err := generators.Generate(mapping.SchemaType, data)
		if err != nil {
			return nil, err
		}
		return []map[string]any{p}, nil
	}
	return []map[string]any{genericPiece(data)}, nil
}

// mappingFor prefers configured mappings over the site option
func (c CPTUI) mappingFor(ctx context.Context, src content.Source, postType string) (TypeMapping, bool, error) {
	for _, m := range c.Mappings {
		if m.PostType == postType && m.SchemaType != "" {
			return m, true, nil
		}
	}
	if src == nil {
		return TypeMapping{}, false, nil
	}
	opt, err := content.OptionMap(ctx, src, MappingOption)
	if err != nil {
		return TypeMapping{}, false, err
	}
	if typ := cast.ToString(opt[postType]); typ != "" {
		return TypeMapping{PostType: postType, SchemaType: typ}, true, nil
	}
	return TypeMapping{}, false, nil
}

// genericPiece keeps non-empty values for types without a generator
func genericPiece(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(val) == "" {
				continue
			}
			if k == "author" || k == "mainEntityOfPage" {
				out[k] = schema.Ref(val)
				continue
			}
		case interface{ IsZero() bool }:
			if val.IsZero() {
				continue
			}
		}
		out[k] = v
	}
	delete(out, "headline")
	return out
}

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
)

// Recipes publishes WP Recipe Maker recipes. A post embeds its recipe
// through the wprm_recipe_id meta key; the recipe itself is a wprm_recipe
// post carrying the wprm_* fields.
type Recipes struct{}

func (Recipes) Name() string      { return "recipes" }
func (Recipes) Plugins() []string { return []string{"wp-recipe-maker/wp-recipe-maker.php"} }

func (rc Recipes) Register(r *providers.Registry, _ *hooks.Registry) {
	r.Register(providers.Func{
		ProviderName:     "recipes",
		ProviderPriority: providers.PriorityIntegration,
		Applies: func(pc *page.Context) bool {
			if !pc.IsSingular() || pc.Post == nil {
				return false
			}
			return pc.Post.Type == "wprm_recipe" || pc.Post.MetaValue("wprm_recipe_id") != nil
		},
		Build: rc.pieces,
	})
}

func (Recipes) pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	recipe := pc.Post
	if recipe.Type != "wprm_recipe" {
		embedded, err := relatedPost(ctx, pc.Source, cast.ToInt64(recipe.MetaValue("wprm_recipe_id")))
		if err != nil || embedded == nil {
			return nil, err
		}
		recipe = embedded
	}

	name := cast.ToString(recipe.MetaValue("wprm_name"))
	if name == "" {
		name = recipe.Title
	}
	data := map[string]any{
		"@id":                providers.MainEntityID(pc, "recipe"),
		"name":               name,
		"description":        firstMeta(recipe, "wprm_summary"),
		"url":                pc.PageURL(),
		"mainEntityOfPage":   providers.WebPageID(pc),
		"isPartOf":           providers.ArticleID(pc),
		"prepMinutes":        recipe.MetaValue("wprm_prep_time"),
		"cookMinutes":        recipe.MetaValue("wprm_cook_time"),
		"totalMinutes":       recipe.MetaValue("wprm_total_time"),
		"recipeYield":        servings(recipe.MetaValue("wprm_servings"), recipe.MetaValue("wprm_servings_unit")),
		"recipeIngredient":   ingredients(recipe.MetaValue("wprm_ingredients")),
		"recipeInstructions": instructions(recipe.MetaValue("wprm_instructions")),
		"recipeCategory":     termsOrMeta(recipe, "wprm_course"),
		"recipeCuisine":      termsOrMeta(recipe, "wprm_cuisine"),
		"keywords":           termsOrMeta(recipe, "wprm_keyword"),
		"calories":           recipe.MetaValue("wprm_nutrition_calories"),
		"ratingValue":        ratingField(recipe.MetaValue("wprm_rating"), "average"),
		"ratingCount":        ratingField(recipe.MetaValue("wprm_rating"), "count"),
	}
	if pc.Post.Type == "wprm_recipe" {
		delete(data, "isPartOf")
	}
	if !pc.Post.Published.IsZero() {
		data["datePublished"] = pc.Post.Published
	}
	if pc.Post.AuthorID > 0 {
		data["author"] = providers.PersonID(pc, pc.Post.AuthorID)
	}
	if recipe.FeaturedImage != nil && recipe.FeaturedImage.URL != "" {
		data["image"] = recipe.FeaturedImage.URL
	}
	return []map[string]any{generators.Recipe(data)}, nil
}

func servings(amount, unit any) string {
	a := cast.ToString(amount)
	if a == "" {
		return ""
	}
	if u := cast.ToString(unit); u != "" {
		return a + " " + u
	}
	return a
}

// ingredients flattens the grouped ingredient structure into strings
func ingredients(v any) []string {
	var out []string
	for _, group := range anyList(v) {
		g, ok := group.(map[string]any)
		if !ok {
			if s := cast.ToString(group); s != "" {
				out = append(out, s)
			}
			continue
		}
		items, hasItems := g["ingredients"]
		if !hasItems {
			if line := ingredientLine(g); line != "" {
				out = append(out, line)
			}
			continue
		}
		for _, item := range anyList(items) {
			if m, ok := item.(map[string]any); ok {
				if line := ingredientLine(m); line != "" {
					out = append(out, line)
				}
			}
		}
	}
	return out
}

func ingredientLine(m map[string]any) string {
	var parts []string
	for _, k := range []string{"amount", "unit", "name", "notes"} {
		if s := strings.TrimSpace(cast.ToString(m[k])); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// instructions flattens grouped instruction steps into {text, name} maps
func instructions(v any) []any {
	var out []any
	for _, group := range anyList(v) {
		switch g := group.(type) {
		case string:
			out = append(out, g)
		case map[string]any:
			items, hasItems := g["instructions"]
			if !hasItems {
				out = append(out, map[string]any{"text": g["text"], "name": g["name"]})
				continue
			}
			for _, item := range anyList(items) {
				if m, ok := item.(map[string]any); ok {
					out = append(out, map[string]any{"text": m["text"], "name": m["name"]})
				}
			}
		}
	}
	return out
}

// termsOrMeta prefers the recipe's taxonomy terms over the meta copy
func termsOrMeta(post *content.Post, taxonomy string) any {
	terms := post.TermsIn(taxonomy)
	if len(terms) == 0 {
		return post.MetaValue(taxonomy)
	}
	names := make([]string, 0, len(terms))
	for _, t := range terms {
		names = append(names, t.Name)
	}
	return names
}

func ratingField(v any, key string) any {
	if m, ok := v.(map[string]any); ok {
		return m[key]
	}
	return nil
}

// anyList accepts PHP arrays decoded either as lists or as index-keyed maps
func anyList(v any) []any {
	switch val := v.(type) {
	case []any:
		return val
	case map[string]any:
		out := make([]any, 0, len(val))
		for _, k := range sortedKeys(val) {
			out = append(out, val[k])
		}
		return out
	}
	return nil
}

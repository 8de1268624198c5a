package providers

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/wpschema/wpschema/internal/content"
	"github.com/wpschema/wpschema/internal/generators"
	"github.com/wpschema/wpschema/internal/hooks"
	"github.com/wpschema/wpschema/internal/page"
)

// maxTrailDepth stops parent walks on corrupt hierarchies
const maxTrailDepth = 10

// Navigation publishes the site menus as one SiteNavigationElement
type Navigation struct {
	hooks *hooks.Registry
}

func (p *Navigation) Name() string  { return "navigation" }
func (p *Navigation) Priority() int { return PriorityNavigation }

func (p *Navigation) CanProvide(pc *page.Context) bool {
	return pc.Source != nil && pc.Site != nil
}

func (p *Navigation) Pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	menus, err := pc.Source.Menus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read menus: %w", err)
	}
	if len(menus) == 0 {
		return nil, nil
	}

	byLocation := make(map[string]content.Menu, len(menus))
	locations := make([]string, 0, len(menus))
	for _, m := range menus {
		if _, dup := byLocation[m.Location]; dup {
			continue
		}
		byLocation[m.Location] = m
		locations = append(locations, m.Location)
	}
	sort.Strings(locations)
	locations = hooks.ApplyFilters(p.hooks, ctx, hooks.NavigationMenus, locations, pc)

	var name string
	var items []any
	for _, loc := range locations {
		menu, ok := byLocation[loc]
		if !ok {
			continue
		}
		if name == "" {
			name = menu.Name
		}
		sorted := append([]content.MenuItem(nil), menu.Items...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
		for _, item := range sorted {
			items = append(items, map[string]any{"name": item.Title, "url": item.URL})
		}
	}
	if len(items) == 0 {
		return nil, nil
	}

	return []map[string]any{generators.Navigation(map[string]any{
		"@id":   NavigationID(pc),
		"name":  name,
		"items": items,
	})}, nil
}

// Breadcrumb publishes the trail from the home page to the current page
type Breadcrumb struct {
	hooks *hooks.Registry
}

func (p *Breadcrumb) Name() string  { return "breadcrumb" }
func (p *Breadcrumb) Priority() int { return PriorityBreadcrumb }

func (p *Breadcrumb) CanProvide(pc *page.Context) bool {
	return pc.Kind != page.KindHome && pc.Site != nil
}

func (p *Breadcrumb) Pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	trail, err := Trail(ctx, pc)
	if err != nil {
		return nil, err
	}
	trail = hooks.ApplyFilters(p.hooks, ctx, hooks.BreadcrumbItems, trail, pc)
	if len(trail) < 2 {
		return nil, nil
	}
	return []map[string]any{generators.Breadcrumbs(map[string]any{
		"@id":   BreadcrumbID(pc),
		"items": trail,
	})}, nil
}

// Trail builds the breadcrumb trail for the page
func Trail(ctx context.Context, pc *page.Context) ([]generators.Crumb, error) {
	trail := []generators.Crumb{{Name: "Home", URL: pc.SiteURL()}}

	switch {
	case pc.Post != nil:
		var parents []generators.Crumb
		var err error
		if pc.Post.Type == "page" || pc.Post.ParentID > 0 {
			parents, err = postAncestors(ctx, pc.Source, pc.Post)
		} else if cats := pc.Post.TermsIn("category"); len(cats) > 0 {
			parents, err = termAncestors(ctx, pc.Source, cats[0])
		}
		if err != nil {
			return nil, err
		}
		trail = append(trail, parents...)
		trail = append(trail, generators.Crumb{Name: pc.Post.Title, URL: pc.Post.URL})
	case pc.Term != nil:
		parents, err := termAncestors(ctx, pc.Source, *pc.Term)
		if err != nil {
			return nil, err
		}
		trail = append(trail, parents...)
	case pc.Author != nil:
		trail = append(trail, generators.Crumb{Name: pc.Author.Name, URL: pc.Author.URL})
	default:
		trail = append(trail, generators.Crumb{Name: pageTitle(pc), URL: pc.PageURL()})
	}
	return trail, nil
}

// postAncestors returns the parent pages, oldest first
func postAncestors(ctx context.Context, src content.Source, p *content.Post) ([]generators.Crumb, error) {
	var out []generators.Crumb
	parentID := p.ParentID
	for depth := 0; parentID > 0 && src != nil && depth < maxTrailDepth; depth++ {
		parent, err := src.Post(ctx, parentID)
		if errors.Is(err, content.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parent post %d: %w", parentID, err)
		}
		out = append([]generators.Crumb{{Name: parent.Title, URL: parent.URL}}, out...)
		parentID = parent.ParentID
	}
	return out, nil
}

// termAncestors returns the term and its parents, oldest first
func termAncestors(ctx context.Context, src content.Source, t content.Term) ([]generators.Crumb, error) {
	out := []generators.Crumb{{Name: t.Name, URL: t.URL}}
	parentID := t.ParentID
	for depth := 0; parentID > 0 && src != nil && depth < maxTrailDepth; depth++ {
		parent, err := src.Term(ctx, t.Taxonomy, parentID)
		if errors.Is(err, content.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parent term %d: %w", parentID, err)
		}
		out = append([]generators.Crumb{{Name: parent.Name, URL: parent.URL}}, out...)
		parentID = parent.ParentID
	}
	return out, nil
}

package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/wpschema/wpschema/internal/content"
	"github.com/wpschema/wpschema/internal/generators"
	"github.com/wpschema/wpschema/internal/hooks"
	"github.com/wpschema/wpschema/internal/page"
)

// OrganizationOption holds the organization profile set in the admin
const OrganizationOption = "wp_schema_organization"

// Core provider priorities
const (
	PriorityOrganization = 10
	PriorityWebSite      = 20
	PriorityWebPage      = 30
	PriorityMedia        = 35
	PriorityArticle      = 40
	PriorityAuthor       = 45
	PriorityNavigation   = 50
	PriorityBreadcrumb   = 60
	PriorityComments     = 70
	PriorityIntegration  = 80
	PriorityStatic       = 90
)

// RegisterCore adds the built-in providers
func RegisterCore(r *Registry, h *hooks.Registry, articleTypes []string) {
	r.Register(&Organization{hooks: h})
	r.Register(&WebSite{hooks: h})
	r.Register(&WebPage{})
	r.Register(&Media{})
	r.Register(NewArticle(articleTypes))
	r.Register(&Author{})
	r.Register(&Navigation{hooks: h})
	r.Register(&Breadcrumb{hooks: h})
	r.Register(&Comments{})
}

// Organization publishes the site owner from the site settings and the
// organization option
type Organization struct {
	hooks *hooks.Registry
}

func (p *Organization) Name() string                     { return "organization" }
func (p *Organization) Priority() int                    { return PriorityOrganization }
func (p *Organization) CanProvide(pc *page.Context) bool { return pc.Site != nil }

func (p *Organization) Pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	data := map[string]any{
		"@id":  OrganizationID(pc),
		"name": pc.Site.Name,
		"url":  pc.SiteURL(),
		"logo": pc.Site.LogoURL,
	}
	if pc.Source != nil {
		opt, err := content.OptionMap(ctx, pc.Source, OrganizationOption)
		if err != nil {
			return nil, fmt.Errorf("failed to read organization option: %w", err)
		}
		for k, v := range opt {
			if k == "type" {
				k = "@type"
			}
			if !isBlank(v) {
				data[k] = v
			}
		}
	}
	data = hooks.ApplyFilters(p.hooks, ctx, hooks.OrganizationData, data, pc)

	typ := cast.ToString(data["@type"])
	if typ != "" && typ != "Organization" {
		return []map[string]any{generators.LocalBusiness(data)}, nil
	}
	return []map[string]any{generators.Organization(data)}, nil
}

// WebSite publishes the WebSite piece with its search action
type WebSite struct {
	hooks *hooks.Registry
}

func (p *WebSite) Name() string                     { return "website" }
func (p *WebSite) Priority() int                    { return PriorityWebSite }
func (p *WebSite) CanProvide(pc *page.Context) bool { return pc.Site != nil }

func (p *WebSite) Pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	search := hooks.ApplyFilters(p.hooks, ctx, hooks.WebsiteSearchURL, pc.Site.SearchURL, pc)
	return []map[string]any{generators.WebSite(map[string]any{
		"@id":         WebSiteID(pc),
		"url":         pc.SiteURL(),
		"name":        pc.Site.Name,
		"description": pc.Site.Description,
		"inLanguage":  pc.Site.Language,
		"publisher":   OrganizationID(pc),
		"searchUrl":   search,
	})}, nil
}

// WebPage publishes the page itself, typed by page kind
type WebPage struct{}

func (p *WebPage) Name() string                     { return "webpage" }
func (p *WebPage) Priority() int                    { return PriorityWebPage }
func (p *WebPage) CanProvide(pc *page.Context) bool { return pc.Site != nil }

// PageType returns the schema.org page type for a page kind
func PageType(kind page.Kind) string {
	switch kind {
	case page.KindArchive, page.KindTaxonomy:
		return "CollectionPage"
	case page.KindSearch:
		return "SearchResultsPage"
	case page.KindAuthor:
		return "ProfilePage"
	}
	return "WebPage"
}

func (p *WebPage) Pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	data := map[string]any{
		"@id":        WebPageID(pc),
		"@type":      PageType(pc.Kind),
		"url":        pc.PageURL(),
		"name":       pageTitle(pc),
		"isPartOf":   WebSiteID(pc),
		"inLanguage": pc.Site.Language,
	}
	switch {
	case pc.Kind == page.KindHome:
		data["about"] = OrganizationID(pc)
		data["description"] = pc.Site.Description
	case pc.Post != nil:
		data["description"] = postDescription(pc.Post)
		data["datePublished"] = pc.Post.Published
		data["dateModified"] = pc.Post.Modified
		if pc.Post.FeaturedImage != nil && pc.Post.FeaturedImage.URL != "" {
			data["primaryImageOfPage"] = PrimaryImageID(pc)
		}
	case pc.Term != nil:
		data["description"] = pc.Term.Description
	case pc.Author != nil:
		data["mainEntity"] = PersonID(pc, pc.Author.ID)
	}
	if pc.Kind != page.KindHome {
		data["breadcrumb"] = BreadcrumbID(pc)
	}
	return []map[string]any{generators.WebPage(data)}, nil
}

// pageTitle is the document title for the page
func pageTitle(pc *page.Context) string {
	switch {
	case pc.Post != nil:
		return pc.Post.Title
	case pc.Term != nil:
		return pc.Term.Name
	case pc.Author != nil:
		return pc.Author.Name
	case pc.Kind == page.KindSearch:
		return fmt.Sprintf("Search results for \"%s\"", pc.Search)
	case pc.Kind == page.KindNotFound:
		return "Page not found"
	case pc.Kind == page.KindArchive && pc.PostType != "":
		return archiveTitle(pc.PostType)
	}
	if pc.Site != nil {
		return pc.Site.Name
	}
	return ""
}

func archiveTitle(postType string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(postType))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

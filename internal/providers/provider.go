// Package providers collects schema pieces for a page. Each provider
// contributes the pieces it knows about; the registry runs them with
// failure isolation and caches their output.
package providers

import (
	"context"
	"strconv"
	"strings"

	"github.com/wpschema/wpschema/internal/page"
	"github.com/wpschema/wpschema/internal/schema"
)

// Provider contributes pieces for the pages it applies to
type Provider interface {
	// Name identifies the provider in logs, metrics and cache keys
	Name() string
	// Priority orders providers; lower runs first
	Priority() int
	// CanProvide reports whether the provider applies to the page
	CanProvide(pc *page.Context) bool
	// Pieces returns raw pieces for the page
	Pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error)
}

// Func adapts plain functions into a Provider
type Func struct {
	ProviderName     string
	ProviderPriority int
	Applies          func(pc *page.Context) bool
	Build            func(ctx context.Context, pc *page.Context) ([]map[string]any, error)
}

func (f Func) Name() string  { return f.ProviderName }
func (f Func) Priority() int { return f.ProviderPriority }

func (f Func) CanProvide(pc *page.Context) bool {
	return f.Applies == nil || f.Applies(pc)
}

func (f Func) Pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	return f.Build(ctx, pc)
}

// Canonical @ids shared by providers so references line up

func OrganizationID(pc *page.Context) string {
	return schema.CanonicalID(pc.SiteURL(), "organization")
}

func WebSiteID(pc *page.Context) string {
	return schema.CanonicalID(pc.SiteURL(), "website")
}

func NavigationID(pc *page.Context) string {
	return schema.CanonicalID(pc.SiteURL(), "navigation")
}

func PersonID(pc *page.Context, authorID int64) string {
	return schema.CanonicalID(pc.SiteURL(), "/schema/person/"+strconv.FormatInt(authorID, 10))
}

func WebPageID(pc *page.Context) string {
	return fragmentID(pc.PageURL(), "webpage")
}

func ArticleID(pc *page.Context) string {
	return fragmentID(pc.PageURL(), "article")
}

func BreadcrumbID(pc *page.Context) string {
	return fragmentID(pc.PageURL(), "breadcrumb")
}

func PrimaryImageID(pc *page.Context) string {
	return fragmentID(pc.PageURL(), "primaryimage")
}

// MainEntityID returns url#<name>, e.g. #product or #event
func MainEntityID(pc *page.Context, name string) string {
	return fragmentID(pc.PageURL(), name)
}

func CommentID(pc *page.Context, commentID int64) string {
	return fragmentID(pc.PageURL(), "comment-"+strconv.FormatInt(commentID, 10))
}

func fragmentID(url, fragment string) string {
	if i := strings.IndexByte(url, '#'); i >= 0 {
		url = url[:i]
	}
	return url + "#" + fragment
}

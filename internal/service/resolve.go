package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wpschema/wpschema/internal/content"
	"github.com/wpschema/wpschema/internal/page"
	"github.com/wpschema/wpschema/internal/providers"
	"github.com/wpschema/wpschema/internal/providers/integrations"
)

// ErrBadRequest marks requests that name no resolvable entity
var ErrBadRequest = errors.New("service: bad page request")

// DefaultHashedOptions are the options whose changes invalidate cached
// provider output
func DefaultHashedOptions() []string {
	return []string{
		"blogname",
		"blogdescription",
		"home",
		providers.OrganizationOption,
		integrations.PolarisOption,
		integrations.MappingOption,
		"woocommerce_currency",
		"edd_settings",
	}
}

// Resolve loads the site and the requested entity into a page context.
// Missing entities return content.ErrNotFound.
func (s *Service) Resolve(ctx context.Context, req page.Request) (*page.Context, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: no content source configured", ErrBadRequest)
	}
	site, err := s.source.Site(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading site: %w", err)
	}
	if site.URL == "" {
		site.URL = s.siteURL
	}

	pc := &page.Context{
		Kind:     req.Kind,
		URL:      req.URL,
		Site:     site,
		Search:   req.Search,
		PostType: req.PostType,
		Paged:    req.Paged,
		Source:   s.source,
	}
	if pc.Kind == "" {
		pc.Kind = page.KindHome
	}

	switch pc.Kind {
	case page.KindSingular:
		if req.PostID <= 0 {
			return nil, fmt.Errorf("%w: post_id is required for singular pages", ErrBadRequest)
		}
		pc.Post, err = s.source.Post(ctx, req.PostID)
		if err != nil {
			return nil, fmt.Errorf("loading post %d: %w", req.PostID, err)
		}
		if pc.PostType == "" {
			pc.PostType = pc.Post.Type
		}
	case page.KindTaxonomy:
		if req.TermID <= 0 {
			return nil, fmt.Errorf("%w: term_id is required for taxonomy pages", ErrBadRequest)
		}
		taxonomy := req.Taxonomy
		if taxonomy == "" {
			taxonomy = "category"
		}
		pc.Term, err = s.source.Term(ctx, taxonomy, req.TermID)
		if err != nil {
			return nil, fmt.Errorf("loading term %s/%d: %w", taxonomy, req.TermID, err)
		}
	case page.KindAuthor:
		if req.AuthorID <= 0 {
			return nil, fmt.Errorf("%w: author_id is required for author pages", ErrBadRequest)
		}
		pc.Author, err = s.source.Author(ctx, req.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("loading author %d: %w", req.AuthorID, err)
		}
	case page.KindSearch:
		pc.Search = strings.TrimSpace(req.Search)
	}

	pc.OptionsHash, err = s.optionsHash(ctx)
	if err != nil {
		return nil, err
	}
	return pc, nil
}

func (s *Service) optionsHash(ctx context.Context) (string, error) {
	values := make(map[string]any, len(s.hashedOptions))
	for _, name := range s.hashedOptions {
		v, ok, err := s.source.Option(ctx, name)
		if err != nil {
			return "", fmt.Errorf("reading option %s: %w", name, err)
		}
		if ok {
			values[name] = v
		}
	}
	return page.HashOptions(values), nil
}

// IsNotFound reports whether err means the requested entity is missing
func IsNotFound(err error) bool {
	return errors.Is(err, content.ErrNotFound)
}

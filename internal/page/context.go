// Package page describes the WordPress request a schema graph is built
// for: what kind of page it is and the content it resolved to.
package page

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/wpschema/wpschema/internal/content"
)

// Kind is the WordPress template hierarchy branch of a request
type Kind string

const (
	KindHome     Kind = "home"
	KindSingular Kind = "singular"
	KindArchive  Kind = "archive"
	KindSearch   Kind = "search"
	KindTaxonomy Kind = "taxonomy"
	KindAuthor   Kind = "author"
	KindNotFound Kind = "notfound"
)

// Kinds lists every supported kind
var Kinds = []Kind{KindHome, KindSingular, KindArchive, KindSearch, KindTaxonomy, KindAuthor, KindNotFound}

// ParseKind converts a string into a Kind. The empty string is home.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "front", "front_page":
		return KindHome, nil
	case "post", "page", "single":
		return KindSingular, nil
	case "category", "tag", "term":
		return KindTaxonomy, nil
	case "404", "not_found":
		return KindNotFound, nil
	}
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown page kind %q", s)
}

// Request identifies the page to generate schema for
type Request struct {
	Kind     Kind   `json:"context"`
	PostID   int64  `json:"post_id,omitempty"`
	TermID   int64  `json:"term_id,omitempty"`
	Taxonomy string `json:"taxonomy,omitempty"`
	AuthorID int64  `json:"author_id,omitempty"`
	Search   string `json:"search,omitempty"`
	PostType string `json:"post_type,omitempty"`
	URL      string `json:"url,omitempty"`
	Paged    int    `json:"paged,omitempty"`
}

// Context is a resolved request. Providers read everything they need
// from it.
type Context struct {
	Kind     Kind
	URL      string
	Site     *content.Site
	Post     *content.Post
	Term     *content.Term
	Author   *content.Author
	Search   string
	PostType string
	Paged    int

	// Source gives providers access to options, menus and related posts
	Source content.Source

	// OptionsHash changes whenever a schema-relevant option changes
	OptionsHash string
}

// IsSingular reports whether the page shows a single post
func (c *Context) IsSingular() bool {
	return c.Kind == KindSingular && c.Post != nil
}

// IsPostType reports whether the page is a singular of one of the types
func (c *Context) IsPostType(types ...string) bool {
	if !c.IsSingular() {
		return false
	}
	for _, t := range types {
		if c.Post.Type == t {
			return true
		}
	}
	return false
}

// SiteURL returns the site root with a trailing slash
func (c *Context) SiteURL() string {
	if c.Site == nil || c.Site.URL == "" {
		return "/"
	}
	return strings.TrimRight(c.Site.URL, "/") + "/"
}

// PageURL returns the canonical URL of the page
func (c *Context) PageURL() string {
	if c.URL != "" {
		return c.URL
	}
	switch {
	case c.Post != nil && c.Post.URL != "":
		return c.Post.URL
	case c.Term != nil && c.Term.URL != "":
		return c.Term.URL
	case c.Author != nil && c.Author.URL != "":
		return c.Author.URL
	case c.Kind == KindSearch:
		return c.SiteURL() + "?" + url.Values{"s": {c.Search}}.Encode()
	}
	return c.SiteURL()
}

// Key identifies the page for caching. Two contexts with the same key
// produce the same provider output.
func (c *Context) Key() string {
	var id string
	switch {
	case c.Post != nil:
		id = fmt.Sprintf("post:%d", c.Post.ID)
	case c.Term != nil:
		id = fmt.Sprintf("term:%s:%d", c.Term.Taxonomy, c.Term.ID)
	case c.Author != nil:
		id = fmt.Sprintf("author:%d", c.Author.ID)
	case c.Kind == KindSearch:
		id = "search:" + c.Search
	case c.PostType != "":
		id = "type:" + c.PostType
	}
	return fmt.Sprintf("%s|%s|%s|%d", c.Kind, id, c.PageURL(), c.Paged)
}

// HashOptions returns a short stable digest of option values
func HashOptions(values map[string]any) string {
	data, err := json.Marshal(values)
	if err != nil {
		data = []byte(fmt.Sprint(values))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// Package content models the WordPress data the schema providers read:
// site settings, posts, terms, authors, menus, comments and options.
package content

import (
	"errors"
	"time"
)

// ErrNotFound is returned when the requested entity does not exist
var ErrNotFound = errors.New("content: not found")

// Post statuses
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
	StatusPrivate = "private"
)

// Site holds the general site settings
type Site struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	URL         string `yaml:"url" json:"url"`
	Language    string `yaml:"language" json:"language"`
	LogoURL     string `yaml:"logo_url" json:"logo_url"`
	// SearchURL is the search results template, e.g. https://site.test/?s={search_term_string}
	SearchURL string `yaml:"search_url" json:"search_url"`
}

// Media is an attachment
type Media struct {
	ID      int64  `yaml:"id" json:"id"`
	URL     string `yaml:"url" json:"url"`
	Width   int    `yaml:"width" json:"width"`
	Height  int    `yaml:"height" json:"height"`
	Caption string `yaml:"caption" json:"caption"`
	Alt     string `yaml:"alt" json:"alt"`
}

// Term is a taxonomy term
type Term struct {
	ID          int64  `yaml:"id" json:"id"`
	Taxonomy    string `yaml:"taxonomy" json:"taxonomy"`
	Name        string `yaml:"name" json:"name"`
	Slug        string `yaml:"slug" json:"slug"`
	URL         string `yaml:"url" json:"url"`
	Description string `yaml:"description" json:"description"`
	ParentID    int64  `yaml:"parent_id" json:"parent_id"`
}

// Author is a post author
type Author struct {
	ID          int64    `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	URL         string   `yaml:"url" json:"url"`
	Description string   `yaml:"description" json:"description"`
	AvatarURL   string   `yaml:"avatar_url" json:"avatar_url"`
	SameAs      []string `yaml:"same_as" json:"same_as"`
}

// Post is any WordPress post object: post, page, product, event...
type Post struct {
	ID            int64          `yaml:"id" json:"id"`
	Type          string         `yaml:"type" json:"type"`
	Status        string         `yaml:"status" json:"status"`
	Title         string         `yaml:"title" json:"title"`
	Slug          string         `yaml:"slug" json:"slug"`
	URL           string         `yaml:"url" json:"url"`
	Excerpt       string         `yaml:"excerpt" json:"excerpt"`
	Content       string         `yaml:"content" json:"content"`
	AuthorID      int64          `yaml:"author_id" json:"author_id"`
	ParentID      int64          `yaml:"parent_id" json:"parent_id"`
	Published     time.Time      `yaml:"published" json:"published"`
	Modified      time.Time      `yaml:"modified" json:"modified"`
	CommentCount  int            `yaml:"comment_count" json:"comment_count"`
	FeaturedImage *Media         `yaml:"featured_image" json:"featured_image,omitempty"`
	Terms         []Term         `yaml:"terms" json:"terms"`
	Meta          map[string]any `yaml:"meta" json:"meta"`
}

// IsPublished reports whether the post is publicly visible
func (p *Post) IsPublished() bool {
	return p.Status == "" || p.Status == StatusPublish
}

// MetaValue returns a meta value or nil
func (p *Post) MetaValue(key string) any {
	if p.Meta == nil {
		return nil
	}
	return p.Meta[key]
}

// TermsIn returns the post's terms in the given taxonomy
func (p *Post) TermsIn(taxonomy string) []Term {
	var out []Term
	for _, t := range p.Terms {
		if t.Taxonomy == taxonomy {
			out = append(out, t)
		}
	}
	return out
}

// Menu is a navigation menu assigned to a theme location
type Menu struct {
	ID       int64      `yaml:"id" json:"id"`
	Name     string     `yaml:"name" json:"name"`
	Slug     string     `yaml:"slug" json:"slug"`
	Location string     `yaml:"location" json:"location"`
	Items    []MenuItem `yaml:"items" json:"items"`
}

// MenuItem is one link in a menu
type MenuItem struct {
	ID       int64  `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	URL      string `yaml:"url" json:"url"`
	ParentID int64  `yaml:"parent_id" json:"parent_id"`
	Order    int    `yaml:"order" json:"order"`
}

// Comment is an approved comment on a post
type Comment struct {
	ID         int64     `yaml:"id" json:"id"`
	PostID     int64     `yaml:"post_id" json:"post_id"`
	ParentID   int64     `yaml:"parent_id" json:"parent_id"`
	AuthorName string    `yaml:"author_name" json:"author_name"`
	AuthorURL  string    `yaml:"author_url" json:"author_url"`
	Content    string    `yaml:"content" json:"content"`
	Date       time.Time `yaml:"date" json:"date"`
	Approved   bool      `yaml:"approved" json:"approved"`
}

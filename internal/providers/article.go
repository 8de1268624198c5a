package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/wpschema/wpschema/internal/content"
	"github.com/wpschema/wpschema/internal/content/extract"
	"github.com/wpschema/wpschema/internal/generators"
	"github.com/wpschema/wpschema/internal/page"
)

// summaryWords bounds descriptions derived from post content
const summaryWords = 30

// Article publishes singular posts of the article post types
type Article struct {
	postTypes []string
}

// NewArticle creates the article provider. With no post types only
// "post" is treated as an article.
func NewArticle(postTypes []string) *Article {
	if len(postTypes) == 0 {
		postTypes = []string{"post"}
	}
	return &Article{postTypes: postTypes}
}

func (p *Article) Name() string  { return "article" }
func (p *Article) Priority() int { return PriorityArticle }

func (p *Article) CanProvide(pc *page.Context) bool {
	return pc.IsPostType(p.postTypes...)
}

func (p *Article) Pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	post := pc.Post
	doc, err := extract.Parse(post.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse post %d content: %w", post.ID, err)
	}

	data := map[string]any{
		"@id":              ArticleID(pc),
		"headline":         post.Title,
		"url":              pc.PageURL(),
		"datePublished":    post.Published,
		"dateModified":     post.Modified,
		"wordCount":        doc.WordCount(),
		"commentCount":     post.CommentCount,
		"isPartOf":         WebPageID(pc),
		"mainEntityOfPage": WebPageID(pc),
		"publisher":        OrganizationID(pc),
		"articleSection":   termNames(post.TermsIn("category")),
		"keywords":         termNames(post.TermsIn("post_tag")),
		"description":      post.Excerpt,
	}
	if pc.Site != nil {
		data["inLanguage"] = pc.Site.Language
	}
	if post.Excerpt == "" {
		data["description"] = firstNonEmpty(doc.FirstParagraph(), extract.Summary(post.Content, summaryWords))
	}
	if post.AuthorID > 0 {
		data["author"] = PersonID(pc, post.AuthorID)
	}
	switch {
	case post.FeaturedImage != nil && post.FeaturedImage.URL != "":
		data["image"] = PrimaryImageID(pc)
	case len(doc.Images()) > 0:
		data["image"] = doc.Images()[0]
	}

	if post.CommentCount > 0 && pc.Source != nil {
		comments, err := pc.Source.Comments(ctx, post.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read comments for post %d: %w", post.ID, err)
		}
		refs := make([]any, 0, len(comments))
		for _, c := range comments {
			refs = append(refs, map[string]any{"@id": CommentID(pc, c.ID)})
		}
		data["comment"] = refs
	}
	return []map[string]any{generators.Article(data)}, nil
}

// Author publishes the Person behind an article or an author archive
type Author struct{}

func (p *Author) Name() string  { return "author" }
func (p *Author) Priority() int { return PriorityAuthor }

func (p *Author) CanProvide(pc *page.Context) bool {
	if pc.Kind == page.KindAuthor {
		return pc.Author != nil
	}
	return pc.IsSingular() && pc.Post.AuthorID > 0 && pc.Source != nil
}

func (p *Author) Pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	author := pc.Author
	if author == nil {
		a, err := pc.Source.Author(ctx, pc.Post.AuthorID)
		if errors.Is(err, content.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		author = a
	}
	return []map[string]any{generators.Person(map[string]any{
		"@id":         PersonID(pc, author.ID),
		"name":        author.Name,
		"url":         author.URL,
		"description": author.Description,
		"image":       author.AvatarURL,
		"sameAs":      author.SameAs,
	})}, nil
}

// Media publishes the featured image of a singular page
type Media struct{}

func (p *Media) Name() string  { return "media" }
func (p *Media) Priority() int { return PriorityMedia }

func (p *Media) CanProvide(pc *page.Context) bool {
	return pc.IsSingular() && pc.Post.FeaturedImage != nil && pc.Post.FeaturedImage.URL != ""
}

func (p *Media) Pieces(_ context.Context, pc *page.Context) ([]map[string]any, error) {
	img := pc.Post.FeaturedImage
	data := map[string]any{
		"@id":     PrimaryImageID(pc),
		"url":     img.URL,
		"width":   img.Width,
		"height":  img.Height,
		"caption": firstNonEmpty(img.Caption, img.Alt),
	}
	if pc.Site != nil {
		data["inLanguage"] = pc.Site.Language
	}
	return []map[string]any{generators.ImageObject(data)}, nil
}

// Comments publishes approved comments as Comment pieces referenced by
// the article
type Comments struct{}

func (p *Comments) Name() string  { return "comments" }
func (p *Comments) Priority() int { return PriorityComments }

func (p *Comments) CanProvide(pc *page.Context) bool {
	return pc.IsSingular() && pc.Post.CommentCount > 0 && pc.Source != nil
}

func (p *Comments) Pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	comments, err := pc.Source.Comments(ctx, pc.Post.ID)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(comments))
	for _, c := range comments {
		parent := ArticleID(pc)
		if c.ParentID > 0 {
			parent = CommentID(pc, c.ParentID)
		}
		out = append(out, generators.Comment(map[string]any{
			"@id":         CommentID(pc, c.ID),
			"text":        extract.Text(c.Content),
			"dateCreated": c.Date,
			"url":         CommentID(pc, c.ID),
			"parentItem":  parent,
			"author":      map[string]any{"name": c.AuthorName, "url": c.AuthorURL},
		}))
	}
	return out, nil
}

func postDescription(p *content.Post) string {
	if p.Excerpt != "" {
		return extract.Text(p.Excerpt)
	}
	return extract.Summary(p.Content, summaryWords)
}

func termNames(terms []content.Term) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, t.Name)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

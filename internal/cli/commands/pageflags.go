package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wpschema/wpschema/internal/cli/ui"
	"github.com/wpschema/wpschema/internal/page"
)

// pageFlags select the page to generate schema for
type pageFlags struct {
	context  string
	postID   int64
	termID   int64
	taxonomy string
	authorID int64
	search   string
	postType string
	url      string
}

func (f *pageFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	kinds := make([]string, len(page.Kinds))
	for i, k := range page.Kinds {
		kinds[i] = string(k)
	}
	flags.StringVar(&f.context, "context", "home", "page context: "+strings.Join(kinds, ", "))
	flags.Int64Var(&f.postID, "post", 0, "post ID for singular pages")
	flags.Int64Var(&f.termID, "term", 0, "term ID for taxonomy pages")
	flags.StringVar(&f.taxonomy, "taxonomy", "category", "taxonomy of --term")
	flags.Int64Var(&f.authorID, "author", 0, "author ID for author pages")
	flags.StringVar(&f.search, "search", "", "search query for search pages")
	flags.StringVar(&f.postType, "post-type", "", "post type for archive pages")
	flags.StringVar(&f.url, "url", "", "canonical page URL")
}

// request converts the flags, suggesting the closest context on a typo
func (f *pageFlags) request(cmd *cobra.Command) (page.Request, error) {
	kind, err := page.ParseKind(f.context)
	if err != nil {
		kinds := make([]string, len(page.Kinds))
		for i, k := range page.Kinds {
			kinds[i] = string(k)
		}
		ui.Message{
			Level:       ui.LevelError,
			Title:       fmt.Sprintf("Unknown page context: %s", f.context),
			Suggestions: ui.FindSimilar(f.context, kinds, 3),
			Commands:    []string{"List contexts: wpschema " + cmd.Name() + " --help"},
		}.Write(cmd.ErrOrStderr())
		return page.Request{}, err
	}
	return page.Request{
		Kind:     kind,
		PostID:   f.postID,
		TermID:   f.termID,
		Taxonomy: f.taxonomy,
		AuthorID: f.authorID,
		Search:   f.search,
		PostType: f.postType,
		URL:      f.url,
	}, nil
}

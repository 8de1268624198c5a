package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Dialect selects the placeholder style of the SQL source
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "pgx"
)

// SQLConfig configures the WordPress database reader
type SQLConfig struct {
	Dialect Dialect
	// TablePrefix is the WordPress $table_prefix, "wp_" by default
	TablePrefix string
}

// SQL reads content straight from the WordPress tables
type SQL struct {
	db      *sql.DB
	dialect Dialect
	prefix  string
}

// NewSQL creates a source over an open database handle
func NewSQL(db *sql.DB, config SQLConfig) *SQL {
	prefix := config.TablePrefix
	if prefix == "" {
		prefix = "wp_"
	}
	dialect := config.Dialect
	if dialect == "" {
		dialect = DialectMySQL
	}
	return &SQL{db: db, dialect: dialect, prefix: prefix}
}

// OpenSQL opens a database with the driver registered for the dialect
func OpenSQL(config SQLConfig, dsn string) (*SQL, error) {
	db, err := sql.Open(string(config.Dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", config.Dialect, err)
	}
	return NewSQL(db, config), nil
}

// Close closes the underlying database handle
func (s *SQL) Close() error {
	return s.db.Close()
}

// Ping checks connectivity
func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// table returns the prefixed table name
func (s *SQL) table(name string) string {
	return s.prefix + name
}

// rebind rewrites ? placeholders for dialects that number them
func (s *SQL) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQL) rawOption(ctx context.Context, name string) (string, bool, error) {
	q := s.rebind(fmt.Sprintf("SELECT option_value FROM %s WHERE option_name = ?", s.table("options")))
	var value string
	err := s.db.QueryRowContext(ctx, q, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read option %s: %w", name, err)
	}
	return value, true, nil
}

// Option returns a decoded option value
func (s *SQL) Option(ctx context.Context, name string) (any, bool, error) {
	raw, ok, err := s.rawOption(ctx, name)
	if err != nil || !ok {
		return nil, ok, err
	}
	return DecodeOptionValue(raw), true, nil
}

func (s *SQL) stringOption(ctx context.Context, name string) (string, error) {
	raw, _, err := s.rawOption(ctx, name)
	return raw, err
}

// Site returns the general settings
func (s *SQL) Site(ctx context.Context) (*Site, error) {
	site := &Site{}
	var err error
	if site.Name, err = s.stringOption(ctx, "blogname"); err != nil {
		return nil, err
	}
	if site.Description, err = s.stringOption(ctx, "blogdescription"); err != nil {
		return nil, err
	}
	if site.URL, err = s.stringOption(ctx, "home"); err != nil {
		return nil, err
	}
	if site.URL == "" {
		if site.URL, err = s.stringOption(ctx, "siteurl"); err != nil {
			return nil, err
		}
	}
	lang, err := s.stringOption(ctx, "WPLANG")
	if err != nil {
		return nil, err
	}
	site.Language = strings.ReplaceAll(lang, "_", "-")
	if site.Language == "" {
		site.Language = "en-US"
	}

	logoID, err := s.stringOption(ctx, "site_logo")
	if err != nil {
		return nil, err
	}
	if id := cast.ToInt64(logoID); id > 0 {
		if logo, err := s.media(ctx, id); err == nil {
			site.LogoURL = logo.URL
		}
	}

	site.SearchURL = strings.TrimRight(site.URL, "/") + "/?s={search_term_string}"
	return site, nil
}

const postColumns = "ID, post_type, post_status, post_title, post_name, post_excerpt, post_content, post_author, post_parent, post_date_gmt, post_modified_gmt, comment_count, guid"

type postRow struct {
	post     Post
	guid     string
	date     any
	modified any
}

func (s *SQL) scanPost(row interface{ Scan(...any) error }) (*postRow, error) {
	var r postRow
	err := row.Scan(
		&r.post.ID, &r.post.Type, &r.post.Status, &r.post.Title, &r.post.Slug,
		&r.post.Excerpt, &r.post.Content, &r.post.AuthorID, &r.post.ParentID,
		&r.date, &r.modified, &r.post.CommentCount, &r.guid,
	)
	if err != nil {
		return nil, err
	}
	r.post.Published = parseTime(r.date)
	r.post.Modified = parseTime(r.modified)
	return &r, nil
}

// Post returns a post with its meta, terms and featured image
func (s *SQL) Post(ctx context.Context, id int64) (*Post, error) {
	q := s.rebind(fmt.Sprintf("SELECT %s FROM %s WHERE ID = ?", postColumns, s.table("posts")))
	r, err := s.scanPost(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read post %d: %w", id, err)
	}
	post := &r.post

	home, err := s.stringOption(ctx, "home")
	if err != nil {
		return nil, err
	}
	post.URL = permalink(home, post, r.guid)

	if post.Meta, err = s.postMeta(ctx, id); err != nil {
		return nil, err
	}
	if post.Terms, err = s.postTerms(ctx, id, home); err != nil {
		return nil, err
	}
	if thumb := cast.ToInt64(post.Meta["_thumbnail_id"]); thumb > 0 {
		if media, err := s.media(ctx, thumb); err == nil {
			post.FeaturedImage = media
		}
	}
	return post, nil
}

func (s *SQL) postMeta(ctx context.Context, id int64) (map[string]any, error) {
	q := s.rebind(fmt.Sprintf("SELECT meta_key, meta_value FROM %s WHERE post_id = ?", s.table("postmeta")))
	rows, err := s.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read meta for post %d: %w", id, err)
	}
	defer rows.Close()

	meta := make(map[string]any)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan meta for post %d: %w", id, err)
		}
		if _, exists := meta[key]; exists {
			continue
		}
		meta[key] = DecodeOptionValue(value.String)
	}
	return meta, rows.Err()
}

const termColumns = "t.term_id, tt.taxonomy, t.name, t.slug, tt.description, tt.parent"

func (s *SQL) termJoin() string {
	return fmt.Sprintf("%s t JOIN %s tt ON tt.term_id = t.term_id", s.table("terms"), s.table("term_taxonomy"))
}

func (s *SQL) postTerms(ctx context.Context, id int64, home string) ([]Term, error) {
	q := s.rebind(fmt.Sprintf(
		"SELECT %s FROM %s JOIN %s tr ON tr.term_taxonomy_id = tt.term_taxonomy_id WHERE tr.object_id = ? ORDER BY tt.taxonomy, t.term_id",
		termColumns, s.termJoin(), s.table("term_relationships"),
	))
	rows, err := s.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read terms for post %d: %w", id, err)
	}
	defer rows.Close()

	var terms []Term
	for rows.Next() {
		var t Term
		if err := rows.Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.Description, &t.ParentID); err != nil {
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}
		t.URL = termLink(home, t)
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// Term returns a term by taxonomy and id
func (s *SQL) Term(ctx context.Context, taxonomy string, id int64) (*Term, error) {
	q := s.rebind(fmt.Sprintf("SELECT %s FROM %s WHERE t.term_id = ? AND tt.taxonomy = ?", termColumns, s.termJoin()))
	var t Term
	err := s.db.QueryRowContext(ctx, q, id, taxonomy).Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.Description, &t.ParentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("term %s/%d: %w", taxonomy, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read term %s/%d: %w", taxonomy, id, err)
	}
	home, err := s.stringOption(ctx, "home")
	if err != nil {
		return nil, err
	}
	t.URL = termLink(home, t)
	return &t, nil
}

// Author returns a user with the profile fields schema needs
func (s *SQL) Author(ctx context.Context, id int64) (*Author, error) {
	q := s.rebind(fmt.Sprintf("SELECT ID, display_name, user_url, user_nicename FROM %s WHERE ID = ?", s.table("users")))
	var a Author
	var nicename string
	err := s.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.Name, &a.URL, &nicename)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("author %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read author %d: %w", id, err)
	}

	home, err := s.stringOption(ctx, "home")
	if err != nil {
		return nil, err
	}
	profile := strings.TrimRight(home, "/") + "/author/" + nicename + "/"
	if a.URL != "" {
		a.SameAs = append(a.SameAs, a.URL)
	}
	a.URL = profile

	q = s.rebind(fmt.Sprintf("SELECT meta_value FROM %s WHERE user_id = ? AND meta_key = ?", s.table("usermeta")))
	var desc sql.NullString
	err = s.db.QueryRowContext(ctx, q, id, "description").Scan(&desc)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read author %d description: %w", id, err)
	}
	a.Description = desc.String
	return &a, nil
}

// Menus returns the menus assigned to theme locations
func (s *SQL) Menus(ctx context.Context) ([]Menu, error) {
	stylesheet, err := s.stringOption(ctx, "stylesheet")
	if err != nil {
		return nil, err
	}
	mods, err := OptionMap(ctx, s, "theme_mods_"+stylesheet)
	if err != nil {
		return nil, err
	}
	locations, _ := mods["nav_menu_locations"].(map[string]any)
	if len(locations) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(locations))
	for loc := range locations {
		names = append(names, loc)
	}
	sort.Strings(names)

	var menus []Menu
	for _, loc := range names {
		menuID := cast.ToInt64(locations[loc])
		if menuID == 0 {
			continue
		}
		term, err := s.Term(ctx, "nav_menu", menuID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items, err := s.menuItems(ctx, term.ID)
		if err != nil {
			return nil, err
		}
		menus = append(menus, Menu{ID: term.ID, Name: term.Name, Slug: term.Slug, Location: loc, Items: items})
	}
	return menus, nil
}

func (s *SQL) menuItems(ctx context.Context, menuID int64) ([]MenuItem, error) {
	q := s.rebind(fmt.Sprintf(
		"SELECT p.ID, p.post_title, p.menu_order FROM %s p JOIN %s tr ON tr.object_id = p.ID JOIN %s tt ON tt.term_taxonomy_id = tr.term_taxonomy_id "+
			"WHERE tt.term_id = ? AND p.post_type = 'nav_menu_item' AND p.post_status = 'publish' ORDER BY p.menu_order",
		s.table("posts"), s.table("term_relationships"), s.table("term_taxonomy"),
	))
	rows, err := s.db.QueryContext(ctx, q, menuID)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu %d items: %w", menuID, err)
	}
	var items []MenuItem
	for rows.Next() {
		var item MenuItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Order); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range items {
		meta, err := s.postMeta(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].ParentID = cast.ToInt64(meta["_menu_item_menu_item_parent"])
		items[i].URL = cast.ToString(meta["_menu_item_url"])
		if items[i].URL != "" && items[i].Title != "" {
			continue
		}
		if objectID := cast.ToInt64(meta["_menu_item_object_id"]); objectID > 0 && meta["_menu_item_type"] == "post_type" {
			if target, err := s.Post(ctx, objectID); err == nil {
				if items[i].URL == "" {
					items[i].URL = target.URL
				}
				if items[i].Title == "" {
					items[i].Title = target.Title
				}
			}
		}
	}
	return items, nil
}

// Comments returns approved comments in date order
func (s *SQL) Comments(ctx context.Context, postID int64) ([]Comment, error) {
	q := s.rebind(fmt.Sprintf(
		"SELECT comment_ID, comment_post_ID, comment_parent, comment_author, comment_author_url, comment_content, comment_date_gmt FROM %s "+
			"WHERE comment_post_ID = ? AND comment_approved = '1' ORDER BY comment_date_gmt",
		s.table("comments"),
	))
	rows, err := s.db.QueryContext(ctx, q, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to read comments for post %d: %w", postID, err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		var date any
		if err := rows.Scan(&c.ID, &c.PostID, &c.ParentID, &c.AuthorName, &c.AuthorURL, &c.Content, &date); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.Date = parseTime(date)
		c.Approved = true
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ActivePlugins decodes the active_plugins option
func (s *SQL) ActivePlugins(ctx context.Context) ([]string, error) {
	v, ok, err := s.Option(ctx, "active_plugins")
	if err != nil || !ok {
		return nil, err
	}
	return cast.ToStringSlice(v), nil
}

func (s *SQL) media(ctx context.Context, id int64) (*Media, error) {
	q := s.rebind(fmt.Sprintf("SELECT guid, post_excerpt FROM %s WHERE ID = ? AND post_type = 'attachment'", s.table("posts")))
	m := &Media{ID: id}
	err := s.db.QueryRowContext(ctx, q, id).Scan(&m.URL, &m.Caption)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attachment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment %d: %w", id, err)
	}

	meta, err := s.postMeta(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Alt = cast.ToString(meta["_wp_attachment_image_alt"])
	if dims, ok := meta["_wp_attachment_metadata"].(map[string]any); ok {
		m.Width = cast.ToInt(dims["width"])
		m.Height = cast.ToInt(dims["height"])
	}
	return m, nil
}

// permalink builds a pretty permalink for the post
func permalink(home string, p *Post, guid string) string {
	if home == "" || p.Slug == "" {
		return guid
	}
	base := strings.TrimRight(home, "/")
	switch p.Type {
	case "post", "page":
		return base + "/" + p.Slug + "/"
	case "attachment":
		return guid
	default:
		return base + "/" + p.Type + "/" + p.Slug + "/"
	}
}

func termLink(home string, t Term) string {
	base := strings.TrimRight(home, "/")
	switch t.Taxonomy {
	case "category":
		return base + "/category/" + t.Slug + "/"
	case "post_tag":
		return base + "/tag/" + t.Slug + "/"
	default:
		return base + "/" + t.Taxonomy + "/" + t.Slug + "/"
	}
}

var timeLayouts = []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02T15:04:05"}

// parseTime accepts the DATETIME shapes the supported drivers return
func parseTime(v any) time.Time {
	var s string
	switch val := v.(type) {
	case time.Time:
		return val.UTC()
	case []byte:
		s = string(val)
	case string:
		s = val
	default:
		return time.Time{}
	}
	if s == "" || strings.HasPrefix(s, "0000-00-00") {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

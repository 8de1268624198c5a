package content

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Fixtures is the YAML document a Memory source is loaded from
type Fixtures struct {
	Site          Site           `yaml:"site"`
	Posts         []Post         `yaml:"posts"`
	Terms         []Term         `yaml:"terms"`
	Authors       []Author       `yaml:"authors"`
	Menus         []Menu         `yaml:"menus"`
	Comments      []Comment      `yaml:"comments"`
	Options       map[string]any `yaml:"options"`
	ActivePlugins []string       `yaml:"active_plugins"`
}

// Memory is an in-memory Source, used for fixtures, previews and tests
type Memory struct {
	mu       sync.RWMutex
	site     Site
	posts    map[int64]*Post
	terms    map[string]map[int64]*Term
	authors  map[int64]*Author
	menus    []Menu
	comments map[int64][]Comment
	options  map[string]any
	plugins  []string
}

// NewMemory creates an empty in-memory source
func NewMemory(site Site) *Memory {
	return &Memory{
		site:     site,
		posts:    make(map[int64]*Post),
		terms:    make(map[string]map[int64]*Term),
		authors:  make(map[int64]*Author),
		comments: make(map[int64][]Comment),
		options:  make(map[string]any),
	}
}

// NewMemoryFromFixtures builds a source from decoded fixtures
func NewMemoryFromFixtures(f Fixtures) *Memory {
	m := NewMemory(f.Site)
	for i := range f.Posts {
		m.AddPost(f.Posts[i])
	}
	for _, t := range f.Terms {
		m.AddTerm(t)
	}
	for _, a := range f.Authors {
		m.AddAuthor(a)
	}
	for _, menu := range f.Menus {
		m.AddMenu(menu)
	}
	for _, c := range f.Comments {
		m.AddComment(c)
	}
	for k, v := range f.Options {
		m.SetOption(k, v)
	}
	m.SetActivePlugins(f.ActivePlugins...)
	return m
}

// LoadFixtures reads a YAML fixtures file into a Memory source
func LoadFixtures(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures %s: %w", path, err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes a YAML fixtures document
func ParseFixtures(data []byte) (*Memory, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return NewMemoryFromFixtures(f), nil
}

// AddPost stores a post, replacing any post with the same id
func (m *Memory) AddPost(p Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.Meta != nil {
		p.Meta = normalizeMap(p.Meta)
	}
	m.posts[p.ID] = &p
}

// AddTerm stores a term
func (m *Memory) AddTerm(t Term) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.terms[t.Taxonomy] == nil {
		m.terms[t.Taxonomy] = make(map[int64]*Term)
	}
	m.terms[t.Taxonomy][t.ID] = &t
}

// AddAuthor stores an author
func (m *Memory) AddAuthor(a Author) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authors[a.ID] = &a
}

// AddMenu stores a menu
func (m *Memory) AddMenu(menu Menu) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.menus = append(m.menus, menu)
}

// AddComment stores a comment
func (m *Memory) AddComment(c Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[c.PostID] = append(m.comments[c.PostID], c)
}

// SetOption stores an option value
func (m *Memory) SetOption(name string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if nested := normalizeMap(value); nested != nil {
		m.options[name] = nested
		return
	}
	m.options[name] = normalizeValue(value)
}

// SetActivePlugins replaces the active plugin list
func (m *Memory) SetActivePlugins(files ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plugins = append([]string(nil), files...)
}

// Site returns the site settings
func (m *Memory) Site(ctx context.Context) (*Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	site := m.site
	return &site, nil
}

// Post returns a post by id
func (m *Memory) Post(ctx context.Context, id int64) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

// Term returns a term by taxonomy and id
func (m *Memory) Term(ctx context.Context, taxonomy string, id int64) (*Term, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.terms[taxonomy][id]
	if !ok {
		return nil, fmt.Errorf("term %s/%d: %w", taxonomy, id, ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

// Author returns an author by id
func (m *Memory) Author(ctx context.Context, id int64) (*Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.authors[id]
	if !ok {
		return nil, fmt.Errorf("author %d: %w", id, ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

// Menus returns every menu
func (m *Memory) Menus(ctx context.Context) ([]Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Menu(nil), m.menus...), nil
}

// Comments returns the approved comments of a post in date order
func (m *Memory) Comments(ctx context.Context, postID int64) ([]Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Comment
	for _, c := range m.comments[postID] {
		if c.Approved {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Option returns an option value
func (m *Memory) Option(ctx context.Context, name string) (any, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.options[name]
	return v, ok, nil
}

// ActivePlugins returns the active plugin files
func (m *Memory) ActivePlugins(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.plugins...), nil
}

package schema

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wpschema/wpschema/internal/hooks"
)

// Graph is an ordered collection of pieces keyed by @id. Anonymous pieces
// are kept in insertion order alongside identified ones.
type Graph struct {
	order []*Piece
	byID  map[string]int
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{byID: make(map[string]int)}
}

// GraphFromMaps builds a graph from raw pieces, skipping any without @type
func GraphFromMaps(raw []map[string]any) *Graph {
	g := NewGraph()
	for _, m := range raw {
		if p, ok := PieceFromMap(m); ok {
			g.Add(p)
		}
	}
	return g
}

// Add inserts a piece. A piece whose id is already present replaces the
// existing one in place.
func (g *Graph) Add(p *Piece) {
	if p == nil {
		return
	}
	if p.ID != "" {
		if idx, ok := g.byID[p.ID]; ok {
			g.order[idx] = p
			return
		}
		g.byID[p.ID] = len(g.order)
	}
	g.order = append(g.order, p)
}

// Remove deletes the piece with the given id
func (g *Graph) Remove(id string) bool {
	idx, ok := g.byID[id]
	if !ok {
		return false
	}
	g.order = append(g.order[:idx], g.order[idx+1:]...)
	g.reindex()
	return true
}

// Get returns the piece with the given id
func (g *Graph) Get(id string) (*Piece, bool) {
	idx, ok := g.byID[id]
	if !ok {
		return nil, false
	}
	return g.order[idx], true
}

// Has reports whether a piece with the given id exists
func (g *Graph) Has(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Len returns the number of pieces
func (g *Graph) Len() int {
	return len(g.order)
}

// Pieces returns the pieces in order
func (g *Graph) Pieces() []*Piece {
	return append([]*Piece(nil), g.order...)
}

// PiecesByType returns every piece declaring the given type
func (g *Graph) PiecesByType(typ string) []*Piece {
	var out []*Piece
	for _, p := range g.order {
		if p.IsA(typ) {
			out = append(out, p)
		}
	}
	return out
}

// ValidateReferences returns one message per reference whose target is not
// in the graph
func (g *Graph) ValidateReferences() []string {
	report := ValidateReferences(g.rawPieces())
	errs := make([]string, 0, len(report.Broken))
	for _, b := range report.Broken {
		errs = append(errs, b.String())
	}
	return errs
}

// ToArray serializes the graph, injecting @context into every piece
func (g *Graph) ToArray() []map[string]any {
	out := make([]map[string]any, 0, len(g.order))
	for _, p := range g.order {
		m := p.ToMap()
		m[KeyContext] = Context
		out = append(out, m)
	}
	return out
}

// ToJSON encodes ToArray
func (g *Graph) ToJSON() ([]byte, error) {
	b, err := json.Marshal(g.ToArray())
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph: %w", err)
	}
	return b, nil
}

// ApplyFilters runs the graph extension points in sequence: the whole
// piece list, then every piece by its lower-cased type, then the final
// array. It returns the filtered array and rebuilds the graph from it.
func (g *Graph) ApplyFilters(ctx context.Context, r *hooks.Registry, args ...any) []map[string]any {
	pieces := hooks.ApplyFilters(r, ctx, hooks.GraphPieces, g.rawPieces(), args...)

	filtered := make([]map[string]any, 0, len(pieces))
	for _, p := range pieces {
		typ := TypeOf(p)
		if typ == "" {
			continue
		}
		p = hooks.ApplyFilters(r, ctx, hooks.TypeData(typ), p, args...)
		if TypeOf(p) == "" {
			continue
		}
		filtered = append(filtered, p)
	}

	rebuilt := GraphFromMaps(filtered)
	out := hooks.ApplyFilters(r, ctx, hooks.GraphOutput, rebuilt.ToArray(), args...)

	*g = *GraphFromMaps(out)
	return out
}

func (g *Graph) rawPieces() []map[string]any {
	out := make([]map[string]any, 0, len(g.order))
	for _, p := range g.order {
		out = append(out, p.ToMap())
	}
	return out
}

func (g *Graph) reindex() {
	g.byID = make(map[string]int, len(g.order))
	for i, p := range g.order {
		if p.ID != "" {
			g.byID[p.ID] = i
		}
	}
}

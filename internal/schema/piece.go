// Package schema holds the schema.org piece model and the logic that turns
// independently contributed pieces into one consistent JSON-LD graph.
package schema

import (
	"encoding/json"
	"strings"
)

// Context is the JSON-LD context injected into every emitted piece
const Context = "https://schema.org"

// Reserved JSON-LD keys
const (
	KeyContext = "@context"
	KeyType    = "@type"
	KeyID      = "@id"
)

// Piece is a single schema.org entity
type Piece struct {
	Type       string
	ID         string
	Properties map[string]any

	// types keeps every listed type when @type was an array
	types []string
}

// NewPiece creates a piece of the given type and id. The id may be empty
// for anonymous pieces.
func NewPiece(typ, id string) *Piece {
	return &Piece{
		Type:       typ,
		ID:         id,
		Properties: make(map[string]any),
	}
}

// PieceFromMap converts a raw piece. It returns false when the map has no
// usable @type.
func PieceFromMap(raw map[string]any) (*Piece, bool) {
	types := TypesOf(raw)
	if len(types) == 0 {
		return nil, false
	}

	p := NewPiece(types[0], IDOf(raw))
	if len(types) > 1 {
		p.types = types
	}
	for k, v := range raw {
		switch k {
		case KeyType, KeyID, KeyContext:
			continue
		}
		p.Properties[k] = v
	}
	return p, true
}

// Set stores a property and returns the piece for chaining
func (p *Piece) Set(key string, value any) *Piece {
	if p.Properties == nil {
		p.Properties = make(map[string]any)
	}
	p.Properties[key] = value
	return p
}

// Get returns a property value
func (p *Piece) Get(key string) (any, bool) {
	v, ok := p.Properties[key]
	return v, ok
}

// Types returns every type the piece declares, primary type first
func (p *Piece) Types() []string {
	if len(p.types) > 0 {
		return append([]string(nil), p.types...)
	}
	return []string{p.Type}
}

// IsA reports whether the piece declares the given type
func (p *Piece) IsA(typ string) bool {
	for _, t := range p.Types() {
		if t == typ {
			return true
		}
	}
	return false
}

// Ref returns a reference object pointing at this piece
func (p *Piece) Ref() map[string]any {
	return Ref(p.ID)
}

// ToMap returns the raw representation without @context
func (p *Piece) ToMap() map[string]any {
	out := make(map[string]any, len(p.Properties)+2)
	for k, v := range p.Properties {
		out[k] = v
	}
	if len(p.types) > 1 {
		types := make([]any, len(p.types))
		for i, t := range p.types {
			types[i] = t
		}
		out[KeyType] = types
	} else {
		out[KeyType] = p.Type
	}
	if p.ID != "" {
		out[KeyID] = p.ID
	}
	return out
}

// MarshalJSON encodes the piece with its @context
func (p *Piece) MarshalJSON() ([]byte, error) {
	out := p.ToMap()
	out[KeyContext] = Context
	return json.Marshal(out)
}

// Ref builds a bare {"@id": id} reference
func Ref(id string) map[string]any {
	return map[string]any{KeyID: id}
}

// TypesOf returns the declared types of a raw piece. @type may be a string
// or a list of strings; empty and non-string entries are ignored.
func TypesOf(raw map[string]any) []string {
	switch t := raw[KeyType].(type) {
	case string:
		if t = strings.TrimSpace(t); t != "" {
			return []string{t}
		}
	case []string:
		return nonEmpty(t)
	case []any:
		var out []string
		for _, v := range t {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}

// TypeOf returns the primary type of a raw piece, or "" when it has none
func TypeOf(raw map[string]any) string {
	types := TypesOf(raw)
	if len(types) == 0 {
		return ""
	}
	return types[0]
}

// IDOf returns the @id of a raw piece, or "" when absent
func IDOf(raw map[string]any) string {
	id, _ := raw[KeyID].(string)
	return id
}

// HasType reports whether a raw piece declares any of the given types
func HasType(raw map[string]any, types ...string) bool {
	for _, have := range TypesOf(raw) {
		for _, want := range types {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Clone copies the top level of a raw piece. Nested values are shared.
func Clone(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	return out
}

// DeepClone copies a raw piece including nested maps and lists
func DeepClone(raw map[string]any) map[string]any {
	if raw == nil {
		return nil
	}
	return deepCopyValue(raw).(map[string]any)
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	default:
		return v
	}
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package schema

import (
	"fmt"
	"sort"
	"strings"
)

// identifiedTypes get a synthesized @id when a provider left it out
var identifiedTypes = map[string]bool{
	"Organization":  true,
	"LocalBusiness": true,
	"WebSite":       true,
	"Person":        true,
	"Place":         true,
}

// Assembler normalizes, deduplicates and orders raw pieces.
//
// Duplicate @id values are resolved first-write-wins: later pieces are
// dropped without merging. Field merging lives in MergeAndConsolidate.
type Assembler struct {
	siteURL string
}

// NewAssembler creates an assembler that roots synthesized ids at siteURL
func NewAssembler(siteURL string) *Assembler {
	return &Assembler{siteURL: siteURL}
}

// Assemble returns the normalized, deduplicated and ordered pieces. Pieces
// without @type are dropped. The input is not modified.
func (a *Assembler) Assemble(pieces []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(pieces))
	seen := make(map[string]bool, len(pieces))

	for _, raw := range pieces {
		if raw == nil {
			continue
		}
		typ := TypeOf(raw)
		if typ == "" {
			continue
		}

		piece := a.normalize(raw, typ)

		if id := IDOf(piece); id != "" {
			if seen[id] {
				continue
			}
			seen[id] = true
		}
		out = append(out, piece)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return Priority(TypeOf(out[i])) < Priority(TypeOf(out[j]))
	})

	return out
}

// normalize fills in @context and, for allow-listed types, @id
func (a *Assembler) normalize(raw map[string]any, typ string) map[string]any {
	piece := Clone(raw)
	if _, ok := piece[KeyContext]; !ok {
		piece[KeyContext] = Context
	}
	if IDOf(piece) == "" {
		delete(piece, KeyID)
		if identifiedTypes[typ] && a.siteURL != "" {
			piece[KeyID] = CanonicalID(a.siteURL, strings.ToLower(typ))
		}
	}
	return piece
}

// CanonicalID joins the site root and a fragment: https://site.test/#organization
func CanonicalID(siteURL, fragment string) string {
	return RootURL(siteURL) + "#" + strings.TrimPrefix(fragment, "#")
}

// RootURL returns siteURL with exactly one trailing slash
func RootURL(siteURL string) string {
	return strings.TrimRight(siteURL, "/") + "/"
}

// ReferenceReport is the outcome of a reference check
type ReferenceReport struct {
	Valid           bool              `json:"valid"`
	TotalReferences int               `json:"total_references"`
	Broken          []BrokenReference `json:"broken_references"`
}

// BrokenReference is a reference whose target id is not in the graph
type BrokenReference struct {
	SourceID   string `json:"source_id,omitempty"`
	SourceType string `json:"source_type"`
	Path       string `json:"path"`
	TargetID   string `json:"target_id"`
}

// String formats the broken reference for logs and CLI output
func (b BrokenReference) String() string {
	source := b.SourceID
	if source == "" {
		source = "anonymous " + b.SourceType
	}
	return fmt.Sprintf("%s references missing @id %q at %s", source, b.TargetID, b.Path)
}

// ValidateReferences reports every nested @id that does not match a
// top-level piece. It never fails.
func ValidateReferences(pieces []map[string]any) ReferenceReport {
	known := make(map[string]bool, len(pieces))
	for _, p := range pieces {
		if id := IDOf(p); id != "" {
			known[id] = true
		}
	}

	report := ReferenceReport{Broken: []BrokenReference{}}
	for _, p := range pieces {
		keys := sortedKeys(p)
		for _, k := range keys {
			if k == KeyID || k == KeyType || k == KeyContext {
				continue
			}
			walkReferences(p[k], k, func(path, target string) {
				report.TotalReferences++
				if !known[target] {
					report.Broken = append(report.Broken, BrokenReference{
						SourceID:   IDOf(p),
						SourceType: TypeOf(p),
						Path:       path,
						TargetID:   target,
					})
				}
			})
		}
	}
	report.Valid = len(report.Broken) == 0
	return report
}

// walkReferences calls fn for every map carrying an @id below v
func walkReferences(v any, path string, fn func(path, target string)) {
	switch val := v.(type) {
	case map[string]any:
		if id, ok := val[KeyID].(string); ok && id != "" {
			fn(path, id)
		}
		for _, k := range sortedKeys(val) {
			if k == KeyID {
				continue
			}
			walkReferences(val[k], path+"."+k, fn)
		}
	case []any:
		for i, item := range val {
			walkReferences(item, fmt.Sprintf("%s[%d]", path, i), fn)
		}
	case []map[string]any:
		for i, item := range val {
			walkReferences(item, fmt.Sprintf("%s[%d]", path, i), fn)
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

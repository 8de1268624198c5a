// Package generators turns flat WordPress-derived data into schema.org
// pieces. Generators are pure: the same input map always produces the
// same piece, and empty values are omitted.
//
// Input maps use schema.org property names. "@id" and "@type" override
// the generated identity; a few generators accept convenience keys that
// are documented on the generator.
package generators

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/wpschema/wpschema/internal/schema"
)

// Func builds a piece from input data
type Func func(data map[string]any) map[string]any

var registry = map[string]Func{
	"Organization":          Organization,
	"LocalBusiness":         LocalBusiness,
	"WebSite":               WebSite,
	"WebPage":               WebPage,
	"CollectionPage":        typed(WebPage, "CollectionPage"),
	"SearchResultsPage":     typed(WebPage, "SearchResultsPage"),
	"ProfilePage":           typed(WebPage, "ProfilePage"),
	"Article":               Article,
	"BlogPosting":           typed(Article, "BlogPosting"),
	"NewsArticle":           typed(Article, "NewsArticle"),
	"Person":                Person,
	"ImageObject":           ImageObject,
	"SiteNavigationElement": Navigation,
	"BreadcrumbList":        Breadcrumbs,
	"Product":               Product,
	"Offer":                 Offer,
	"Event":                 Event,
	"Place":                 Place,
	"PostalAddress":         PostalAddress,
	"Recipe":                Recipe,
	"Comment":               Comment,
}

// For returns the generator for a schema type
func For(typ string) (Func, bool) {
	fn, ok := registry[typ]
	return fn, ok
}

// Generate runs the generator registered for typ
func Generate(typ string, data map[string]any) (map[string]any, error) {
	fn, ok := For(typ)
	if !ok {
		return nil, fmt.Errorf("no generator for type %s", typ)
	}
	return fn(data), nil
}

// Types lists the types that have a generator
func Types() []string {
	out := make([]string, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// typed forces a default @type onto another generator
func typed(fn Func, typ string) Func {
	return func(data map[string]any) map[string]any {
		if _, ok := data[schema.KeyType]; !ok {
			data = withDefault(data, schema.KeyType, typ)
		}
		return fn(data)
	}
}

func withDefault(data map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out[key] = value
	return out
}

// piece starts a piece with the requested or default type
func piece(data map[string]any, defaultType string) map[string]any {
	out := map[string]any{schema.KeyType: defaultType}
	if t, ok := data[schema.KeyType]; ok && !isEmpty(t) {
		out[schema.KeyType] = t
	}
	if id := cast.ToString(data[schema.KeyID]); id != "" {
		out[schema.KeyID] = id
	}
	return out
}

// copyFields copies the named properties, coercing scalars to strings
func copyFields(out, data map[string]any, keys ...string) {
	for _, k := range keys {
		setString(out, k, data[k])
	}
}

func setString(out map[string]any, key string, v any) {
	if s := strings.TrimSpace(cast.ToString(v)); s != "" {
		out[key] = s
	}
}

func set(out map[string]any, key string, v any) {
	if !isEmpty(v) {
		out[key] = v
	}
}

func setInt(out map[string]any, key string, v any) {
	if n := cast.ToInt(v); n > 0 {
		out[key] = n
	}
}

func setDate(out map[string]any, key string, v any) {
	if d := date(v); d != "" {
		out[key] = d
	}
}

// setRef stores {"@id": id} for string ids and passes maps through
func setRef(out map[string]any, key string, v any) {
	switch val := v.(type) {
	case string:
		if val != "" {
			out[key] = schema.Ref(val)
		}
	case map[string]any:
		if len(val) > 0 {
			out[key] = val
		}
	}
}

func setStrings(out map[string]any, key string, v any) {
	if list := stringList(v); len(list) > 0 {
		out[key] = list
	}
}

func stringList(v any) []string {
	if v == nil {
		return nil
	}
	var raw []string
	if s, ok := v.(string); ok {
		raw = strings.Split(s, ",")
	} else {
		raw = cast.ToStringSlice(v)
	}
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool)
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func mapList(v any) []map[string]any {
	switch val := v.(type) {
	case []map[string]any:
		return val
	case []any:
		out := make([]map[string]any, 0, len(val))
		for _, item := range val {
			if m, err := cast.ToStringMapE(item); err == nil {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// date renders times as ISO 8601 and passes strings through
func date(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(time.RFC3339)
	case string:
		if t, err := cast.ToTimeE(val); err == nil && !t.IsZero() {
			return t.Format(time.RFC3339)
		}
		return val
	}
	if t, err := cast.ToTimeE(v); err == nil && !t.IsZero() {
		return t.Format(time.RFC3339)
	}
	return ""
}

// Duration renders minutes as an ISO 8601 duration such as PT1H30M
func Duration(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	h, m := minutes/60, minutes%60
	var b strings.Builder
	b.WriteString("PT")
	if h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	return b.String()
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case []map[string]any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	return false
}

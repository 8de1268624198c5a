package schema

import (
	"encoding/json"
	"reflect"
)

// organizationTypes are merged into a single entity by MergeAndConsolidate
var organizationTypes = []string{
	"Organization",
	"LocalBusiness",
	"HomeAndConstructionBusiness",
	"FoodEstablishment",
}

// singletonTypes appear at most once per page
var singletonTypes = map[string]bool{
	"WebSite":               true,
	"WebPage":               true,
	"SiteNavigationElement": true,
	"BreadcrumbList":        true,
}

// ConsolidateOptions tunes MergeAndConsolidate
type ConsolidateOptions struct {
	// SiteName is the generic default a more specific value may replace
	SiteName string
}

// IsOrganization reports whether the raw piece is organization-like
func IsOrganization(raw map[string]any) bool {
	return HasType(raw, organizationTypes...)
}

// MergeAndConsolidate folds every organization-like piece into one and
// collapses singleton types, merging fields from later duplicates. Other
// pieces pass through untouched, duplicates included.
func MergeAndConsolidate(schemas []map[string]any, opts ConsolidateOptions) []map[string]any {
	var org map[string]any
	rest := make([]map[string]any, 0, len(schemas))

	for _, s := range schemas {
		if s == nil {
			continue
		}
		if IsOrganization(s) {
			if org == nil {
				org = DeepClone(s)
			} else {
				mergeOrganization(org, s, opts)
			}
			continue
		}
		rest = append(rest, s)
	}

	out := make([]map[string]any, 0, len(rest)+1)
	if org != nil {
		out = append(out, org)
	}

	singletonAt := make(map[string]int)
	for _, s := range rest {
		typ := TypeOf(s)
		if !singletonTypes[typ] {
			out = append(out, s)
			continue
		}
		if idx, ok := singletonAt[typ]; ok {
			mergeSingleton(out[idx], s)
			continue
		}
		singletonAt[typ] = len(out)
		out = append(out, DeepClone(s))
	}

	return out
}

func mergeOrganization(dst, src map[string]any, opts ConsolidateOptions) {
	if TypeOf(dst) == "Organization" {
		if t := TypeOf(src); t != "" && t != "Organization" {
			dst[KeyType] = src[KeyType]
		}
	}

	for k, v := range src {
		switch k {
		case KeyType, KeyContext:
			continue
		case KeyID:
			if IDOf(dst) == "" && v != "" {
				dst[KeyID] = v
			}
			continue
		}

		if isEmpty(v) {
			continue
		}
		existing, ok := dst[k]
		if !ok || isEmpty(existing) {
			dst[k] = deepCopyValue(v)
			continue
		}

		switch {
		case isList(existing) || isList(v):
			dst[k] = union(existing, v)
		case isMap(existing) && isMap(v):
			if fieldCount(v) > fieldCount(existing) {
				dst[k] = deepCopyValue(v)
			}
		case isMap(existing) || isMap(v):
			if isMap(v) {
				dst[k] = deepCopyValue(v)
			}
		default:
			if opts.SiteName != "" && existing == opts.SiteName && v != opts.SiteName {
				dst[k] = v
			}
		}
	}
}

func mergeSingleton(dst, src map[string]any) {
	for k, v := range src {
		if k == KeyType || k == KeyContext || k == KeyID {
			continue
		}
		if isEmpty(v) {
			continue
		}
		existing, ok := dst[k]
		if !ok || isEmpty(existing) {
			dst[k] = deepCopyValue(v)
			continue
		}
		if isList(existing) || isList(v) {
			dst[k] = union(existing, v)
		}
	}
	if IDOf(dst) == "" && IDOf(src) != "" {
		dst[KeyID] = src[KeyID]
	}
}

// union appends the elements of b missing from a. Scalars are promoted to
// single-element lists.
func union(a, b any) []any {
	out := toList(a)
	seen := make(map[string]bool, len(out))
	for _, item := range out {
		seen[fingerprint(item)] = true
	}
	for _, item := range toList(b) {
		fp := fingerprint(item)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, deepCopyValue(item))
	}
	return out
}

func toList(v any) []any {
	switch val := v.(type) {
	case nil:
		return []any{}
	case []any:
		return append([]any(nil), val...)
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, m := range val {
			out[i] = m
		}
		return out
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice {
			out := make([]any, rv.Len())
			for i := range out {
				out[i] = rv.Index(i).Interface()
			}
			return out
		}
		return []any{v}
	}
}

func fingerprint(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return reflect.TypeOf(v).String()
	}
	return string(b)
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	switch v.(type) {
	case string, []byte:
		return false
	}
	return reflect.ValueOf(v).Kind() == reflect.Slice
}

func isMap(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func fieldCount(v any) int {
	m, _ := v.(map[string]any)
	n := 0
	for _, item := range m {
		if !isEmpty(item) {
			n++
		}
	}
	return n
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case map[string]any:
		return len(val) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	}
	return false
}

package generators

import (
	"github.com/spf13/cast"
)

// WebSite builds the WebSite piece. "searchUrl" is a URL template with a
// {search_term_string} placeholder; "publisher" an @id or map.
func WebSite(data map[string]any) map[string]any {
	out := piece(data, "WebSite")
	copyFields(out, data, "url", "name", "alternateName", "description", "inLanguage")
	setRef(out, "publisher", data["publisher"])
	if tpl := cast.ToString(data["searchUrl"]); tpl != "" {
		out["potentialAction"] = []any{map[string]any{
			"@type": "SearchAction",
			"target": map[string]any{
				"@type":       "EntryPoint",
				"urlTemplate": tpl,
			},
			"query-input": "required name=search_term_string",
		}}
	}
	return out
}

// WebPage builds a WebPage or one of its subtypes
func WebPage(data map[string]any) map[string]any {
	out := piece(data, "WebPage")
	copyFields(out, data, "url", "name", "description", "inLanguage")
	setRef(out, "isPartOf", data["isPartOf"])
	setRef(out, "about", data["about"])
	setRef(out, "breadcrumb", data["breadcrumb"])
	setRef(out, "primaryImageOfPage", data["primaryImageOfPage"])
	setRef(out, "mainEntity", data["mainEntity"])
	setDate(out, "datePublished", data["datePublished"])
	setDate(out, "dateModified", data["dateModified"])
	if url := cast.ToString(data["url"]); url != "" {
		out["potentialAction"] = []any{map[string]any{"@type": "ReadAction", "target": []any{url}}}
	}
	return out
}

// Crumb is one breadcrumb trail entry
type Crumb struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Breadcrumbs builds a BreadcrumbList. "items" is a []Crumb or a list of
// {name, url} maps. Entries without a name are skipped; the last entry
// is emitted without an item URL.
func Breadcrumbs(data map[string]any) map[string]any {
	out := piece(data, "BreadcrumbList")

	var crumbs []Crumb
	switch items := data["items"].(type) {
	case []Crumb:
		crumbs = items
	default:
		for _, m := range mapList(items) {
			crumbs = append(crumbs, Crumb{Name: cast.ToString(m["name"]), URL: cast.ToString(m["url"])})
		}
	}

	var elements []any
	for _, c := range crumbs {
		if c.Name == "" {
			continue
		}
		elements = append(elements, map[string]any{
			"@type":    "ListItem",
			"position": len(elements) + 1,
			"name":     c.Name,
			"item":     c.URL,
		})
	}
	if n := len(elements); n > 0 {
		last := elements[n-1].(map[string]any)
		delete(last, "item")
		for _, e := range elements[:n-1] {
			if m := e.(map[string]any); m["item"] == "" {
				delete(m, "item")
			}
		}
	}
	set(out, "itemListElement", elements)
	return out
}

// Navigation builds a SiteNavigationElement from "items", a list of
// {name, url} maps.
func Navigation(data map[string]any) map[string]any {
	out := piece(data, "SiteNavigationElement")
	copyFields(out, data, "name", "url")

	var parts []any
	for _, item := range mapList(data["items"]) {
		name := cast.ToString(item["name"])
		url := cast.ToString(item["url"])
		if name == "" || url == "" {
			continue
		}
		parts = append(parts, map[string]any{"@type": "SiteNavigationElement", "name": name, "url": url})
	}
	set(out, "hasPart", parts)
	return out
}

package generators

import (
	"unicode/utf8"

	"github.com/spf13/cast"
)

// maxHeadline is the headline length search engines display
const maxHeadline = 110

// Article builds an Article (or subtype). "keywords" and "articleSection"
// accept lists or comma-separated strings; "image" an @id, URL or map.
func Article(data map[string]any) map[string]any {
	out := piece(data, "Article")
	if h := cast.ToString(first(data, "headline", "name")); h != "" {
		out["headline"] = truncate(h, maxHeadline)
	}
	copyFields(out, data, "description", "url", "inLanguage")
	setDate(out, "datePublished", data["datePublished"])
	setDate(out, "dateModified", first(data, "dateModified", "datePublished"))
	setRef(out, "author", data["author"])
	setRef(out, "publisher", data["publisher"])
	setRef(out, "mainEntityOfPage", data["mainEntityOfPage"])
	setRef(out, "isPartOf", data["isPartOf"])
	if isFragmentID(data["image"]) {
		setRef(out, "image", data["image"])
	} else {
		set(out, "image", image(data["image"]))
	}
	setInt(out, "wordCount", data["wordCount"])
	setInt(out, "commentCount", data["commentCount"])
	setStrings(out, "articleSection", data["articleSection"])
	if kw := stringList(data["keywords"]); len(kw) > 0 {
		out["keywords"] = kw
	}
	if comments, ok := data["comment"].([]any); ok && len(comments) > 0 {
		out["comment"] = comments
	}
	return out
}

// Person builds a Person. "image" may be an avatar URL.
func Person(data map[string]any) map[string]any {
	out := piece(data, "Person")
	copyFields(out, data, "name", "url", "description", "jobTitle", "email")
	set(out, "image", image(data["image"]))
	setStrings(out, "sameAs", data["sameAs"])
	setRef(out, "worksFor", data["worksFor"])
	return out
}

// ImageObject builds an ImageObject; contentUrl defaults to url
func ImageObject(data map[string]any) map[string]any {
	out := piece(data, "ImageObject")
	copyFields(out, data, "url", "contentUrl", "caption", "inLanguage")
	if _, ok := out["contentUrl"]; !ok {
		if url, ok := out["url"]; ok {
			out["contentUrl"] = url
		}
	}
	setInt(out, "width", data["width"])
	setInt(out, "height", data["height"])
	return out
}

// Comment builds a Comment. "author" is a {name, url} map or name.
func Comment(data map[string]any) map[string]any {
	out := piece(data, "Comment")
	copyFields(out, data, "text", "url")
	setDate(out, "dateCreated", data["dateCreated"])
	setRef(out, "about", data["about"])
	setRef(out, "parentItem", data["parentItem"])

	author := map[string]any{"@type": "Person"}
	switch a := data["author"].(type) {
	case string:
		setString(author, "name", a)
	case map[string]any:
		copyFields(author, a, "name", "url")
	}
	if len(author) > 1 {
		out["author"] = author
	}
	return out
}

// isFragmentID reports whether v looks like a graph @id (an absolute URL
// carrying a #fragment)
func isFragmentID(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '#' {
			return i < len(s)-1
		}
		if s[i] == '/' {
			return false
		}
	}
	return false
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}

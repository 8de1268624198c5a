package schema

import (
	"fmt"
	"net/url"
	"strings"
)

// Warning is a non-fatal problem found in an emitted piece
type Warning struct {
	ID       string `json:"id,omitempty"`
	Type     string `json:"type"`
	Property string `json:"property"`
	Message  string `json:"message"`
}

func (w Warning) String() string {
	subject := w.ID
	if subject == "" {
		subject = w.Type
	}
	return fmt.Sprintf("%s: %s %s", subject, w.Property, w.Message)
}

var requiredProperties = map[string][]string{
	"Article":        {"headline"},
	"BlogPosting":    {"headline"},
	"NewsArticle":    {"headline"},
	"Product":        {"name"},
	"Event":          {"name", "startDate"},
	"Recipe":         {"name"},
	"Organization":   {"name"},
	"LocalBusiness":  {"name"},
	"Person":         {"name"},
	"BreadcrumbList": {"itemListElement"},
	"WebSite":        {"url"},
	"WebPage":        {"url"},
	"ImageObject":    {"url"},
}

var urlProperties = []string{"url", "logo", "image", "contentUrl"}

// Validate checks required properties and absolute URLs. It only reports;
// callers decide whether to log.
func Validate(pieces []map[string]any) []Warning {
	var warnings []Warning
	for _, p := range pieces {
		typ := TypeOf(p)
		id := IDOf(p)

		for _, prop := range requiredProperties[typ] {
			if isEmpty(p[prop]) {
				warnings = append(warnings, Warning{ID: id, Type: typ, Property: prop, Message: "is required"})
			}
		}

		if id != "" && !isAbsoluteURL(id) {
			warnings = append(warnings, Warning{ID: id, Type: typ, Property: KeyID, Message: "should be an absolute URL"})
		}

		for _, prop := range urlProperties {
			s, ok := p[prop].(string)
			if !ok || s == "" {
				continue
			}
			if !isAbsoluteURL(s) {
				warnings = append(warnings, Warning{ID: id, Type: typ, Property: prop, Message: "should be an absolute URL"})
			}
		}
	}
	return warnings
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && !strings.HasPrefix(u.Host, ".") && u.Host != ""
}

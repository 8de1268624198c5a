package schema

// DefaultPriority is the order slot for types missing from the table
const DefaultPriority = 99

var typePriority = map[string]int{
	"Organization":          1,
	"LocalBusiness":         1,
	"Restaurant":            1,
	"Corporation":           1,
	"WebSite":               2,
	"WebPage":               3,
	"Article":               4,
	"Product":               4,
	"Event":                 4,
	"Navigation":            5,
	"SiteNavigationElement": 5,
	"Breadcrumb":            5,
	"BreadcrumbList":        5,
}

// Priority returns the output order slot of a type. Lower sorts first.
func Priority(typ string) int {
	if p, ok := typePriority[typ]; ok {
		return p
	}
	return DefaultPriority
}

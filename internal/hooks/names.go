package hooks

import (
	"sort"
	"strings"
)

// Extension point names
const (
	RegisterProviders     = "wp_schema_register_providers"
	BeforeGenerate        = "wp_schema_before_generate"
	AfterGenerate         = "wp_schema_after_generate"
	Enabled               = "wp_schema_enabled"
	ProviderData          = "wp_schema_provider_data"
	ProviderError         = "wp_schema_provider_error"
	ContextSchemas        = "wp_schema_context_schemas"
	ConsolidatedSchemas   = "wp_schema_consolidated_schemas"
	GraphPieces           = "wp_schema_graph_pieces"
	GraphOutput           = "wp_schema_graph_output"
	FinalSchema           = "wp_schema_final_schema"
	CacheKey              = "wp_schema_cache_key"
	CacheTTL              = "wp_schema_cache_ttl"
	OutputMode            = "wp_schema_output_mode"
	ScriptTag             = "wp_schema_script_tag"
	OrganizationData      = "wp_schema_organization_data"
	WebsiteSearchURL      = "wp_schema_website_search_url"
	BreadcrumbItems       = "wp_schema_breadcrumb_items"
	NavigationMenus       = "wp_schema_navigation_menus"
	IntegrationEnabled    = "wp_schema_integration_enabled"
	ValidationWarnings    = "wp_schema_validation_warnings"
	typeDataPrefix        = "wp_schema_"
	typeDataSuffix        = "_data"
	typeDataDocumentation = "wp_schema_{type}_data"
)

// TypeData returns the per-type piece filter name, e.g. wp_schema_article_data
func TypeData(schemaType string) string {
	return typeDataPrefix + strings.ToLower(schemaType) + typeDataSuffix
}

// Kind distinguishes filters from actions
type Kind string

const (
	KindFilter Kind = "filter"
	KindAction Kind = "action"
)

// Doc describes one extension point
type Doc struct {
	Name        string   `json:"name"`
	Kind        Kind     `json:"kind"`
	Description string   `json:"description"`
	Value       string   `json:"value,omitempty"`
	Args        []string `json:"args,omitempty"`
}

var documentation = []Doc{
	{RegisterProviders, KindAction, "Register additional providers before generation", "", []string{"*providers.Registry"}},
	{BeforeGenerate, KindAction, "Fires before pieces are collected", "", []string{"*page.Context"}},
	{AfterGenerate, KindAction, "Fires with the final schema list", "", []string{"[]map[string]any", "*page.Context"}},
	{Enabled, KindFilter, "Turn schema output off for a page", "bool", []string{"*page.Context"}},
	{ProviderData, KindFilter, "Rewrite the pieces contributed by one provider", "[]map[string]any", []string{"provider name string", "*page.Context"}},
	{ProviderError, KindAction, "Fires when a provider fails or panics", "", []string{"provider name string", "error", "*page.Context"}},
	{ContextSchemas, KindFilter, "Rewrite every collected piece before consolidation", "[]map[string]any", []string{"*page.Context"}},
	{ConsolidatedSchemas, KindFilter, "Rewrite pieces after organizations and singletons are merged", "[]map[string]any", []string{"*page.Context"}},
	{GraphPieces, KindFilter, "Rewrite the assembled piece list", "[]map[string]any", []string{"*page.Context"}},
	{typeDataDocumentation, KindFilter, "Rewrite a single piece of the given lower-cased type; drop it by removing @type", "map[string]any", []string{"*page.Context"}},
	{GraphOutput, KindFilter, "Rewrite the serialized graph array", "[]map[string]any", []string{"*page.Context"}},
	{FinalSchema, KindFilter, "Rewrite the schema list just before output", "[]map[string]any", []string{"*page.Context"}},
	{CacheKey, KindFilter, "Rewrite the provider output cache key", "string", []string{"provider name string", "*page.Context"}},
	{CacheTTL, KindFilter, "Rewrite the provider output cache TTL; zero disables caching", "time.Duration", []string{"provider name string", "*page.Context"}},
	{OutputMode, KindFilter, "Choose separate script tags or a single @graph tag", "string", []string{"*page.Context"}},
	{ScriptTag, KindFilter, "Rewrite one rendered script tag", "string", []string{"map[string]any", "*page.Context"}},
	{OrganizationData, KindFilter, "Rewrite the organization field data before generation", "map[string]any", []string{"*page.Context"}},
	{WebsiteSearchURL, KindFilter, "Rewrite the SearchAction URL template", "string", []string{"*page.Context"}},
	{BreadcrumbItems, KindFilter, "Rewrite breadcrumb trail items", "[]generators.Crumb", []string{"*page.Context"}},
	{NavigationMenus, KindFilter, "Choose the menu locations exposed as navigation", "[]string", []string{"*page.Context"}},
	{IntegrationEnabled, KindFilter, "Final say on whether an integration registers", "bool", []string{"integration name string"}},
	{ValidationWarnings, KindAction, "Fires with schema validation warnings", "", []string{"[]schema.Warning", "*page.Context"}},
}

// Documentation returns every documented extension point sorted by name
func Documentation() []Doc {
	out := append([]Doc(nil), documentation...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

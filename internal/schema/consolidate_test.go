package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeAndConsolidate_TwoOrganizationsMerge(t *testing.T) {
	in := []map[string]any{
		{"@type": "Organization", "@id": "https://site.test/#organization", "name": "Acme", "telephone": "+1-555-0100"},
		{"@type": "Organization", "@id": "https://site.test/#organization", "name": "Acme Inc", "sameAs": []any{"https://x.test/acme"}},
	}

	out := MergeAndConsolidate(in, ConsolidateOptions{})
	require.Len(t, out, 1)
	org := out[0]
	assert.Equal(t, "Acme", org["name"])
	assert.Equal(t, "+1-555-0100", org["telephone"])
	assert.Equal(t, []any{"https://x.test/acme"}, org["sameAs"])
}

func TestMergeAndConsolidate_SpecificNameReplacesSiteName(t *testing.T) {
	in := []map[string]any{
		{"@type": "Organization", "name": "My Blog"},
		{"@type": "LocalBusiness", "name": "Joe's Plumbing", "@id": "https://site.test/#organization"},
	}

	out := MergeAndConsolidate(in, ConsolidateOptions{SiteName: "My Blog"})
	require.Len(t, out, 1)
	assert.Equal(t, "Joe's Plumbing", out[0]["name"])
	assert.Equal(t, "LocalBusiness", out[0]["@type"])
	assert.Equal(t, "https://site.test/#organization", out[0]["@id"])
}

func TestMergeAndConsolidate_ArraysUnion(t *testing.T) {
	in := []map[string]any{
		{"@type": "Organization", "sameAs": []any{"https://a.test", "https://b.test"}},
		{"@type": "HomeAndConstructionBusiness", "sameAs": []string{"https://b.test", "https://c.test"},
			"openingHoursSpecification": []any{map[string]any{"dayOfWeek": "Monday"}}},
		{"@type": "FoodEstablishment", "sameAs": "https://d.test",
			"openingHoursSpecification": []any{map[string]any{"dayOfWeek": "Monday"}, map[string]any{"dayOfWeek": "Tuesday"}}},
	}

	out := MergeAndConsolidate(in, ConsolidateOptions{})
	require.Len(t, out, 1)
	assert.Equal(t, []any{"https://a.test", "https://b.test", "https://c.test", "https://d.test"}, out[0]["sameAs"])
	assert.Len(t, out[0]["openingHoursSpecification"], 2)
}

func TestMergeAndConsolidate_NestedObjectsPreferMoreComplete(t *testing.T) {
	in := []map[string]any{
		{"@type": "Organization", "address": map[string]any{"streetAddress": "1 Main St"}},
		{"@type": "LocalBusiness", "address": map[string]any{"streetAddress": "1 Main St", "addressLocality": "Springfield"},
			"geo": map[string]any{"latitude": 1.5, "longitude": 2.5}},
		{"@type": "LocalBusiness", "address": map[string]any{"streetAddress": "2 Side St"}},
	}

	out := MergeAndConsolidate(in, ConsolidateOptions{})
	require.Len(t, out, 1)
	assert.Equal(t, map[string]any{"streetAddress": "1 Main St", "addressLocality": "Springfield"}, out[0]["address"])
	assert.Equal(t, map[string]any{"latitude": 1.5, "longitude": 2.5}, out[0]["geo"])
}

func TestMergeAndConsolidate_OrganizationPlacedFirst(t *testing.T) {
	in := []map[string]any{
		{"@type": "Article", "@id": "a"},
		{"@type": "Organization", "@id": "o"},
	}

	out := MergeAndConsolidate(in, ConsolidateOptions{})
	assert.Equal(t, []string{"Organization", "Article"}, types(out))
}

func TestMergeAndConsolidate_SingletonsMerge(t *testing.T) {
	in := []map[string]any{
		{"@type": "WebPage", "@id": "https://site.test/#webpage", "name": "", "potentialAction": []any{"read"}},
		{"@type": "WebPage", "@id": "https://site.test/other#webpage", "name": "About", "potentialAction": []any{"read", "share"}},
		{"@type": "WebSite", "@id": "https://site.test/#website", "name": "Site"},
		{"@type": "WebSite", "name": "Other", "inLanguage": "en-US"},
	}

	out := MergeAndConsolidate(in, ConsolidateOptions{})
	require.Len(t, out, 2)

	page := out[0]
	assert.Equal(t, "https://site.test/#webpage", page["@id"])
	assert.Equal(t, "About", page["name"])
	assert.Equal(t, []any{"read", "share"}, page["potentialAction"])

	site := out[1]
	assert.Equal(t, "Site", site["name"])
	assert.Equal(t, "en-US", site["inLanguage"])
}

func TestMergeAndConsolidate_OtherTypesPassThrough(t *testing.T) {
	in := []map[string]any{
		{"@type": "Product", "@id": "p", "name": "one"},
		{"@type": "Product", "@id": "p", "name": "two"},
	}

	out := MergeAndConsolidate(in, ConsolidateOptions{})
	require.Len(t, out, 2)
	assert.Equal(t, "one", out[0]["name"])
	assert.Equal(t, "two", out[1]["name"])
}

func TestMergeAndConsolidate_DoesNotMutateInput(t *testing.T) {
	first := map[string]any{"@type": "Organization", "sameAs": []any{"https://a.test"}}
	second := map[string]any{"@type": "Organization", "sameAs": []any{"https://b.test"}}

	MergeAndConsolidate([]map[string]any{first, second}, ConsolidateOptions{})
	assert.Equal(t, []any{"https://a.test"}, first["sameAs"])
}

// The assembler and the consolidation disagree on duplicate organizations;
// each is checked against its own contract.
func TestMergeAndConsolidate_ThenAssemble(t *testing.T) {
	in := []map[string]any{
		{"@type": "Organization", "@id": "https://site.test/#organization", "name": "Acme", "telephone": "+1-555-0100"},
		{"@type": "Organization", "@id": "https://site.test/#organization", "name": "Acme", "sameAs": []any{"https://x.test/acme"}},
	}

	merged := NewAssembler("https://site.test").Assemble(MergeAndConsolidate(in, ConsolidateOptions{}))
	require.Len(t, merged, 1)
	assert.Equal(t, "+1-555-0100", merged[0]["telephone"])
	assert.Equal(t, []any{"https://x.test/acme"}, merged[0]["sameAs"])
}

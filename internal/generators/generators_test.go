package generators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpschema/wpschema/internal/schema"
)

func TestForAndGenerate(t *testing.T) {
	for _, typ := range Types() {
		fn, ok := For(typ)
		require.True(t, ok, typ)
		require.NotNil(t, fn, typ)
	}

	_, ok := For("Spaceship")
	assert.False(t, ok)

	_, err := Generate("Spaceship", nil)
	assert.Error(t, err)

	got, err := Generate("CollectionPage", map[string]any{"url": "https://acme.test/news/"})
	require.NoError(t, err)
	assert.Equal(t, "CollectionPage", got["@type"])
}

func TestOrganization(t *testing.T) {
	got := Organization(map[string]any{
		"@id":     "https://acme.test/#organization",
		"name":    "Acme",
		"url":     "https://acme.test/",
		"logo":    "https://acme.test/logo.png",
		"sameAs":  []any{"https://twitter.com/acme", "", "https://twitter.com/acme"},
		"email":   "",
		"address": map[string]any{"city": "Portland", "zip": "97201"},
	})

	assert.Equal(t, "Organization", got["@type"])
	assert.Equal(t, "https://acme.test/#organization", got["@id"])
	assert.Equal(t, map[string]any{"@type": "ImageObject", "url": "https://acme.test/logo.png", "contentUrl": "https://acme.test/logo.png"}, got["logo"])
	assert.Equal(t, []string{"https://twitter.com/acme"}, got["sameAs"])
	assert.NotContains(t, got, "email")
	assert.Equal(t, map[string]any{"@type": "PostalAddress", "addressLocality": "Portland", "postalCode": "97201"}, got["address"])
}

func TestLocalBusiness(t *testing.T) {
	got := LocalBusiness(map[string]any{
		"name":      "Acme Cafe",
		"latitude":  "45.5",
		"longitude": -122.6,
		"openingHours": []any{
			map[string]any{"dayOfWeek": []any{"Mo", "Tu"}, "opens": "08:00", "closes": "17:00"},
			map[string]any{"dayOfWeek": "Sa", "opens": "10:00"},
			map[string]any{},
		},
		"priceRange": "$$",
	})

	assert.Equal(t, "LocalBusiness", got["@type"])
	assert.Equal(t, map[string]any{"@type": "GeoCoordinates", "latitude": 45.5, "longitude": -122.6}, got["geo"])
	hours := got["openingHoursSpecification"].([]any)
	require.Len(t, hours, 2)
	assert.Equal(t, []string{"Monday", "Tuesday"}, hours[0].(map[string]any)["dayOfWeek"])
	assert.Equal(t, "Saturday", hours[1].(map[string]any)["dayOfWeek"])
	assert.Equal(t, "$$", got["priceRange"])

	restaurant := LocalBusiness(map[string]any{"@type": "Restaurant", "name": "Diner"})
	assert.Equal(t, []any{"Restaurant", "LocalBusiness"}, restaurant["@type"])
	assert.NotContains(t, restaurant, "geo")

	food := LocalBusiness(map[string]any{"@type": "FoodEstablishment", "name": "Diner"})
	assert.Equal(t, "FoodEstablishment", food["@type"])
}

func TestLocalBusiness_SubtypesStayOrganizations(t *testing.T) {
	for _, typ := range []string{"Restaurant", "Dentist", "Plumber", "Store"} {
		t.Run(typ, func(t *testing.T) {
			got := LocalBusiness(map[string]any{"@type": typ, "name": "Shop"})
			assert.True(t, schema.IsOrganization(got))
			assert.Equal(t, typ, schema.TypeOf(got))
		})
	}
}

func TestWebSiteSearchAction(t *testing.T) {
	got := WebSite(map[string]any{
		"@id":       "https://acme.test/#website",
		"url":       "https://acme.test/",
		"name":      "Acme",
		"publisher": "https://acme.test/#organization",
		"searchUrl": "https://acme.test/?s={search_term_string}",
	})

	assert.Equal(t, map[string]any{"@id": "https://acme.test/#organization"}, got["publisher"])
	actions := got["potentialAction"].([]any)
	action := actions[0].(map[string]any)
	assert.Equal(t, "SearchAction", action["@type"])
	assert.Equal(t, "required name=search_term_string", action["query-input"])

	plain := WebSite(map[string]any{"url": "https://acme.test/"})
	assert.NotContains(t, plain, "potentialAction")
}

func TestBreadcrumbs(t *testing.T) {
	got := Breadcrumbs(map[string]any{
		"@id": "https://acme.test/post/#breadcrumb",
		"items": []Crumb{
			{Name: "Home", URL: "https://acme.test/"},
			{Name: ""},
			{Name: "News", URL: "https://acme.test/news/"},
			{Name: "Post", URL: "https://acme.test/post/"},
		},
	})

	items := got["itemListElement"].([]any)
	require.Len(t, items, 3)
	assert.Equal(t, map[string]any{"@type": "ListItem", "position": 1, "name": "Home", "item": "https://acme.test/"}, items[0])
	assert.Equal(t, 3, items[2].(map[string]any)["position"])
	assert.NotContains(t, items[2], "item")

	fromMaps := Breadcrumbs(map[string]any{"items": []any{map[string]any{"name": "Home", "url": "/"}}})
	assert.Len(t, fromMaps["itemListElement"], 1)

	empty := Breadcrumbs(map[string]any{})
	assert.NotContains(t, empty, "itemListElement")
}

func TestNavigation(t *testing.T) {
	got := Navigation(map[string]any{
		"name": "Primary",
		"items": []any{
			map[string]any{"name": "About", "url": "https://acme.test/about/"},
			map[string]any{"name": "No link"},
		},
	})
	parts := got["hasPart"].([]any)
	require.Len(t, parts, 1)
	assert.Equal(t, "About", parts[0].(map[string]any)["name"])
}

func TestArticle(t *testing.T) {
	published := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	long := ""
	for i := 0; i < 30; i++ {
		long += "word "
	}

	got := Article(map[string]any{
		"@id":            "https://acme.test/post/#article",
		"headline":       long,
		"datePublished":  published,
		"author":         "https://acme.test/#/schema/person/1",
		"image":          "https://acme.test/post/#primaryimage",
		"keywords":       "coffee, beans,coffee",
		"articleSection": []string{"Guides"},
		"wordCount":      "250",
		"commentCount":   0,
	})

	assert.LessOrEqual(t, len([]rune(got["headline"].(string))), maxHeadline)
	assert.Equal(t, "2024-01-15T10:00:00Z", got["datePublished"])
	assert.Equal(t, "2024-01-15T10:00:00Z", got["dateModified"])
	assert.Equal(t, map[string]any{"@id": "https://acme.test/#/schema/person/1"}, got["author"])
	assert.Equal(t, map[string]any{"@id": "https://acme.test/post/#primaryimage"}, got["image"])
	assert.Equal(t, []string{"coffee", "beans"}, got["keywords"])
	assert.Equal(t, 250, got["wordCount"])
	assert.NotContains(t, got, "commentCount")

	withURL := Article(map[string]any{"headline": "Hi", "image": "https://acme.test/a.jpg"})
	assert.Equal(t, "ImageObject", withURL["image"].(map[string]any)["@type"])
}

func TestPersonAndComment(t *testing.T) {
	p := Person(map[string]any{"name": "Jane", "image": "https://gravatar.test/j.png", "sameAs": []string{"https://jane.test"}})
	assert.Equal(t, "Person", p["@type"])
	assert.Equal(t, []string{"https://jane.test"}, p["sameAs"])

	c := Comment(map[string]any{"text": "Nice", "author": "Bob", "dateCreated": "2024-02-01T12:00:00Z"})
	assert.Equal(t, map[string]any{"@type": "Person", "name": "Bob"}, c["author"])
	assert.Equal(t, "2024-02-01T12:00:00Z", c["dateCreated"])
}

func TestProduct(t *testing.T) {
	got := Product(map[string]any{
		"name":          "Mug",
		"sku":           "MUG-1",
		"brand":         "Acme",
		"price":         12.5,
		"priceCurrency": "USD",
		"availability":  "instock",
		"ratingValue":   4.5,
		"ratingCount":   10,
	})

	offer := got["offers"].(map[string]any)
	assert.Equal(t, "12.5", offer["price"])
	assert.Equal(t, "USD", offer["priceCurrency"])
	assert.Equal(t, "https://schema.org/InStock", offer["availability"])
	assert.Equal(t, map[string]any{"@type": "Brand", "name": "Acme"}, got["brand"])
	assert.Equal(t, 4.5, got["aggregateRating"].(map[string]any)["ratingValue"])

	multi := Product(map[string]any{"name": "Box", "offers": []any{
		map[string]any{"price": "1"}, map[string]any{"price": "2"}, map[string]any{},
	}})
	assert.Len(t, multi["offers"], 2)

	none := Product(map[string]any{"name": "Free"})
	assert.NotContains(t, none, "offers")
}

func TestAvailability(t *testing.T) {
	assert.Equal(t, "https://schema.org/OutOfStock", Availability("outofstock"))
	assert.Equal(t, "https://schema.org/BackOrder", Availability("onbackorder"))
	assert.Equal(t, "https://schema.org/InStock", Availability("https://schema.org/InStock"))
	assert.Equal(t, "", Availability("unknown"))
}

func TestEvent(t *testing.T) {
	got := Event(map[string]any{
		"name":          "Cupping",
		"startDate":     "2024-05-01 18:00:00",
		"location":      map[string]any{"name": "Roastery", "address": map[string]any{"street": "1 Main St", "city": "Portland"}},
		"price":         "0",
		"priceCurrency": "USD",
	})

	assert.Equal(t, "2024-05-01T18:00:00Z", got["startDate"])
	assert.Equal(t, "https://schema.org/EventScheduled", got["eventStatus"])
	loc := got["location"].(map[string]any)
	assert.Equal(t, "Place", loc["@type"])
	assert.Equal(t, "1 Main St", loc["address"].(map[string]any)["streetAddress"])
	assert.Equal(t, "0", got["offers"].(map[string]any)["price"])

	noPlace := Event(map[string]any{"name": "Webinar", "location": map[string]any{}, "online": true})
	assert.NotContains(t, noPlace, "location")
	assert.Equal(t, "https://schema.org/OnlineEventAttendanceMode", noPlace["eventAttendanceMode"])
}

func TestRecipe(t *testing.T) {
	got := Recipe(map[string]any{
		"name":               "Cold Brew",
		"prepMinutes":        10,
		"cookMinutes":        "720",
		"recipeIngredient":   []any{"coffee", "water"},
		"recipeInstructions": []any{"Grind", map[string]any{"text": "Steep", "name": "Steep"}, map[string]any{}},
		"calories":           "5",
	})

	assert.Equal(t, "PT10M", got["prepTime"])
	assert.Equal(t, "PT12H", got["cookTime"])
	assert.Equal(t, "PT12H10M", got["totalTime"])
	assert.Len(t, got["recipeInstructions"], 2)
	assert.Equal(t, "5 calories", got["nutrition"].(map[string]any)["calories"])
	assert.Equal(t, []string{"coffee", "water"}, got["recipeIngredient"])
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "", Duration(0))
	assert.Equal(t, "PT45M", Duration(45))
	assert.Equal(t, "PT2H", Duration(120))
	assert.Equal(t, "PT1H5M", Duration(65))
}

func TestGeneratorsDoNotMutateInput(t *testing.T) {
	in := map[string]any{"name": "Page"}
	_ = typed(WebPage, "ProfilePage")(in)
	assert.Equal(t, map[string]any{"name": "Page"}, in)
}

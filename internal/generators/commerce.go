package generators

import (
	"strings"

	"github.com/spf13/cast"
)

var availability = map[string]string{
	"instock":             "https://schema.org/InStock",
	"outofstock":          "https://schema.org/OutOfStock",
	"onbackorder":         "https://schema.org/BackOrder",
	"preorder":            "https://schema.org/PreOrder",
	"discontinued":        "https://schema.org/Discontinued",
	"limitedavailability": "https://schema.org/LimitedAvailability",
}

// Availability maps a WooCommerce stock status to a schema.org URL
func Availability(status string) string {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(status))
	if url, ok := availability[key]; ok {
		return url
	}
	if strings.HasPrefix(status, "https://schema.org/") {
		return status
	}
	return ""
}

// Product builds a Product. "brand" may be a name or map; "offers" a map
// or list of Offer data; "price" and "priceCurrency" at the top level
// produce a single Offer.
func Product(data map[string]any) map[string]any {
	out := piece(data, "Product")
	copyFields(out, data, "name", "description", "url", "sku", "gtin", "mpn", "category")
	setRef(out, "mainEntityOfPage", data["mainEntityOfPage"])
	if isFragmentID(data["image"]) {
		setRef(out, "image", data["image"])
	} else {
		set(out, "image", image(data["image"]))
	}

	switch b := data["brand"].(type) {
	case string:
		if b != "" {
			out["brand"] = map[string]any{"@type": "Brand", "name": b}
		}
	case map[string]any:
		brand := map[string]any{"@type": "Brand"}
		copyFields(brand, b, "name", "url")
		if len(brand) > 1 {
			out["brand"] = brand
		}
	}

	var offers []any
	switch o := data["offers"].(type) {
	case map[string]any:
		if offer := Offer(o); offer != nil {
			offers = append(offers, offer)
		}
	default:
		for _, m := range mapList(o) {
			if offer := Offer(m); offer != nil {
				offers = append(offers, offer)
			}
		}
	}
	if len(offers) == 0 && data["price"] != nil {
		if offer := Offer(data); offer != nil {
			offers = append(offers, offer)
		}
	}
	switch len(offers) {
	case 0:
	case 1:
		out["offers"] = offers[0]
	default:
		out["offers"] = offers
	}

	if rating := aggregateRating(data); rating != nil {
		out["aggregateRating"] = rating
	}
	return out
}

// Offer builds an Offer. It returns nil without a price. "availability"
// accepts WooCommerce stock statuses.
func Offer(data map[string]any) map[string]any {
	price := cast.ToString(data["price"])
	if price == "" {
		return nil
	}
	out := map[string]any{"@type": "Offer", "price": price}
	copyFields(out, data, "priceCurrency", "url", "priceValidUntil", "validFrom")
	if a := Availability(cast.ToString(data["availability"])); a != "" {
		out["availability"] = a
	}
	setRef(out, "seller", data["seller"])
	return out
}

func aggregateRating(data map[string]any) map[string]any {
	value := cast.ToFloat64(data["ratingValue"])
	count := cast.ToInt(first(data, "ratingCount", "reviewCount"))
	if value <= 0 || count <= 0 {
		return nil
	}
	return map[string]any{
		"@type":       "AggregateRating",
		"ratingValue": value,
		"ratingCount": count,
		"bestRating":  5,
	}
}

// Event builds an Event. "location" is Place data; "price" and
// "priceCurrency" produce an Offer.
func Event(data map[string]any) map[string]any {
	out := piece(data, "Event")
	copyFields(out, data, "name", "description", "url")
	setDate(out, "startDate", data["startDate"])
	setDate(out, "endDate", data["endDate"])
	set(out, "image", image(data["image"]))
	out["eventStatus"] = "https://schema.org/EventScheduled"
	if s := cast.ToString(data["eventStatus"]); s != "" {
		out["eventStatus"] = "https://schema.org/" + strings.TrimPrefix(s, "https://schema.org/")
	}
	out["eventAttendanceMode"] = "https://schema.org/OfflineEventAttendanceMode"
	if cast.ToBool(data["online"]) {
		out["eventAttendanceMode"] = "https://schema.org/OnlineEventAttendanceMode"
	}

	if loc, ok := data["location"].(map[string]any); ok {
		if place := Place(loc); place != nil {
			out["location"] = place
		}
	}
	if offer := Offer(data); offer != nil {
		out["offers"] = offer
	}
	switch o := data["organizer"].(type) {
	case string:
		setRef(out, "organizer", o)
	case map[string]any:
		org := map[string]any{"@type": "Organization"}
		copyFields(org, o, "name", "url")
		if len(org) > 1 {
			out["organizer"] = org
		}
	}
	return out
}

// Place builds a Place; nil when it has neither name nor address
func Place(data map[string]any) map[string]any {
	out := piece(data, "Place")
	copyFields(out, data, "name", "url", "telephone")
	addr, ok := data["address"].(map[string]any)
	if !ok {
		addr = data
	}
	set(out, "address", PostalAddress(addr))
	if geo := geoCoordinates(data); geo != nil {
		out["geo"] = geo
	}
	if _, hasName := out["name"]; !hasName {
		if _, hasAddr := out["address"]; !hasAddr {
			return nil
		}
	}
	return out
}

// Recipe builds a Recipe. Times are given in minutes ("prepMinutes",
// "cookMinutes", "totalMinutes") or as ISO durations; "recipeInstructions"
// is a list of strings or {text, name} maps.
func Recipe(data map[string]any) map[string]any {
	out := piece(data, "Recipe")
	copyFields(out, data, "name", "description", "recipeYield", "url", "inLanguage")
	setRef(out, "author", data["author"])
	setRef(out, "mainEntityOfPage", data["mainEntityOfPage"])
	setRef(out, "isPartOf", data["isPartOf"])
	if isFragmentID(data["image"]) {
		setRef(out, "image", data["image"])
	} else {
		set(out, "image", image(data["image"]))
	}
	setDate(out, "datePublished", data["datePublished"])
	setStrings(out, "recipeCategory", data["recipeCategory"])
	setStrings(out, "recipeCuisine", data["recipeCuisine"])
	setStrings(out, "keywords", data["keywords"])
	setStrings(out, "recipeIngredient", data["recipeIngredient"])

	prep := minutesOrDuration(data, "prepMinutes", "prepTime")
	cook := minutesOrDuration(data, "cookMinutes", "cookTime")
	set(out, "prepTime", prep)
	set(out, "cookTime", cook)
	total := minutesOrDuration(data, "totalMinutes", "totalTime")
	if total == "" {
		total = Duration(cast.ToInt(data["prepMinutes"]) + cast.ToInt(data["cookMinutes"]))
	}
	set(out, "totalTime", total)

	var steps []any
	switch instr := data["recipeInstructions"].(type) {
	case []string:
		for _, s := range instr {
			steps = appendStep(steps, map[string]any{"text": s})
		}
	case []any:
		for _, item := range instr {
			switch v := item.(type) {
			case string:
				steps = appendStep(steps, map[string]any{"text": v})
			case map[string]any:
				steps = appendStep(steps, v)
			}
		}
	}
	set(out, "recipeInstructions", steps)

	if cal := cast.ToString(data["calories"]); cal != "" {
		if !strings.Contains(cal, "cal") {
			cal += " calories"
		}
		out["nutrition"] = map[string]any{"@type": "NutritionInformation", "calories": cal}
	}
	if rating := aggregateRating(data); rating != nil {
		out["aggregateRating"] = rating
	}
	return out
}

func appendStep(steps []any, data map[string]any) []any {
	step := map[string]any{"@type": "HowToStep"}
	copyFields(step, data, "name", "text", "url")
	if _, ok := step["text"]; !ok {
		return steps
	}
	return append(steps, step)
}

func minutesOrDuration(data map[string]any, minutesKey, durationKey string) string {
	if d := cast.ToString(data[durationKey]); strings.HasPrefix(d, "P") {
		return d
	}
	return Duration(cast.ToInt(data[minutesKey]))
}

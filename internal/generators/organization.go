package generators

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/wpschema/wpschema/internal/schema"
)

// Organization builds an Organization. "logo" may be a URL or an
// ImageObject map; "address" a map of PostalAddress fields.
func Organization(data map[string]any) map[string]any {
	out := piece(data, "Organization")
	copyFields(out, data, "name", "alternateName", "legalName", "url", "description", "email", "telephone", "foundingDate", "vatID")
	set(out, "logo", image(data["logo"]))
	set(out, "image", image(data["image"]))
	setStrings(out, "sameAs", data["sameAs"])
	if addr, ok := data["address"].(map[string]any); ok {
		set(out, "address", PostalAddress(addr))
	}
	if cps := mapList(data["contactPoint"]); len(cps) > 0 {
		points := make([]any, 0, len(cps))
		for _, cp := range cps {
			point := map[string]any{"@type": "ContactPoint"}
			copyFields(point, cp, "telephone", "email", "contactType", "areaServed")
			if len(point) > 1 {
				points = append(points, point)
			}
		}
		set(out, "contactPoint", points)
	}
	return out
}

// LocalBusiness builds a LocalBusiness (or a subtype via "@type").
// "openingHours" accepts a list of {dayOfWeek, opens, closes} maps;
// "latitude" and "longitude" produce a GeoCoordinates.
func LocalBusiness(data map[string]any) map[string]any {
	if _, ok := data["@type"]; !ok {
		data = withDefault(data, "@type", "LocalBusiness")
	}
	out := Organization(data)
	// Subtypes outside the organization family also carry LocalBusiness
	// so consolidation still treats them as the site's organization.
	if !schema.IsOrganization(out) {
		if t := schema.TypeOf(out); t != "" {
			out[schema.KeyType] = []any{t, "LocalBusiness"}
		}
	}
	copyFields(out, data, "priceRange", "servesCuisine", "paymentAccepted", "currenciesAccepted", "hasMap")

	if geo := geoCoordinates(data); geo != nil {
		out["geo"] = geo
	}

	hours := data["openingHoursSpecification"]
	if hours == nil {
		hours = data["openingHours"]
	}
	if specs := openingHours(hours); len(specs) > 0 {
		out["openingHoursSpecification"] = specs
	}
	return out
}

// PostalAddress builds a PostalAddress. WordPress-style keys (street,
// city, state, zip, country) are accepted alongside schema names.
func PostalAddress(data map[string]any) map[string]any {
	out := map[string]any{"@type": "PostalAddress"}
	setString(out, "streetAddress", first(data, "streetAddress", "street", "address"))
	setString(out, "addressLocality", first(data, "addressLocality", "city"))
	setString(out, "addressRegion", first(data, "addressRegion", "state", "region"))
	setString(out, "postalCode", first(data, "postalCode", "zip", "postcode"))
	setString(out, "addressCountry", first(data, "addressCountry", "country"))
	if len(out) == 1 {
		return nil
	}
	return out
}

func geoCoordinates(data map[string]any) map[string]any {
	if g, ok := data["geo"].(map[string]any); ok {
		data = g
	}
	lat, latErr := cast.ToFloat64E(data["latitude"])
	lng, lngErr := cast.ToFloat64E(data["longitude"])
	if latErr != nil || lngErr != nil || (lat == 0 && lng == 0) {
		return nil
	}
	return map[string]any{"@type": "GeoCoordinates", "latitude": lat, "longitude": lng}
}

func openingHours(v any) []any {
	var out []any
	for _, h := range mapList(v) {
		spec := map[string]any{"@type": "OpeningHoursSpecification"}
		if days := stringList(h["dayOfWeek"]); len(days) == 1 {
			spec["dayOfWeek"] = dayName(days[0])
		} else if len(days) > 1 {
			named := make([]string, len(days))
			for i, d := range days {
				named[i] = dayName(d)
			}
			spec["dayOfWeek"] = named
		}
		copyFields(spec, h, "opens", "closes", "validFrom", "validThrough")
		if len(spec) > 1 {
			out = append(out, spec)
		}
	}
	return out
}

var dayNames = map[string]string{
	"mo": "Monday", "tu": "Tuesday", "we": "Wednesday", "th": "Thursday",
	"fr": "Friday", "sa": "Saturday", "su": "Sunday",
}

func dayName(d string) string {
	if len(d) >= 2 {
		if name, ok := dayNames[strings.ToLower(d[:2])]; ok {
			return name
		}
	}
	return d
}

// image accepts a URL or an ImageObject-like map
func image(v any) any {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return ImageObject(map[string]any{"url": val})
	case map[string]any:
		if len(val) == 0 {
			return nil
		}
		if _, ok := val["@id"]; ok && len(val) == 1 {
			return val
		}
		return ImageObject(val)
	}
	return nil
}

func first(data map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := data[k]; ok && !isEmpty(v) {
			return v
		}
	}
	return nil
}

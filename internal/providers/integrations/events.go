package integrations

import (
	"context"
	"time"

	"github.com/spf13/cast"

	"github.com/wpschema/wpschema/internal/generators"
	"github.com/wpschema/wpschema/internal/hooks"
	"github.com/wpschema/wpschema/internal/page"
	"github.com/wpschema/wpschema/internal/providers"
)

// eventDateLayout is how The Events Calendar stores local dates
const eventDateLayout = "2006-01-02 15:04:05"

// Events publishes The Events Calendar events
type Events struct{}

func (Events) Name() string { return "events" }
func (Events) Plugins() []string {
	return []string{"the-events-calendar/the-events-calendar.php"}
}

func (e Events) Register(r *providers.Registry, _ *hooks.Registry) {
	r.Register(providers.Func{
		ProviderName:     "events",
		ProviderPriority: providers.PriorityIntegration,
		Applies:          func(pc *page.Context) bool { return pc.IsPostType("tribe_events") },
		Build:            e.pieces,
	})
}

func (Events) pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	post := pc.Post
	data := map[string]any{
		"@id":         providers.MainEntityID(pc, "event"),
		"name":        post.Title,
		"description": productDescription(post),
		"url":         pc.PageURL(),
		"startDate":   eventDate(post.MetaValue("_EventStartDateUTC"), post.MetaValue("_EventStartDate")),
		"endDate":     eventDate(post.MetaValue("_EventEndDateUTC"), post.MetaValue("_EventEndDate")),
	}
	if url := cast.ToString(post.MetaValue("_EventURL")); url != "" {
		data["url"] = url
	}
	if post.FeaturedImage != nil && post.FeaturedImage.URL != "" {
		data["image"] = post.FeaturedImage.URL
	}
	if cost := cast.ToString(post.MetaValue("_EventCost")); cost != "" {
		currency := cast.ToString(post.MetaValue("_EventCurrencyCode"))
		if currency == "" {
			currency = "USD"
		}
		data["price"] = cost
		data["priceCurrency"] = currency
	}
	if status := cast.ToString(post.MetaValue("_tribe_events_status")); status != "" {
		data["eventStatus"] = eventStatus(status)
	}
	if cast.ToBool(post.MetaValue("_tribe_virtual_events_type")) || cast.ToBool(post.MetaValue("_tribe_events_is_virtual")) {
		data["online"] = true
	}

	venue, err := relatedPost(ctx, pc.Source, cast.ToInt64(post.MetaValue("_EventVenueID")))
	if err != nil {
		return nil, err
	}
	if venue != nil {
		data["location"] = map[string]any{
			"name":            venue.Title,
			"streetAddress":   venue.MetaValue("_VenueAddress"),
			"addressLocality": venue.MetaValue("_VenueCity"),
			"addressRegion":   firstMeta(venue, "_VenueStateProvince", "_VenueState", "_VenueProvince"),
			"postalCode":      venue.MetaValue("_VenueZip"),
			"addressCountry":  venue.MetaValue("_VenueCountry"),
			"telephone":       venue.MetaValue("_VenuePhone"),
			"url":             venue.MetaValue("_VenueURL"),
		}
	}

	organizer, err := relatedPost(ctx, pc.Source, cast.ToInt64(post.MetaValue("_EventOrganizerID")))
	if err != nil {
		return nil, err
	}
	if organizer != nil {
		data["organizer"] = map[string]any{
			"name": organizer.Title,
			"url":  cast.ToString(organizer.MetaValue("_OrganizerWebsite")),
		}
	} else {
		data["organizer"] = providers.OrganizationID(pc)
	}
	return []map[string]any{generators.Event(data)}, nil
}

// eventDate prefers the UTC value and falls back to the local one
func eventDate(utc, local any) string {
	for i, v := range []any{utc, local} {
		s := cast.ToString(v)
		if s == "" {
			continue
		}
		t, err := time.Parse(eventDateLayout, s)
		if err != nil {
			return s
		}
		if i == 0 {
			return t.UTC().Format(time.RFC3339)
		}
		return t.Format("2006-01-02T15:04:05")
	}
	return ""
}

func eventStatus(s string) string {
	switch s {
	case "canceled", "cancelled":
		return "EventCancelled"
	case "postponed":
		return "EventPostponed"
	case "rescheduled":
		return "EventRescheduled"
	case "moved_online":
		return "EventMovedOnline"
	}
	return "EventScheduled"
}

package integrations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/wpschema/wpschema/internal/content"
	"github.com/wpschema/wpschema/internal/content/extract"
	"github.com/wpschema/wpschema/internal/generators"
	"github.com/wpschema/wpschema/internal/hooks"
	"github.com/wpschema/wpschema/internal/page"
	"github.com/wpschema/wpschema/internal/providers"
)

const descriptionWords = 55

// WooCommerce publishes products
type WooCommerce struct{}

func (WooCommerce) Name() string      { return "woocommerce" }
func (WooCommerce) Plugins() []string { return []string{"woocommerce/woocommerce.php"} }

func (w WooCommerce) Register(r *providers.Registry, _ *hooks.Registry) {
	r.Register(providers.Func{
		ProviderName:     "woocommerce",
		ProviderPriority: providers.PriorityIntegration,
		Applies:          func(pc *page.Context) bool { return pc.IsPostType("product") },
		Build:            w.pieces,
	})
}

func (WooCommerce) pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	post := pc.Post
	currency, err := stringOption(ctx, pc.Source, "woocommerce_currency", "USD")
	if err != nil {
		return nil, err
	}

	offer := map[string]any{
		"price":         firstMeta(post, "_price", "_sale_price", "_regular_price"),
		"priceCurrency": currency,
		"availability":  cast.ToString(post.MetaValue("_stock_status")),
		"url":           pc.PageURL(),
		"seller":        providers.OrganizationID(pc),
	}
	if until := cast.ToString(post.MetaValue("_sale_price_dates_to")); until != "" {
		offer["priceValidUntil"] = until
	}

	data := map[string]any{
		"@id":              providers.MainEntityID(pc, "product"),
		"name":             post.Title,
		"description":      productDescription(post),
		"url":              pc.PageURL(),
		"sku":              post.MetaValue("_sku"),
		"mainEntityOfPage": providers.WebPageID(pc),
		"ratingValue":      post.MetaValue("_wc_average_rating"),
		"ratingCount":      post.MetaValue("_wc_review_count"),
		"offers":           offer,
	}
	if cats := post.TermsIn("product_cat"); len(cats) > 0 {
		data["category"] = cats[0].Name
	}
	if brands := append(post.TermsIn("product_brand"), post.TermsIn("pa_brand")...); len(brands) > 0 {
		data["brand"] = brands[0].Name
	}
	if post.FeaturedImage != nil && post.FeaturedImage.URL != "" {
		data["image"] = providers.PrimaryImageID(pc)
	}
	return []map[string]any{generators.Product(data)}, nil
}

// EDD publishes Easy Digital Downloads products
type EDD struct{}

func (EDD) Name() string      { return "edd" }
func (EDD) Plugins() []string { return []string{"easy-digital-downloads/easy-digital-downloads.php"} }

func (e EDD) Register(r *providers.Registry, _ *hooks.Registry) {
	r.Register(providers.Func{
		ProviderName:     "edd",
		ProviderPriority: providers.PriorityIntegration,
		Applies:          func(pc *page.Context) bool { return pc.IsPostType("download") },
		Build:            e.pieces,
	})
}

func (EDD) pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	post := pc.Post
	settings, err := content.OptionMap(ctx, pc.Source, "edd_settings")
	if err != nil {
		return nil, err
	}
	currency := cast.ToString(settings["currency"])
	if currency == "" {
		currency = "USD"
	}

	var offers []any
	for _, v := range variablePrices(post.MetaValue("edd_variable_prices")) {
		offers = append(offers, map[string]any{
			"price":         v["amount"],
			"priceCurrency": currency,
			"url":           pc.PageURL(),
			"availability":  "instock",
		})
	}
	if len(offers) == 0 {
		offers = append(offers, map[string]any{
			"price":         post.MetaValue("edd_price"),
			"priceCurrency": currency,
			"url":           pc.PageURL(),
			"availability":  "instock",
		})
	}

	data := map[string]any{
		"@id":              providers.MainEntityID(pc, "product"),
		"name":             post.Title,
		"description":      productDescription(post),
		"url":              pc.PageURL(),
		"sku":              post.MetaValue("edd_sku"),
		"mainEntityOfPage": providers.WebPageID(pc),
		"offers":           offers,
	}
	if cats := post.TermsIn("download_category"); len(cats) > 0 {
		data["category"] = cats[0].Name
	}
	if post.FeaturedImage != nil && post.FeaturedImage.URL != "" {
		data["image"] = providers.PrimaryImageID(pc)
	}
	return []map[string]any{generators.Product(data)}, nil
}

// variablePrices reads EDD's price options, stored keyed by option id
func variablePrices(v any) []map[string]any {
	var out []map[string]any
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
	case map[string]any:
		for _, k := range sortedKeys(val) {
			if m, ok := val[k].(map[string]any); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

func productDescription(post *content.Post) string {
	if post.Excerpt != "" {
		return extract.Text(post.Excerpt)
	}
	return extract.Summary(post.Content, descriptionWords)
}

func firstMeta(post *content.Post, keys ...string) any {
	for _, k := range keys {
		if v := cast.ToString(post.MetaValue(k)); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return nil
}

func stringOption(ctx context.Context, src content.Source, name, def string) (string, error) {
	if src == nil {
		return def, nil
	}
	v, ok, err := src.Option(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	if s := cast.ToString(v); ok && s != "" {
		return s, nil
	}
	return def, nil
}

func relatedPost(ctx context.Context, src content.Source, id int64) (*content.Post, error) {
	if id <= 0 || src == nil {
		return nil, nil
	}
	p, err := src.Post(ctx, id)
	if errors.Is(err, content.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// sortedKeys orders PHP array keys numerically when they are indexes
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}

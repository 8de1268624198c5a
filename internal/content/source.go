package content

import (
	"context"
	"strings"

	"github.com/spf13/cast"
)

// Source reads WordPress content. Implementations return ErrNotFound
// (possibly wrapped) for missing entities.
type Source interface {
	Site(ctx context.Context) (*Site, error)
	Post(ctx context.Context, id int64) (*Post, error)
	Term(ctx context.Context, taxonomy string, id int64) (*Term, error)
	Author(ctx context.Context, id int64) (*Author, error)
	Menus(ctx context.Context) ([]Menu, error)
	Comments(ctx context.Context, postID int64) ([]Comment, error)
	// Option returns a decoded option value and whether it exists
	Option(ctx context.Context, name string) (any, bool, error)
	// ActivePlugins returns plugin files such as woocommerce/woocommerce.php
	ActivePlugins(ctx context.Context) ([]string, error)
}

// OptionMap reads an option holding an associative array
func OptionMap(ctx context.Context, src Source, name string) (map[string]any, error) {
	v, ok, err := src.Option(ctx, name)
	if err != nil || !ok {
		return nil, err
	}
	return normalizeMap(v), nil
}

// OptionEnabled reads a toggle option. A missing option returns def.
func OptionEnabled(ctx context.Context, src Source, name string, def bool) (bool, error) {
	v, ok, err := src.Option(ctx, name)
	if err != nil || !ok {
		return def, err
	}
	if s, isString := v.(string); isString {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "", "0", "no", "off", "false":
			return false, nil
		default:
			return true, nil
		}
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def, nil
	}
	return b, nil
}

// PluginActive reports whether the plugin file is in the active list
func PluginActive(ctx context.Context, src Source, file string) (bool, error) {
	plugins, err := src.ActivePlugins(ctx)
	if err != nil {
		return false, err
	}
	for _, p := range plugins {
		if p == file {
			return true, nil
		}
	}
	return false, nil
}

// normalizeMap converts YAML and PHP decoded maps into map[string]any
func normalizeMap(v any) map[string]any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[cast.ToString(k)] = normalizeValue(item)
		}
		return out
	}
	return nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any, map[any]any:
		return normalizeMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	}
	return v
}

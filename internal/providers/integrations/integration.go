// Package integrations adds providers for popular WordPress plugins.
// An integration registers only when its plugin is active and the site
// has not switched it off.
package integrations

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wpschema/wpschema/internal/content"
	"github.com/wpschema/wpschema/internal/hooks"
	"github.com/wpschema/wpschema/internal/providers"
)

// Integration wires one plugin's data into the provider registry
type Integration interface {
	Name() string
	// Plugins lists the plugin files that activate the integration
	Plugins() []string
	Register(r *providers.Registry, h *hooks.Registry)
}

// Settings carries the configuration for the built-in integrations
type Settings struct {
	// Overrides force an integration on or off, keyed by name
	Overrides map[string]bool
	ACF       []FieldMapping
	CPTUI     []TypeMapping
}

// Builtin returns every bundled integration
func Builtin(settings Settings) []Integration {
	return []Integration{
		WooCommerce{},
		EDD{},
		Events{},
		Recipes{},
		ACF{Mappings: settings.ACF},
		CPTUI{Mappings: settings.CPTUI},
		Polaris{},
	}
}

// OptionName returns the site option that toggles an integration
func OptionName(name string) string {
	return "wp_schema_integration_" + name
}

// Activate registers every integration whose plugin is active and which
// is enabled by option, then config override, then the
// wp_schema_integration_enabled filter. It returns the activated names.
func Activate(ctx context.Context, src content.Source, r *providers.Registry, h *hooks.Registry, list []Integration, overrides map[string]bool, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	plugins, err := src.ActivePlugins(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read active plugins: %w", err)
	}
	active := make(map[string]bool, len(plugins))
	for _, p := range plugins {
		active[p] = true
	}

	var activated []string
	for _, in := range list {
		name := in.Name()
		enabled := false
		for _, file := range in.Plugins() {
			if active[file] {
				enabled = true
				break
			}
		}
		if enabled {
			enabled, err = content.OptionEnabled(ctx, src, OptionName(name), true)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", OptionName(name), err)
			}
		}
		if forced, ok := overrides[name]; ok {
			enabled = forced
		}
		enabled = hooks.ApplyFilters(h, ctx, hooks.IntegrationEnabled, enabled, name)
		if !enabled {
			logger.Debug("integration skipped", zap.String("integration", name))
			continue
		}
		in.Register(r, h)
		activated = append(activated, name)
		logger.Info("integration enabled", zap.String("integration", name))
	}
	return activated, nil
}

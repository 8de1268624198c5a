package integrations

import (
	"context"

	"github.com/spf13/cast"

	"github.com/wpschema/wpschema/internal/content"
	"github.com/wpschema/wpschema/internal/generators"
	"github.com/wpschema/wpschema/internal/hooks"
	"github.com/wpschema/wpschema/internal/page"
	"github.com/wpschema/wpschema/internal/providers"
	"github.com/wpschema/wpschema/internal/schema"
)

// PolarisOption is the business profile kept by the Polaris plugin
const PolarisOption = "polaris_organization"

// Polaris republishes the Polaris business profile as a LocalBusiness
// sharing the organization @id, so consolidation folds it into the
// site organization
type Polaris struct{}

func (Polaris) Name() string      { return "polaris" }
func (Polaris) Plugins() []string { return []string{"polaris/polaris.php"} }

func (p Polaris) Register(r *providers.Registry, _ *hooks.Registry) {
	r.Register(providers.Func{
		ProviderName:     "polaris",
		ProviderPriority: providers.PriorityIntegration,
		Applies:          func(pc *page.Context) bool { return pc.Source != nil },
		Build:            p.pieces,
	})
}

func (Polaris) pieces(ctx context.Context, pc *page.Context) ([]map[string]any, error) {
	profile, err := content.OptionMap(ctx, pc.Source, PolarisOption)
	if err != nil || len(profile) == 0 {
		return nil, err
	}
	data := make(map[string]any, len(profile)+2)
	for k, v := range profile {
		data[k] = v
	}
	if t := cast.ToString(data["type"]); t != "" {
		data[schema.KeyType] = t
	}
	if cast.ToString(data[schema.KeyType]) == "" {
		data[schema.KeyType] = "LocalBusiness"
	}
	data[schema.KeyID] = providers.OrganizationID(pc)
	return []map[string]any{generators.LocalBusiness(data)}, nil
}

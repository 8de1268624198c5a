package auth

// Capability is a WordPress capability
type Capability string

const (
	CapRead          Capability = "read"
	CapEditPosts     Capability = "edit_posts"
	CapManageOptions Capability = "manage_options"
)

// roleCapabilities mirrors the default WordPress roles
var roleCapabilities = map[string][]Capability{
	"administrator": {CapRead, CapEditPosts, CapManageOptions},
	"editor":        {CapRead, CapEditPosts},
	"author":        {CapRead, CapEditPosts},
	"contributor":   {CapRead, CapEditPosts},
	"subscriber":    {CapRead},
}

// RoleHas reports whether a role grants the capability
func RoleHas(role string, cap Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == cap {
			return true
		}
	}
	return false
}

// Can reports whether any of the roles grants the capability
func Can(roles []string, cap Capability) bool {
	for _, r := range roles {
		if RoleHas(r, cap) {
			return true
		}
	}
	return false
}

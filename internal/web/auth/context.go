package auth

import "context"

type claimsKey struct{}

// WithClaims stores the authenticated caller on the context
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFrom returns the authenticated caller, or nil for anonymous requests
func ClaimsFrom(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey{}).(*Claims)
	return c
}

// GetCurrentUser returns the authenticated login or ""
func GetCurrentUser(ctx context.Context) string {
	if c := ClaimsFrom(ctx); c != nil {
		return c.Login
	}
	return ""
}

// CurrentUserCan reports whether the authenticated caller has the capability
func CurrentUserCan(ctx context.Context, cap Capability) bool {
	c := ClaimsFrom(ctx)
	if c == nil || c.Login == "" {
		return false
	}
	return Can(c.Roles, cap)
}

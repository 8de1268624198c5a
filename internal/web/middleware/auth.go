package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/wpschema/wpschema/internal/web/auth"
	"github.com/wpschema/wpschema/internal/web/response"
)

// AuthConfig holds the credential checkers for the auth middleware
type AuthConfig struct {
	Tokens       *auth.TokenService
	AppPasswords *auth.AppPasswords
	Logger       *zap.Logger
}

// Authenticate resolves the caller from a Bearer token or Basic
// application password. Requests without credentials pass through
// anonymously; invalid credentials are rejected with 401.
func Authenticate(config AuthConfig) Middleware {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authenticate(config, r, header)
			if err != nil {
				logger.Debug("authentication failed", zap.String("path", r.URL.Path), zap.Error(err))
				response.RenderUnauthorized(w, "Invalid credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

func authenticate(config AuthConfig, r *http.Request, header string) (*auth.Claims, error) {
	scheme, _, _ := strings.Cut(header, " ")
	switch strings.ToLower(scheme) {
	case "bearer":
		token := strings.TrimSpace(header[len(scheme):])
		if token == "" || config.Tokens == nil {
			return nil, auth.ErrInvalidCredentials
		}
		return config.Tokens.ValidateToken(token)
	case "basic":
		login, password, ok := r.BasicAuth()
		if !ok || config.AppPasswords == nil {
			return nil, auth.ErrInvalidCredentials
		}
		return config.AppPasswords.Verify(login, password)
	default:
		return nil, auth.ErrInvalidCredentials
	}
}

// RequireCapability rejects anonymous callers with 401 and callers
// whose roles lack the capability with 403.
func RequireCapability(cap auth.Capability) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.GetCurrentUser(r.Context()) == "" {
				response.RenderUnauthorized(w, "")
				return
			}
			if !auth.CurrentUserCan(r.Context(), cap) {
				response.RenderForbidden(w, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Package auth authenticates REST callers with signed tokens or
// WordPress application passwords and maps their roles to capabilities.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredentials is returned for any failed authentication
var ErrInvalidCredentials = errors.New("invalid credentials")

// Claims identify the caller of a token
type Claims struct {
	Login string
	Roles []string
}

// TokenService issues and validates HS256 tokens
type TokenService struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewTokenService creates a TokenService with the given secret and lifetime
func NewTokenService(secretKey string, tokenTTL time.Duration) *TokenService {
	return &TokenService{
		secretKey: secretKey,
		tokenTTL:  tokenTTL,
	}
}

// GenerateToken signs a token for the login and roles
func (s *TokenService) GenerateToken(login string, roles []string) (string, error) {
	if s.secretKey == "" {
		return "", errors.New("token secret is not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   login,
		"roles": roles,
		"exp":   now.Add(s.tokenTTL).Unix(),
		"iat":   now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken verifies the signature and expiry and returns the caller
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	if s.secretKey == "" {
		return nil, ErrInvalidCredentials
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// pin the algorithm so an "alg: none" or RS256 header is refused
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	login, err := mc.GetSubject()
	if err != nil || login == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidCredentials)
	}

	claims := &Claims{Login: login}
	if raw, ok := mc["roles"].([]interface{}); ok {
		for _, r := range raw {
			if role, ok := r.(string); ok {
				claims.Roles = append(claims.Roles, role)
			}
		}
	}
	return claims, nil
}

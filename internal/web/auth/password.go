package auth

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain text password using bcrypt. Passwords
// longer than 72 bytes are rejected.
func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", fmt.Errorf("password exceeds maximum length of 72 bytes")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword compares a plain text password with a bcrypt hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AppPassword is a WordPress application password
type AppPassword struct {
	Login string   `mapstructure:"login" yaml:"login"`
	Hash  string   `mapstructure:"hash" yaml:"hash"`
	Roles []string `mapstructure:"roles" yaml:"roles"`
}

// AppPasswords checks HTTP Basic credentials against bcrypt hashes
type AppPasswords struct {
	mu      sync.RWMutex
	byLogin map[string][]AppPassword
}

// NewAppPasswords indexes the configured passwords by login
func NewAppPasswords(passwords []AppPassword) *AppPasswords {
	a := &AppPasswords{byLogin: make(map[string][]AppPassword)}
	for _, p := range passwords {
		a.Add(p)
	}
	return a
}

// Add registers another password
func (a *AppPasswords) Add(p AppPassword) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.byLogin[p.Login] = append(a.byLogin[p.Login], p)
}

// Verify returns the caller when one of the login's passwords matches.
// WordPress displays application passwords in groups of four separated
// by spaces; the spaces are ignored.
func (a *AppPasswords) Verify(login, password string) (*Claims, error) {
	password = strings.ReplaceAll(password, " ", "")
	a.mu.RLock()
	candidates := a.byLogin[login]
	a.mu.RUnlock()

	for _, p := range candidates {
		if CheckPassword(password, p.Hash) {
			return &Claims{Login: login, Roles: append([]string(nil), p.Roles...)}, nil
		}
	}
	return nil, ErrInvalidCredentials
}

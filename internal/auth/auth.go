package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

// HeaderName is the request header carrying the admin key
const HeaderName = "X-Admin-Key"

// Auth guards admin-only endpoints with a shared key
type Auth struct {
	adminKey string
}

// New creates a new Auth instance with the given admin key
func New(adminKey string) *Auth {
	return &Auth{adminKey: adminKey}
}

// GenerateKey creates a random 32-character hex admin key
func GenerateKey() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// Validate checks a presented key against the configured one in
// constant time
func (a *Auth) Validate(key string) bool {
	if a.adminKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(a.adminKey)) == 1
}

// RequireAdminKey middleware for admin API endpoints (returns 401)
func (a *Auth) RequireAdminKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Validate(r.Header.Get(HeaderName)) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - admin key required"}`))
	})
}

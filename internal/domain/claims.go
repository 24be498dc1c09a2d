package domain

import (
	"crypto/rsa"
	"time"
)

// BearerClaims is the validated claim set of a verified provider-issued bearer
// token. Produced only by successful verification; never built from untrusted
// input directly.
type BearerClaims struct {
	Subject   string
	Email     string
	Audience  []string
	Issuer    string
	ExpiresAt time.Time
	Scopes    []string
}

// HasScope reports whether the token was granted the given scope.
func (c *BearerClaims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// SessionClaims is the decoded claim set of a first-party session token.
// Bearer and session tokens are disjoint trust domains: a token of one kind
// must never validate as the other.
type SessionClaims struct {
	Subject   string
	ExpiresAt time.Time
	Extra     map[string]any
}

// Identity is the normalized external identity returned by the
// authorization-code exchange. Facts only; no user or session decisions.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
}

// KeySet is the cached public-key material used to verify bearer signatures.
// Replaced wholesale on every refresh, never merged.
type KeySet struct {
	Keys      map[string]*rsa.PublicKey
	FetchedAt time.Time
}

// Key returns the key with the exact identifier, if present. No fuzzy
// matching: an absent kid is a hard failure at the caller.
func (s *KeySet) Key(kid string) (*rsa.PublicKey, bool) {
	k, ok := s.Keys[kid]
	return k, ok
}

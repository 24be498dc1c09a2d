package token

import (
	"errors"
	"fmt"
	"time"

	"fin-hub/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// registeredClaimKeys are claim names callers may not smuggle in through the
// extra map; the codec owns them.
var registeredClaimKeys = map[string]struct{}{
	"sub": {},
	"exp": {},
	"iat": {},
}

// Codec issues and validates first-party HS256 session tokens.
// Implements domain.SessionCodec.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec creates a session token codec with the given signing secret and
// token lifetime.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the codec's time source. Used in tests.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// TTL is the configured session lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a session token for the subject. Extra claims are carried
// verbatim except for the registered claims, which the codec always sets
// itself.
func (c *Codec) Issue(subject string, extra map[string]any) (string, error) {
	if subject == "" {
		return "", domain.ErrSubjectMissing
	}

	now := c.now()
	claims := jwt.MapClaims{}
	for k, v := range extra {
		if _, reserved := registeredClaimKeys[k]; reserved {
			continue
		}
		claims[k] = v
	}
	claims["sub"] = subject
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(c.ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}
	return signed, nil
}

// Validate checks the token's signature and expiry and returns its claims.
// Any failure collapses to ErrSessionInvalid: a session cookie is either
// fully trusted or worthless.
func (c *Codec) Validate(raw string) (*domain.SessionClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionInvalid, err)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, errors.Join(domain.ErrSessionInvalid, domain.ErrSubjectMissing)
	}
	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return nil, fmt.Errorf("%w: expiry missing", domain.ErrSessionInvalid)
	}

	extra := make(map[string]any, len(claims))
	for k, v := range claims {
		if _, reserved := registeredClaimKeys[k]; reserved {
			continue
		}
		extra[k] = v
	}

	return &domain.SessionClaims{
		Subject:   subject,
		ExpiresAt: expiresAt.Time,
		Extra:     extra,
	}, nil
}

package token

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fin-hub/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates provider-issued RS256 bearer tokens against the cached
// key set. Implements domain.BearerVerifier.
type Verifier struct {
	keys     domain.KeySetProvider
	audience string
	issuer   string
	now      func() time.Time
}

// NewVerifier creates a bearer verifier for the given audience and issuer.
func NewVerifier(keys domain.KeySetProvider, audience, issuer string) *Verifier {
	return &Verifier{
		keys:     keys,
		audience: audience,
		issuer:   issuer,
		now:      time.Now,
	}
}

// WithClock overrides the verifier's time source. Used in tests.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

// Verify checks the token's signature and registered claims and returns the
// validated claim set. A kid absent from the cached set triggers exactly one
// forced key refresh before the token is rejected, so freshly rotated
// provider keys are picked up without waiting out the cache TTL.
func (v *Verifier) Verify(ctx context.Context, raw string) (*domain.BearerClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)

	token, err := parser.ParseWithClaims(raw, claims, v.keyFunc(ctx))
	if err != nil {
		return nil, mapParseError(err)
	}

	return v.extractClaims(token, claims)
}

// keyFunc resolves the verification key for a parsed token header. The
// signing method is checked here rather than via parser options so that a
// disallowed algorithm is distinguishable from a bad signature.
func (v *Verifier) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok || token.Method.Alg() != "RS256" {
			return nil, fmt.Errorf("%w: %s", domain.ErrAlgorithmNotAllowed, token.Method.Alg())
		}

		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, fmt.Errorf("%w: kid header missing", domain.ErrKeyNotFound)
		}

		set, err := v.keys.GetKeys(ctx)
		if err != nil {
			return nil, err
		}
		if key, ok := set.Key(kid); ok {
			return key, nil
		}

		// Unknown kid: the provider may have rotated its keys since the
		// last fetch. Refresh once and retry the lookup.
		set, err = v.keys.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		if key, ok := set.Key(kid); ok {
			return key, nil
		}
		return nil, fmt.Errorf("%w: kid %q", domain.ErrKeyNotFound, kid)
	}
}

func (v *Verifier) extractClaims(token *jwt.Token, claims jwt.MapClaims) (*domain.BearerClaims, error) {
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, domain.ErrSubjectMissing
	}

	audience, err := claims.GetAudience()
	if err != nil {
		return nil, fmt.Errorf("%w: audience", domain.ErrClaimMismatch)
	}
	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return nil, fmt.Errorf("%w: expiry", domain.ErrClaimMismatch)
	}

	out := &domain.BearerClaims{
		Subject:   subject,
		Email:     v.email(claims),
		Audience:  audience,
		Issuer:    v.issuer,
		ExpiresAt: expiresAt.Time,
	}
	if scope, ok := claims["scope"].(string); ok && scope != "" {
		out.Scopes = strings.Fields(scope)
	}
	return out, nil
}

// email resolves the token's email claim. Access tokens carry it under an
// issuer-namespaced custom claim; the plain claim is checked first for
// tokens that include it directly.
func (v *Verifier) email(claims jwt.MapClaims) string {
	if email, ok := claims["email"].(string); ok && email != "" {
		return email
	}
	if email, ok := claims[v.issuer+"email"].(string); ok {
		return email
	}
	return ""
}

// mapParseError translates golang-jwt parse failures into the domain error
// taxonomy. Keyfunc errors are joined into the parser's error chain, so
// sentinel checks reach them through errors.Is.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, domain.ErrAlgorithmNotAllowed),
		errors.Is(err, domain.ErrKeyNotFound),
		errors.Is(err, domain.ErrKeySetUnavailable):
		return err
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", domain.ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", domain.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", domain.ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %w", domain.ErrClaimMismatch, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrTokenMalformed, err)
	}
}

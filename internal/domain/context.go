package domain

import "context"

type userContextKey struct{}

type bearerContextKey struct{}

// WithUser attaches the resolved session user to the request context.
func WithUser(ctx context.Context, user *LocalUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the session user set by the session middleware.
func UserFromContext(ctx context.Context) (*LocalUser, error) {
	user, ok := ctx.Value(userContextKey{}).(*LocalUser)
	if !ok || user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// WithBearerClaims attaches verified bearer claims to the request context.
func WithBearerClaims(ctx context.Context, claims *BearerClaims) context.Context {
	return context.WithValue(ctx, bearerContextKey{}, claims)
}

// BearerClaimsFromContext returns claims set by the bearer middleware.
func BearerClaimsFromContext(ctx context.Context) (*BearerClaims, error) {
	claims, ok := ctx.Value(bearerContextKey{}).(*BearerClaims)
	if !ok || claims == nil {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

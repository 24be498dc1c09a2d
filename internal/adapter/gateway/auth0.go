package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fin-hub/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Auth0Gateway exchanges authorization codes with the identity provider and
// verifies the returned ID token. Implements domain.CodeExchanger.
type Auth0Gateway struct {
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
	timeout  time.Duration
}

// NewAuth0Gateway discovers the provider's endpoints from the issuer URL and
// prepares the token verifier. Discovery is a startup-time network call; a
// provider outage here fails fast instead of at first login.
func NewAuth0Gateway(ctx context.Context, issuer, clientID, clientSecret string) (*Auth0Gateway, error) {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}
	ctx = oidc.ClientContext(ctx, &http.Client{
		Timeout:   10 * time.Second,
		Transport: transport,
	})

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("%w: discovery: %w", domain.ErrExchangeFailed, err)
	}

	return &Auth0Gateway{
		oauth: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		timeout:  10 * time.Second,
	}, nil
}

// Exchange trades an authorization code for a verified identity. The ID token
// signature and claims are checked before any field is trusted.
func (g *Auth0Gateway) Exchange(ctx context.Context, code, redirectURI string) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	conf := g.oauth
	conf.RedirectURL = redirectURI

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil &&
			retrieveErr.Response.StatusCode >= 400 && retrieveErr.Response.StatusCode < 500 {
			return nil, fmt.Errorf("%w: %w", domain.ErrExchangeRejected, err)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrExchangeFailed, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: no id_token in token response", domain.ErrIdentityClaimsIncomplete)
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: id token verification: %w", domain.ErrExchangeFailed, err)
	}

	if idToken.Subject == "" {
		return nil, fmt.Errorf("%w: subject missing", domain.ErrIdentityClaimsIncomplete)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIdentityClaimsIncomplete, err)
	}

	return &domain.Identity{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}, nil
}

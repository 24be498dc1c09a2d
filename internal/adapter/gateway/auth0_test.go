package gateway

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fin-hub/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientID = "test-client-id"

// fakeProvider is an in-process OIDC provider: discovery document, JWKS
// endpoint, and a token endpoint keyed by authorization code.
type fakeProvider struct {
	srv  *httptest.Server
	priv *rsa.PrivateKey

	// tokenResponse overrides the default successful token response.
	tokenResponse func(w http.ResponseWriter, code string)
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p := &fakeProvider{priv: priv}
	mux := http.NewServeMux()

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 p.srv.URL,
			"authorization_endpoint": p.srv.URL + "/authorize",
			"token_endpoint":         p.srv.URL + "/oauth/token",
			"jwks_uri":               p.srv.URL + "/jwks",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})

	mux.HandleFunc("/jwks", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"use": "sig",
				"kid": "fake-kid",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(priv.PublicKey.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(priv.PublicKey.E)).Bytes()),
			}},
		})
	})

	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		code := r.PostFormValue("code")
		if p.tokenResponse != nil {
			p.tokenResponse(w, code)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fake-access-token",
			"token_type":   "Bearer",
			"id_token":     p.signIDToken(t),
		})
	})

	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakeProvider) signIDToken(t *testing.T) string {
	t.Helper()
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":            p.srv.URL,
		"aud":            testClientID,
		"sub":            "auth0|user-1",
		"email":          "user@example.com",
		"email_verified": true,
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	})
	tok.Header["kid"] = "fake-kid"
	signed, err := tok.SignedString(p.priv)
	require.NoError(t, err)
	return signed
}

func (p *fakeProvider) gateway(t *testing.T) *Auth0Gateway {
	t.Helper()
	g, err := NewAuth0Gateway(context.Background(), p.srv.URL, testClientID, "test-client-secret")
	require.NoError(t, err)
	return g
}

func TestAuth0Gateway_Exchange_Success(t *testing.T) {
	p := newFakeProvider(t)
	g := p.gateway(t)

	identity, err := g.Exchange(context.Background(), "good-code", "http://localhost:3000/callback")
	require.NoError(t, err)
	assert.Equal(t, "auth0|user-1", identity.Subject)
	assert.Equal(t, "user@example.com", identity.Email)
	assert.True(t, identity.EmailVerified)
}

func TestAuth0Gateway_Exchange_RejectedCode(t *testing.T) {
	p := newFakeProvider(t)
	p.tokenResponse = func(w http.ResponseWriter, code string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Invalid authorization code"}`)
	}
	g := p.gateway(t)

	_, err := g.Exchange(context.Background(), "bad-code", "http://localhost:3000/callback")
	assert.ErrorIs(t, err, domain.ErrExchangeRejected)
}

func TestAuth0Gateway_Exchange_ProviderError(t *testing.T) {
	p := newFakeProvider(t)
	p.tokenResponse = func(w http.ResponseWriter, code string) {
		w.WriteHeader(http.StatusInternalServerError)
	}
	g := p.gateway(t)

	_, err := g.Exchange(context.Background(), "any-code", "http://localhost:3000/callback")
	assert.ErrorIs(t, err, domain.ErrExchangeFailed)
}

func TestAuth0Gateway_Exchange_MissingIDToken(t *testing.T) {
	p := newFakeProvider(t)
	p.tokenResponse = func(w http.ResponseWriter, code string) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fake-access-token","token_type":"Bearer"}`)
	}
	g := p.gateway(t)

	_, err := g.Exchange(context.Background(), "good-code", "http://localhost:3000/callback")
	assert.ErrorIs(t, err, domain.ErrIdentityClaimsIncomplete)
}

func TestNewAuth0Gateway_DiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewAuth0Gateway(context.Background(), srv.URL, testClientID, "secret")
	assert.ErrorIs(t, err, domain.ErrExchangeFailed)
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"fin-hub/internal/domain"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockVerifier struct {
	claims *domain.BearerClaims
	err    error
	got    string
}

func (m *mockVerifier) Verify(_ context.Context, token string) (*domain.BearerClaims, error) {
	m.got = token
	return m.claims, m.err
}

func runBearer(t *testing.T, verifier domain.BearerVerifier, authorization string) (*httptest.ResponseRecorder, *domain.BearerClaims, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *domain.BearerClaims
	handler := func(c echo.Context) error {
		claims, err := domain.BearerClaimsFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		seen = claims
		return c.NoContent(http.StatusOK)
	}

	err := BearerAuth(verifier)(handler)(c)
	return rec, seen, err
}

func TestBearerAuth_Valid(t *testing.T) {
	verifier := &mockVerifier{claims: &domain.BearerClaims{Subject: "auth0|user-1"}}

	_, seen, err := runBearer(t, verifier, "Bearer some-token")

	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "auth0|user-1", seen.Subject)
	assert.Equal(t, "some-token", verifier.got)
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	rec, _, err := runBearer(t, &mockVerifier{}, "")

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
}

func TestBearerAuth_WrongScheme(t *testing.T) {
	_, _, err := runBearer(t, &mockVerifier{}, "Basic dXNlcjpwYXNz")

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestBearerAuth_RejectedToken(t *testing.T) {
	verifier := &mockVerifier{err: domain.ErrSignatureInvalid}

	rec, _, err := runBearer(t, verifier, "Bearer tampered")

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderWWWAuthenticate), "invalid_token")
}

func TestBearerAuth_KeySetUnavailable(t *testing.T) {
	verifier := &mockVerifier{err: domain.ErrKeySetUnavailable}

	_, _, err := runBearer(t, verifier, "Bearer some-token")

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Code)
}

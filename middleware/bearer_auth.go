package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"fin-hub/internal/domain"

	"github.com/labstack/echo/v4"
)

const bearerPrefix = "Bearer "

// BearerAuth verifies the Authorization header against the identity
// provider's key set and attaches the claims to the request context.
// A missing key set is reported as unavailability, not as a bad credential.
func BearerAuth(verifier domain.BearerVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return echo.NewHTTPError(http.StatusUnauthorized, "bearer token required")
			}

			claims, err := verifier.Verify(ctx, strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				if errors.Is(err, domain.ErrKeySetUnavailable) {
					slog.ErrorContext(ctx, "bearer verification unavailable", "error", err)
					return echo.NewHTTPError(http.StatusServiceUnavailable, "upstream provider unavailable")
				}
				slog.WarnContext(ctx, "bearer token rejected", "error", err)
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer error="invalid_token"`)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid bearer token")
			}

			c.SetRequest(c.Request().WithContext(domain.WithBearerClaims(ctx, claims)))
			return next(c)
		}
	}
}

package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"fin-hub/internal/adapter/handler"
	"fin-hub/internal/domain"
	"fin-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SessionAuth resolves the session cookie into a stored user and attaches it
// to the request context. An invalid cookie is cleared on the way out so the
// browser stops resending it.
func SessionAuth(resolver *usecase.ResolveSession, cookieSecure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			cookie, err := c.Cookie(handler.SessionCookieName)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			user, err := resolver.Execute(ctx, cookie.Value)
			if err != nil {
				if errors.Is(err, domain.ErrSessionInvalid) {
					handler.ClearSessionCookie(c, cookieSecure)
				}
				slog.WarnContext(ctx, "session rejected", "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			c.SetRequest(c.Request().WithContext(domain.WithUser(ctx, user)))
			return next(c)
		}
	}
}

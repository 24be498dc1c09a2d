package handler

import (
	"errors"
	"net/http"

	"fin-hub/internal/domain"

	"github.com/labstack/echo/v4"
)

// mapDomainError converts a domain error into an appropriate echo.HTTPError.
// Credential failures are indistinguishable to the client on purpose.
func mapDomainError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrTokenMalformed),
		errors.Is(err, domain.ErrKeyNotFound),
		errors.Is(err, domain.ErrAlgorithmNotAllowed),
		errors.Is(err, domain.ErrSignatureInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrClaimMismatch),
		errors.Is(err, domain.ErrSubjectMissing),
		errors.Is(err, domain.ErrSessionInvalid):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")

	case errors.Is(err, domain.ErrExchangeRejected),
		errors.Is(err, domain.ErrAggregatorRejected):
		return echo.NewHTTPError(http.StatusBadRequest, "request rejected by upstream provider")

	case errors.Is(err, domain.ErrKeySetUnavailable),
		errors.Is(err, domain.ErrExchangeFailed),
		errors.Is(err, domain.ErrAggregatorUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "upstream provider unavailable")

	case errors.Is(err, domain.ErrIdentityClaimsIncomplete):
		return echo.NewHTTPError(http.StatusBadGateway, "identity provider returned incomplete identity")

	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrItemNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")

	case errors.Is(err, domain.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")

	case errors.Is(err, domain.ErrTokenGeneration):
		return echo.NewHTTPError(http.StatusInternalServerError, "token generation error")

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

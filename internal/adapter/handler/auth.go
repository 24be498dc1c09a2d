package handler

import (
	"log/slog"
	"net/http"
	"time"

	"fin-hub/internal/domain"
	"fin-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie carrying the first-party session token.
const SessionCookieName = "session_token"

// CookieConfig controls the attributes of the session cookie.
type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

// AuthHandler handles login, logout and session introspection.
type AuthHandler struct {
	login   *usecase.Login
	cookies CookieConfig
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(login *usecase.Login, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{login: login, cookies: cookies}
}

// loginRequest is the login request body.
type loginRequest struct {
	Code        string `json:"code" validate:"required"`
	RedirectURI string `json:"redirect_uri" validate:"required,uri"`
}

// userResponse is the user object returned by auth endpoints.
type userResponse struct {
	Subject   string    `json:"subject"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(user *domain.LocalUser) userResponse {
	return userResponse{
		Subject:   user.Subject,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// Login exchanges an authorization code and establishes a session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "code and redirect_uri are required")
	}

	result, err := h.login.Execute(ctx, req.Code, req.RedirectURI)
	if err != nil {
		return mapDomainError(err)
	}

	c.SetCookie(h.sessionCookie(result.Token, int(h.cookies.TTL.Seconds())))

	return c.JSON(http.StatusOK, map[string]any{
		"user": toUserResponse(result.User),
	})
}

// Logout clears the session cookie. Always succeeds: logging out without a
// session is not an error.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", -1))
	return c.JSON(http.StatusOK, map[string]string{"status": "logged_out"})
}

// Session returns the user resolved by the session middleware.
func (h *AuthHandler) Session(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := domain.UserFromContext(ctx)
	if err != nil {
		slog.WarnContext(ctx, "session endpoint reached without resolved user")
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user": toUserResponse(user),
	})
}

// sessionCookie builds the session cookie with the fixed first-party
// attributes: HTTP-only, SameSite=Lax, path "/".
func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie expires the session cookie on the response. Used by the
// session middleware when it rejects an invalid cookie.
func ClearSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

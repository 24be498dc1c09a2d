package handler

import (
	"net/http"

	"fin-hub/internal/domain"
	"fin-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// UsersHandler handles bearer-protected user endpoints.
type UsersHandler struct {
	profile *usecase.GetProfile
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(profile *usecase.GetProfile) *UsersHandler {
	return &UsersHandler{profile: profile}
}

// Me returns the user for the verified bearer claims, creating the record on
// first request.
func (h *UsersHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()

	claims, err := domain.BearerClaimsFromContext(ctx)
	if err != nil {
		return mapDomainError(err)
	}

	user, err := h.profile.Execute(ctx, claims)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user": toUserResponse(user),
	})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	serviceName string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(serviceName string) *HealthHandler {
	return &HealthHandler{serviceName: serviceName}
}

// Handle processes the /health endpoint.
func (h *HealthHandler) Handle(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": h.serviceName,
	})
}

// Root answers the bare root path so load balancers and humans get a
// non-404 response.
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": h.serviceName,
	})
}

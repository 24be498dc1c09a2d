package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// OTelStatusMiddleware sets span status and HTTP attributes from the
// response. Per the OTel HTTP conventions only 5xx marks the span as an
// error; 4xx is normal operation from the server's point of view.
//
// Must run after otelecho.Middleware, which creates the span.
func OTelStatusMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			span := trace.SpanFromContext(c.Request().Context())
			if !span.SpanContext().IsValid() {
				return err
			}

			status := c.Response().Status
			span.SetAttributes(semconv.HTTPResponseStatusCode(status))

			if status >= 500 {
				span.SetStatus(codes.Error, http.StatusText(status))
				if err != nil {
					span.RecordError(err)
				}
			}

			return err
		}
	}
}

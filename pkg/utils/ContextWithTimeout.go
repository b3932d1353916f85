package utils

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// Ctx derives a request-scoped context that expires after timeout.
func Ctx(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), timeout)
}

package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"invoice-system/pkg/utils"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

type HealthController struct {
	checks  map[string]HealthCheck
	timeout time.Duration
	logger  *zap.Logger
}

func NewHealthController(checks map[string]HealthCheck, timeout time.Duration, logger *zap.Logger) *HealthController {
	return &HealthController{checks: checks, timeout: timeout, logger: logger}
}

func (c *HealthController) Health(ctx echo.Context) error {
	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	report := make(map[string]string, len(c.checks))
	healthy := true
	for name, check := range c.checks {
		if err := check(reqCtx); err != nil {
			c.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			report[name] = "down"
			healthy = false
			continue
		}
		report[name] = "up"
	}

	if !healthy {
		return ctx.JSON(http.StatusServiceUnavailable, &utils.HttpResponse{Status: false, Body: report, Message: "Degraded."})
	}
	return utils.SuccessResponse(ctx, report, "OK.", http.StatusOK)
}

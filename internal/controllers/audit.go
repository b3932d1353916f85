package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"invoice-system/internal/services"
	"invoice-system/pkg/utils"
)

type AuditController struct {
	auditService services.AuditCheckServiceInterface
	timeout      time.Duration
	logger       *zap.Logger
}

func NewAuditController(auditService services.AuditCheckServiceInterface, timeout time.Duration, logger *zap.Logger) *AuditController {
	return &AuditController{auditService: auditService, timeout: timeout, logger: logger}
}

// FindMismatches lists invoices whose status disagrees with their latest log entry.
func (c *AuditController) FindMismatches(ctx echo.Context) error {
	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	res, err := c.auditService.FindMismatches(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	message := "Status log is consistent."
	if len(res) > 0 {
		message = "Invoices out of sync with their status log."
	}
	return utils.SuccessResponse(ctx, res, message, http.StatusOK)
}

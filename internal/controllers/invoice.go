package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"invoice-system/internal/dto"
	"invoice-system/internal/entities"
	"invoice-system/internal/services"
	apperrors "invoice-system/pkg/errors"
	"invoice-system/pkg/utils"
)

type InvoiceController struct {
	invoiceService services.InvoiceServiceInterface
	editWorkflow   services.InvoiceEditWorkflowInterface
	restore        services.RestoreWorkflowInterface
	identity       services.IdentityProviderInterface
	timeout        time.Duration
	logger         *zap.Logger
}

func NewInvoiceController(
	invoiceService services.InvoiceServiceInterface,
	editWorkflow services.InvoiceEditWorkflowInterface,
	restore services.RestoreWorkflowInterface,
	identity services.IdentityProviderInterface,
	timeout time.Duration,
	logger *zap.Logger,
) *InvoiceController {
	return &InvoiceController{
		invoiceService: invoiceService,
		editWorkflow:   editWorkflow,
		restore:        restore,
		identity:       identity,
		timeout:        timeout,
		logger:         logger,
	}
}

func (c *InvoiceController) FindInvoice(ctx echo.Context) error {
	id, err := c.invoiceID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	res, err := c.invoiceService.FindInvoice(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Invoice found.", http.StatusOK)
}

func (c *InvoiceController) CreateInvoice(ctx echo.Context) error {
	var payload dto.CreateInvoiceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	actor, err := c.identity.ResolveCurrentUser(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.invoiceService.CreateInvoice(reqCtx, payload, actor)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Invoice created.", http.StatusCreated)
}

func (c *InvoiceController) EditInvoice(ctx echo.Context) error {
	id, err := c.invoiceID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateInvoiceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}

	return c.mutate(ctx, "Invoice updated.", func(reqCtx context.Context, actor entities.Actor) error {
		return c.editWorkflow.EditInvoice(reqCtx, id, payload, actor)
	})
}

func (c *InvoiceController) CancelInvoice(ctx echo.Context) error {
	id, err := c.invoiceID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return c.mutate(ctx, "Invoice canceled.", func(reqCtx context.Context, actor entities.Actor) error {
		return c.invoiceService.CancelInvoice(reqCtx, id, actor)
	})
}

func (c *InvoiceController) ChangeStatus(ctx echo.Context) error {
	id, err := c.invoiceID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.StatusChangeDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}
	payload.InvoiceID = id

	return c.mutate(ctx, "Invoice status updated.", func(reqCtx context.Context, actor entities.Actor) error {
		return c.invoiceService.ChangeStatus(reqCtx, payload, actor)
	})
}

func (c *InvoiceController) RestoreStatus(ctx echo.Context) error {
	id, err := c.invoiceID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.RestoreStatusDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}

	return c.mutate(ctx, "Invoice status restored.", func(reqCtx context.Context, actor entities.Actor) error {
		return c.restore.RestoreStatus(reqCtx, id, payload, actor)
	})
}

// GetStatusLog returns the history as JSON, or as a workbook with ?format=xlsx.
func (c *InvoiceController) GetStatusLog(ctx echo.Context) error {
	id, err := c.invoiceID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	entries, err := c.invoiceService.GetStatusLog(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if strings.EqualFold(ctx.QueryParam("format"), "xlsx") {
		return c.respondWithXLSX(ctx, id, entries)
	}
	return utils.SuccessResponse(ctx, entries, "Status log loaded.", http.StatusOK)
}

// mutate resolves the acting user for this request and runs fn with it.
func (c *InvoiceController) mutate(ctx echo.Context, message string, fn func(reqCtx context.Context, actor entities.Actor) error) error {
	reqCtx, cancel := utils.Ctx(ctx, c.timeout)
	defer cancel()

	actor, err := c.identity.ResolveCurrentUser(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := fn(reqCtx, actor); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, message, http.StatusOK)
}

func (c *InvoiceController) invoiceID(ctx echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.NewHttpError(http.StatusBadRequest, "Invalid invoice id", err, nil)
	}
	return id, nil
}

func badBody(err error) error {
	return apperrors.NewHttpError(http.StatusBadRequest, "Invalid request body", err, nil)
}

package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "invoice-system/pkg/errors"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	var response *HttpResponse = &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	}
	return ctx.JSON(
		code,
		response,
	)
}

// ErrorResponse writes err as the JSON envelope. Storage failures and timeouts get a
// generic retry message; the cause is only logged.
func ErrorResponse(ctx echo.Context, err error, logger *zap.Logger) error {
	var message string = err.Error()
	var code int = http.StatusInternalServerError
	var body interface{} = struct{}{}

	var verr *apperrors.ValidationError
	var httpErr *apperrors.HttpError
	var storageErr *apperrors.StorageError

	switch {
	case errors.As(err, &verr):
		code = http.StatusBadRequest
		message = verr.Message
		body = verr.Fields
	case errors.As(err, &httpErr):
		code = httpErr.Code
		message = httpErr.Message
		if httpErr.Details != nil {
			body = httpErr.Details
		}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		code = http.StatusGatewayTimeout
		message = "The request timed out. Its outcome is unknown; reload the invoice and retry."
	case errors.As(err, &storageErr):
		message = fmt.Sprintf("Database Error: Failed to %s. Please try again.", storageErr.Op)
	case errors.Is(err, apperrors.ErrStorageFailure):
		message = storageFailureMessage
	default:
		if mapped, ok := statusFor(err); ok {
			code = mapped
		} else {
			message = "Internal server error"
		}
	}

	if logger != nil {
		if code >= http.StatusInternalServerError {
			logger.Error("request failed", zap.Int("status", code), zap.Error(err))
		} else {
			logger.Warn("request rejected", zap.Int("status", code), zap.Error(err))
		}
	}

	var response *HttpResponse = &HttpResponse{
		Status:  false,
		Body:    body,
		Message: message,
	}

	return ctx.JSON(
		code,
		response,
	)
}

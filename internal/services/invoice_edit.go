package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"invoice-system/internal/dto"
	"invoice-system/internal/entities"
	apperrors "invoice-system/pkg/errors"
	"invoice-system/pkg/validation"
)

const (
	msgUpdateInvoiceInvalid = "Missing Fields. Failed to Update Invoice."
	opUpdateInvoice         = "update invoice"
)

type InvoiceEditWorkflowInterface interface {
	EditInvoice(ctx context.Context, invoiceID uuid.UUID, in dto.UpdateInvoiceDTO, actor entities.Actor) error
}

type InvoiceEditWorkflow struct {
	transitions *StatusTransitionService
	invalidator InvalidatorInterface
	validator   *validation.CustomValidator
	logger      *zap.Logger
}

func NewInvoiceEditWorkflow(
	transitions *StatusTransitionService,
	invalidator InvalidatorInterface,
	validator *validation.CustomValidator,
	logger *zap.Logger,
) InvoiceEditWorkflowInterface {
	return &InvoiceEditWorkflow{
		transitions: transitions,
		invalidator: invalidator,
		validator:   validator,
		logger:      logger,
	}
}

// EditInvoice writes customer, amount and status in one update and appends a "change"
// entry only when the status moved from the stored one. A PreviousStatus sent by the
// client that disagrees with storage is logged as stale and otherwise ignored.
func (w *InvoiceEditWorkflow) EditInvoice(ctx context.Context, invoiceID uuid.UUID, in dto.UpdateInvoiceDTO, actor entities.Actor) error {
	if err := w.validator.ValidateWithMessage(&in, msgUpdateInvoiceInvalid); err != nil {
		return err
	}
	if !actor.IsResolved() {
		return apperrors.ErrUnresolvedIdentity
	}

	customerID, err := uuid.Parse(in.CustomerID)
	if err != nil {
		return apperrors.NewValidationError(msgUpdateInvoiceInvalid, map[string][]string{
			"customer_id": {"Please select a customer."},
		})
	}
	newStatus := entities.InvoiceStatus(in.Status)
	amount := in.Amount
	update := entities.InvoiceUpdate{
		CustomerID:      &customerID,
		Amount:          &amount,
		Status:          &newStatus,
		ExpectedVersion: int64Ptr(in.ExpectedVersion),
	}

	repo := w.transitions.invoiceRepo
	statusChanged := false

	err = w.transitions.run(ctx, opUpdateInvoice, func(tx pgx.Tx) error {
		current, err := repo.FindForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return apperrors.NewStorageError(opUpdateInvoice, err)
		}

		previous := current.Status
		if in.PreviousStatus.Valid && entities.InvoiceStatus(in.PreviousStatus.String) != previous {
			w.logger.Warn("stale previous status on invoice edit",
				zap.String("invoiceID", invoiceID.String()),
				zap.String("previousStatus", in.PreviousStatus.String),
				zap.String("storedStatus", string(previous)),
			)
		}

		if _, err := repo.Update(ctx, tx, invoiceID, update); err != nil {
			return apperrors.NewStorageError(opUpdateInvoice, err)
		}

		if previous == newStatus {
			return nil
		}
		statusChanged = true
		_, err = w.transitions.appendEntry(ctx, tx, invoiceID, newStatus, entities.StatusActionChange, actor)
		return err
	})
	if err != nil {
		if w.transitions.partialWritePossible(err) {
			w.invalidator.Invalidate(ctx, InvalidationScope{InvoiceID: invoiceID, Reason: ReasonEdit, Actor: actor})
		}
		return err
	}

	w.logger.Info("invoice edited",
		zap.String("invoiceID", invoiceID.String()),
		zap.Bool("statusChanged", statusChanged),
		zap.String("actor", actor.String()),
	)
	w.invalidator.Invalidate(ctx, InvalidationScope{InvoiceID: invoiceID, Reason: ReasonEdit, Actor: actor})
	return nil
}

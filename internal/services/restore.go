package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"invoice-system/internal/dto"
	"invoice-system/internal/entities"
)

type RestoreWorkflowInterface interface {
	RestoreStatus(ctx context.Context, invoiceID uuid.UUID, in dto.RestoreStatusDTO, actor entities.Actor) error
}

type RestoreWorkflow struct {
	transitions *StatusTransitionService
	invalidator InvalidatorInterface
	logger      *zap.Logger
}

func NewRestoreWorkflow(transitions *StatusTransitionService, invalidator InvalidatorInterface, logger *zap.Logger) RestoreWorkflowInterface {
	return &RestoreWorkflow{
		transitions: transitions,
		invalidator: invalidator,
		logger:      logger,
	}
}

// RestoreStatus re-applies a status taken from an earlier log entry. It always appends a
// "restore" entry, also when the invoice already has that status.
func (w *RestoreWorkflow) RestoreStatus(ctx context.Context, invoiceID uuid.UUID, in dto.RestoreStatusDTO, actor entities.Actor) error {
	err := w.transitions.ApplyStatusChange(ctx, dto.StatusChangeDTO{
		InvoiceID:       invoiceID,
		Status:          in.Status,
		Action:          string(entities.StatusActionRestore),
		ExpectedVersion: in.ExpectedVersion,
	}, actor)
	if err != nil {
		if w.transitions.partialWritePossible(err) {
			w.invalidator.Invalidate(ctx, InvalidationScope{InvoiceID: invoiceID, Reason: ReasonRestore, Actor: actor})
		}
		return err
	}

	w.invalidator.Invalidate(ctx, InvalidationScope{InvoiceID: invoiceID, Reason: ReasonRestore, Actor: actor})
	return nil
}

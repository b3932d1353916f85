package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"invoice-system/internal/dto"
	"invoice-system/internal/entities"
	"invoice-system/internal/events"
	"invoice-system/internal/repositories"
	"invoice-system/pkg/config"
	apperrors "invoice-system/pkg/errors"
	"invoice-system/pkg/validation"
)

const (
	msgStatusChangeInvalid = "Missing Fields. Failed to Update Invoice status."

	opUpdateStatus = "update invoice status"
	opAppendLog    = "record invoice status change"
)

// errLogAppendFailed marks a failure that happened after the invoice update.
var errLogAppendFailed = errors.New("status log append failed")

// StatusTransitionService moves an invoice to a new status and appends the matching
// log entry. The invoice update always precedes the append. It does not compare old and
// new status; suppressing no-op entries is up to the caller.
//
// With atomic writes both statements share one transaction. Without them a failed append
// leaves the invoice updated but unlogged, and that state is logged with partial_write=true
// so the audit check can pick it up. The acting user is also told through a PartialWriteEvent.
type StatusTransitionService struct {
	txManager   repositories.TxManagerInterface
	invoiceRepo repositories.InvoiceRepositoryInterface
	logRepo     repositories.StatusLogRepositoryInterface
	validator   *validation.CustomValidator
	publisher   eventPublisher
	atomic      bool
	now         func() time.Time
	logger      *zap.Logger
}

func NewStatusTransitionService(
	txManager repositories.TxManagerInterface,
	invoiceRepo repositories.InvoiceRepositoryInterface,
	logRepo repositories.StatusLogRepositoryInterface,
	validator *validation.CustomValidator,
	auditCfg config.AuditConfig,
	publisher eventPublisher,
	logger *zap.Logger,
) *StatusTransitionService {
	return &StatusTransitionService{
		txManager:   txManager,
		invoiceRepo: invoiceRepo,
		logRepo:     logRepo,
		validator:   validator,
		publisher:   publisher,
		atomic:      auditCfg.AtomicWrites,
		now:         time.Now,
		logger:      logger,
	}
}

// ApplyStatusChange validates the request, updates the invoice status and appends a log
// entry for it. Every call that succeeds appends exactly one entry.
func (s *StatusTransitionService) ApplyStatusChange(ctx context.Context, in dto.StatusChangeDTO, actor entities.Actor) error {
	if err := s.validator.ValidateWithMessage(&in, msgStatusChangeInvalid); err != nil {
		return err
	}
	if !actor.IsResolved() {
		return apperrors.ErrUnresolvedIdentity
	}

	status := entities.InvoiceStatus(in.Status)
	action := entities.StatusAction(in.Action)

	var entry *entities.StatusLogEntry
	err := s.run(ctx, opUpdateStatus, func(tx pgx.Tx) error {
		if _, err := s.invoiceRepo.UpdateStatus(ctx, tx, in.InvoiceID, status, int64Ptr(in.ExpectedVersion)); err != nil {
			return apperrors.NewStorageError(opUpdateStatus, err)
		}
		var err error
		entry, err = s.appendEntry(ctx, tx, in.InvoiceID, status, action, actor)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("invoice status changed",
		zap.String("invoiceID", in.InvoiceID.String()),
		zap.String("status", string(status)),
		zap.String("action", string(action)),
		zap.String("actor", actor.String()),
		zap.Uint64("logEntryID", entry.ID),
	)
	return nil
}

// run executes fn inside a transaction in atomic mode, or directly with a nil tx otherwise.
func (s *StatusTransitionService) run(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	if !s.atomic {
		return fn(nil)
	}
	if err := s.txManager.RunInTransaction(ctx, fn); err != nil {
		return apperrors.NewStorageError(op, err)
	}
	return nil
}

// appendEntry must only be called once the invoice update has gone through.
func (s *StatusTransitionService) appendEntry(
	ctx context.Context,
	tx pgx.Tx,
	invoiceID uuid.UUID,
	status entities.InvoiceStatus,
	action entities.StatusAction,
	actor entities.Actor,
) (*entities.StatusLogEntry, error) {
	entry := &entities.StatusLogEntry{
		InvoiceID: invoiceID,
		UserID:    actor.NullUserID(),
		Date:      s.today(),
		Status:    status,
		Action:    action,
	}

	if err := s.logRepo.Append(ctx, tx, entry); err != nil {
		if tx == nil {
			s.logger.Error("status log append failed after invoice update",
				zap.Bool("partial_write", true),
				zap.String("invoiceID", invoiceID.String()),
				zap.String("status", string(status)),
				zap.String("action", string(action)),
				zap.Error(err),
			)
			s.reportPartialWrite(ctx, invoiceID, status, action, actor)
		}
		return nil, apperrors.NewStorageError(opAppendLog, fmt.Errorf("%w: %w", errLogAppendFailed, err))
	}
	return entry, nil
}

// reportPartialWrite is a no-op for the system actor, which has no dashboard.
func (s *StatusTransitionService) reportPartialWrite(
	ctx context.Context,
	invoiceID uuid.UUID,
	status entities.InvoiceStatus,
	action entities.StatusAction,
	actor entities.Actor,
) {
	userID := actor.NullUserID()
	if s.publisher == nil || !userID.Valid {
		return
	}
	s.publisher.Publish(ctx, events.PartialWriteEvent{
		InvoiceID: invoiceID,
		UserID:    userID.UUID,
		Status:    string(status),
		Action:    string(action),
	})
}

// partialWritePossible reports whether err left the invoice updated without a log entry.
// Only a non-atomic append failure can.
func (s *StatusTransitionService) partialWritePossible(err error) bool {
	return !s.atomic && errors.Is(err, errLogAppendFailed)
}

func (s *StatusTransitionService) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func int64Ptr(v null.Int64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

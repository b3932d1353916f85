package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"invoice-system/internal/dto"
	"invoice-system/internal/entities"
	"invoice-system/internal/repositories"
	"invoice-system/pkg/config"
	"invoice-system/pkg/constants"
	apperrors "invoice-system/pkg/errors"
	"invoice-system/pkg/validation"
)

const (
	msgCreateInvoiceInvalid = "Missing Fields. Failed to Create Invoice."
	opCreateInvoice         = "create invoice"
	opFindInvoice           = "load invoice"
	opListStatusLog         = "load invoice status log"
)

type InvoiceServiceInterface interface {
	CreateInvoice(ctx context.Context, in dto.CreateInvoiceDTO, actor entities.Actor) (*dto.InvoiceResponseDTO, error)
	FindInvoice(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponseDTO, error)
	ChangeStatus(ctx context.Context, in dto.StatusChangeDTO, actor entities.Actor) error
	CancelInvoice(ctx context.Context, id uuid.UUID, actor entities.Actor) error
	GetStatusLog(ctx context.Context, id uuid.UUID) ([]dto.StatusLogEntryDTO, error)
}

type InvoiceService struct {
	invoiceRepo repositories.InvoiceRepositoryInterface
	logRepo     repositories.StatusLogRepositoryInterface
	transitions *StatusTransitionService
	invalidator InvalidatorInterface
	validator   *validation.CustomValidator
	cache       readThrough
	now         func() time.Time
	logger      *zap.Logger
}

func NewInvoiceService(
	invoiceRepo repositories.InvoiceRepositoryInterface,
	logRepo repositories.StatusLogRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	transitions *StatusTransitionService,
	invalidator InvalidatorInterface,
	validator *validation.CustomValidator,
	redisCfg config.RedisConfig,
	logger *zap.Logger,
) InvoiceServiceInterface {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		logRepo:     logRepo,
		transitions: transitions,
		invalidator: invalidator,
		validator:   validator,
		cache:       readThrough{cache: cacheRepo, ttl: redisCfg.CacheTTL, logger: logger},
		now:         time.Now,
		logger:      logger,
	}
}

// CreateInvoice stores a new invoice dated today. Creation does not write a log entry.
func (s *InvoiceService) CreateInvoice(ctx context.Context, in dto.CreateInvoiceDTO, actor entities.Actor) (*dto.InvoiceResponseDTO, error) {
	if err := s.validator.ValidateWithMessage(&in, msgCreateInvoiceInvalid); err != nil {
		return nil, err
	}
	if !actor.IsResolved() {
		return nil, apperrors.ErrUnresolvedIdentity
	}

	customerID, err := uuid.Parse(in.CustomerID)
	if err != nil {
		return nil, apperrors.NewValidationError(msgCreateInvoiceInvalid, map[string][]string{
			"customer_id": {"Please select a customer."},
		})
	}

	invoice := entities.Invoice{
		CustomerID: customerID,
		Amount:     in.Amount,
		Status:     entities.InvoiceStatus(in.Status),
		Date:       s.transitions.today(),
	}
	if in.DueDate.Valid {
		due, err := time.Parse(constants.DateLayout, in.DueDate.String)
		if err != nil {
			return nil, apperrors.NewValidationError(msgCreateInvoiceInvalid, map[string][]string{
				"due_date": {"Please enter a date in YYYY-MM-DD format."},
			})
		}
		invoice.DueDate = null.TimeFrom(due)
	}

	created, err := s.invoiceRepo.Create(ctx, invoice)
	if err != nil {
		return nil, apperrors.NewStorageError(opCreateInvoice, err)
	}

	s.logger.Info("invoice created", zap.String("invoiceID", created.ID.String()), zap.String("actor", actor.String()))
	s.invalidator.Invalidate(ctx, InvalidationScope{InvoiceID: created.ID, Reason: ReasonCreate, Actor: actor})

	return toInvoiceResponse(created, s.now()), nil
}

// FindInvoice is cache-aside under the invoice's cache generation. A read that loaded
// before a change can only write to the superseded generation. The overdue flag is
// recomputed on every read.
func (s *InvoiceService) FindInvoice(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponseDTO, error) {
	gen, cacheable := s.cache.generation(ctx, id)
	key := fmt.Sprintf(constants.CacheKeyInvoice, id, gen)

	var cached entities.Invoice
	if cacheable && s.cache.get(ctx, key, &cached) {
		return toInvoiceResponse(&cached, s.now()), nil
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewStorageError(opFindInvoice, err)
	}
	if cacheable {
		s.cache.set(ctx, key, invoice)
	}

	return toInvoiceResponse(invoice, s.now()), nil
}

// ChangeStatus is ApplyStatusChange followed by invalidation.
func (s *InvoiceService) ChangeStatus(ctx context.Context, in dto.StatusChangeDTO, actor entities.Actor) error {
	err := s.transitions.ApplyStatusChange(ctx, in, actor)
	if err != nil && !s.transitions.partialWritePossible(err) {
		return err
	}

	reason := ReasonStatusChange
	if in.Action == string(entities.StatusActionRestore) {
		reason = ReasonRestore
	}
	s.invalidator.Invalidate(ctx, InvalidationScope{InvoiceID: in.InvoiceID, Reason: reason, Actor: actor})
	return err
}

// CancelInvoice is the soft delete: a "change" to canceled. Rows are never removed.
func (s *InvoiceService) CancelInvoice(ctx context.Context, id uuid.UUID, actor entities.Actor) error {
	err := s.transitions.ApplyStatusChange(ctx, dto.StatusChangeDTO{
		InvoiceID: id,
		Status:    string(entities.InvoiceStatusCanceled),
		Action:    string(entities.StatusActionChange),
	}, actor)
	if err != nil && !s.transitions.partialWritePossible(err) {
		return err
	}

	s.invalidator.Invalidate(ctx, InvalidationScope{InvoiceID: id, Reason: ReasonCancel, Actor: actor})
	return err
}

// GetStatusLog returns the full history of an invoice in insertion order.
func (s *InvoiceService) GetStatusLog(ctx context.Context, id uuid.UUID) ([]dto.StatusLogEntryDTO, error) {
	gen, cacheable := s.cache.generation(ctx, id)
	key := fmt.Sprintf(constants.CacheKeyInvoiceStatusLog, id, gen)

	var cached []dto.StatusLogEntryDTO
	if cacheable && s.cache.get(ctx, key, &cached) {
		return cached, nil
	}

	items, err := s.logRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, apperrors.NewStorageError(opListStatusLog, err)
	}

	entries := make([]dto.StatusLogEntryDTO, 0, len(items))
	for _, item := range items {
		entries = append(entries, toStatusLogEntryDTO(item))
	}
	if cacheable {
		s.cache.set(ctx, key, entries)
	}

	return entries, nil
}

func toInvoiceResponse(inv *entities.Invoice, now time.Time) *dto.InvoiceResponseDTO {
	res := &dto.InvoiceResponseDTO{
		ID:            inv.ID,
		CustomerID:    inv.CustomerID,
		Amount:        inv.Amount,
		Status:        string(inv.Status),
		DisplayStatus: string(inv.Status),
		IsOverdue:     inv.IsOverdue(now),
		Date:          inv.Date.Format(constants.DateLayout),
		Version:       inv.Version,
	}
	if res.IsOverdue {
		res.DisplayStatus = constants.InvoiceStatusOverdue
	}
	if inv.DueDate.Valid {
		res.DueDate = null.StringFrom(inv.DueDate.Time.Format(constants.DateLayout))
	}
	return res
}

func toStatusLogEntryDTO(item repositories.StatusLogItem) dto.StatusLogEntryDTO {
	entry := dto.StatusLogEntryDTO{
		ID:        item.ID,
		InvoiceID: item.InvoiceID,
		UserName:  item.UserName,
		Date:      item.Date.Format(constants.DateLayout),
		Status:    string(item.Status),
		Action:    string(item.Action),
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
	}
	if item.UserID.Valid {
		entry.UserID = null.StringFrom(item.UserID.UUID.String())
	}
	return entry
}

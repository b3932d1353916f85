package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"invoice-system/internal/dto"
	"invoice-system/internal/repositories"
	apperrors "invoice-system/pkg/errors"
)

type AuditCheckServiceInterface interface {
	FindMismatches(ctx context.Context) ([]dto.StatusMismatchDTO, error)
}

// AuditCheckService reports invoices left updated but unlogged by a partial write.
type AuditCheckService struct {
	auditRepo repositories.AuditRepositoryInterface
	logger    *zap.Logger
}

func NewAuditCheckService(auditRepo repositories.AuditRepositoryInterface, logger *zap.Logger) AuditCheckServiceInterface {
	return &AuditCheckService{auditRepo: auditRepo, logger: logger}
}

func (s *AuditCheckService) FindMismatches(ctx context.Context) ([]dto.StatusMismatchDTO, error) {
	items, err := s.auditRepo.FindMismatches(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("check invoice status log", err)
	}

	result := make([]dto.StatusMismatchDTO, 0, len(items))
	for _, item := range items {
		result = append(result, dto.StatusMismatchDTO{
			InvoiceID:     item.InvoiceID,
			InvoiceStatus: string(item.InvoiceStatus),
			LoggedStatus:  string(item.LoggedStatus),
			LastEntryID:   item.LastEntryID,
			UpdatedAt:     item.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	if len(result) > 0 {
		s.logger.Warn("invoices out of sync with their status log", zap.Int("count", len(result)))
	}
	return result, nil
}

package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"invoice-system/internal/entities"
)

// StatusMismatchItem is an invoice whose stored status differs from its latest log entry.
type StatusMismatchItem struct {
	InvoiceID     uuid.UUID              `db:"invoice_id"`
	InvoiceStatus entities.InvoiceStatus `db:"invoice_status"`
	LoggedStatus  entities.InvoiceStatus `db:"logged_status"`
	LastEntryID   uint64                 `db:"last_entry_id"`
	UpdatedAt     time.Time              `db:"updated_at"`
}

type AuditRepositoryInterface interface {
	FindMismatches(ctx context.Context) ([]StatusMismatchItem, error)
}

type AuditRepository struct {
	storage *pgxpool.Pool
}

func NewAuditRepository(storage *pgxpool.Pool) AuditRepositoryInterface {
	return &AuditRepository{storage: storage}
}

// FindMismatches only sees invoices with at least one log entry. Invoices are created
// without one, so an unlogged first change cannot be told apart from no change.
func (r *AuditRepository) FindMismatches(ctx context.Context) ([]StatusMismatchItem, error) {
	query := `
		SELECT i.id, i.status, last.status, last.id, i.updated_at
		FROM invoices i
		JOIN LATERAL (
			SELECT l.id, l.status
			FROM invoice_status_log l
			WHERE l.invoice_id = i.id
			ORDER BY l.id DESC
			LIMIT 1
		) last ON TRUE
		WHERE last.status <> i.status
		ORDER BY i.updated_at DESC`

	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]StatusMismatchItem, 0)
	for rows.Next() {
		var item StatusMismatchItem
		if err := rows.Scan(&item.InvoiceID, &item.InvoiceStatus, &item.LoggedStatus, &item.LastEntryID, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

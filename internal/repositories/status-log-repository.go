package repositories

import (
	"context"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"invoice-system/internal/entities"
)

// StatusLogItem is a log entry with the acting user's name joined in.
type StatusLogItem struct {
	entities.StatusLogEntry
	UserName null.String `db:"user_name"`
}

// StatusLogRepositoryInterface is insert and read only. There is no update or delete.
type StatusLogRepositoryInterface interface {
	// Append inserts entry and fills in its ID and CreatedAt.
	Append(ctx context.Context, tx pgx.Tx, entry *entities.StatusLogEntry) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]StatusLogItem, error)
}

type StatusLogRepository struct {
	storage *pgxpool.Pool
}

func NewStatusLogRepository(storage *pgxpool.Pool) StatusLogRepositoryInterface {
	return &StatusLogRepository{storage: storage}
}

func (r *StatusLogRepository) Append(ctx context.Context, tx pgx.Tx, entry *entities.StatusLogEntry) error {
	query := `
		INSERT INTO invoice_status_log (invoice_id, user_id, date, status, action)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return pick(r.storage, tx).QueryRow(ctx, query,
		entry.InvoiceID, entry.UserID, entry.Date, string(entry.Status), string(entry.Action),
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListByInvoice returns the whole history in insertion order.
func (r *StatusLogRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]StatusLogItem, error) {
	query := `
		SELECT
			l.id, l.invoice_id, l.user_id, l.date, l.status, l.action, l.created_at,
			u.name AS user_name
		FROM invoice_status_log l
		LEFT JOIN users u ON l.user_id = u.id
		WHERE l.invoice_id = $1
		ORDER BY l.id ASC`

	rows, err := r.storage.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]StatusLogItem, 0)
	for rows.Next() {
		var item StatusLogItem
		if err := rows.Scan(
			&item.ID, &item.InvoiceID, &item.UserID, &item.Date, &item.Status, &item.Action, &item.CreatedAt,
			&item.UserName,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

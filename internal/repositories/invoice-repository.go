package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"invoice-system/internal/entities"
	apperrors "invoice-system/pkg/errors"
)

const (
	invoiceTable   = "invoices"
	invoiceColumns = "id, customer_id, amount, status, date, due_date, version, created_at, updated_at"
)

type InvoiceRepositoryInterface interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Invoice, error)
	// FindForUpdate locks the row when tx is set.
	FindForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Invoice, error)
	Create(ctx context.Context, invoice entities.Invoice) (*entities.Invoice, error)
	Update(ctx context.Context, tx pgx.Tx, id uuid.UUID, update entities.InvoiceUpdate) (*entities.Invoice, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status entities.InvoiceStatus, expectedVersion *int64) (*entities.Invoice, error)
}

type InvoiceRepository struct {
	storage *pgxpool.Pool
}

func NewInvoiceRepository(storage *pgxpool.Pool) InvoiceRepositoryInterface {
	return &InvoiceRepository{storage: storage}
}

func scanInvoice(row pgx.Row) (*entities.Invoice, error) {
	var inv entities.Invoice
	err := row.Scan(
		&inv.ID, &inv.CustomerID, &inv.Amount, &inv.Status, &inv.Date, &inv.DueDate,
		&inv.Version, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return scanInvoice(r.storage.QueryRow(ctx, query, id))
}

func (r *InvoiceRepository) FindForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	if tx != nil {
		query += ` FOR UPDATE`
	}
	return scanInvoice(pick(r.storage, tx).QueryRow(ctx, query, id))
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice entities.Invoice) (*entities.Invoice, error) {
	query := `
		INSERT INTO invoices (customer_id, amount, status, date, due_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + invoiceColumns
	return scanInvoice(r.storage.QueryRow(ctx, query,
		invoice.CustomerID, invoice.Amount, string(invoice.Status), invoice.Date, invoice.DueDate))
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status entities.InvoiceStatus, expectedVersion *int64) (*entities.Invoice, error) {
	return r.Update(ctx, tx, id, entities.InvoiceUpdate{Status: &status, ExpectedVersion: expectedVersion})
}

// Update writes the set fields in one statement and bumps version. A missing row is
// ErrNotFound; a row whose version moved on is ErrConflict.
func (r *InvoiceRepository) Update(ctx context.Context, tx pgx.Tx, id uuid.UUID, update entities.InvoiceUpdate) (*entities.Invoice, error) {
	if update.IsEmpty() {
		return r.FindForUpdate(ctx, tx, id)
	}

	query, args, err := buildInvoiceUpdate(id, update)
	if err != nil {
		return nil, fmt.Errorf("build invoice update: %w", err)
	}

	q := pick(r.storage, tx)
	inv, err := scanInvoice(q.QueryRow(ctx, query, args...))
	if !errors.Is(err, apperrors.ErrNotFound) || update.ExpectedVersion == nil {
		return inv, err
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM invoices WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrConflict
	}
	return nil, apperrors.ErrNotFound
}

func buildInvoiceUpdate(id uuid.UUID, update entities.InvoiceUpdate) (string, []interface{}, error) {
	builder := sq.Update(invoiceTable).
		PlaceholderFormat(sq.Dollar).
		Where("id = ?", id).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("NOW()"))

	if update.CustomerID != nil {
		builder = builder.Set("customer_id", *update.CustomerID)
	}
	if update.Amount != nil {
		builder = builder.Set("amount", *update.Amount)
	}
	if update.Status != nil {
		builder = builder.Set("status", string(*update.Status))
	}
	if update.ExpectedVersion != nil {
		builder = builder.Where("version = ?", *update.ExpectedVersion)
	}

	return builder.Suffix("RETURNING " + invoiceColumns).ToSql()
}

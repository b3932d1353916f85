package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"invoice-system/pkg/constants"
)

type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = constants.InvoiceStatusPending
	InvoiceStatusPaid     InvoiceStatus = constants.InvoiceStatusPaid
	InvoiceStatusCanceled InvoiceStatus = constants.InvoiceStatusCanceled
)

func (s InvoiceStatus) IsValid() bool { return constants.IsInvoiceStatus(string(s)) }

func (s InvoiceStatus) String() string { return string(s) }

type Invoice struct {
	ID         uuid.UUID     `db:"id"`
	CustomerID uuid.UUID     `db:"customer_id"`
	Amount     int64         `db:"amount"` // minor units
	Status     InvoiceStatus `db:"status"`
	Date       time.Time     `db:"date"`
	DueDate    null.Time     `db:"due_date"`
	Version    int64         `db:"version"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
}

// IsOverdue is the display-only overdue state. It is never stored.
func (i *Invoice) IsOverdue(now time.Time) bool {
	if i.Status != InvoiceStatusPending || !i.DueDate.Valid {
		return false
	}
	today := now.Truncate(24 * time.Hour)
	return i.DueDate.Time.Before(today)
}

// InvoiceUpdate holds the fields an edit may change. Nil fields are left alone.
// ExpectedVersion, when set, makes the update conditional on the stored version.
type InvoiceUpdate struct {
	CustomerID      *uuid.UUID
	Amount          *int64
	Status          *InvoiceStatus
	ExpectedVersion *int64
}

func (u InvoiceUpdate) IsEmpty() bool {
	return u.CustomerID == nil && u.Amount == nil && u.Status == nil
}

package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

// StatusChangeDTO is one status transition request. Action is "change" or "restore".
type StatusChangeDTO struct {
	InvoiceID       uuid.UUID  `json:"-"`
	Status          string     `json:"status" validate:"required,invoice_status"`
	Action          string     `json:"action" validate:"required,status_action"`
	ExpectedVersion null.Int64 `json:"expected_version"`
}

type RestoreStatusDTO struct {
	Status          string     `json:"status" validate:"required,invoice_status"`
	ExpectedVersion null.Int64 `json:"expected_version"`
}

type StatusLogEntryDTO struct {
	ID        uint64      `json:"id"`
	InvoiceID uuid.UUID   `json:"invoice_id"`
	UserID    null.String `json:"user_id"`
	UserName  null.String `json:"username"`
	Date      string      `json:"date"`
	Status    string      `json:"status"`
	Action    string      `json:"action"`
	CreatedAt string      `json:"created_at"`
}

// StatusMismatchDTO is an invoice whose status differs from its latest log entry.
type StatusMismatchDTO struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceStatus string    `json:"invoice_status"`
	LoggedStatus  string    `json:"logged_status"`
	LastEntryID   uint64    `json:"last_entry_id"`
	UpdatedAt     string    `json:"updated_at"`
}

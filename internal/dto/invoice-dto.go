package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

type CreateInvoiceDTO struct {
	CustomerID string      `json:"customer_id" validate:"required,uuid"`
	Amount     int64       `json:"amount" validate:"required,gt=0"` // minor units
	Status     string      `json:"status" validate:"required,invoice_status"`
	DueDate    null.String `json:"due_date" validate:"omitempty,iso_date"`
}

// UpdateInvoiceDTO is the edit form. PreviousStatus is the status the client saw before editing;
// when absent the stored status is used.
type UpdateInvoiceDTO struct {
	CustomerID      string      `json:"customer_id" validate:"required,uuid"`
	Amount          int64       `json:"amount" validate:"required,gt=0"`
	Status          string      `json:"status" validate:"required,invoice_status"`
	PreviousStatus  null.String `json:"previous_status" validate:"omitempty,invoice_status"`
	ExpectedVersion null.Int64  `json:"expected_version"`
}

type InvoiceResponseDTO struct {
	ID            uuid.UUID   `json:"id"`
	CustomerID    uuid.UUID   `json:"customer_id"`
	Amount        int64       `json:"amount"`
	Status        string      `json:"status"`
	DisplayStatus string      `json:"display_status"`
	IsOverdue     bool        `json:"is_overdue"`
	Date          string      `json:"date"`
	DueDate       null.String `json:"due_date"`
	Version       int64       `json:"version"`
}

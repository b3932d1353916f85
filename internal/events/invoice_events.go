package events

import "github.com/google/uuid"

const InvoiceChangedEventName = "invoice.changed"

// InvoiceChangedEvent is published after an invoice or its status log was written.
type InvoiceChangedEvent struct {
	InvoiceID uuid.UUID
	Reason    string
	Actor     string
}

func (e InvoiceChangedEvent) Name() string {
	return InvoiceChangedEventName
}

const PartialWriteEventName = "invoice.partial_write"

// PartialWriteEvent is published when an invoice status changed but its log entry was not written.
type PartialWriteEvent struct {
	InvoiceID uuid.UUID
	UserID    uuid.UUID
	Status    string
	Action    string
}

func (e PartialWriteEvent) Name() string {
	return PartialWriteEventName
}

package entities

import (
	"time"

	"github.com/google/uuid"

	"invoice-system/pkg/constants"
)

type StatusAction string

const (
	StatusActionChange  StatusAction = constants.StatusActionChange
	StatusActionRestore StatusAction = constants.StatusActionRestore
)

func (a StatusAction) IsValid() bool { return constants.IsStatusAction(string(a)) }

// StatusLogEntry records the status an invoice moved to. Rows are never updated or deleted;
// ID order is insertion order.
type StatusLogEntry struct {
	ID        uint64        `db:"id"`
	InvoiceID uuid.UUID     `db:"invoice_id"`
	UserID    uuid.NullUUID `db:"user_id"`
	Date      time.Time     `db:"date"`
	Status    InvoiceStatus `db:"status"`
	Action    StatusAction  `db:"action"`
	CreatedAt time.Time     `db:"created_at"`
}

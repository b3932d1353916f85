// pkg/constants/constants.go
package constants

//============== DATE FORMATS ==============

const (
	// DateLayout is the wire and storage format for calendar dates.
	DateLayout = "2006-01-02"
)

//============== CACHE KEYS ==============

// Prefixes for Redis keys. Cached views are scoped by the invoice's cache generation,
// so bumping the generation makes every older view unreachable.
const (
	// Format: invoice_cache_gen:<invoiceID> -> int64, incremented on every change
	CacheKeyInvoiceGeneration = "invoice_cache_gen:%s"

	// Format: invoice:<invoiceID>:<generation> -> entities.Invoice
	CacheKeyInvoice = "invoice:%s:%d"

	// Format: invoice_status_log:<invoiceID>:<generation> -> []dto.StatusLogEntryDTO
	CacheKeyInvoiceStatusLog = "invoice_status_log:%s:%d"
)

//============== WEBSOCKET MESSAGES ==============

const (
	WSMessageInvalidate = "invalidate"

	// WSMessagePartialWrite goes only to the acting user's dashboards.
	WSMessagePartialWrite = "partial_write"
)

//============== EXPORT ==============

const (
	StatusLogSheetName = "Status log"
	XLSXContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

//============== INVOICE STATUSES ==============

// Persisted invoice status codes. "overdue" is derived for display and is never one of these.
const (
	InvoiceStatusPending  = "pending"
	InvoiceStatusPaid     = "paid"
	InvoiceStatusCanceled = "canceled"
)

// Display-only state: pending with a due date in the past.
const InvoiceStatusOverdue = "overdue"

var InvoiceStatuses = []string{
	InvoiceStatusPending,
	InvoiceStatusPaid,
	InvoiceStatusCanceled,
}

func IsInvoiceStatus(code string) bool {
	for _, s := range InvoiceStatuses {
		if s == code {
			return true
		}
	}
	return false
}

//============== STATUS LOG ACTIONS ==============

const (
	StatusActionChange  = "change"
	StatusActionRestore = "restore"
)

func IsStatusAction(code string) bool {
	return code == StatusActionChange || code == StatusActionRestore
}

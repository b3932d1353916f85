package websocket

import "time"

// Envelope wraps every message so the dashboard can dispatch on Type.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// InvalidatePayload tells dashboards which invoice views to refetch.
type InvalidatePayload struct {
	InvoiceID string   `json:"invoiceId"`
	Scopes    []string `json:"scopes"`
	Reason    string   `json:"reason"`
}

// PartialWritePayload tells the acting user a status change landed without its log entry.
type PartialWritePayload struct {
	InvoiceID string `json:"invoiceId"`
	Status    string `json:"status"`
	Action    string `json:"action"`
}

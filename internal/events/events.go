package events

// Invoice and cash register event types written to the outbox.
const (
	EventInvoiceCreated   = "invoice_created"
	EventInvoiceIssued    = "invoice_issued"
	EventInvoicePaid      = "invoice_paid"
	EventInvoiceCancelled = "invoice_cancelled"
	EventInvoiceOverdue   = "invoice_overdue"
	EventInvoiceSubmitted = "invoice_submitted"
	EventCashSessionOpen  = "cash_session_opened"
	EventCashSessionClose = "cash_session_closed"
)

// InvoicePayload captures the data downstream consumers need for invoice events.
type InvoicePayload struct {
	InvoiceID string `json:"invoice_id"`
	Number    string `json:"number,omitempty"`
	Status    string `json:"status"`
	Currency  string `json:"currency"`
	Total     string `json:"total"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p InvoicePayload) ToMap() map[string]any {
	payload := map[string]any{
		"invoice_id": p.InvoiceID,
		"status":     p.Status,
		"currency":   p.Currency,
		"total":      p.Total,
	}
	if p.Number != "" {
		payload["number"] = p.Number
	}
	return payload
}

// CashSessionPayload captures the data downstream consumers need for register events.
type CashSessionPayload struct {
	SessionID      string `json:"session_id"`
	RegisterID     string `json:"register_id"`
	ExpectedAmount string `json:"expected_amount,omitempty"`
	CountedAmount  string `json:"counted_amount,omitempty"`
	Difference     string `json:"difference,omitempty"`
	Alert          string `json:"alert,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p CashSessionPayload) ToMap() map[string]any {
	payload := map[string]any{
		"session_id":  p.SessionID,
		"register_id": p.RegisterID,
	}
	if p.ExpectedAmount != "" {
		payload["expected_amount"] = p.ExpectedAmount
	}
	if p.CountedAmount != "" {
		payload["counted_amount"] = p.CountedAmount
	}
	if p.Difference != "" {
		payload["difference"] = p.Difference
	}
	if p.Alert != "" {
		payload["alert"] = p.Alert
	}
	return payload
}

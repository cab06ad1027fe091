package domain

import "fmt"

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusIssued    InvoiceStatus = "issued"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
)

// Statuses lists every lifecycle state in declaration order.
var Statuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusIssued,
	InvoiceStatusPaid,
	InvoiceStatusCancelled,
	InvoiceStatusOverdue,
}

// transitions is the complete allow-list. overdue is only reached through an
// external time-based trigger and has no outbound edge.
var transitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:  {InvoiceStatusIssued, InvoiceStatusCancelled},
	InvoiceStatusIssued: {InvoiceStatusPaid, InvoiceStatusCancelled, InvoiceStatusOverdue},
}

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus converts raw input into a known status.
func ParseStatus(raw string) (InvoiceStatus, error) {
	status := InvoiceStatus(raw)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return status, nil
}

// CanTransition reports whether from -> to is in the allow-list.
func CanTransition(from, to InvoiceStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a requested status change and returns the new status.
// Any pair outside the allow-list yields an *InvalidTransitionError.
func Transition(from, to InvoiceStatus) (InvoiceStatus, error) {
	if !CanTransition(from, to) {
		return from, &InvalidTransitionError{From: from, To: to}
	}
	return to, nil
}

// CanModifyItems reports whether line items may be added, edited, removed or
// reordered in the given status. Only drafts are editable.
func CanModifyItems(status InvoiceStatus) bool {
	return status == InvoiceStatusDraft
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(status InvoiceStatus) bool {
	return len(transitions[status]) == 0
}

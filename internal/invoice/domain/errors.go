package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidInvoiceID    = errors.New("invalid_invoice_id")
	ErrInvalidItemID       = errors.New("invalid_item_id")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidDueDate      = errors.New("invalid_due_date")
	ErrInvalidItemOrder    = errors.New("invalid_item_order")
	ErrInvoiceNotFound     = errors.New("invoice_not_found")
	ErrItemNotFound        = errors.New("invoice_item_not_found")
	ErrDuplicateItem       = errors.New("invoice_item_duplicate")
	ErrConcurrentUpdate    = errors.New("invoice_concurrent_update")
	ErrEmptyInvoice        = errors.New("invoice_has_no_items")

	// ErrInvalidTransition is matched by every *InvalidTransitionError.
	ErrInvalidTransition = errors.New("invalid_transition")
	// ErrMutationAfterFreeze is matched by every *MutationAfterFreezeError.
	ErrMutationAfterFreeze = errors.New("mutation_after_freeze")
)

// InvalidTransitionError identifies a rejected status change.
type InvalidTransitionError struct {
	From InvoiceStatus
	To   InvoiceStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition.Error(), e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// MutationAfterFreezeError identifies an item edit attempted outside draft.
type MutationAfterFreezeError struct {
	Status InvoiceStatus
	Op     string
}

func (e *MutationAfterFreezeError) Error() string {
	return fmt.Sprintf("%s: cannot %s items while %s", ErrMutationAfterFreeze.Error(), e.Op, e.Status)
}

func (e *MutationAfterFreezeError) Unwrap() error { return ErrMutationAfterFreeze }

package domain

import "errors"

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidSessionID    = errors.New("invalid_session_id")
	ErrInvalidRegister     = errors.New("invalid_register")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidPayment      = errors.New("invalid_payment_method")
	ErrInvalidMovementKind = errors.New("invalid_movement_kind")
	ErrEmptySale           = errors.New("sale_has_no_items")
	ErrSessionNotFound     = errors.New("cash_session_not_found")
	ErrSessionAlreadyOpen  = errors.New("cash_session_already_open")
	ErrSessionClosed       = errors.New("cash_session_closed")
	ErrConcurrentUpdate    = errors.New("cash_session_concurrent_update")
)

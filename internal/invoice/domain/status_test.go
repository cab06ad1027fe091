package domain

import (
	"errors"
	"testing"
)

func TestTransitionTable(t *testing.T) {
	allowed := map[[2]InvoiceStatus]bool{
		{InvoiceStatusDraft, InvoiceStatusIssued}:     true,
		{InvoiceStatusDraft, InvoiceStatusCancelled}:  true,
		{InvoiceStatusIssued, InvoiceStatusPaid}:      true,
		{InvoiceStatusIssued, InvoiceStatusCancelled}: true,
		{InvoiceStatusIssued, InvoiceStatusOverdue}:   true,
	}

	for _, from := range Statuses {
		for _, to := range Statuses {
			got, err := Transition(from, to)
			if allowed[[2]InvoiceStatus{from, to}] {
				if err != nil {
					t.Fatalf("%s -> %s: expected success, got %v", from, to, err)
				}
				if got != to {
					t.Fatalf("%s -> %s: expected new status %s, got %s", from, to, to, got)
				}
				continue
			}

			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("%s -> %s: expected invalid transition, got %v", from, to, err)
			}
			var transitionErr *InvalidTransitionError
			if !errors.As(err, &transitionErr) {
				t.Fatalf("%s -> %s: expected *InvalidTransitionError, got %T", from, to, err)
			}
			if transitionErr.From != from || transitionErr.To != to {
				t.Fatalf("%s -> %s: error carries %s -> %s", from, to, transitionErr.From, transitionErr.To)
			}
			if got != from {
				t.Fatalf("%s -> %s: rejected transition returned %s", from, to, got)
			}
		}
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	if _, err := Transition(InvoiceStatusDraft, InvoiceStatus("archived")); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if _, err := Transition(InvoiceStatus(""), InvoiceStatusIssued); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestCanModifyItems(t *testing.T) {
	for _, status := range Statuses {
		want := status == InvoiceStatusDraft
		if got := CanModifyItems(status); got != want {
			t.Fatalf("CanModifyItems(%s) = %v, want %v", status, got, want)
		}
	}
	if CanModifyItems(InvoiceStatus("unknown")) {
		t.Fatalf("unknown status must not allow edits")
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := map[InvoiceStatus]bool{
		InvoiceStatusPaid:      true,
		InvoiceStatusCancelled: true,
		InvoiceStatusOverdue:   true,
	}
	for _, status := range Statuses {
		if got := IsTerminal(status); got != terminal[status] {
			t.Fatalf("IsTerminal(%s) = %v", status, got)
		}
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus("issued")
	if err != nil || got != InvoiceStatusIssued {
		t.Fatalf("expected issued, got %q (%v)", got, err)
	}
	if _, err := ParseStatus("Issued"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

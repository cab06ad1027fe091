package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	"github.com/shopspring/decimal"
)

func line(qty, price, tax, discount string) calc.LineItem {
	return calc.LineItem{
		Name:         "item",
		Quantity:     decimal.RequireFromString(qty),
		UnitPrice:    decimal.RequireFromString(price),
		TaxRate:      decimal.RequireFromString(tax),
		DiscountRate: decimal.RequireFromString(discount),
	}
}

func newItem(id int64, l calc.LineItem) InvoiceItem {
	return InvoiceItem{
		ID:           snowflake.ID(id),
		Name:         l.Name,
		Quantity:     l.Quantity,
		UnitPrice:    l.UnitPrice,
		TaxRate:      l.TaxRate,
		DiscountRate: l.DiscountRate,
	}
}

func draftInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv := &Invoice{ID: 1, OrgID: 7, Status: InvoiceStatusDraft, Currency: "COP"}
	if err := inv.AddItem(newItem(10, line("3", "10000", "19", "10"))); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := inv.AddItem(newItem(11, line("1", "5000", "0", "0"))); err != nil {
		t.Fatalf("add item: %v", err)
	}
	return inv
}

func TestDraftInvoiceTotals(t *testing.T) {
	inv := draftInvoice(t)

	totals := inv.Totals()
	if !totals.Total.Equal(decimal.NewFromInt(37130)) {
		t.Fatalf("expected total 37130, got %s", totals.Total)
	}
	if !inv.TotalAmount.Equal(totals.Total) {
		t.Fatalf("expected running total %s, got %s", totals.Total, inv.TotalAmount)
	}
	if inv.Items[1].Position != 2 || inv.Items[1].InvoiceID != inv.ID || inv.Items[1].OrgID != inv.OrgID {
		t.Fatalf("unexpected item bookkeeping: %+v", inv.Items[1])
	}
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	inv := draftInvoice(t)
	err := inv.AddItem(newItem(12, line("1", "10", "120", "0")))
	if !errors.Is(err, calc.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(inv.Items) != 2 {
		t.Fatalf("invalid item must not be added")
	}
}

func TestIssueFreezesItems(t *testing.T) {
	inv := draftInvoice(t)
	before := inv.SnapshotTotals()

	if err := inv.Apply(InvoiceStatusIssued, time.Now()); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if inv.IssuedAt == nil {
		t.Fatalf("expected issued_at to be set")
	}
	if !inv.Items[0].TotalAmount.Equal(decimal.NewFromInt(32130)) {
		t.Fatalf("expected line snapshot 32130, got %s", inv.Items[0].TotalAmount)
	}

	mutations := map[string]func() error{
		"add":     func() error { return inv.AddItem(newItem(13, line("1", "1", "0", "0"))) },
		"edit":    func() error { return inv.UpdateItem(10, line("9", "1", "0", "0")) },
		"remove":  func() error { return inv.RemoveItem(11) },
		"reorder": func() error { return inv.ReorderItems([]snowflake.ID{11, 10}) },
	}
	for op, mutate := range mutations {
		err := mutate()
		if !errors.Is(err, ErrMutationAfterFreeze) {
			t.Fatalf("%s: expected mutation after freeze, got %v", op, err)
		}
		var freezeErr *MutationAfterFreezeError
		if !errors.As(err, &freezeErr) || freezeErr.Status != InvoiceStatusIssued || freezeErr.Op != op {
			t.Fatalf("%s: unexpected error detail %v", op, err)
		}
	}

	if len(inv.Items) != 2 || inv.Items[0].ID != 10 {
		t.Fatalf("items changed after rejected mutations: %+v", inv.Items)
	}
	if !inv.SnapshotTotals().Equal(before) || !inv.Totals().Equal(before) {
		t.Fatalf("totals changed after rejected mutations")
	}
}

func TestRejectedTransitionLeavesInvoiceUntouched(t *testing.T) {
	inv := draftInvoice(t)
	if err := inv.Apply(InvoiceStatusIssued, time.Now()); err != nil {
		t.Fatalf("issue: %v", err)
	}
	issuedAt := *inv.IssuedAt

	err := inv.Apply(InvoiceStatusDraft, time.Now().Add(time.Hour))
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if inv.Status != InvoiceStatusIssued || !inv.IssuedAt.Equal(issuedAt) {
		t.Fatalf("invoice mutated by rejected transition: %+v", inv)
	}
}

func TestApplySetsTimestamps(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	paid := draftInvoice(t)
	_ = paid.Apply(InvoiceStatusIssued, at)
	if err := paid.Apply(InvoiceStatusPaid, at); err != nil || paid.PaidAt == nil {
		t.Fatalf("expected paid_at, got %v", err)
	}

	cancelled := draftInvoice(t)
	if err := cancelled.Apply(InvoiceStatusCancelled, at); err != nil || cancelled.CancelledAt == nil {
		t.Fatalf("expected cancelled_at, got %v", err)
	}

	overdue := draftInvoice(t)
	_ = overdue.Apply(InvoiceStatusIssued, at)
	if err := overdue.Apply(InvoiceStatusOverdue, at); err != nil || overdue.OverdueAt == nil {
		t.Fatalf("expected overdue_at, got %v", err)
	}
	if err := overdue.Apply(InvoiceStatusPaid, at); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected overdue to be terminal, got %v", err)
	}
}

func TestAddItemRejectsDuplicateID(t *testing.T) {
	inv := draftInvoice(t)
	before := inv.TotalAmount

	err := inv.AddItem(newItem(10, line("5", "100", "0", "0")))
	if !errors.Is(err, ErrDuplicateItem) {
		t.Fatalf("expected duplicate item, got %v", err)
	}
	if len(inv.Items) != 2 || !inv.TotalAmount.Equal(before) {
		t.Fatalf("rejected add must not touch items or totals: %d items, total %s", len(inv.Items), inv.TotalAmount)
	}
}

func TestUpdateAndRemoveItems(t *testing.T) {
	inv := draftInvoice(t)

	if err := inv.UpdateItem(11, line("2", "5000", "0", "0")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !inv.TotalAmount.Equal(decimal.NewFromInt(42130)) {
		t.Fatalf("expected 42130 after update, got %s", inv.TotalAmount)
	}

	if err := inv.RemoveItem(10); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(inv.Items) != 1 || inv.Items[0].Position != 1 {
		t.Fatalf("unexpected items after remove: %+v", inv.Items)
	}
	if !inv.TotalAmount.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expected 10000 after remove, got %s", inv.TotalAmount)
	}

	if err := inv.RemoveItem(99); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected item not found, got %v", err)
	}
}

func TestReorderItems(t *testing.T) {
	inv := draftInvoice(t)
	before := inv.Totals()

	if err := inv.ReorderItems([]snowflake.ID{11, 10}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if inv.Items[0].ID != 11 || inv.Items[0].Position != 1 || inv.Items[1].Position != 2 {
		t.Fatalf("unexpected order: %+v", inv.Items)
	}
	if !inv.Totals().Equal(before) {
		t.Fatalf("order must not affect totals")
	}

	for _, ids := range [][]snowflake.ID{{10}, {10, 10}, {10, 99}} {
		if err := inv.ReorderItems(ids); !errors.Is(err, ErrInvalidItemOrder) {
			t.Fatalf("reorder %v: expected invalid order, got %v", ids, err)
		}
	}
}

func TestIsPastDue(t *testing.T) {
	now := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)

	inv := draftInvoice(t)
	inv.DueAt = &due
	if inv.IsPastDue(now) {
		t.Fatalf("drafts are never past due")
	}
	_ = inv.Apply(InvoiceStatusIssued, now)
	if !inv.IsPastDue(now) {
		t.Fatalf("expected issued invoice to be past due")
	}
	if inv.IsPastDue(due.Add(-time.Minute)) {
		t.Fatalf("not past due before the due date")
	}
}

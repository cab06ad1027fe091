package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
)

// LineItems maps the invoice rows, in display order, onto calculation input.
func (inv *Invoice) LineItems() []calc.LineItem {
	items := make([]calc.LineItem, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, item.LineItem())
	}
	return items
}

// Totals recomputes the invoice summary from its items.
func (inv *Invoice) Totals() calc.InvoiceTotals {
	return calc.Aggregate(inv.LineItems())
}

// SnapshotTotals returns the amounts persisted at issuance.
func (inv *Invoice) SnapshotTotals() calc.InvoiceTotals {
	return calc.InvoiceTotals{
		Subtotal:      inv.SubtotalAmount,
		TotalDiscount: inv.DiscountAmount,
		TotalTax:      inv.TaxAmount,
		Total:         inv.TotalAmount,
	}
}

// AddItem appends a validated line to a draft invoice.
func (inv *Invoice) AddItem(item InvoiceItem) error {
	if err := inv.guardItems("add"); err != nil {
		return err
	}
	if inv.indexOf(item.ID) >= 0 {
		return ErrDuplicateItem
	}
	if err := calc.Validate(item.LineItem()); err != nil {
		return err
	}
	item.InvoiceID = inv.ID
	item.OrgID = inv.OrgID
	inv.Items = append(inv.Items, item)
	inv.renumber()
	inv.applyTotals(inv.Totals())
	return nil
}

// UpdateItem replaces the computational and descriptive fields of one line.
func (inv *Invoice) UpdateItem(id snowflake.ID, line calc.LineItem) error {
	if err := inv.guardItems("edit"); err != nil {
		return err
	}
	idx := inv.indexOf(id)
	if idx < 0 {
		return ErrItemNotFound
	}
	if err := calc.Validate(line); err != nil {
		return err
	}

	item := &inv.Items[idx]
	item.Name = line.Name
	item.Description = line.Description
	item.ProductRef = line.ProductRef
	item.Quantity = line.Quantity
	item.UnitPrice = line.UnitPrice
	item.TaxRate = line.TaxRate
	item.DiscountRate = line.DiscountRate
	inv.applyTotals(inv.Totals())
	return nil
}

// RemoveItem deletes one line from a draft invoice.
func (inv *Invoice) RemoveItem(id snowflake.ID) error {
	if err := inv.guardItems("remove"); err != nil {
		return err
	}
	idx := inv.indexOf(id)
	if idx < 0 {
		return ErrItemNotFound
	}
	items := make([]InvoiceItem, 0, len(inv.Items)-1)
	items = append(items, inv.Items[:idx]...)
	items = append(items, inv.Items[idx+1:]...)
	inv.Items = items
	inv.renumber()
	inv.applyTotals(inv.Totals())
	return nil
}

// ReorderItems sets the display order. ids must be a permutation of the
// current item IDs. Order never affects totals.
func (inv *Invoice) ReorderItems(ids []snowflake.ID) error {
	if err := inv.guardItems("reorder"); err != nil {
		return err
	}
	if len(ids) != len(inv.Items) {
		return ErrInvalidItemOrder
	}

	seen := make(map[snowflake.ID]struct{}, len(ids))
	ordered := make([]InvoiceItem, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return ErrInvalidItemOrder
		}
		seen[id] = struct{}{}
		idx := inv.indexOf(id)
		if idx < 0 {
			return ErrInvalidItemOrder
		}
		ordered = append(ordered, inv.Items[idx])
	}
	inv.Items = ordered
	inv.renumber()
	return nil
}

// Apply moves the invoice to the requested status. A rejected transition
// leaves the invoice untouched. Issuing freezes the totals snapshot.
func (inv *Invoice) Apply(to InvoiceStatus, at time.Time) error {
	next, err := Transition(inv.Status, to)
	if err != nil {
		return err
	}

	at = at.UTC()
	switch next {
	case InvoiceStatusIssued:
		inv.IssuedAt = &at
		inv.snapshot()
	case InvoiceStatusPaid:
		inv.PaidAt = &at
	case InvoiceStatusCancelled:
		inv.CancelledAt = &at
	case InvoiceStatusOverdue:
		inv.OverdueAt = &at
	}
	inv.Status = next
	return nil
}

// IsPastDue reports whether an issued invoice has passed its due date.
func (inv *Invoice) IsPastDue(now time.Time) bool {
	return inv.Status == InvoiceStatusIssued && inv.DueAt != nil && now.After(*inv.DueAt)
}

func (inv *Invoice) guardItems(op string) error {
	if !CanModifyItems(inv.Status) {
		return &MutationAfterFreezeError{Status: inv.Status, Op: op}
	}
	return nil
}

func (inv *Invoice) snapshot() {
	totals := inv.Totals()
	inv.applyTotals(totals)
	for i := range inv.Items {
		line := totals.Lines[i]
		inv.Items[i].SubtotalAmount = line.Subtotal
		inv.Items[i].DiscountAmount = line.DiscountAmount
		inv.Items[i].TaxAmount = line.TaxAmount
		inv.Items[i].TotalAmount = line.Total
	}
}

func (inv *Invoice) applyTotals(totals calc.InvoiceTotals) {
	inv.SubtotalAmount = totals.Subtotal
	inv.DiscountAmount = totals.TotalDiscount
	inv.TaxAmount = totals.TotalTax
	inv.TotalAmount = totals.Total
}

func (inv *Invoice) indexOf(id snowflake.ID) int {
	for i, item := range inv.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (inv *Invoice) renumber() {
	for i := range inv.Items {
		inv.Items[i].Position = i + 1
	}
}

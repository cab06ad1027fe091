package calc

import "github.com/shopspring/decimal"

// InvoiceTotals is the invoice-level summary of a list of line items.
type InvoiceTotals struct {
	Subtotal      decimal.Decimal  `json:"subtotal"`
	TotalDiscount decimal.Decimal  `json:"total_discount"`
	TotalTax      decimal.Decimal  `json:"total_tax"`
	Total         decimal.Decimal  `json:"total"`
	Lines         []LineItemTotals `json:"lines"`
}

// Aggregate prices every item and sums each component independently, so the
// invoice identity total = subtotal - discount + tax holds exactly. Lines are
// returned in input order. An empty list yields all-zero totals.
func Aggregate(items []LineItem) InvoiceTotals {
	totals := InvoiceTotals{
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalTax:      decimal.Zero,
		Total:         decimal.Zero,
		Lines:         make([]LineItemTotals, 0, len(items)),
	}

	for _, item := range items {
		line := Calculate(item)
		totals.Subtotal = totals.Subtotal.Add(line.Subtotal)
		totals.TotalDiscount = totals.TotalDiscount.Add(line.DiscountAmount)
		totals.TotalTax = totals.TotalTax.Add(line.TaxAmount)
		totals.Total = totals.Total.Add(line.Total)
		totals.Lines = append(totals.Lines, line)
	}

	return totals
}

// Sum adds up already-aggregated invoice totals, e.g. for reporting. Lines are
// not carried over.
func Sum(all ...InvoiceTotals) InvoiceTotals {
	out := InvoiceTotals{
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalTax:      decimal.Zero,
		Total:         decimal.Zero,
	}
	for _, t := range all {
		out.Subtotal = out.Subtotal.Add(t.Subtotal)
		out.TotalDiscount = out.TotalDiscount.Add(t.TotalDiscount)
		out.TotalTax = out.TotalTax.Add(t.TotalTax)
		out.Total = out.Total.Add(t.Total)
	}
	return out
}

// Equal reports whether two summaries carry the same four amounts.
func (t InvoiceTotals) Equal(other InvoiceTotals) bool {
	return t.Subtotal.Equal(other.Subtotal) &&
		t.TotalDiscount.Equal(other.TotalDiscount) &&
		t.TotalTax.Equal(other.TotalTax) &&
		t.Total.Equal(other.Total)
}

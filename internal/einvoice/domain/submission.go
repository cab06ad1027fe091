package domain

import (
	"sort"
	"time"

	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Submission is the provider-neutral electronic invoice document.
type Submission struct {
	InvoiceID string           `json:"invoice_id"`
	Prefix    string           `json:"prefix"`
	Number    string           `json:"number"`
	IssueDate time.Time        `json:"issue_date"`
	DueDate   *time.Time       `json:"due_date,omitempty"`
	Currency  string           `json:"currency"`
	Customer  Customer         `json:"customer"`
	Lines     []SubmissionLine `json:"lines"`
	Taxes     []TaxBreakdown   `json:"taxes"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
	Discount  decimal.Decimal  `json:"discount"`
	Tax       decimal.Decimal  `json:"tax"`
	Total     decimal.Decimal  `json:"total"`
	Notes     string           `json:"notes,omitempty"`
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	TaxID string `json:"tax_id,omitempty"`
}

type SubmissionLine struct {
	Position     int             `json:"position"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	ProductRef   string          `json:"product_ref,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Taxable      decimal.Decimal `json:"taxable"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
}

// TaxBreakdown sums taxable base and tax of every line sharing a rate.
type TaxBreakdown struct {
	Rate   decimal.Decimal `json:"rate"`
	Base   decimal.Decimal `json:"base"`
	Amount decimal.Decimal `json:"amount"`
}

// BuildSubmission maps an issued invoice onto a submission. Totals are
// recomputed from the items so the document matches what was displayed.
func BuildSubmission(inv *invoicedomain.Invoice) (*Submission, error) {
	switch inv.Status {
	case invoicedomain.InvoiceStatusIssued, invoicedomain.InvoiceStatusPaid, invoicedomain.InvoiceStatusOverdue:
	default:
		return nil, ErrNotIssued
	}
	if inv.IssuedAt == nil || inv.Number == nil || len(inv.Items) == 0 {
		return nil, ErrNotIssued
	}

	totals := inv.Totals()
	lines := make([]SubmissionLine, 0, len(inv.Items))
	for i, item := range inv.Items {
		t := totals.Lines[i]
		lines = append(lines, SubmissionLine{
			Position:     item.Position,
			Name:         item.Name,
			Description:  item.Description,
			ProductRef:   item.ProductRef,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			DiscountRate: item.DiscountRate,
			TaxRate:      item.TaxRate,
			Subtotal:     t.Subtotal,
			Discount:     t.DiscountAmount,
			Taxable:      t.TaxableAmount,
			Tax:          t.TaxAmount,
			Total:        t.Total,
		})
	}

	return &Submission{
		InvoiceID: inv.ID.String(),
		Prefix:    inv.Prefix,
		Number:    *inv.Number,
		IssueDate: *inv.IssuedAt,
		DueDate:   inv.DueAt,
		Currency:  inv.Currency,
		Customer: Customer{
			Name:  inv.CustomerName,
			Email: inv.CustomerEmail,
			TaxID: inv.CustomerTaxID,
		},
		Lines:    lines,
		Taxes:    TaxesByRate(lines),
		Subtotal: totals.Subtotal,
		Discount: totals.TotalDiscount,
		Tax:      totals.TotalTax,
		Total:    totals.Total,
		Notes:    inv.Notes,
	}, nil
}

// TaxesByRate groups lines by tax rate, highest rate first. The amounts add
// up to the invoice tax because they are sums of the rounded line taxes.
func TaxesByRate(lines []SubmissionLine) []TaxBreakdown {
	byRate := lo.GroupBy(lines, func(l SubmissionLine) string {
		return l.TaxRate.StringFixed(calc.Scale)
	})
	out := make([]TaxBreakdown, 0, len(byRate))
	for _, group := range byRate {
		tb := TaxBreakdown{Rate: group[0].TaxRate, Base: decimal.Zero, Amount: decimal.Zero}
		for _, l := range group {
			tb.Base = tb.Base.Add(l.Taxable)
			tb.Amount = tb.Amount.Add(l.Tax)
		}
		out = append(out, tb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rate.GreaterThan(out[j].Rate) })
	return out
}

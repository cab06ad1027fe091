package render

import (
	"time"

	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/money"
)

// RenderInput is the deterministic input used for invoice rendering.
// Amounts are preformatted for the template locale.
type RenderInput struct {
	Template TemplateView
	Invoice  InvoiceView
	Customer CustomerView
	Items    []LineItemView
}

type TemplateView struct {
	Name         string
	Locale       string
	LogoURL      string
	CompanyName  string
	CompanyTaxID string
	FooterNotes  string
	FooterLegal  string
	PrimaryColor string
	FontFamily   string
}

type InvoiceView struct {
	ID            string
	Number        string
	Status        string
	IssuedAt      *time.Time
	DueAt         *time.Time
	Currency      string
	Notes         string
	Subtotal      string
	TotalDiscount string
	TotalTax      string
	Total         string
}

type CustomerView struct {
	Name  string
	Email string
	TaxID string
}

type LineItemView struct {
	Position     int
	Name         string
	Description  string
	Quantity     string
	UnitPrice    string
	DiscountRate string
	Discount     string
	TaxRate      string
	Tax          string
	Total        string
}

type Renderer interface {
	RenderHTML(input RenderInput) (string, error)
}

// BuildInput lays out an invoice for rendering. Totals are recomputed from
// the items so drafts and issued invoices render through the same path.
func BuildInput(inv *invoicedomain.Invoice, tmpl TemplateView) RenderInput {
	f := money.NewFormatter(tmpl.Locale)
	tmpl.Locale = f.Locale()
	totals := calc.Aggregate(inv.LineItems())

	items := make([]LineItemView, 0, len(inv.Items))
	for i, item := range inv.Items {
		line := totals.Lines[i]
		items = append(items, LineItemView{
			Position:     item.Position,
			Name:         item.Name,
			Description:  item.Description,
			Quantity:     item.Quantity.String(),
			UnitPrice:    f.Number(item.UnitPrice),
			DiscountRate: f.Percent(item.DiscountRate),
			Discount:     f.Number(line.DiscountAmount),
			TaxRate:      f.Percent(item.TaxRate),
			Tax:          f.Number(line.TaxAmount),
			Total:        f.Number(line.Total),
		})
	}

	number := inv.NumberString()
	if number == "" {
		number = "DRAFT"
	}

	return RenderInput{
		Template: tmpl,
		Invoice: InvoiceView{
			ID:            inv.ID.String(),
			Number:        number,
			Status:        string(inv.Status),
			IssuedAt:      inv.IssuedAt,
			DueAt:         inv.DueAt,
			Currency:      inv.Currency,
			Notes:         inv.Notes,
			Subtotal:      f.Format(totals.Subtotal, inv.Currency),
			TotalDiscount: f.Format(totals.TotalDiscount, inv.Currency),
			TotalTax:      f.Format(totals.TotalTax, inv.Currency),
			Total:         f.Format(totals.Total, inv.Currency),
		},
		Customer: CustomerView{
			Name:  inv.CustomerName,
			Email: inv.CustomerEmail,
			TaxID: inv.CustomerTaxID,
		},
		Items: items,
	}
}

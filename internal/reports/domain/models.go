package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidRange        = errors.New("invalid_report_range")
)

// MonthLayout formats report buckets.
const MonthLayout = "2006-01"

// InvoiceSnapshot is the invoice-level total a report reads. Reports never
// look at line items.
type InvoiceSnapshot struct {
	ID             snowflake.ID
	Status         invoicedomain.InvoiceStatus
	Currency       string
	SubtotalAmount decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	IssuedAt       *time.Time
	CreatedAt      time.Time
}

// Range is a half-open [From, To) reporting window.
type Range struct {
	From time.Time `form:"from" time_format:"2006-01-02"`
	To   time.Time `form:"to" time_format:"2006-01-02"`
}

func (r Range) Validate() error {
	if r.From.IsZero() || r.To.IsZero() || !r.From.Before(r.To) {
		return ErrInvalidRange
	}
	return nil
}

type MonthlySales struct {
	Month       string          `json:"month"`
	Currency    string          `json:"currency"`
	Invoices    int             `json:"invoices"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	Collected   decimal.Decimal `json:"collected"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

type StatusBreakdown struct {
	Status   invoicedomain.InvoiceStatus `json:"status"`
	Currency string                      `json:"currency"`
	Count    int                         `json:"count"`
	Total    decimal.Decimal             `json:"total"`
}

type CashFlow struct {
	Month    string          `json:"month"`
	Sales    decimal.Decimal `json:"sales"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

type Dashboard struct {
	From     time.Time         `json:"from"`
	To       time.Time         `json:"to"`
	Sales    []MonthlySales    `json:"sales"`
	Statuses []StatusBreakdown `json:"statuses"`
	CashFlow []CashFlow        `json:"cash_flow"`
}

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Invoice is a sales invoice with its lifecycle status. The amount columns
// hold the snapshot persisted at issuance; display paths recompute them from
// Items through Totals.
type Invoice struct {
	ID             snowflake.ID    `gorm:"primaryKey"`
	OrgID          snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_invoices_org_number,priority:1"`
	Prefix         string          `gorm:"type:text;not null;uniqueIndex:ux_invoices_org_number,priority:2"`
	Number         *string         `gorm:"type:text;uniqueIndex:ux_invoices_org_number,priority:3"`
	CustomerName   string          `gorm:"type:text;not null"`
	CustomerEmail  string          `gorm:"type:text"`
	CustomerTaxID  string          `gorm:"type:text"`
	Currency       string          `gorm:"type:text;not null"`
	Status         InvoiceStatus   `gorm:"type:text;not null;index;default:'draft'"`
	SubtotalAmount decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	Notes          string          `gorm:"type:text"`
	IssuedAt       *time.Time      `gorm:"index"`
	DueAt          *time.Time      `gorm:"index"`
	PaidAt         *time.Time
	CancelledAt    *time.Time
	OverdueAt      *time.Time
	CancelReason   *string           `gorm:"type:text"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"`
	Version        int64             `gorm:"not null;default:1"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`

	Items []InvoiceItem `gorm:"-"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one persisted line of an invoice. The amount columns are a
// snapshot written at issuance.
type InvoiceItem struct {
	ID             snowflake.ID    `gorm:"primaryKey"`
	OrgID          snowflake.ID    `gorm:"not null;index"`
	InvoiceID      snowflake.ID    `gorm:"not null;index"`
	Position       int             `gorm:"not null"`
	Name           string          `gorm:"type:text;not null"`
	Description    string          `gorm:"type:text"`
	ProductRef     string          `gorm:"type:text"`
	Quantity       decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	TaxRate        decimal.Decimal `gorm:"type:numeric(7,4);not null;default:0"`
	DiscountRate   decimal.Decimal `gorm:"type:numeric(7,4);not null;default:0"`
	SubtotalAmount decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// LineItem maps the persisted row onto the calculation input.
func (i InvoiceItem) LineItem() calc.LineItem {
	return calc.LineItem{
		Name:         i.Name,
		Description:  i.Description,
		ProductRef:   i.ProductRef,
		Quantity:     i.Quantity,
		UnitPrice:    i.UnitPrice,
		TaxRate:      i.TaxRate,
		DiscountRate: i.DiscountRate,
	}
}

// InvoiceSequence tracks the last number issued for an organization prefix.
type InvoiceSequence struct {
	OrgID      snowflake.ID `gorm:"primaryKey"`
	Prefix     string       `gorm:"primaryKey;type:text"`
	LastNumber int64        `gorm:"not null;default:0"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceSequence) TableName() string { return "invoice_sequences" }

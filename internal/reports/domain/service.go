package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// ListInvoices returns invoices issued or created within [from, to).
	ListInvoices(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to time.Time) ([]InvoiceSnapshot, error)
}

type Service interface {
	MonthlySales(ctx context.Context, r Range) ([]MonthlySales, error)
	StatusBreakdown(ctx context.Context, r Range) ([]StatusBreakdown, error)
	CashFlow(ctx context.Context, r Range) ([]CashFlow, error)
	Dashboard(ctx context.Context, r Range) (*Dashboard, error)
}

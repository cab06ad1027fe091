package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/reports/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListInvoices(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to time.Time) ([]domain.InvoiceSnapshot, error) {
	var rows []domain.InvoiceSnapshot
	err := db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("id, status, currency, subtotal_amount, discount_amount, tax_amount, total_amount, issued_at, created_at").
		Where("org_id = ?", orgID).
		Where("(issued_at >= ? AND issued_at < ?) OR (issued_at IS NULL AND created_at >= ? AND created_at < ?)", from, to, from, to).
		Order("id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

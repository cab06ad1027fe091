package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() invoicedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, inv *invoicedomain.Invoice) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(inv).Error; err != nil {
			return err
		}
		return insertItems(tx, inv.Items)
	})
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, inv *invoicedomain.Invoice, expectedVersion int64) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		result := tx.Model(&invoicedomain.Invoice{}).
			Where("id = ? AND org_id = ? AND version = ?", inv.ID, inv.OrgID, expectedVersion).
			Updates(map[string]any{
				"number":          inv.Number,
				"customer_name":   inv.CustomerName,
				"customer_email":  inv.CustomerEmail,
				"customer_tax_id": inv.CustomerTaxID,
				"currency":        inv.Currency,
				"status":          inv.Status,
				"subtotal_amount": inv.SubtotalAmount,
				"discount_amount": inv.DiscountAmount,
				"tax_amount":      inv.TaxAmount,
				"total_amount":    inv.TotalAmount,
				"notes":           inv.Notes,
				"issued_at":       inv.IssuedAt,
				"due_at":          inv.DueAt,
				"paid_at":         inv.PaidAt,
				"cancelled_at":    inv.CancelledAt,
				"overdue_at":      inv.OverdueAt,
				"cancel_reason":   inv.CancelReason,
				"metadata":        inv.Metadata,
				"version":         expectedVersion + 1,
				"updated_at":      now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return invoicedomain.ErrConcurrentUpdate
		}

		if err := tx.Where("invoice_id = ? AND org_id = ?", inv.ID, inv.OrgID).
			Delete(&invoicedomain.InvoiceItem{}).Error; err != nil {
			return err
		}
		if err := insertItems(tx, inv.Items); err != nil {
			return err
		}

		inv.Version = expectedVersion + 1
		inv.UpdatedAt = now
		return nil
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*invoicedomain.Invoice, error) {
	var inv invoicedomain.Invoice
	err := db.WithContext(ctx).
		Where("id = ? AND org_id = ?", id, orgID).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	items, err := listItems(ctx, db, orgID, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return &inv, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter invoicedomain.ListFilter) ([]invoicedomain.Invoice, int64, error) {
	query := db.WithContext(ctx).Model(&invoicedomain.Invoice{}).Where("org_id = ?", filter.OrgID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.IssuedFrom != nil {
		query = query.Where("issued_at >= ?", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		query = query.Where("issued_at < ?", *filter.IssuedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []invoicedomain.Invoice
	if err := query.Order("created_at DESC, id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	for i := range invoices {
		items, err := listItems(ctx, db, filter.OrgID, invoices[i].ID)
		if err != nil {
			return nil, 0, err
		}
		invoices[i].Items = items
	}
	return invoices, total, nil
}

func (r *repo) ListPastDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]invoicedomain.Invoice, error) {
	var invoices []invoicedomain.Invoice
	err := db.WithContext(ctx).
		Where("status = ? AND due_at IS NOT NULL AND due_at < ?", invoicedomain.InvoiceStatusIssued, now).
		Order("due_at ASC, id ASC").
		Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) NextNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID, prefix string, now time.Time) (int64, error) {
	var next int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq := invoicedomain.InvoiceSequence{OrgID: orgID, Prefix: prefix, UpdatedAt: now}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
			return err
		}
		if err := tx.Model(&invoicedomain.InvoiceSequence{}).
			Where("org_id = ? AND prefix = ?", orgID, prefix).
			Updates(map[string]any{
				"last_number": gorm.Expr("last_number + 1"),
				"updated_at":  now,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&invoicedomain.InvoiceSequence{}).
			Select("last_number").
			Where("org_id = ? AND prefix = ?", orgID, prefix).
			Scan(&next).Error
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// FormatNumber renders a sequence value as the stored invoice number.
func FormatNumber(n int64) string {
	return strconv.FormatInt(n, 10)
}

func listItems(ctx context.Context, db *gorm.DB, orgID, invoiceID snowflake.ID) ([]invoicedomain.InvoiceItem, error) {
	var items []invoicedomain.InvoiceItem
	err := db.WithContext(ctx).
		Where("org_id = ? AND invoice_id = ?", orgID, invoiceID).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func insertItems(tx *gorm.DB, items []invoicedomain.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

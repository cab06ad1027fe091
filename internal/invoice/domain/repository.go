package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	OrgID      snowflake.ID
	Status     InvoiceStatus
	IssuedFrom *time.Time
	IssuedTo   *time.Time
	Offset     int
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, inv *Invoice) error
	// Update writes the invoice header and replaces its items when the stored
	// version matches expectedVersion; it bumps inv.Version on success.
	Update(ctx context.Context, db *gorm.DB, inv *Invoice, expectedVersion int64) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Invoice, int64, error)
	ListPastDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]Invoice, error)
	NextNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID, prefix string, now time.Time) (int64, error)
}

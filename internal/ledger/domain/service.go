package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Entry is the input for a ledger posting.
type Entry struct {
	OrgID      snowflake.ID
	SourceType string
	SourceID   snowflake.ID
	Currency   string
	OccurredAt time.Time
	Postings   []Posting
}

// LedgerService defines the ledger entry writer.
type LedgerService interface {
	CreateEntry(ctx context.Context, entry Entry) (*LedgerEntry, error)
	// CreateEntryTx writes the entry inside an existing transaction.
	CreateEntryTx(ctx context.Context, tx *gorm.DB, entry Entry) (*LedgerEntry, error)
	Balances(ctx context.Context, orgID snowflake.ID) (map[string]AccountBalance, error)
}

// Service is the package alias for LedgerService.
type Service = LedgerService

var (
	ErrInvalidOrganization  = errors.New("invalid_organization")
	ErrInvalidSourceType    = errors.New("invalid_source_type")
	ErrInvalidSourceID      = errors.New("invalid_source_id")
	ErrInvalidCurrency      = errors.New("invalid_currency")
	ErrInvalidOccurredAt    = errors.New("invalid_occurred_at")
	ErrInvalidEntryLines    = errors.New("invalid_entry_lines")
	ErrInvalidLineAmount    = errors.New("invalid_line_amount")
	ErrInvalidLineDirection = errors.New("invalid_line_direction")
	ErrInvalidAccount       = errors.New("invalid_account")
	ErrUnbalancedEntry      = errors.New("unbalanced_entry")
)

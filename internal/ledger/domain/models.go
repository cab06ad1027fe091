package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// LedgerEntryDirection represents debit or credit postings.
type LedgerEntryDirection string

const (
	LedgerEntryDirectionDebit  LedgerEntryDirection = "debit"
	LedgerEntryDirectionCredit LedgerEntryDirection = "credit"
)

const (
	SourceTypeInvoiceIssued    = "invoice_issued"
	SourceTypeInvoicePaid      = "invoice_paid"
	SourceTypeInvoiceCancelled = "invoice_cancelled"
	SourceTypeCashSale         = "cash_sale"
	SourceTypeCashMovement     = "cash_movement"
)

const (
	AccountCodeAccountsReceivable = "accounts_receivable"
	AccountCodeRevenue            = "revenue"
	AccountCodeTaxPayable         = "tax_payable"
	AccountCodeCash               = "cash"
	AccountCodeCardClearing       = "card_clearing"
	AccountCodeBankTransfer       = "bank_transfer"
	AccountCodeOtherIncome        = "other_income"
	AccountCodeExpense            = "expense"
)

var accountNames = map[string]string{
	AccountCodeAccountsReceivable: "Accounts receivable",
	AccountCodeRevenue:            "Sales revenue",
	AccountCodeTaxPayable:         "Tax payable",
	AccountCodeCash:               "Cash on hand",
	AccountCodeCardClearing:       "Card clearing",
	AccountCodeBankTransfer:       "Bank transfers",
	AccountCodeOtherIncome:        "Other income",
	AccountCodeExpense:            "Operating expenses",
}

// AccountName returns the display name for a chart-of-accounts code.
func AccountName(code string) string {
	if name, ok := accountNames[code]; ok {
		return name
	}
	return code
}

// LedgerAccount defines a chart-of-accounts entry.
type LedgerAccount struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	OrgID     snowflake.ID `gorm:"not null;index;uniqueIndex:ux_ledger_accounts_org_code,priority:1"`
	Code      string       `gorm:"type:text;not null;uniqueIndex:ux_ledger_accounts_org_code,priority:2"`
	Name      string       `gorm:"type:text;not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (LedgerAccount) TableName() string { return "ledger_accounts" }

// LedgerEntry captures the immutable header for a financial event.
type LedgerEntry struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	OrgID      snowflake.ID `gorm:"not null;index"`
	SourceType string       `gorm:"type:text;not null;index"`
	SourceID   snowflake.ID `gorm:"not null;index"`
	Currency   string       `gorm:"type:text;not null"`
	OccurredAt time.Time    `gorm:"not null"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (LedgerEntry) TableName() string { return "ledger_entries" }

// LedgerEntryLine is a double-entry posting line.
type LedgerEntryLine struct {
	ID            snowflake.ID         `gorm:"primaryKey"`
	LedgerEntryID snowflake.ID         `gorm:"not null;index"`
	AccountID     snowflake.ID         `gorm:"not null;index"`
	Direction     LedgerEntryDirection `gorm:"type:text;not null"`
	Amount        decimal.Decimal      `gorm:"type:numeric(18,2);not null"`
	CreatedAt     time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (LedgerEntryLine) TableName() string { return "ledger_entry_lines" }

// Posting is one requested line, addressed by account code.
type Posting struct {
	AccountCode string
	Direction   LedgerEntryDirection
	Amount      decimal.Decimal
}

func Debit(code string, amount decimal.Decimal) Posting {
	return Posting{AccountCode: code, Direction: LedgerEntryDirectionDebit, Amount: amount}
}

func Credit(code string, amount decimal.Decimal) Posting {
	return Posting{AccountCode: code, Direction: LedgerEntryDirectionCredit, Amount: amount}
}

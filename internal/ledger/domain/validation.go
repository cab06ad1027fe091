package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AccountBalance is the net debit minus credit of one account.
type AccountBalance struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// Net returns debit minus credit.
func (b AccountBalance) Net() decimal.Decimal {
	return b.Debit.Sub(b.Credit)
}

// Compact drops zero-amount postings so optional components (tax, discount)
// do not produce empty lines.
func Compact(postings []Posting) []Posting {
	out := make([]Posting, 0, len(postings))
	for _, p := range postings {
		if p.Amount.IsZero() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ValidateBalanced ensures ledger lines sum to a balanced double-entry posting.
func ValidateBalanced(postings []Posting) error {
	if len(postings) < 2 {
		return ErrInvalidEntryLines
	}

	debitTotal := decimal.Zero
	creditTotal := decimal.Zero
	for _, p := range postings {
		if strings.TrimSpace(p.AccountCode) == "" {
			return ErrInvalidAccount
		}
		if !p.Amount.IsPositive() {
			return ErrInvalidLineAmount
		}
		switch p.Direction {
		case LedgerEntryDirectionDebit:
			debitTotal = debitTotal.Add(p.Amount)
		case LedgerEntryDirectionCredit:
			creditTotal = creditTotal.Add(p.Amount)
		default:
			return ErrInvalidLineDirection
		}
	}

	if !debitTotal.Equal(creditTotal) {
		return ErrUnbalancedEntry
	}
	return nil
}

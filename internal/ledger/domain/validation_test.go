package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestValidateBalanced(t *testing.T) {
	cases := []struct {
		name     string
		postings []Posting
		want     error
	}{
		{
			name: "balanced invoice",
			postings: []Posting{
				Debit(AccountCodeAccountsReceivable, d("32130")),
				Credit(AccountCodeRevenue, d("27000")),
				Credit(AccountCodeTaxPayable, d("5130")),
			},
		},
		{
			name:     "single line",
			postings: []Posting{Debit(AccountCodeCash, d("1"))},
			want:     ErrInvalidEntryLines,
		},
		{
			name: "unbalanced",
			postings: []Posting{
				Debit(AccountCodeCash, d("10.01")),
				Credit(AccountCodeRevenue, d("10")),
			},
			want: ErrUnbalancedEntry,
		},
		{
			name: "zero amount",
			postings: []Posting{
				Debit(AccountCodeCash, d("0")),
				Credit(AccountCodeRevenue, d("0")),
			},
			want: ErrInvalidLineAmount,
		},
		{
			name: "unknown direction",
			postings: []Posting{
				{AccountCode: AccountCodeCash, Direction: "sideways", Amount: d("1")},
				Credit(AccountCodeRevenue, d("1")),
			},
			want: ErrInvalidLineDirection,
		},
		{
			name: "missing account",
			postings: []Posting{
				Debit("", d("1")),
				Credit(AccountCodeRevenue, d("1")),
			},
			want: ErrInvalidAccount,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBalanced(tc.postings)
			if tc.want == nil && err != nil {
				t.Fatalf("expected balanced, got %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCompactDropsZeroPostings(t *testing.T) {
	postings := Compact([]Posting{
		Debit(AccountCodeAccountsReceivable, d("100")),
		Credit(AccountCodeRevenue, d("100")),
		Credit(AccountCodeTaxPayable, decimal.Zero),
	})
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}
	if err := ValidateBalanced(postings); err != nil {
		t.Fatalf("expected balanced, got %v", err)
	}
}

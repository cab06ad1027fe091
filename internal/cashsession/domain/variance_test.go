package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestSummarizeCountsOnlyCashInDrawer(t *testing.T) {
	movements := []CashMovement{
		{Kind: MovementKindSale, PaymentMethod: PaymentMethodCash, Direction: DirectionIn, Amount: d("32130")},
		{Kind: MovementKindSale, PaymentMethod: PaymentMethodCard, Direction: DirectionIn, Amount: d("5000")},
		{Kind: MovementKindSale, PaymentMethod: PaymentMethodTransfer, Direction: DirectionIn, Amount: d("1200")},
		{Kind: MovementKindIncome, PaymentMethod: PaymentMethodCash, Direction: DirectionIn, Amount: d("10000")},
		{Kind: MovementKindExpense, PaymentMethod: PaymentMethodCash, Direction: DirectionOut, Amount: d("2130")},
	}

	s := Summarize(d("100000"), movements)
	if !s.Expected.Equal(d("140000")) {
		t.Fatalf("expected 140000 in drawer, got %s", s.Expected)
	}
	if !s.CardSales.Equal(d("5000")) || !s.TransferSales.Equal(d("1200")) {
		t.Fatalf("unexpected non-cash sales: %+v", s)
	}
	if !movements[4].Signed().Equal(d("-2130")) {
		t.Fatalf("expected negative signed expense")
	}
}

func TestComputeVariance(t *testing.T) {
	cases := []struct {
		name     string
		expected string
		counted  string
		diff     string
		pct      string
		alert    VarianceAlert
	}{
		{"exact", "100000", "100000", "0", "0", VarianceNormal},
		{"small shortfall", "100000", "99000", "-1000", "-1", VarianceNormal},
		{"warning surplus", "100000", "103000", "3000", "3", VarianceWarning},
		{"at critical edge", "100000", "95000", "-5000", "-5", VarianceWarning},
		{"critical", "100000", "80000", "-20000", "-20", VarianceCritical},
		{"nothing expected", "0", "500", "500", "100", VarianceCritical},
		{"fractional", "30000", "29999.99", "-0.01", "0", VarianceNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := ComputeVariance(d(tc.expected), d(tc.counted))
			if !v.Difference.Equal(d(tc.diff)) {
				t.Fatalf("difference: want %s, got %s", tc.diff, v.Difference)
			}
			if !v.Percent.Equal(d(tc.pct)) {
				t.Fatalf("percent: want %s, got %s", tc.pct, v.Percent)
			}
			if v.Alert != tc.alert {
				t.Fatalf("alert: want %s, got %s", tc.alert, v.Alert)
			}
		})
	}
}

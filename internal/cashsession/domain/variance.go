package domain

import "github.com/shopspring/decimal"

// VarianceAlert grades the gap between counted and expected cash.
type VarianceAlert string

const (
	VarianceNormal   VarianceAlert = "normal"
	VarianceWarning  VarianceAlert = "warning"
	VarianceCritical VarianceAlert = "critical"
)

var (
	hundred = decimal.NewFromInt(100)

	// WarningThreshold and CriticalThreshold are absolute variance
	// percentages; a variance above the threshold moves to the next grade.
	WarningThreshold  = decimal.NewFromInt(1)
	CriticalThreshold = decimal.NewFromInt(5)
)

// Summary is the drawer arithmetic of a session.
type Summary struct {
	OpeningAmount decimal.Decimal `json:"opening_amount"`
	CashSales     decimal.Decimal `json:"cash_sales"`
	CardSales     decimal.Decimal `json:"card_sales"`
	TransferSales decimal.Decimal `json:"transfer_sales"`
	Income        decimal.Decimal `json:"income"`
	Expenses      decimal.Decimal `json:"expenses"`
	Expected      decimal.Decimal `json:"expected_amount"`
}

// Summarize adds up movements. Only cash sales, income and expenses move the
// drawer; card and transfer sales are reported but never counted.
func Summarize(opening decimal.Decimal, movements []CashMovement) Summary {
	s := Summary{
		OpeningAmount: opening,
		CashSales:     decimal.Zero,
		CardSales:     decimal.Zero,
		TransferSales: decimal.Zero,
		Income:        decimal.Zero,
		Expenses:      decimal.Zero,
	}
	for _, m := range movements {
		switch m.Kind {
		case MovementKindSale:
			switch m.PaymentMethod {
			case PaymentMethodCard:
				s.CardSales = s.CardSales.Add(m.Amount)
			case PaymentMethodTransfer:
				s.TransferSales = s.TransferSales.Add(m.Amount)
			default:
				s.CashSales = s.CashSales.Add(m.Amount)
			}
		case MovementKindIncome:
			s.Income = s.Income.Add(m.Amount)
		case MovementKindExpense:
			s.Expenses = s.Expenses.Add(m.Amount)
		}
	}
	s.Expected = opening.Add(s.CashSales).Add(s.Income).Sub(s.Expenses)
	return s
}

// Variance compares the counted amount with the expected one.
type Variance struct {
	Difference decimal.Decimal `json:"difference"`
	Percent    decimal.Decimal `json:"percent"`
	Alert      VarianceAlert   `json:"alert"`
}

// ComputeVariance returns counted - expected, its percentage of expected and
// the alert grade. With nothing expected any shortfall or surplus counts as a
// full 100% variance.
func ComputeVariance(expected, counted decimal.Decimal) Variance {
	diff := counted.Sub(expected).Round(2)
	var pct decimal.Decimal
	switch {
	case diff.IsZero():
		pct = decimal.Zero
	case expected.IsZero():
		pct = hundred
		if diff.IsNegative() {
			pct = pct.Neg()
		}
	default:
		pct = diff.Div(expected.Abs()).Mul(hundred).Round(2)
	}
	return Variance{Difference: diff, Percent: pct, Alert: Classify(pct)}
}

func Classify(percent decimal.Decimal) VarianceAlert {
	abs := percent.Abs()
	switch {
	case abs.GreaterThan(CriticalThreshold):
		return VarianceCritical
	case abs.GreaterThan(WarningThreshold):
		return VarianceWarning
	default:
		return VarianceNormal
	}
}

package domain

import (
	"testing"
	"time"

	cashdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession/domain"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	"github.com/shopspring/decimal"
)

func at(month time.Month, day int) *time.Time {
	t := time.Date(2026, month, day, 10, 0, 0, 0, time.UTC)
	return &t
}

func snapshot(status invoicedomain.InvoiceStatus, issued *time.Time, total int64) InvoiceSnapshot {
	return InvoiceSnapshot{
		Status:         status,
		SubtotalAmount: decimal.NewFromInt(total),
		DiscountAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
		TotalAmount:    decimal.NewFromInt(total),
		IssuedAt:       issued,
	}
}

func TestAggregateSalesByIssueMonth(t *testing.T) {
	invoices := []InvoiceSnapshot{
		snapshot(invoicedomain.InvoiceStatusPaid, at(time.February, 3), 1000),
		snapshot(invoicedomain.InvoiceStatusIssued, at(time.February, 20), 500),
		snapshot(invoicedomain.InvoiceStatusOverdue, at(time.January, 9), 200),
		snapshot(invoicedomain.InvoiceStatusCancelled, at(time.February, 4), 9999),
		snapshot(invoicedomain.InvoiceStatusDraft, nil, 7777),
	}

	sales := AggregateSales(invoices)
	if len(sales) != 2 || sales[0].Month != "2026-01" || sales[1].Month != "2026-02" {
		t.Fatalf("unexpected months: %+v", sales)
	}
	feb := sales[1]
	if feb.Invoices != 2 || !feb.Total.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("unexpected february totals: %+v", feb)
	}
	if !feb.Collected.Equal(decimal.NewFromInt(1000)) || !feb.Outstanding.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected collection split: %+v", feb)
	}
}

func TestAggregateSalesSeparatesCurrencies(t *testing.T) {
	cop := snapshot(invoicedomain.InvoiceStatusIssued, at(time.March, 3), 100000)
	cop.Currency = "COP"
	usd := snapshot(invoicedomain.InvoiceStatusPaid, at(time.March, 9), 50)
	usd.Currency = "USD"

	sales := AggregateSales([]InvoiceSnapshot{usd, cop})
	if len(sales) != 2 {
		t.Fatalf("expected one bucket per currency, got %+v", sales)
	}
	if sales[0].Currency != "COP" || sales[0].Invoices != 1 || !sales[0].Total.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("unexpected COP bucket: %+v", sales[0])
	}
	if sales[1].Currency != "USD" || !sales[1].Total.Equal(decimal.NewFromInt(50)) || !sales[1].Collected.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected USD bucket: %+v", sales[1])
	}

	statuses := AggregateStatuses([]InvoiceSnapshot{usd, cop, cop})
	if len(statuses) != 2 || statuses[0].Currency != "COP" || statuses[0].Count != 2 {
		t.Fatalf("unexpected status breakdown: %+v", statuses)
	}
	if statuses[1].Status != invoicedomain.InvoiceStatusPaid || !statuses[1].Total.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected paid bucket: %+v", statuses[1])
	}
}

func TestAggregateStatusesInLifecycleOrder(t *testing.T) {
	invoices := []InvoiceSnapshot{
		snapshot(invoicedomain.InvoiceStatusPaid, at(time.March, 1), 10),
		snapshot(invoicedomain.InvoiceStatusDraft, nil, 5),
		snapshot(invoicedomain.InvoiceStatusPaid, at(time.March, 2), 15),
	}
	statuses := AggregateStatuses(invoices)
	if len(statuses) != 2 || statuses[0].Status != invoicedomain.InvoiceStatusDraft {
		t.Fatalf("unexpected breakdown: %+v", statuses)
	}
	if statuses[1].Count != 2 || !statuses[1].Total.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected paid bucket: %+v", statuses[1])
	}
}

func TestAggregateCashFlow(t *testing.T) {
	movements := []cashdomain.CashMovement{
		{Kind: cashdomain.MovementKindSale, Amount: decimal.NewFromInt(32130), OccurredAt: *at(time.March, 2)},
		{Kind: cashdomain.MovementKindSale, Amount: decimal.NewFromInt(5000), PaymentMethod: cashdomain.PaymentMethodCard, OccurredAt: *at(time.March, 2)},
		{Kind: cashdomain.MovementKindIncome, Amount: decimal.NewFromInt(1000), OccurredAt: *at(time.March, 5)},
		{Kind: cashdomain.MovementKindExpense, Amount: decimal.NewFromInt(2130), OccurredAt: *at(time.April, 1)},
	}
	flow := AggregateCashFlow(movements)
	if len(flow) != 2 {
		t.Fatalf("expected two months, got %+v", flow)
	}
	if !flow[0].Net.Equal(decimal.NewFromInt(38130)) {
		t.Fatalf("unexpected march net: %+v", flow[0])
	}
	if !flow[1].Net.Equal(decimal.NewFromInt(-2130)) {
		t.Fatalf("unexpected april net: %+v", flow[1])
	}
}

func TestRangeValidate(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := (Range{From: from, To: from}).Validate(); err != ErrInvalidRange {
		t.Fatalf("expected invalid range, got %v", err)
	}
	if err := (Range{From: from, To: from.AddDate(0, 1, 0)}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	cashdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession/domain"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	invoicerepository "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/repository"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/orgcontext"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/reports/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/reports/repository"
	"github.com/luisk202009/kuppel-dine-ease-sub001/pkg/db/dbtest"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeCash struct {
	cashdomain.Service
	movements []cashdomain.CashMovement
	calls     int
}

func (f *fakeCash) MovementsBetween(ctx context.Context, from, to time.Time) ([]cashdomain.CashMovement, error) {
	f.calls++
	return f.movements, nil
}

var march = domain.Range{
	From: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	To:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
}

func insertInvoice(t *testing.T, db *gorm.DB, id int64, orgID snowflake.ID, status invoicedomain.InvoiceStatus, issuedAt time.Time, total int64) {
	t.Helper()
	inv := &invoicedomain.Invoice{
		ID:             snowflake.ID(id),
		OrgID:          orgID,
		Prefix:         "FV",
		CustomerName:   "Acme",
		Currency:       "COP",
		Status:         status,
		SubtotalAmount: decimal.NewFromInt(total),
		DiscountAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
		TotalAmount:    decimal.NewFromInt(total),
		Version:        1,
		CreatedAt:      issuedAt,
		UpdatedAt:      issuedAt,
	}
	if status != invoicedomain.InvoiceStatusDraft {
		inv.IssuedAt = &issuedAt
	}
	if err := invoicerepository.Provide().Insert(context.Background(), db, inv); err != nil {
		t.Fatalf("insert invoice: %v", err)
	}
}

func newTestService(t *testing.T, cash *fakeCash) (domain.Service, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t, &invoicedomain.Invoice{}, &invoicedomain.InvoiceItem{})
	svc := NewService(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide(), CashSvc: cash})
	return svc, db
}

func TestDashboardAggregatesSnapshots(t *testing.T) {
	cash := &fakeCash{movements: []cashdomain.CashMovement{
		{Kind: cashdomain.MovementKindSale, Amount: decimal.NewFromInt(32130), OccurredAt: march.From.Add(time.Hour)},
		{Kind: cashdomain.MovementKindExpense, Amount: decimal.NewFromInt(2130), OccurredAt: march.From.Add(2 * time.Hour)},
	}}
	svc, db := newTestService(t, cash)
	ctx := orgcontext.WithOrgID(context.Background(), 7)

	day := march.From.Add(48 * time.Hour)
	insertInvoice(t, db, 1, 7, invoicedomain.InvoiceStatusPaid, day, 37130)
	insertInvoice(t, db, 2, 7, invoicedomain.InvoiceStatusIssued, day, 10000)
	insertInvoice(t, db, 3, 7, invoicedomain.InvoiceStatusCancelled, day, 500)
	insertInvoice(t, db, 4, 7, invoicedomain.InvoiceStatusDraft, day, 800)
	insertInvoice(t, db, 5, 7, invoicedomain.InvoiceStatusPaid, march.To.Add(time.Hour), 999)
	insertInvoice(t, db, 6, 8, invoicedomain.InvoiceStatusPaid, day, 999)

	dash, err := svc.Dashboard(ctx, march)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.Sales) != 1 || dash.Sales[0].Month != "2026-03" {
		t.Fatalf("unexpected sales: %+v", dash.Sales)
	}
	sales := dash.Sales[0]
	if sales.Invoices != 2 || !sales.Total.Equal(decimal.NewFromInt(47130)) || !sales.Outstanding.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("unexpected march sales: %+v", sales)
	}
	if len(dash.Statuses) != 4 {
		t.Fatalf("expected four statuses, got %+v", dash.Statuses)
	}
	if len(dash.CashFlow) != 1 || !dash.CashFlow[0].Net.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("unexpected cash flow: %+v", dash.CashFlow)
	}
}

func TestReportsAreCached(t *testing.T) {
	cash := &fakeCash{}
	svc, db := newTestService(t, cash)
	ctx := orgcontext.WithOrgID(context.Background(), 7)
	day := march.From.Add(24 * time.Hour)

	insertInvoice(t, db, 1, 7, invoicedomain.InvoiceStatusPaid, day, 100)
	first, err := svc.MonthlySales(ctx, march)
	if err != nil {
		t.Fatalf("sales: %v", err)
	}

	insertInvoice(t, db, 2, 7, invoicedomain.InvoiceStatusPaid, day, 100)
	second, err := svc.MonthlySales(ctx, march)
	if err != nil {
		t.Fatalf("sales: %v", err)
	}
	if second[0].Invoices != first[0].Invoices {
		t.Fatalf("expected cached result within ttl")
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.CashFlow(ctx, march); err != nil {
			t.Fatalf("cash flow: %v", err)
		}
	}
	if cash.calls != 1 {
		t.Fatalf("expected one movement load, got %d", cash.calls)
	}
}

func TestReportsValidateScope(t *testing.T) {
	svc, _ := newTestService(t, &fakeCash{})

	if _, err := svc.MonthlySales(context.Background(), march); !errors.Is(err, domain.ErrInvalidOrganization) {
		t.Fatalf("expected invalid organization, got %v", err)
	}
	ctx := orgcontext.WithOrgID(context.Background(), 7)
	if _, err := svc.StatusBreakdown(ctx, domain.Range{From: march.To, To: march.From}); !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
}

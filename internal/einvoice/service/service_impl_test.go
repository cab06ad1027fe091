package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit/domain"
	auditrepository "github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit/repository"
	auditservice "github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit/service"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/clock"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/einvoice/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/events"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	invoicerepository "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/repository"
	invoiceservice "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/service"
	ledgerdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/ledger/domain"
	ledgerservice "github.com/luisk202009/kuppel-dine-ease-sub001/internal/ledger/service"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/orgcontext"
	"github.com/luisk202009/kuppel-dine-ease-sub001/pkg/db/dbtest"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeGateway struct {
	calls int
	err   error
	last  *domain.Submission
	// during runs inside the provider call, while the submission is in flight.
	during func()
}

func (g *fakeGateway) Provider() string { return "fake" }

func (g *fakeGateway) Submit(ctx context.Context, submission *domain.Submission) (*domain.Receipt, error) {
	g.calls++
	g.last = submission
	if hook := g.during; hook != nil {
		g.during = nil
		hook()
	}
	if g.err != nil {
		return nil, g.err
	}
	return &domain.Receipt{
		Provider:    "fake",
		ExternalID:  "ext-" + submission.Number,
		Status:      "accepted",
		SubmittedAt: time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC),
	}, nil
}

type fixture struct {
	ctx      context.Context
	invoices invoicedomain.Service
	svc      domain.Service
	gateway  *fakeGateway
	outbox   *events.Outbox
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := dbtest.Open(t,
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&invoicedomain.InvoiceSequence{},
		&ledgerdomain.LedgerAccount{},
		&ledgerdomain.LedgerEntry{},
		&ledgerdomain.LedgerEntryLine{},
		&auditdomain.AuditLog{},
		&events.OutboxEvent{},
	)
	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	log := zap.NewNop()
	cfg := config.Config{
		Invoicing: config.InvoicingConfig{DefaultCurrency: "COP", DefaultPrefix: "FV", PaymentTermDays: 30},
		EInvoice:  config.EInvoiceConfig{Provider: "fake"},
	}
	repo := invoicerepository.Provide()
	auditSvc := auditservice.NewService(auditservice.Params{DB: db, Log: log, GenID: node, Repo: auditrepository.Provide()})
	outbox := events.NewOutbox(db, node)

	invoices := invoiceservice.NewService(invoiceservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     clock.Fixed(time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)),
		Cfg:       cfg,
		Repo:      repo,
		LedgerSvc: ledgerservice.NewService(ledgerservice.Params{DB: db, Log: log, GenID: node}),
		AuditSvc:  auditSvc,
		Outbox:    outbox,
	})
	gateway := &fakeGateway{}
	svc := NewService(Params{
		DB:         db,
		Log:        log,
		Cfg:        cfg,
		InvoiceSvc: invoices,
		Repo:       repo,
		Registry:   domain.NewRegistry(gateway),
		AuditSvc:   auditSvc,
		Outbox:     outbox,
	})
	return fixture{
		ctx:      orgcontext.WithOrgID(context.Background(), 7),
		invoices: invoices,
		svc:      svc,
		gateway:  gateway,
		outbox:   outbox,
	}
}

func createInvoice(t *testing.T, f fixture, issue bool) string {
	t.Helper()
	created, err := f.invoices.Create(f.ctx, invoicedomain.CreateRequest{
		CustomerName:  "Acme SAS",
		CustomerTaxID: "900123456-7",
		Items: []calc.LineItem{{
			Name:         "Cafe",
			Quantity:     decimal.NewFromInt(3),
			UnitPrice:    decimal.NewFromInt(10000),
			TaxRate:      decimal.NewFromInt(19),
			DiscountRate: decimal.NewFromInt(10),
		}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if issue {
		if _, err := f.invoices.Issue(f.ctx, created.ID, invoicedomain.IssueRequest{}); err != nil {
			t.Fatalf("issue: %v", err)
		}
	}
	return created.ID
}

func TestSubmitStoresReceipt(t *testing.T) {
	f := newFixture(t)
	id := createInvoice(t, f, true)

	receipt, err := f.svc.Submit(f.ctx, id)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if receipt.ExternalID != "ext-1" {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if !f.gateway.last.Total.Equal(decimal.NewFromInt(32130)) {
		t.Fatalf("expected recomputed total in submission, got %s", f.gateway.last.Total)
	}

	stored, err := f.invoices.Get(f.ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	entry, ok := stored.Metadata[domain.MetadataKey].(map[string]any)
	if !ok || entry["external_id"] != "ext-1" {
		t.Fatalf("expected receipt in metadata, got %+v", stored.Metadata)
	}
	if stored.Status != invoicedomain.InvoiceStatusIssued {
		t.Fatalf("submission must not change status, got %s", stored.Status)
	}

	if _, err := f.svc.Submit(f.ctx, id); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected already submitted, got %v", err)
	}
	if f.gateway.calls != 1 {
		t.Fatalf("expected a single provider call, got %d", f.gateway.calls)
	}

	pending, err := f.outbox.Pending(context.Background(), 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	last := pending[len(pending)-1]
	if last.EventType != events.EventInvoiceSubmitted {
		t.Fatalf("expected submitted event last, got %s", last.EventType)
	}
}

func TestSubmitWhileInFlightNeverReachesProviderTwice(t *testing.T) {
	f := newFixture(t)
	id := createInvoice(t, f, true)

	var secondErr error
	f.gateway.during = func() {
		_, secondErr = f.svc.Submit(f.ctx, id)
	}
	if _, err := f.svc.Submit(f.ctx, id); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !errors.Is(secondErr, domain.ErrSubmissionInProgress) {
		t.Fatalf("expected submission in progress, got %v", secondErr)
	}
	if f.gateway.calls != 1 {
		t.Fatalf("expected a single provider call, got %d", f.gateway.calls)
	}

	stored, err := f.invoices.Get(f.ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if domain.IsPending(stored.Metadata[domain.MetadataKey]) {
		t.Fatalf("expected the receipt to replace the pending marker, got %+v", stored.Metadata)
	}
}

func TestSubmitRejectsDrafts(t *testing.T) {
	f := newFixture(t)
	id := createInvoice(t, f, false)

	if _, err := f.svc.Submit(f.ctx, id); !errors.Is(err, domain.ErrNotIssued) {
		t.Fatalf("expected not issued, got %v", err)
	}
	if f.gateway.calls != 0 {
		t.Fatalf("drafts must not reach the provider")
	}
}

func TestSubmitProviderFailureLeavesInvoiceUntouched(t *testing.T) {
	f := newFixture(t)
	id := createInvoice(t, f, true)
	f.gateway.err = &domain.ProviderError{StatusCode: 422, Message: "invalid"}

	if _, err := f.svc.Submit(f.ctx, id); !errors.Is(err, domain.ErrProviderRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	stored, err := f.invoices.Get(f.ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := stored.Metadata[domain.MetadataKey]; ok {
		t.Fatalf("failed submission must not store a receipt")
	}

	f.gateway.err = nil
	if _, err := f.svc.Submit(f.ctx, id); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	id := createInvoice(t, f, true)

	sub, err := f.svc.Preview(f.ctx, id)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(sub.Taxes) != 1 || !sub.Taxes[0].Amount.Equal(decimal.NewFromInt(5130)) {
		t.Fatalf("unexpected tax breakdown: %+v", sub.Taxes)
	}
	if f.gateway.calls != 0 {
		t.Fatalf("preview must not call the provider")
	}
}

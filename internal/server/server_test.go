package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	auditdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit/domain"
	auditrepository "github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit/repository"
	auditservice "github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit/service"
	cashdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession/domain"
	cashrepository "github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession/repository"
	cashservice "github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession/service"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/clock"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	einvoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/einvoice/domain"
	einvoiceservice "github.com/luisk202009/kuppel-dine-ease-sub001/internal/einvoice/service"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/events"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/render"
	invoicerepository "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/repository"
	invoiceservice "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/service"
	templatedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoicetemplate/domain"
	templaterepository "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoicetemplate/repository"
	templateservice "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoicetemplate/service"
	ledgerdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/ledger/domain"
	ledgerservice "github.com/luisk202009/kuppel-dine-ease-sub001/internal/ledger/service"
	reportrepository "github.com/luisk202009/kuppel-dine-ease-sub001/internal/reports/repository"
	reportservice "github.com/luisk202009/kuppel-dine-ease-sub001/internal/reports/service"
	"github.com/luisk202009/kuppel-dine-ease-sub001/pkg/db/dbtest"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const testOrg = "7"

var testNow = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

type stubGateway struct {
	calls int
}

func (g *stubGateway) Provider() string { return "stub" }

func (g *stubGateway) Submit(ctx context.Context, submission *einvoicedomain.Submission) (*einvoicedomain.Receipt, error) {
	g.calls++
	return &einvoicedomain.Receipt{
		Provider:    "stub",
		ExternalID:  "ext-" + submission.Number,
		Status:      "accepted",
		SubmittedAt: testNow,
	}, nil
}

type testServer struct {
	engine  *gin.Engine
	server  *Server
	gateway *stubGateway
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t,
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&invoicedomain.InvoiceSequence{},
		&templatedomain.InvoiceTemplate{},
		&cashdomain.CashSession{},
		&cashdomain.CashMovement{},
		&ledgerdomain.LedgerAccount{},
		&ledgerdomain.LedgerEntry{},
		&ledgerdomain.LedgerEntryLine{},
		&auditdomain.AuditLog{},
		&events.OutboxEvent{},
	)
	node, err := snowflake.NewNode(9)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	log := zap.NewNop()
	clk := clock.Fixed(testNow)
	cfg := config.Config{
		ServiceName: "kuppel-test",
		Metrics:     config.MetricsConfig{Enabled: false},
		Invoicing:   config.InvoicingConfig{DefaultCurrency: "COP", DefaultLocale: "es-CO", DefaultPrefix: "FV", PaymentTermDays: 30},
		EInvoice:    config.EInvoiceConfig{Provider: "stub"},
	}

	ledgerSvc := ledgerservice.NewService(ledgerservice.Params{DB: db, Log: log, GenID: node})
	auditSvc := auditservice.NewService(auditservice.Params{DB: db, Log: log, GenID: node, Repo: auditrepository.Provide()})
	outbox := events.NewOutbox(db, node)
	invoiceRepo := invoicerepository.Provide()

	invoices := invoiceservice.NewService(invoiceservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Cfg: cfg, Repo: invoiceRepo,
		LedgerSvc: ledgerSvc, AuditSvc: auditSvc, Outbox: outbox,
	})
	templates := templateservice.NewService(templateservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: templaterepository.Provide(),
	})
	cash := cashservice.NewService(cashservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Cfg: cfg, Repo: cashrepository.Provide(),
		LedgerSvc: ledgerSvc, AuditSvc: auditSvc, Outbox: outbox,
	})
	gateway := &stubGateway{}

	srv := NewServer(Params{
		Cfg:        cfg,
		DB:         db,
		Log:        log,
		Clock:      clk,
		InvoiceSvc: invoices,
		DocumentSvc: render.NewDocumentService(render.DocumentParams{
			Invoices: invoices, Templates: templates, Renderer: render.NewRenderer(), Cfg: cfg,
		}),
		TemplateSvc: templates,
		CashSvc:     cash,
		ReportSvc: reportservice.NewService(reportservice.Params{
			DB: db, Log: log, Repo: reportrepository.Provide(), CashSvc: cash,
		}),
		EInvoiceSvc: einvoiceservice.NewService(einvoiceservice.Params{
			DB: db, Log: log, Cfg: cfg, InvoiceSvc: invoices, Repo: invoiceRepo,
			Registry: einvoicedomain.NewRegistry(gateway), AuditSvc: auditSvc, Outbox: outbox,
		}),
		LedgerSvc: ledgerSvc,
		AuditSvc:  auditSvc,
	})

	engine := NewEngine(EngineParams{Cfg: cfg})
	srv.RegisterAPIRoutes(engine)
	return testServer{engine: engine, server: srv, gateway: gateway}
}

func (ts testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return ts.doAs(t, testOrg, method, path, body)
}

func (ts testServer) doAs(t *testing.T, org, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if org != "" {
		req.Header.Set(HeaderOrg, org)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return envelope.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var envelope struct {
		Error APIError `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error %s: %v", w.Body.String(), err)
	}
	return envelope.Error
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
}

func coffee() calc.LineItem {
	return calc.LineItem{
		Name:         "Cafe",
		Quantity:     decimal.NewFromInt(3),
		UnitPrice:    decimal.NewFromInt(10000),
		TaxRate:      decimal.NewFromInt(19),
		DiscountRate: decimal.NewFromInt(10),
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	w := ts.doAs(t, "", http.MethodGet, "/healthz", nil)
	expectStatus(t, w, http.StatusOK)
}

func TestPreviewDoesNotNeedOrganization(t *testing.T) {
	ts := newTestServer(t)
	w := ts.doAs(t, "", http.MethodPost, "/api/invoices/preview", previewInvoiceRequest{Items: []calc.LineItem{coffee()}})
	expectStatus(t, w, http.StatusOK)

	totals := decodeData[calc.InvoiceTotals](t, w)
	if !totals.Total.Equal(decimal.NewFromInt(32130)) || !totals.TotalTax.Equal(decimal.NewFromInt(5130)) {
		t.Fatalf("unexpected preview totals: %+v", totals)
	}

	bad := coffee()
	bad.TaxRate = decimal.NewFromInt(150)
	w = ts.doAs(t, "", http.MethodPost, "/api/invoices/preview", previewInvoiceRequest{Items: []calc.LineItem{bad}})
	expectStatus(t, w, http.StatusBadRequest)
	if apiErr := decodeError(t, w); apiErr.Code != "invalid_input" || apiErr.Field != "tax_rate" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestScopedRoutesRequireOrganization(t *testing.T) {
	ts := newTestServer(t)

	w := ts.doAs(t, "", http.MethodGet, "/api/invoices", nil)
	expectStatus(t, w, http.StatusBadRequest)
	if apiErr := decodeError(t, w); apiErr.Code != "missing_organization" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}

	w = ts.doAs(t, "acme", http.MethodGet, "/api/invoices", nil)
	expectStatus(t, w, http.StatusBadRequest)
	if apiErr := decodeError(t, w); apiErr.Code != "invalid_organization" || apiErr.Field != HeaderOrg {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/invoices", invoicedomain.CreateRequest{
		CustomerName:  "Acme SAS",
		CustomerTaxID: "900123456-7",
		Items:         []calc.LineItem{coffee()},
	})
	expectStatus(t, w, http.StatusCreated)
	created := decodeData[invoicedomain.Response](t, w)
	if created.Status != invoicedomain.InvoiceStatusDraft || !created.CanEditItems {
		t.Fatalf("expected editable draft, got %+v", created)
	}
	base := "/api/invoices/" + created.ID

	extra := calc.LineItem{Name: "Pan", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5000)}
	w = ts.do(t, http.MethodPost, base+"/items", extra)
	expectStatus(t, w, http.StatusOK)
	withItem := decodeData[invoicedomain.Response](t, w)
	if len(withItem.Items) != 2 || !withItem.Totals.Total.Equal(decimal.NewFromInt(37130)) {
		t.Fatalf("unexpected invoice after add: %+v", withItem.Totals)
	}

	w = ts.do(t, http.MethodPut, base+"/items/order", reorderItemsRequest{
		ItemIDs: []string{withItem.Items[1].ID, withItem.Items[0].ID},
	})
	expectStatus(t, w, http.StatusOK)
	reordered := decodeData[invoicedomain.Response](t, w)
	if reordered.Items[0].ID != withItem.Items[1].ID || !reordered.Totals.Equal(withItem.Totals) {
		t.Fatalf("reorder changed totals or kept order: %+v", reordered.Items)
	}

	w = ts.do(t, http.MethodPost, base+"/issue", nil)
	expectStatus(t, w, http.StatusOK)
	issued := decodeData[invoicedomain.Response](t, w)
	if issued.Status != invoicedomain.InvoiceStatusIssued || issued.Number == "" || issued.CanEditItems {
		t.Fatalf("unexpected issued invoice: %+v", issued)
	}

	w = ts.do(t, http.MethodPost, base+"/items", extra)
	expectStatus(t, w, http.StatusConflict)
	if apiErr := decodeError(t, w); apiErr.Code != "mutation_after_freeze" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
	w = ts.do(t, http.MethodDelete, base+"/items/"+issued.Items[0].ID, nil)
	expectStatus(t, w, http.StatusConflict)

	w = ts.do(t, http.MethodPost, base+"/issue", nil)
	expectStatus(t, w, http.StatusConflict)
	if apiErr := decodeError(t, w); apiErr.Code != "invalid_transition" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}

	w = ts.do(t, http.MethodGet, base, nil)
	expectStatus(t, w, http.StatusOK)
	fetched := decodeData[invoicedomain.Response](t, w)
	if !fetched.Totals.Equal(issued.Totals) || len(fetched.Items) != 2 {
		t.Fatalf("issued totals drifted: %+v vs %+v", fetched.Totals, issued.Totals)
	}

	w = ts.do(t, http.MethodGet, base+"/document", nil)
	expectStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html document, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), issued.Number) {
		t.Fatalf("document does not mention invoice number %q", issued.Number)
	}

	w = ts.do(t, http.MethodPost, base+"/pay", nil)
	expectStatus(t, w, http.StatusOK)
	if paid := decodeData[invoicedomain.Response](t, w); paid.Status != invoicedomain.InvoiceStatusPaid {
		t.Fatalf("expected paid, got %s", paid.Status)
	}

	w = ts.do(t, http.MethodPost, base+"/cancel", cancelInvoiceRequest{Reason: "late"})
	expectStatus(t, w, http.StatusConflict)

	w = ts.do(t, http.MethodGet, "/api/audit-logs?target_id="+created.ID, nil)
	expectStatus(t, w, http.StatusOK)
	if logs := decodeData[[]auditLogResponse](t, w); len(logs) == 0 {
		t.Fatalf("expected audit entries for the invoice")
	}

	w = ts.do(t, http.MethodGet, "/api/ledger/balances", nil)
	expectStatus(t, w, http.StatusOK)
	balances := decodeData[map[string]ledgerdomain.AccountBalance](t, w)
	if len(balances) == 0 {
		t.Fatalf("expected ledger balances after issue and payment")
	}
}

func TestInvoiceIsolatedPerOrganization(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/invoices", invoicedomain.CreateRequest{CustomerName: "Acme"})
	expectStatus(t, w, http.StatusCreated)
	created := decodeData[invoicedomain.Response](t, w)

	w = ts.doAs(t, "8", http.MethodGet, "/api/invoices/"+created.ID, nil)
	expectStatus(t, w, http.StatusNotFound)
	if apiErr := decodeError(t, w); apiErr.Code != "invoice_not_found" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}

	w = ts.do(t, http.MethodGet, "/api/invoices/not-an-id", nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestEmptyInvoiceCannotBeIssued(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/invoices", invoicedomain.CreateRequest{CustomerName: "Acme"})
	expectStatus(t, w, http.StatusCreated)
	created := decodeData[invoicedomain.Response](t, w)

	w = ts.do(t, http.MethodPost, "/api/invoices/"+created.ID+"/issue", nil)
	expectStatus(t, w, http.StatusUnprocessableEntity)
}

func TestListInvoices(t *testing.T) {
	ts := newTestServer(t)
	for i := 0; i < 3; i++ {
		w := ts.do(t, http.MethodPost, "/api/invoices", invoicedomain.CreateRequest{
			CustomerName: fmt.Sprintf("Cliente %d", i),
			Items:        []calc.LineItem{coffee()},
		})
		expectStatus(t, w, http.StatusCreated)
	}

	w := ts.do(t, http.MethodGet, "/api/invoices?status=draft&page_size=2", nil)
	expectStatus(t, w, http.StatusOK)
	page := decodeData[invoicedomain.ListResponse](t, w)
	if page.TotalCount != 3 || len(page.Invoices) != 2 || page.NextPageToken == "" {
		t.Fatalf("unexpected page: total=%d len=%d next=%q", page.TotalCount, len(page.Invoices), page.NextPageToken)
	}

	w = ts.do(t, http.MethodGet, "/api/invoices?issued_from=yesterday", nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestEInvoiceSubmitOnce(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/invoices", invoicedomain.CreateRequest{
		CustomerName:  "Acme SAS",
		CustomerTaxID: "900123456-7",
		Items:         []calc.LineItem{coffee()},
	})
	expectStatus(t, w, http.StatusCreated)
	base := "/api/invoices/" + decodeData[invoicedomain.Response](t, w).ID

	w = ts.do(t, http.MethodPost, base+"/einvoice", nil)
	expectStatus(t, w, http.StatusUnprocessableEntity)

	expectStatus(t, ts.do(t, http.MethodPost, base+"/issue", nil), http.StatusOK)

	w = ts.do(t, http.MethodGet, base+"/einvoice/preview", nil)
	expectStatus(t, w, http.StatusOK)
	if ts.gateway.calls != 0 {
		t.Fatalf("preview must not call the provider")
	}

	w = ts.do(t, http.MethodPost, base+"/einvoice", nil)
	expectStatus(t, w, http.StatusOK)
	receipt := decodeData[einvoicedomain.Receipt](t, w)
	if receipt.Provider != "stub" || receipt.ExternalID == "" {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	w = ts.do(t, http.MethodPost, base+"/einvoice", nil)
	expectStatus(t, w, http.StatusConflict)
	if ts.gateway.calls != 1 {
		t.Fatalf("expected a single provider call, got %d", ts.gateway.calls)
	}
}

func TestCashSessionFlow(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/cash-sessions", cashdomain.OpenRequest{
		RegisterID:    "caja-1",
		OpeningAmount: decimal.NewFromInt(100000),
	})
	expectStatus(t, w, http.StatusCreated)
	session := decodeData[cashdomain.Response](t, w)
	base := "/api/cash-sessions/" + session.ID

	w = ts.do(t, http.MethodPost, "/api/cash-sessions", cashdomain.OpenRequest{RegisterID: "caja-1"})
	expectStatus(t, w, http.StatusConflict)

	w = ts.do(t, http.MethodPost, base+"/sales", cashdomain.SaleRequest{
		PaymentMethod: cashdomain.PaymentMethodCash,
		Items:         []calc.LineItem{{Name: "Cafe", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(5000)}},
	})
	expectStatus(t, w, http.StatusCreated)

	w = ts.do(t, http.MethodPost, base+"/movements", cashdomain.MovementRequest{
		Kind:     cashdomain.MovementKindExpense,
		Amount:   decimal.NewFromInt(2000),
		Category: "insumos",
	})
	expectStatus(t, w, http.StatusCreated)

	w = ts.do(t, http.MethodPost, base+"/close", cashdomain.CloseRequest{CountedAmount: decimal.NewFromInt(108000)})
	expectStatus(t, w, http.StatusOK)
	closed := decodeData[cashdomain.Response](t, w)
	if closed.Status != cashdomain.SessionStatusClosed || closed.Variance == nil {
		t.Fatalf("unexpected closed session: %+v", closed)
	}
	if !closed.Summary.Expected.Equal(decimal.NewFromInt(108000)) || closed.Variance.Alert != cashdomain.VarianceNormal {
		t.Fatalf("unexpected closing figures: %+v %+v", closed.Summary, closed.Variance)
	}

	w = ts.do(t, http.MethodPost, base+"/movements", cashdomain.MovementRequest{
		Kind:   cashdomain.MovementKindIncome,
		Amount: decimal.NewFromInt(1000),
	})
	expectStatus(t, w, http.StatusConflict)
}

func TestReportsValidateRange(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/reports/dashboard?from=2026-03-01", nil)
	expectStatus(t, w, http.StatusBadRequest)

	w = ts.do(t, http.MethodGet, "/api/reports/sales?from=2026-01-01&to=2026-04-01", nil)
	expectStatus(t, w, http.StatusOK)
}

func TestSubmitRateLimited(t *testing.T) {
	ts := newTestServer(t)
	ts.server.submitLimiter = newRateLimiter(1, time.Minute, clock.Fixed(testNow))

	path := "/api/invoices/" + snowflake.ID(42).String() + "/einvoice"
	expectStatus(t, ts.do(t, http.MethodPost, path, nil), http.StatusNotFound)

	w := ts.do(t, http.MethodPost, path, nil)
	expectStatus(t, w, http.StatusTooManyRequests)

	w = ts.doAs(t, "8", http.MethodPost, path, nil)
	expectStatus(t, w, http.StatusNotFound)
}

func TestRateLimiterWindow(t *testing.T) {
	now := testNow
	limiter := newRateLimiter(2, time.Minute, clockFunc(func() time.Time { return now }))

	if !limiter.Allow("7") || !limiter.Allow("7") {
		t.Fatalf("expected first two calls to pass")
	}
	if limiter.Allow("7") {
		t.Fatalf("expected third call to be limited")
	}
	if limiter.Allow("") {
		t.Fatalf("empty key must be rejected")
	}

	now = now.Add(time.Minute)
	if !limiter.Allow("7") {
		t.Fatalf("expected a new window to reset the counter")
	}
}

func TestToAPIErrorHidesUnknownErrors(t *testing.T) {
	apiErr := toAPIError(errors.New("pq: connection refused"))
	if apiErr.Status != http.StatusInternalServerError || apiErr.Code != "internal_error" {
		t.Fatalf("unexpected mapping: %+v", apiErr)
	}
	if strings.Contains(apiErr.Message, "pq") {
		t.Fatalf("internal details leaked: %q", apiErr.Message)
	}

	wrapped := fmt.Errorf("load: %w", invoicedomain.ErrConcurrentUpdate)
	if got := toAPIError(wrapped); got.Status != http.StatusConflict || got.Code != "invoice_concurrent_update" {
		t.Fatalf("unexpected mapping for wrapped error: %+v", got)
	}
}

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/clock"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/events"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/repository"
	ledgerdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/ledger/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/logger"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/metrics"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/orgcontext"
	"github.com/luisk202009/kuppel-dine-ease-sub001/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Cfg       config.Config
	Repo      invoicedomain.Repository
	LedgerSvc ledgerdomain.Service
	AuditSvc  auditdomain.Service
	Outbox    *events.Outbox
	Metrics   *metrics.InvoiceMetrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	cfg       config.InvoicingConfig
	repo      invoicedomain.Repository
	ledgerSvc ledgerdomain.Service
	auditSvc  auditdomain.Service
	outbox    *events.Outbox
	metrics   *metrics.InvoiceMetrics
}

func NewService(p Params) invoicedomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		cfg:       p.Cfg.Invoicing,
		repo:      p.Repo,
		ledgerSvc: p.LedgerSvc,
		auditSvc:  p.AuditSvc,
		outbox:    p.Outbox,
		metrics:   p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateRequest) (*invoicedomain.Response, error) {
	orgID, err := s.orgID(ctx)
	if err != nil {
		return nil, err
	}

	customer := strings.TrimSpace(req.CustomerName)
	if customer == "" {
		return nil, invoicedomain.ErrInvalidCustomer
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	if len(currency) != 3 {
		return nil, invoicedomain.ErrInvalidCurrency
	}
	prefix := strings.ToUpper(strings.TrimSpace(req.Prefix))
	if prefix == "" {
		prefix = s.cfg.DefaultPrefix
	}
	if err := calc.ValidateAll(req.Items); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	inv := &invoicedomain.Invoice{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		Prefix:        prefix,
		CustomerName:  customer,
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerTaxID: strings.TrimSpace(req.CustomerTaxID),
		Currency:      currency,
		Status:        invoicedomain.InvoiceStatusDraft,
		Notes:         strings.TrimSpace(req.Notes),
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, line := range req.Items {
		if err := inv.AddItem(s.newItem(line, now)); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, inv); err != nil {
			return err
		}
		if err := s.publish(ctx, tx, inv, events.EventInvoiceCreated); err != nil {
			return err
		}
		return s.audit(ctx, tx, inv, "invoice.created", map[string]any{"items": len(inv.Items)})
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.Int("items", len(inv.Items)),
	)
	return invoicedomain.ToResponse(inv), nil
}

func (s *Service) Get(ctx context.Context, id string) (*invoicedomain.Response, error) {
	inv, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return invoicedomain.ToResponse(inv), nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListRequest) (invoicedomain.ListResponse, error) {
	orgID, err := s.orgID(ctx)
	if err != nil {
		return invoicedomain.ListResponse{}, err
	}

	filter := invoicedomain.ListFilter{
		OrgID:      orgID,
		IssuedFrom: req.IssuedFrom,
		IssuedTo:   req.IssuedTo,
		Offset:     req.Offset(),
		Limit:      req.Limit(),
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, err := invoicedomain.ParseStatus(raw)
		if err != nil {
			return invoicedomain.ListResponse{}, err
		}
		filter.Status = status
	}

	invoices, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return invoicedomain.ListResponse{}, err
	}

	resp := invoicedomain.ListResponse{
		PageInfo: pagination.Next(filter.Offset, filter.Limit, total),
		Invoices: make([]invoicedomain.Response, 0, len(invoices)),
	}
	for i := range invoices {
		resp.Invoices = append(resp.Invoices, *invoicedomain.ToResponse(&invoices[i]))
	}
	return resp, nil
}

func (s *Service) Preview(ctx context.Context, items []calc.LineItem) (calc.InvoiceTotals, error) {
	if err := calc.ValidateAll(items); err != nil {
		return calc.InvoiceTotals{}, err
	}
	return calc.Aggregate(items), nil
}

func (s *Service) AddItem(ctx context.Context, invoiceID string, line calc.LineItem) (*invoicedomain.Response, error) {
	return s.mutateItems(ctx, invoiceID, "invoice.item_added", func(inv *invoicedomain.Invoice) error {
		return inv.AddItem(s.newItem(line, s.clock.Now()))
	})
}

func (s *Service) UpdateItem(ctx context.Context, invoiceID, itemID string, line calc.LineItem) (*invoicedomain.Response, error) {
	id, err := invoicedomain.ParseID(itemID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidItemID
	}
	return s.mutateItems(ctx, invoiceID, "invoice.item_updated", func(inv *invoicedomain.Invoice) error {
		return inv.UpdateItem(id, line)
	})
}

func (s *Service) RemoveItem(ctx context.Context, invoiceID, itemID string) (*invoicedomain.Response, error) {
	id, err := invoicedomain.ParseID(itemID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidItemID
	}
	return s.mutateItems(ctx, invoiceID, "invoice.item_removed", func(inv *invoicedomain.Invoice) error {
		return inv.RemoveItem(id)
	})
}

func (s *Service) ReorderItems(ctx context.Context, invoiceID string, itemIDs []string) (*invoicedomain.Response, error) {
	ids := make([]snowflake.ID, 0, len(itemIDs))
	for _, raw := range itemIDs {
		id, err := invoicedomain.ParseID(raw)
		if err != nil {
			return nil, invoicedomain.ErrInvalidItemOrder
		}
		ids = append(ids, id)
	}
	return s.mutateItems(ctx, invoiceID, "invoice.items_reordered", func(inv *invoicedomain.Invoice) error {
		return inv.ReorderItems(ids)
	})
}

func (s *Service) Issue(ctx context.Context, invoiceID string, req invoicedomain.IssueRequest) (*invoicedomain.Response, error) {
	inv, err := s.Load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	from := inv.Status
	if _, err := invoicedomain.Transition(from, invoicedomain.InvoiceStatusIssued); err != nil {
		s.metrics.ObserveTransition(string(from), string(invoicedomain.InvoiceStatusIssued), false)
		return nil, err
	}
	if len(inv.Items) == 0 {
		return nil, invoicedomain.ErrEmptyInvoice
	}

	now := s.clock.Now()
	dueAt := now.AddDate(0, 0, s.cfg.PaymentTermDays)
	if req.DueAt != nil {
		dueAt = req.DueAt.UTC()
	}
	if dueAt.Before(now) {
		return nil, invoicedomain.ErrInvalidDueDate
	}

	if err := inv.Apply(invoicedomain.InvoiceStatusIssued, now); err != nil {
		s.metrics.ObserveTransition(string(from), string(invoicedomain.InvoiceStatusIssued), false)
		return nil, err
	}
	inv.DueAt = &dueAt
	expected := inv.Version

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := s.repo.NextNumber(ctx, tx, inv.OrgID, inv.Prefix, now)
		if err != nil {
			return err
		}
		number := repository.FormatNumber(next)
		inv.Number = &number

		if err := s.repo.Update(ctx, tx, inv, expected); err != nil {
			return err
		}
		totals := inv.SnapshotTotals()
		if err := s.post(ctx, tx, inv, ledgerdomain.SourceTypeInvoiceIssued, now, []ledgerdomain.Posting{
			ledgerdomain.Debit(ledgerdomain.AccountCodeAccountsReceivable, totals.Total),
			ledgerdomain.Credit(ledgerdomain.AccountCodeRevenue, totals.Subtotal.Sub(totals.TotalDiscount)),
			ledgerdomain.Credit(ledgerdomain.AccountCodeTaxPayable, totals.TotalTax),
		}); err != nil {
			return err
		}
		if err := s.publish(ctx, tx, inv, events.EventInvoiceIssued); err != nil {
			return err
		}
		return s.audit(ctx, tx, inv, "invoice.issued", map[string]any{
			"number": inv.NumberString(),
			"total":  totals.Total.StringFixed(calc.Scale),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(from), string(inv.Status), true)
	total, _ := inv.TotalAmount.Float64()
	s.metrics.ObserveIssued(inv.Currency, total)
	logger.FromContext(ctx).Info("invoice issued",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.NumberString()),
	)
	return invoicedomain.ToResponse(inv), nil
}

func (s *Service) Cancel(ctx context.Context, invoiceID string, reason string) (*invoicedomain.Response, error) {
	reason = strings.TrimSpace(reason)
	return s.transition(ctx, invoiceID, invoicedomain.InvoiceStatusCancelled, func(inv *invoicedomain.Invoice) {
		if reason != "" {
			inv.CancelReason = &reason
		}
	})
}

func (s *Service) MarkPaid(ctx context.Context, invoiceID string) (*invoicedomain.Response, error) {
	return s.transition(ctx, invoiceID, invoicedomain.InvoiceStatusPaid, nil)
}

func (s *Service) MarkOverdue(ctx context.Context, invoiceID string) (*invoicedomain.Response, error) {
	return s.transition(ctx, invoiceID, invoicedomain.InvoiceStatusOverdue, nil)
}

func (s *Service) Load(ctx context.Context, invoiceID string) (*invoicedomain.Invoice, error) {
	orgID, err := s.orgID(ctx)
	if err != nil {
		return nil, err
	}
	id, err := invoicedomain.ParseID(invoiceID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidInvoiceID
	}
	inv, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return inv, nil
}

func (s *Service) ListPastDue(ctx context.Context, now time.Time, limit int) ([]invoicedomain.Invoice, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListPastDue(ctx, s.db, now.UTC(), limit)
}

func (s *Service) mutateItems(ctx context.Context, invoiceID, action string, mutate func(inv *invoicedomain.Invoice) error) (*invoicedomain.Response, error) {
	inv, err := s.Load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	expected := inv.Version
	if err := mutate(inv); err != nil {
		var freezeErr *invoicedomain.MutationAfterFreezeError
		if errors.As(err, &freezeErr) {
			s.metrics.IncMutationBlocked(string(freezeErr.Status), freezeErr.Op)
			logger.FromContext(ctx).Warn("invoice item mutation rejected",
				zap.String("invoice_id", inv.ID.String()),
				zap.String("status", string(freezeErr.Status)),
				zap.String("op", freezeErr.Op),
			)
		}
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, inv, expected); err != nil {
			return err
		}
		return s.audit(ctx, tx, inv, action, map[string]any{"items": len(inv.Items)})
	})
	if err != nil {
		return nil, err
	}
	return invoicedomain.ToResponse(inv), nil
}

func (s *Service) transition(ctx context.Context, invoiceID string, to invoicedomain.InvoiceStatus, before func(inv *invoicedomain.Invoice)) (*invoicedomain.Response, error) {
	inv, err := s.Load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	from := inv.Status
	now := s.clock.Now()
	if err := inv.Apply(to, now); err != nil {
		s.metrics.ObserveTransition(string(from), string(to), false)
		return nil, err
	}
	if before != nil {
		before(inv)
	}
	expected := inv.Version

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, inv, expected); err != nil {
			return err
		}
		if err := s.postTransition(ctx, tx, inv, from, now); err != nil {
			return err
		}
		if err := s.publish(ctx, tx, inv, eventFor(to)); err != nil {
			return err
		}
		return s.audit(ctx, tx, inv, "invoice."+string(to), map[string]any{
			"from": string(from),
			"to":   string(to),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(from), string(to), true)
	logger.FromContext(ctx).Info("invoice status changed",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return invoicedomain.ToResponse(inv), nil
}

// postTransition writes the ledger effect of a status change on an issued
// invoice. Drafts never touched the ledger, so cancelling one posts nothing.
func (s *Service) postTransition(ctx context.Context, tx *gorm.DB, inv *invoicedomain.Invoice, from invoicedomain.InvoiceStatus, at time.Time) error {
	totals := inv.SnapshotTotals()
	switch {
	case inv.Status == invoicedomain.InvoiceStatusPaid:
		return s.post(ctx, tx, inv, ledgerdomain.SourceTypeInvoicePaid, at, []ledgerdomain.Posting{
			ledgerdomain.Debit(ledgerdomain.AccountCodeCash, totals.Total),
			ledgerdomain.Credit(ledgerdomain.AccountCodeAccountsReceivable, totals.Total),
		})
	case inv.Status == invoicedomain.InvoiceStatusCancelled && from == invoicedomain.InvoiceStatusIssued:
		return s.post(ctx, tx, inv, ledgerdomain.SourceTypeInvoiceCancelled, at, []ledgerdomain.Posting{
			ledgerdomain.Debit(ledgerdomain.AccountCodeRevenue, totals.Subtotal.Sub(totals.TotalDiscount)),
			ledgerdomain.Debit(ledgerdomain.AccountCodeTaxPayable, totals.TotalTax),
			ledgerdomain.Credit(ledgerdomain.AccountCodeAccountsReceivable, totals.Total),
		})
	}
	return nil
}

func (s *Service) post(ctx context.Context, tx *gorm.DB, inv *invoicedomain.Invoice, sourceType string, at time.Time, postings []ledgerdomain.Posting) error {
	// Fully discounted invoices carry no amounts to post.
	if !inv.TotalAmount.IsPositive() {
		return nil
	}
	_, err := s.ledgerSvc.CreateEntryTx(ctx, tx, ledgerdomain.Entry{
		OrgID:      inv.OrgID,
		SourceType: sourceType,
		SourceID:   inv.ID,
		Currency:   inv.Currency,
		OccurredAt: at,
		Postings:   postings,
	})
	return err
}

func (s *Service) publish(ctx context.Context, tx *gorm.DB, inv *invoicedomain.Invoice, eventType string) error {
	if s.outbox == nil || eventType == "" {
		return nil
	}
	payload := events.InvoicePayload{
		InvoiceID: inv.ID.String(),
		Number:    inv.NumberString(),
		Status:    string(inv.Status),
		Currency:  inv.Currency,
		Total:     inv.Totals().Total.StringFixed(calc.Scale),
	}
	return s.outbox.PublishTx(ctx, tx, events.Event{
		OrgID:     inv.OrgID,
		Type:      eventType,
		Payload:   payload.ToMap(),
		DedupeKey: eventType + ":" + inv.ID.String(),
	})
}

func (s *Service) audit(ctx context.Context, tx *gorm.DB, inv *invoicedomain.Invoice, action string, metadata map[string]any) error {
	if s.auditSvc == nil {
		return nil
	}
	orgID := inv.OrgID
	targetID := inv.ID.String()
	return s.auditSvc.AuditLogTx(ctx, tx, &orgID, "", nil, action, "invoice", &targetID, metadata)
}

func (s *Service) newItem(line calc.LineItem, now time.Time) invoicedomain.InvoiceItem {
	return invoicedomain.InvoiceItem{
		ID:           s.genID.Generate(),
		Name:         strings.TrimSpace(line.Name),
		Description:  strings.TrimSpace(line.Description),
		ProductRef:   strings.TrimSpace(line.ProductRef),
		Quantity:     line.Quantity,
		UnitPrice:    line.UnitPrice,
		TaxRate:      line.TaxRate,
		DiscountRate: line.DiscountRate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *Service) orgID(ctx context.Context) (snowflake.ID, error) {
	orgID, err := orgcontext.Require(ctx)
	if err != nil {
		return 0, invoicedomain.ErrInvalidOrganization
	}
	return orgID, nil
}

func eventFor(status invoicedomain.InvoiceStatus) string {
	switch status {
	case invoicedomain.InvoiceStatusIssued:
		return events.EventInvoiceIssued
	case invoicedomain.InvoiceStatusPaid:
		return events.EventInvoicePaid
	case invoicedomain.InvoiceStatusCancelled:
		return events.EventInvoiceCancelled
	case invoicedomain.InvoiceStatusOverdue:
		return events.EventInvoiceOverdue
	default:
		return ""
	}
}

package service

import (
	"context"
	"errors"

	auditdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/einvoice/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/events"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/logger"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Cfg        config.Config
	InvoiceSvc invoicedomain.Service
	Repo       invoicedomain.Repository
	Registry   *domain.Registry
	AuditSvc   auditdomain.Service
	Outbox     *events.Outbox
	Metrics    *metrics.InvoiceMetrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	provider   string
	invoiceSvc invoicedomain.Service
	repo       invoicedomain.Repository
	registry   *domain.Registry
	auditSvc   auditdomain.Service
	outbox     *events.Outbox
	metrics    *metrics.InvoiceMetrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("einvoice.service"),
		provider:   p.Cfg.EInvoice.Provider,
		invoiceSvc: p.InvoiceSvc,
		repo:       p.Repo,
		registry:   p.Registry,
		auditSvc:   p.AuditSvc,
		outbox:     p.Outbox,
		metrics:    p.Metrics,
	}
}

func (s *Service) Preview(ctx context.Context, invoiceID string) (*domain.Submission, error) {
	inv, err := s.invoiceSvc.Load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return domain.BuildSubmission(inv)
}

func (s *Service) Submit(ctx context.Context, invoiceID string) (*domain.Receipt, error) {
	inv, err := s.invoiceSvc.Load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if entry, ok := inv.Metadata[domain.MetadataKey]; ok {
		if domain.IsPending(entry) {
			return nil, domain.ErrSubmissionInProgress
		}
		return nil, domain.ErrAlreadySubmitted
	}
	submission, err := domain.BuildSubmission(inv)
	if err != nil {
		return nil, err
	}
	gateway, err := s.registry.Get(s.provider)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).With(
		zap.String("invoice_id", inv.ID.String()),
		zap.String("provider", gateway.Provider()),
	)
	if err := s.claim(ctx, inv, gateway.Provider()); err != nil {
		return nil, err
	}

	receipt, err := gateway.Submit(ctx, submission)
	if err != nil {
		result := "failed"
		switch {
		case errors.Is(err, domain.ErrProviderRejected):
			result = "rejected"
		case errors.Is(err, domain.ErrProviderUnavailable):
			result = "unavailable"
		}
		s.metrics.IncEInvoiceSubmission(gateway.Provider(), result)
		log.Warn("e-invoice submission failed",
			zap.String("result", result),
			zap.Any("customer", logger.MaskJSON(map[string]any{
				"name":   submission.Customer.Name,
				"email":  submission.Customer.Email,
				"tax_id": submission.Customer.TaxID,
			})),
			zap.Error(err),
		)
		if releaseErr := s.release(context.WithoutCancel(ctx), inv); releaseErr != nil {
			log.Error("failed to release e-invoice claim", zap.Error(releaseErr))
		}
		return nil, err
	}

	inv.Metadata[domain.MetadataKey] = receipt.ToMap()
	expected := inv.Version

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, inv, expected); err != nil {
			return err
		}
		if s.outbox != nil {
			payload := events.InvoicePayload{
				InvoiceID: inv.ID.String(),
				Number:    inv.NumberString(),
				Status:    string(inv.Status),
				Currency:  inv.Currency,
				Total:     submission.Total.StringFixed(calc.Scale),
			}.ToMap()
			payload["provider"] = receipt.Provider
			payload["external_id"] = receipt.ExternalID
			if err := s.outbox.PublishTx(ctx, tx, events.Event{
				OrgID:     inv.OrgID,
				Type:      events.EventInvoiceSubmitted,
				Payload:   payload,
				DedupeKey: events.EventInvoiceSubmitted + ":" + inv.ID.String(),
			}); err != nil {
				return err
			}
		}
		if s.auditSvc == nil {
			return nil
		}
		orgID := inv.OrgID
		targetID := inv.ID.String()
		return s.auditSvc.AuditLogTx(ctx, tx, &orgID, "", nil, "invoice.einvoice_submitted", "invoice", &targetID, receipt.ToMap())
	})
	if err != nil {
		// The provider accepted the document; the receipt must be reconciled by hand.
		log.Error("failed to store e-invoice receipt",
			zap.String("external_id", receipt.ExternalID),
			zap.Error(err),
		)
		s.metrics.IncEInvoiceSubmission(gateway.Provider(), "unrecorded")
		return nil, err
	}

	s.metrics.IncEInvoiceSubmission(gateway.Provider(), "accepted")
	log.Info("e-invoice submitted", zap.String("external_id", receipt.ExternalID), zap.String("status", receipt.Status))
	return receipt, nil
}

// claim stores a pending marker under the invoice version check. Only one
// concurrent submit wins the claim and reaches the provider.
func (s *Service) claim(ctx context.Context, inv *invoicedomain.Invoice, provider string) error {
	if inv.Metadata == nil {
		inv.Metadata = datatypes.JSONMap{}
	}
	inv.Metadata[domain.MetadataKey] = domain.PendingMarker(provider)
	if err := s.repo.Update(ctx, s.db, inv, inv.Version); err != nil {
		if errors.Is(err, invoicedomain.ErrConcurrentUpdate) {
			return domain.ErrSubmissionInProgress
		}
		return err
	}
	return nil
}

// release drops the pending marker after a failed provider call so the
// invoice can be submitted again.
func (s *Service) release(ctx context.Context, inv *invoicedomain.Invoice) error {
	delete(inv.Metadata, domain.MetadataKey)
	return s.repo.Update(ctx, s.db, inv, inv.Version)
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/clock"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/events"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	ledgerdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/ledger/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/logger"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/metrics"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/orgcontext"
	"github.com/shopspring/decimal"
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
	Repo      domain.Repository
	LedgerSvc ledgerdomain.Service
	AuditSvc  auditdomain.Service
	Outbox    *events.Outbox
	Metrics   *metrics.InvoiceMetrics `optional:"true"`
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	clock           clock.Clock
	defaultCurrency string
	repo            domain.Repository
	ledgerSvc       ledgerdomain.Service
	auditSvc        auditdomain.Service
	outbox          *events.Outbox
	metrics         *metrics.InvoiceMetrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("cashsession.service"),
		genID:           p.GenID,
		clock:           p.Clock,
		defaultCurrency: p.Cfg.Invoicing.DefaultCurrency,
		repo:            p.Repo,
		ledgerSvc:       p.LedgerSvc,
		auditSvc:        p.AuditSvc,
		outbox:          p.Outbox,
		metrics:         p.Metrics,
	}
}

func (s *Service) Open(ctx context.Context, req domain.OpenRequest) (*domain.Response, error) {
	orgID, err := s.orgID(ctx)
	if err != nil {
		return nil, err
	}
	registerID := strings.TrimSpace(req.RegisterID)
	if registerID == "" {
		return nil, domain.ErrInvalidRegister
	}
	if req.OpeningAmount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	now := s.clock.Now()
	session := &domain.CashSession{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		RegisterID:    registerID,
		Status:        domain.SessionStatusOpen,
		Currency:      currency,
		OpeningAmount: req.OpeningAmount.Round(calc.Scale),
		OpenedBy:      strings.TrimSpace(req.OpenedBy),
		Notes:         strings.TrimSpace(req.Notes),
		OpenedAt:      now,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindOpenSession(ctx, tx, orgID, registerID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrSessionAlreadyOpen
		}
		if err := s.repo.InsertSession(ctx, tx, session); err != nil {
			return err
		}
		if err := s.publish(ctx, tx, session, events.EventCashSessionOpen, events.CashSessionPayload{}); err != nil {
			return err
		}
		return s.audit(ctx, tx, session, "cash_session.open", map[string]any{
			"register_id":    registerID,
			"opening_amount": session.OpeningAmount.StringFixed(calc.Scale),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("cash session opened",
		zap.String("session_id", session.ID.String()),
		zap.String("register_id", registerID),
	)
	return domain.ToResponse(session, nil), nil
}

// RecordSale prices the items with the invoice engine and books the total
// against the account of the payment method.
func (s *Service) RecordSale(ctx context.Context, sessionID string, req domain.SaleRequest) (*domain.MovementResponse, error) {
	method := req.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodCash
	}
	if !method.Valid() {
		return nil, domain.ErrInvalidPayment
	}
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptySale
	}
	if err := calc.ValidateAll(req.Items); err != nil {
		return nil, err
	}

	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	totals := calc.Aggregate(req.Items)
	now := s.clock.Now()
	movement := &domain.CashMovement{
		ID:             s.genID.Generate(),
		OrgID:          session.OrgID,
		SessionID:      session.ID,
		Kind:           domain.MovementKindSale,
		Direction:      domain.DirectionIn,
		PaymentMethod:  method,
		Description:    strings.TrimSpace(req.Description),
		SubtotalAmount: totals.Subtotal,
		DiscountAmount: totals.TotalDiscount,
		TaxAmount:      totals.TotalTax,
		Amount:         totals.Total,
		OccurredAt:     now,
		CreatedAt:      now,
	}

	session.UpdatedAt = now
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ClaimOpenSession(ctx, tx, session); err != nil {
			return err
		}
		if err := s.repo.InsertMovement(ctx, tx, movement); err != nil {
			return err
		}
		if err := s.post(ctx, tx, session, movement, ledgerdomain.SourceTypeCashSale, []ledgerdomain.Posting{
			ledgerdomain.Debit(paymentAccount(method), totals.Total),
			ledgerdomain.Credit(ledgerdomain.AccountCodeRevenue, totals.Subtotal.Sub(totals.TotalDiscount)),
			ledgerdomain.Credit(ledgerdomain.AccountCodeTaxPayable, totals.TotalTax),
		}); err != nil {
			return err
		}
		return s.audit(ctx, tx, session, "cash_session.sale", map[string]any{
			"movement_id":    movement.ID.String(),
			"payment_method": string(method),
			"amount":         movement.Amount.StringFixed(calc.Scale),
		})
	})
	if err != nil {
		return nil, err
	}
	resp := domain.ToMovementResponse(*movement)
	return &resp, nil
}

func (s *Service) RecordMovement(ctx context.Context, sessionID string, req domain.MovementRequest) (*domain.MovementResponse, error) {
	var direction string
	var postings func(amount decimal.Decimal) []ledgerdomain.Posting
	switch req.Kind {
	case domain.MovementKindIncome:
		direction = domain.DirectionIn
		postings = func(amount decimal.Decimal) []ledgerdomain.Posting {
			return []ledgerdomain.Posting{
				ledgerdomain.Debit(ledgerdomain.AccountCodeCash, amount),
				ledgerdomain.Credit(ledgerdomain.AccountCodeOtherIncome, amount),
			}
		}
	case domain.MovementKindExpense:
		direction = domain.DirectionOut
		postings = func(amount decimal.Decimal) []ledgerdomain.Posting {
			return []ledgerdomain.Posting{
				ledgerdomain.Debit(ledgerdomain.AccountCodeExpense, amount),
				ledgerdomain.Credit(ledgerdomain.AccountCodeCash, amount),
			}
		}
	default:
		return nil, domain.ErrInvalidMovementKind
	}
	amount := req.Amount.Round(calc.Scale)
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	movement := &domain.CashMovement{
		ID:             s.genID.Generate(),
		OrgID:          session.OrgID,
		SessionID:      session.ID,
		Kind:           req.Kind,
		Direction:      direction,
		PaymentMethod:  domain.PaymentMethodCash,
		Category:       strings.TrimSpace(req.Category),
		Description:    strings.TrimSpace(req.Description),
		SubtotalAmount: amount,
		DiscountAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
		Amount:         amount,
		OccurredAt:     now,
		CreatedAt:      now,
	}

	session.UpdatedAt = now
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ClaimOpenSession(ctx, tx, session); err != nil {
			return err
		}
		if err := s.repo.InsertMovement(ctx, tx, movement); err != nil {
			return err
		}
		if err := s.post(ctx, tx, session, movement, ledgerdomain.SourceTypeCashMovement, postings(amount)); err != nil {
			return err
		}
		return s.audit(ctx, tx, session, "cash_session."+string(req.Kind), map[string]any{
			"movement_id": movement.ID.String(),
			"category":    movement.Category,
			"amount":      amount.StringFixed(calc.Scale),
		})
	})
	if err != nil {
		return nil, err
	}
	resp := domain.ToMovementResponse(*movement)
	return &resp, nil
}

func (s *Service) Close(ctx context.Context, sessionID string, req domain.CloseRequest) (*domain.Response, error) {
	if req.CountedAmount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	movements, err := s.repo.ListMovements(ctx, s.db, session.OrgID, session.ID)
	if err != nil {
		return nil, err
	}

	summary := domain.Summarize(session.OpeningAmount, movements)
	counted := req.CountedAmount.Round(calc.Scale)
	variance := domain.ComputeVariance(summary.Expected, counted)

	now := s.clock.Now()
	expected := session.Version
	session.Status = domain.SessionStatusClosed
	session.ExpectedAmount = &summary.Expected
	session.CountedAmount = &counted
	session.Difference = &variance.Difference
	session.DifferencePercent = &variance.Percent
	session.Alert = &variance.Alert
	session.ClosedBy = strings.TrimSpace(req.ClosedBy)
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		session.Notes = notes
	}
	session.ClosedAt = &now
	session.UpdatedAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.CloseSession(ctx, tx, session, expected); err != nil {
			return err
		}
		if err := s.publish(ctx, tx, session, events.EventCashSessionClose, events.CashSessionPayload{
			ExpectedAmount: summary.Expected.StringFixed(calc.Scale),
			CountedAmount:  counted.StringFixed(calc.Scale),
			Difference:     variance.Difference.StringFixed(calc.Scale),
			Alert:          string(variance.Alert),
		}); err != nil {
			return err
		}
		return s.audit(ctx, tx, session, "cash_session.close", map[string]any{
			"expected_amount": summary.Expected.StringFixed(calc.Scale),
			"counted_amount":  counted.StringFixed(calc.Scale),
			"difference":      variance.Difference.StringFixed(calc.Scale),
			"alert":           string(variance.Alert),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCashClosure(string(variance.Alert))
	log := logger.FromContext(ctx).With(
		zap.String("session_id", session.ID.String()),
		zap.String("register_id", session.RegisterID),
		zap.String("difference", variance.Difference.StringFixed(calc.Scale)),
		zap.String("alert", string(variance.Alert)),
	)
	if variance.Alert == domain.VarianceNormal {
		log.Info("cash session closed")
	} else {
		log.Warn("cash session closed with variance")
	}
	return domain.ToResponse(session, movements), nil
}

func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Response, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	movements, err := s.repo.ListMovements(ctx, s.db, session.OrgID, session.ID)
	if err != nil {
		return nil, err
	}
	return domain.ToResponse(session, movements), nil
}

func (s *Service) MovementsBetween(ctx context.Context, from, to time.Time) ([]domain.CashMovement, error) {
	orgID, err := s.orgID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMovementsBetween(ctx, s.db, orgID, from.UTC(), to.UTC())
}

func (s *Service) load(ctx context.Context, sessionID string) (*domain.CashSession, error) {
	orgID, err := s.orgID(ctx)
	if err != nil {
		return nil, err
	}
	id, err := snowflake.ParseString(strings.TrimSpace(sessionID))
	if err != nil {
		return nil, domain.ErrInvalidSessionID
	}
	session, err := s.repo.FindSession(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *Service) openSession(ctx context.Context, sessionID string) (*domain.CashSession, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionStatusOpen {
		return nil, domain.ErrSessionClosed
	}
	return session, nil
}

func (s *Service) post(ctx context.Context, tx *gorm.DB, session *domain.CashSession, movement *domain.CashMovement, sourceType string, postings []ledgerdomain.Posting) error {
	if s.ledgerSvc == nil || !movement.Amount.IsPositive() {
		return nil
	}
	_, err := s.ledgerSvc.CreateEntryTx(ctx, tx, ledgerdomain.Entry{
		OrgID:      session.OrgID,
		SourceType: sourceType,
		SourceID:   movement.ID,
		Currency:   session.Currency,
		OccurredAt: movement.OccurredAt,
		Postings:   postings,
	})
	return err
}

func (s *Service) publish(ctx context.Context, tx *gorm.DB, session *domain.CashSession, eventType string, payload events.CashSessionPayload) error {
	if s.outbox == nil {
		return nil
	}
	payload.SessionID = session.ID.String()
	payload.RegisterID = session.RegisterID
	return s.outbox.PublishTx(ctx, tx, events.Event{
		OrgID:     session.OrgID,
		Type:      eventType,
		Payload:   payload.ToMap(),
		DedupeKey: eventType + ":" + session.ID.String(),
	})
}

func (s *Service) audit(ctx context.Context, tx *gorm.DB, session *domain.CashSession, action string, metadata map[string]any) error {
	if s.auditSvc == nil {
		return nil
	}
	orgID := session.OrgID
	targetID := session.ID.String()
	return s.auditSvc.AuditLogTx(ctx, tx, &orgID, "", nil, action, "cash_session", &targetID, metadata)
}

func (s *Service) orgID(ctx context.Context) (snowflake.ID, error) {
	orgID, err := orgcontext.Require(ctx)
	if err != nil {
		return 0, domain.ErrInvalidOrganization
	}
	return orgID, nil
}

func paymentAccount(method domain.PaymentMethod) string {
	switch method {
	case domain.PaymentMethodCard:
		return ledgerdomain.AccountCodeCardClearing
	case domain.PaymentMethodTransfer:
		return ledgerdomain.AccountCodeBankTransfer
	default:
		return ledgerdomain.AccountCodeCash
	}
}

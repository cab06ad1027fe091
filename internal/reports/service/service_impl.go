package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/cache"
	cashdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/orgcontext"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/reports/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultTTL = time.Minute

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	CashSvc  cashdomain.Service
	Cache    cache.Cache[string, any] `optional:"true"`
	CacheTTL time.Duration            `name:"reports_cache_ttl" optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	cashSvc cashdomain.Service
	cache   cache.Cache[string, any]
	ttl     time.Duration
}

func NewService(p Params) domain.Service {
	c := p.Cache
	if c == nil {
		c = cache.NewTTLCache[string, any]()
	}
	ttl := p.CacheTTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("reports.service"),
		repo:    p.Repo,
		cashSvc: p.CashSvc,
		cache:   c,
		ttl:     ttl,
	}
}

func (s *Service) MonthlySales(ctx context.Context, r domain.Range) ([]domain.MonthlySales, error) {
	invoices, err := s.invoices(ctx, r)
	if err != nil {
		return nil, err
	}
	return domain.AggregateSales(invoices), nil
}

func (s *Service) StatusBreakdown(ctx context.Context, r domain.Range) ([]domain.StatusBreakdown, error) {
	invoices, err := s.invoices(ctx, r)
	if err != nil {
		return nil, err
	}
	return domain.AggregateStatuses(invoices), nil
}

func (s *Service) CashFlow(ctx context.Context, r domain.Range) ([]domain.CashFlow, error) {
	orgID, err := s.scope(ctx, r)
	if err != nil {
		return nil, err
	}
	flow, err := cache.GetOrLoad(s.cache, key(orgID, "cash_flow", r), s.ttl, func() (any, error) {
		movements, err := s.cashSvc.MovementsBetween(ctx, r.From, r.To)
		if err != nil {
			return nil, err
		}
		return domain.AggregateCashFlow(movements), nil
	})
	if err != nil {
		return nil, err
	}
	return flow.([]domain.CashFlow), nil
}

func (s *Service) Dashboard(ctx context.Context, r domain.Range) (*domain.Dashboard, error) {
	invoices, err := s.invoices(ctx, r)
	if err != nil {
		return nil, err
	}
	flow, err := s.CashFlow(ctx, r)
	if err != nil {
		return nil, err
	}
	return &domain.Dashboard{
		From:     r.From,
		To:       r.To,
		Sales:    domain.AggregateSales(invoices),
		Statuses: domain.AggregateStatuses(invoices),
		CashFlow: flow,
	}, nil
}

func (s *Service) invoices(ctx context.Context, r domain.Range) ([]domain.InvoiceSnapshot, error) {
	orgID, err := s.scope(ctx, r)
	if err != nil {
		return nil, err
	}
	rows, err := cache.GetOrLoad(s.cache, key(orgID, "invoices", r), s.ttl, func() (any, error) {
		rows, err := s.repo.ListInvoices(ctx, s.db, orgID, r.From.UTC(), r.To.UTC())
		if err != nil {
			s.log.Warn("failed to load report invoices", zap.String("org_id", orgID.String()), zap.Error(err))
			return nil, err
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return rows.([]domain.InvoiceSnapshot), nil
}

func (s *Service) scope(ctx context.Context, r domain.Range) (snowflake.ID, error) {
	orgID, err := orgcontext.Require(ctx)
	if err != nil {
		return 0, domain.ErrInvalidOrganization
	}
	if err := r.Validate(); err != nil {
		return 0, err
	}
	return orgID, nil
}

func key(orgID snowflake.ID, kind string, r domain.Range) string {
	return fmt.Sprintf("%s:%s:%d:%d", orgID, kind, r.From.Unix(), r.To.Unix())
}

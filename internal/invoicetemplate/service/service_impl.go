package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/clock"
	templatedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoicetemplate/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  templatedomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  templatedomain.Repository
}

func NewService(p Params) templatedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoicetemplate.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req templatedomain.CreateRequest) (*templatedomain.Response, error) {
	orgID, err := orgID(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, templatedomain.ErrInvalidName
	}
	locale, err := normalizeLocale(req.Locale)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	tmpl := &templatedomain.InvoiceTemplate{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Name:      name,
		IsDefault: req.IsDefault,
		Locale:    locale,
		Header:    datatypes.JSONMap(req.Header),
		Footer:    datatypes.JSONMap(req.Footer),
		Style:     datatypes.JSONMap(req.Style),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tmpl.IsDefault {
			if err := s.repo.ClearDefault(ctx, tx, orgID); err != nil {
				return err
			}
		}
		return s.repo.Insert(ctx, tx, tmpl)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(tmpl), nil
}

func (s *Service) List(ctx context.Context, req templatedomain.ListRequest) ([]templatedomain.Response, error) {
	orgID, err := orgID(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, s.db, orgID, req)
	if err != nil {
		return nil, err
	}
	out := make([]templatedomain.Response, 0, len(items))
	for i := range items {
		out = append(out, *toResponse(&items[i]))
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*templatedomain.Response, error) {
	tmpl, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(tmpl), nil
}

func (s *Service) Default(ctx context.Context) (*templatedomain.Response, error) {
	orgID, err := orgID(ctx)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.repo.FindDefault(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, templatedomain.ErrNotFound
	}
	return toResponse(tmpl), nil
}

func (s *Service) Update(ctx context.Context, req templatedomain.UpdateRequest) (*templatedomain.Response, error) {
	tmpl, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, templatedomain.ErrInvalidName
		}
		tmpl.Name = name
	}
	if req.Locale != nil {
		locale, err := normalizeLocale(*req.Locale)
		if err != nil {
			return nil, err
		}
		tmpl.Locale = locale
	}
	if req.Header != nil {
		tmpl.Header = datatypes.JSONMap(req.Header)
	}
	if req.Footer != nil {
		tmpl.Footer = datatypes.JSONMap(req.Footer)
	}
	if req.Style != nil {
		tmpl.Style = datatypes.JSONMap(req.Style)
	}
	tmpl.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, tmpl); err != nil {
		return nil, err
	}
	return toResponse(tmpl), nil
}

func (s *Service) SetDefault(ctx context.Context, id string) (*templatedomain.Response, error) {
	tmpl, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ClearDefault(ctx, tx, tmpl.OrgID); err != nil {
			return err
		}
		tmpl.IsDefault = true
		tmpl.UpdatedAt = s.clock.Now()
		return s.repo.Update(ctx, tx, tmpl)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("default invoice template changed",
		zap.String("org_id", tmpl.OrgID.String()),
		zap.String("template_id", tmpl.ID.String()),
	)
	return toResponse(tmpl), nil
}

func (s *Service) load(ctx context.Context, raw string) (*templatedomain.InvoiceTemplate, error) {
	orgID, err := orgID(ctx)
	if err != nil {
		return nil, err
	}
	id, err := templatedomain.ParseID(raw)
	if err != nil {
		return nil, templatedomain.ErrInvalidID
	}
	tmpl, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, templatedomain.ErrNotFound
	}
	return tmpl, nil
}

func orgID(ctx context.Context) (snowflake.ID, error) {
	id, err := orgcontext.Require(ctx)
	if err != nil {
		return 0, templatedomain.ErrInvalidOrganization
	}
	return id, nil
}

func normalizeLocale(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "es-CO", nil
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", templatedomain.ErrInvalidLocale
	}
	return tag.String(), nil
}

func toResponse(tmpl *templatedomain.InvoiceTemplate) *templatedomain.Response {
	return &templatedomain.Response{
		ID:        tmpl.ID.String(),
		OrgID:     tmpl.OrgID.String(),
		Name:      tmpl.Name,
		IsDefault: tmpl.IsDefault,
		Locale:    tmpl.Locale,
		Header:    tmpl.Header,
		Footer:    tmpl.Footer,
		Style:     tmpl.Style,
		CreatedAt: tmpl.CreatedAt,
		UpdatedAt: tmpl.UpdatedAt,
	}
}

package render

import (
	"context"
	"errors"

	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	templatedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoicetemplate/domain"
	"go.uber.org/fx"
)

type DocumentParams struct {
	fx.In

	Invoices  invoicedomain.Service
	Templates templatedomain.Service
	Renderer  Renderer
	Cfg       config.Config
}

// DocumentService renders stored invoices with the organization's default
// branding.
type DocumentService struct {
	invoices  invoicedomain.Service
	templates templatedomain.Service
	renderer  Renderer
	locale    string
}

func NewDocumentService(p DocumentParams) *DocumentService {
	return &DocumentService{
		invoices:  p.Invoices,
		templates: p.Templates,
		renderer:  p.Renderer,
		locale:    p.Cfg.Invoicing.DefaultLocale,
	}
}

func (s *DocumentService) RenderInvoice(ctx context.Context, invoiceID string) (string, error) {
	inv, err := s.invoices.Load(ctx, invoiceID)
	if err != nil {
		return "", err
	}

	view := TemplateView{Locale: s.locale}
	tmpl, err := s.templates.Default(ctx)
	switch {
	case err == nil:
		view = TemplateViewFrom(tmpl)
	case !errors.Is(err, templatedomain.ErrNotFound):
		return "", err
	}

	return s.renderer.RenderHTML(BuildInput(inv, view))
}

// TemplateViewFrom maps stored branding onto the render input.
func TemplateViewFrom(tmpl *templatedomain.Response) TemplateView {
	return TemplateView{
		Name:         tmpl.Name,
		Locale:       tmpl.Locale,
		CompanyName:  templatedomain.Value(tmpl.Header, "company_name"),
		CompanyTaxID: templatedomain.Value(tmpl.Header, "company_tax_id"),
		LogoURL:      templatedomain.Value(tmpl.Header, "logo_url"),
		FooterNotes:  templatedomain.Value(tmpl.Footer, "notes"),
		FooterLegal:  templatedomain.Value(tmpl.Footer, "legal"),
		PrimaryColor: templatedomain.Value(tmpl.Style, "primary_color"),
		FontFamily:   templatedomain.Value(tmpl.Style, "font_family"),
	}
}

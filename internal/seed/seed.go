package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	templatedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoicetemplate/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultTemplateName = "Kuppel"
	defaultFooterNotes  = "Gracias por su compra"
	defaultPrimaryColor = "#1f2937"
	defaultFontFamily   = "Inter, sans-serif"
)

// EnsureDefaultTemplate seeds the organization's default invoice template.
// An organization that already has a default keeps it; created reports
// whether a new row was written.
func EnsureDefaultTemplate(ctx context.Context, db *gorm.DB, node *snowflake.Node, orgID snowflake.ID, cfg config.InvoicingConfig) (tmpl templatedomain.InvoiceTemplate, created bool, err error) {
	if db == nil {
		return tmpl, false, errors.New("seed database handle is required")
	}
	if node == nil {
		return tmpl, false, errors.New("seed id generator is required")
	}
	if orgID <= 0 {
		return tmpl, false, templatedomain.ErrInvalidOrganization
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("org_id = ? AND is_default = ?", orgID, true).First(&tmpl).Error
		if findErr == nil {
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		locale := cfg.DefaultLocale
		if locale == "" {
			locale = "es-CO"
		}
		now := time.Now().UTC()
		tmpl = templatedomain.InvoiceTemplate{
			ID:        node.Generate(),
			OrgID:     orgID,
			Name:      defaultTemplateName,
			IsDefault: true,
			Locale:    locale,
			Header:    datatypes.JSONMap{"company_name": defaultTemplateName},
			Footer:    datatypes.JSONMap{"notes": defaultFooterNotes},
			Style: datatypes.JSONMap{
				"primary_color": defaultPrimaryColor,
				"font_family":   defaultFontFamily,
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&tmpl).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return tmpl, created, err
}

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceTemplate holds the branding used to render invoice documents.
// Header keys: company_name, company_tax_id, logo_url. Footer keys: notes,
// legal. Style keys: primary_color, font_family.
type InvoiceTemplate struct {
	ID        snowflake.ID      `gorm:"primaryKey"`
	OrgID     snowflake.ID      `gorm:"not null;index"`
	Name      string            `gorm:"type:text;not null"`
	IsDefault bool              `gorm:"not null;default:false"`
	Locale    string            `gorm:"type:text;not null;default:'es-CO'"`
	Header    datatypes.JSONMap `gorm:"type:jsonb"`
	Footer    datatypes.JSONMap `gorm:"type:jsonb"`
	Style     datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceTemplate) TableName() string { return "invoice_templates" }

// Value reads a string setting from one of the JSON sections.
func Value(section map[string]any, key string) string {
	if section == nil {
		return ""
	}
	value, _ := section[key].(string)
	return value
}

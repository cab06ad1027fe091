package migration

import (
	"fmt"
	"strings"

	auditdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit/domain"
	cashdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/events"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	templatedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoicetemplate/domain"
	ledgerdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/ledger/domain"
	"gorm.io/gorm"
)

// Models lists every persisted entity, in dependency order.
func Models() []any {
	return []any{
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&invoicedomain.InvoiceSequence{},
		&templatedomain.InvoiceTemplate{},
		&ledgerdomain.LedgerAccount{},
		&ledgerdomain.LedgerEntry{},
		&ledgerdomain.LedgerEntryLine{},
		&auditdomain.AuditLog{},
		&events.OutboxEvent{},
		&cashdomain.CashSession{},
		&cashdomain.CashMovement{},
	}
}

// Apply brings the schema up to date. Postgres runs the embedded SQL
// migrations; sqlite, used for local development, is auto-migrated from the
// models.
func Apply(conn *gorm.DB, driver string) error {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "":
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	case "sqlite":
		return conn.AutoMigrate(Models()...)
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
}

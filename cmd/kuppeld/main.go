// @title           Kuppel API
// @version         1.0
// @description     Kuppel POS, invoicing and cash register API
// @BasePath        /api
// @Schemes         http https

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/clock"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/einvoice"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/events"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/overdue"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoicetemplate"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/ledger"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/migration"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/reports"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/server"
	"github.com/luisk202009/kuppel-dine-ease-sub001/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		fx.Invoke(runMigrations),
		clock.Module,

		ledger.Module,
		audit.Module,
		events.Module,
		invoicetemplate.Module,
		invoice.Module,
		overdue.Module,
		cashsession.Module,
		reports.Module,
		einvoice.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func runMigrations(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if !cfg.Bootstrap.RunMigrations {
		return nil
	}
	if err := migration.Apply(conn, cfg.Database.Driver); err != nil {
		return err
	}
	log.Info("database schema up to date", zap.String("driver", cfg.Database.Driver))
	return nil
}

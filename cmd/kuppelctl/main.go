package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/clock"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/events"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoicetemplate"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/ledger"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability"
	"github.com/luisk202009/kuppel-dine-ease-sub001/pkg/db"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "kuppelctl",
		Usage:   "operator tools for the Kuppel invoicing backend",
		Version: version,
		Commands: []*cli.Command{
			migrateCommand(),
			sweepOverdueCommand(),
			previewCommand(),
			seedTemplateCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(2)
}

// startApp boots the service graph without the HTTP server and fills the
// given pointers. The returned stop func must be called before exiting.
func startApp(ctx context.Context, extra fx.Option, targets ...any) (func(), error) {
	app := fx.New(
		fx.NopLogger,
		config.Module,
		observability.Module,
		fx.Provide(newSnowflake),
		db.Module,
		clock.Module,
		ledger.Module,
		audit.Module,
		events.Module,
		invoicetemplate.Module,
		invoice.Module,
		extra,
		fx.Populate(targets...),
	)
	if err := app.Start(ctx); err != nil {
		return nil, err
	}
	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}, nil
}

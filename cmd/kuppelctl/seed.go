package main

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/seed"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func seedTemplateCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed-template",
		Usage: "create the default invoice template for an organization",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "org", Usage: "organization `ID`", Required: true},
		},
		Action: func(c *cli.Context) error {
			orgID, err := snowflake.ParseString(c.String("org"))
			if err != nil {
				return fmt.Errorf("invalid organization id: %w", err)
			}

			var (
				conn *gorm.DB
				node *snowflake.Node
				cfg  config.Config
			)
			stop, err := startApp(c.Context, fx.Options(), &conn, &node, &cfg)
			if err != nil {
				return err
			}
			defer stop()

			tmpl, created, err := seed.EnsureDefaultTemplate(c.Context, conn, node, orgID, cfg.Invoicing)
			if err != nil {
				return err
			}
			state := "existing"
			if created {
				state = "created"
			}
			fmt.Fprintf(c.App.Writer, "%s default template %s (%s)\n", state, tmpl.ID, tmpl.Name)
			return nil
		},
	}
}

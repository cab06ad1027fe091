package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/migration"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/logger"
	"github.com/luisk202009/kuppel-dine-ease-sub001/pkg/db"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply database migrations",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "down", Usage: "roll back `N` migrations instead of applying"},
			&cli.BoolFlag{Name: "version", Usage: "print the applied schema version and exit"},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			log, err := logger.New(logger.Config{
				ServiceName: cfg.ServiceName + "-ctl",
				Version:     version,
				Environment: cfg.Environment,
				Level:       cfg.LogLevel,
			})
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			conn, err := db.Open(cfg.Database, log)
			if err != nil {
				return err
			}
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			postgres := cfg.Database.Driver == "" || strings.HasPrefix(cfg.Database.Driver, "postgres")
			if (c.Bool("version") || c.Int("down") > 0) && !postgres {
				return errors.New("versioned migrations require the postgres driver")
			}

			switch {
			case c.Bool("version"):
				v, dirty, err := migration.Version(sqlDB)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "version %d (dirty: %t)\n", v, dirty)
				return nil
			case c.Int("down") > 0:
				if err := migration.Rollback(sqlDB, c.Int("down")); err != nil {
					return err
				}
				log.Info("migrations rolled back", zap.Int("steps", c.Int("down")))
				return nil
			default:
				if err := migration.Apply(conn, cfg.Database.Driver); err != nil {
					return err
				}
				log.Info("database schema up to date", zap.String("driver", cfg.Database.Driver))
				return nil
			}
		},
	}
}

package main

import (
	"fmt"

	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/overdue"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
)

func sweepOverdueCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep-overdue",
		Usage: "mark issued invoices past their due date as overdue, once",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "batch-size", Usage: "max invoices to process"},
		},
		Action: func(c *cli.Context) error {
			var worker *overdue.Worker
			stop, err := startApp(c.Context, fx.Options(
				fx.Provide(overdue.ConfigFrom),
				fx.Decorate(func(cfg overdue.Config) overdue.Config {
					if n := c.Int("batch-size"); n > 0 {
						cfg.BatchSize = n
					}
					return cfg
				}),
				fx.Provide(overdue.NewWorker),
			), &worker)
			if err != nil {
				return err
			}
			defer stop()

			result, err := worker.RunOnce(c.Context)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "marked=%d skipped=%d failed=%d\n", result.Marked, result.Skipped, result.Failed)
			if result.Failed > 0 {
				return cli.Exit("some invoices could not be marked overdue", 2)
			}
			return nil
		},
	}
}

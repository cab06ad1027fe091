package overdue

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("invoice.overdue",
	fx.Provide(ConfigFrom),
	fx.Provide(NewWorker),
	fx.Invoke(runWorker),
)

func runWorker(lc fx.Lifecycle, cfg Config, worker *Worker) {
	if !cfg.Enabled {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go worker.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

package observability

import (
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/logger"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/metrics"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/tracing"
	"go.opentelemetry.io/otel/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("observability",
	fx.Provide(func(cfg config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			ServiceName: cfg.ServiceName,
			Version:     cfg.Version,
			Environment: cfg.Environment,
			Level:       cfg.LogLevel,
		})
	}),
	fx.Provide(
		func(cfg config.Config) tracing.Config { return tracing.ConfigFrom(cfg) },
		func(cfg config.Config) metrics.Config { return metrics.ConfigFrom(cfg) },
	),
	fx.Provide(tracing.NewProvider),
	fx.Provide(metrics.NewMeterProvider),
	fx.Provide(metrics.NewHTTPMetrics),
	fx.Provide(metrics.InvoicingWithConfig),
	fx.Invoke(func(*sdktrace.TracerProvider, metric.MeterProvider) {}),
)

package metrics

import (
	"strings"

	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	"go.opentelemetry.io/otel/attribute"
)

// Config labels every exported series.
type Config struct {
	Enabled     bool
	ServiceName string
	Environment string
}

// ConfigFrom maps the application configuration onto metric settings.
func ConfigFrom(cfg config.Config) Config {
	return Config{
		Enabled:     cfg.Metrics.Enabled,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	}
}

var highCardinalityKeys = []string{
	"invoice_id",
	"item_id",
	"org_id",
	"request_id",
	"session_id",
}

// FilterAttributes drops attributes that would explode series cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		key := strings.ToLower(string(attr.Key))
		drop := false
		for _, needle := range highCardinalityKeys {
			if strings.Contains(key, needle) {
				drop = true
				break
			}
		}
		if !drop {
			filtered = append(filtered, attr)
		}
	}
	return filtered
}

func serviceName(cfg Config) string {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		return "kuppel"
	}
	return name
}

package overdue

import (
	"time"

	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
)

type Config struct {
	Enabled      bool
	BatchSize    int
	PollInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		BatchSize:    100,
		PollInterval: 15 * time.Minute,
	}
}

// ConfigFrom maps the application configuration onto sweep settings.
func ConfigFrom(cfg config.Config) Config {
	return Config{
		Enabled:      cfg.Overdue.Enabled,
		BatchSize:    cfg.Overdue.BatchSize,
		PollInterval: cfg.Overdue.Interval,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	return c
}

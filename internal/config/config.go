package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment string
	ServiceName string
	Version     string
	HTTPAddr    string
	LogLevel    string

	Database  DatabaseConfig
	Tracing   TracingConfig
	Metrics   MetricsConfig
	Invoicing InvoicingConfig
	Overdue   OverdueConfig
	EInvoice  EInvoiceConfig
	Bootstrap BootstrapConfig
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
}

type TracingConfig struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

type MetricsConfig struct {
	Enabled bool
}

type InvoicingConfig struct {
	DefaultCurrency string
	DefaultLocale   string
	DefaultPrefix   string
	PaymentTermDays int
}

type OverdueConfig struct {
	Enabled   bool
	Interval  time.Duration
	BatchSize int
}

type EInvoiceConfig struct {
	Provider string
	BaseURL  string
	Token    string
	Timeout  time.Duration
}

type BootstrapConfig struct {
	RunMigrations bool
}

// Load reads the configuration from environment variables.
func Load() Config {
	return Config{
		Environment: getString("APP_ENV", "development"),
		ServiceName: getString("SERVICE_NAME", "kuppel"),
		Version:     getString("SERVICE_VERSION", "dev"),
		HTTPAddr:    getString("HTTP_ADDR", ":8080"),
		LogLevel:    strings.ToLower(getString("LOG_LEVEL", "info")),
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getString("DB_DRIVER", "postgres")),
			DSN:             getString("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=kuppel port=5432 sslmode=disable"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			LogLevel:        strings.ToLower(getString("DB_LOG_LEVEL", "warn")),
		},
		Tracing: TracingConfig{
			Enabled:          getBool("OTEL_TRACING_ENABLED", false),
			ExporterEndpoint: getString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ExporterProtocol: getString("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			SamplingRatio:    getFloat("OTEL_TRACES_SAMPLER_ARG", 0.1),
		},
		Metrics: MetricsConfig{
			Enabled: getBool("METRICS_ENABLED", true),
		},
		Invoicing: InvoicingConfig{
			DefaultCurrency: strings.ToUpper(getString("INVOICE_DEFAULT_CURRENCY", "COP")),
			DefaultLocale:   getString("INVOICE_DEFAULT_LOCALE", "es-CO"),
			DefaultPrefix:   strings.ToUpper(getString("INVOICE_DEFAULT_PREFIX", "FV")),
			PaymentTermDays: getInt("INVOICE_PAYMENT_TERM_DAYS", 30),
		},
		Overdue: OverdueConfig{
			Enabled:   getBool("OVERDUE_SWEEP_ENABLED", true),
			Interval:  getDuration("OVERDUE_SWEEP_INTERVAL", 15*time.Minute),
			BatchSize: getInt("OVERDUE_SWEEP_BATCH_SIZE", 100),
		},
		EInvoice: EInvoiceConfig{
			Provider: strings.ToLower(getString("EINVOICE_PROVIDER", "dataico")),
			BaseURL:  getString("EINVOICE_BASE_URL", "https://api.dataico.com/direct/dataico_api/v2"),
			Token:    getString("EINVOICE_TOKEN", ""),
			Timeout:  getDuration("EINVOICE_TIMEOUT", 20*time.Second),
		},
		Bootstrap: BootstrapConfig{
			RunMigrations: getBool("RUN_MIGRATIONS", true),
		},
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value, err := strconv.Atoi(getString(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getFloat(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(getString(key, ""), 64)
	if err != nil {
		return fallback
	}
	return value
}

func getBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getString(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getString(key, ""))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

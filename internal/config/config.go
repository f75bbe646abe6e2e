// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full service configuration.
type Config struct {
	ServiceName    string `env:"SERVICE_NAME" envDefault:"couponview"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"dev"`
	Environment    string `env:"ENVIRONMENT" envDefault:"development"`
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel       string `env:"LOG_LEVEL"`

	Ledger   LedgerConfig
	Notifier NotifierConfig
	Session  SessionConfig
	Tracing  TracingConfig
}

// LedgerConfig configures the contract client.
type LedgerConfig struct {
	RPCURL          string        `env:"LEDGER_RPC_URL" envDefault:"http://localhost:8545"`
	ContractAddress string        `env:"LEDGER_CONTRACT_ADDRESS"`
	PrivateKey      string        `env:"LEDGER_PRIVATE_KEY"`
	ChainID         int64         `env:"LEDGER_CHAIN_ID" envDefault:"1337"`
	CallTimeout     time.Duration `env:"LEDGER_CALL_TIMEOUT" envDefault:"15s"`
	ReceiptTimeout  time.Duration `env:"LEDGER_RECEIPT_TIMEOUT" envDefault:"2m"`
	// ReconcileTimeout bounds a whole reconciliation pass, which issues
	// many ledger calls; CallTimeout bounds a single call.
	ReconcileTimeout time.Duration `env:"LEDGER_RECONCILE_TIMEOUT" envDefault:"45s"`
}

// NotifierConfig configures the external email notification service.
type NotifierConfig struct {
	BaseURL string        `env:"NOTIFIER_BASE_URL"`
	Token   string        `env:"NOTIFIER_TOKEN"`
	Timeout time.Duration `env:"NOTIFIER_TIMEOUT" envDefault:"10s"`
}

// SessionConfig governs per-identity materialized-view sessions.
type SessionConfig struct {
	ViewTTL       time.Duration `env:"SESSION_VIEW_TTL" envDefault:"5m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
}

// TracingConfig configures the OTLP exporter.
type TracingConfig struct {
	Enabled          bool    `env:"TRACING_ENABLED" envDefault:"false"`
	ExporterEndpoint string  `env:"TRACING_EXPORTER_ENDPOINT"`
	ExporterProtocol string  `env:"TRACING_EXPORTER_PROTOCOL" envDefault:"grpc"`
	SamplingRatio    float64 `env:"TRACING_SAMPLING_RATIO" envDefault:"0.1"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool { return c.Environment == "production" }

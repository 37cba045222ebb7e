package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime settings for the portal session layer.
//
// Fields:
//   - GatewayAddr: base URL of the API gateway.
//   - RequestTimeout: network-stack bound on each gateway request
//     (zero disables the bound).
//   - LogLevel / LogPretty: logging backend settings.
type Config struct {
	GatewayAddr    string        `env:"PORTAL_GATEWAY_ADDR"`
	RequestTimeout time.Duration `env:"PORTAL_REQUEST_TIMEOUT"`
	LogLevel       string        `env:"PORTAL_LOG_LEVEL"`
	LogPretty      bool          `env:"PORTAL_LOG_PRETTY"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.GatewayAddr = "http://127.0.0.1:8000"
	c.RequestTimeout = 15 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config by applying, in order: defaults,
// environment variables, an optional JSON file (-c/-config), and
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}

// parseEnv overlays Config with PORTAL_* environment variables.
func parseEnv(cfg *Config) {
	if err := envconfig.Process(context.Background(), cfg); err != nil {
		panic(fmt.Sprintf("config: failed to read environment: %v", err))
	}
}

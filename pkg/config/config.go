// Package config loads gateway configuration from environment variables, with
// an optional config file. Contract address, RPC endpoint and storage location
// are injected here once at startup and immutable for the process lifetime.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// Config holds all gateway configuration.
type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":3006".
	ListenAddr string `mapstructure:"LISTEN_ADDR"`

	// EthereumRPC is the endpoint for subscription checks,
	// e.g. "https://sepolia.infura.io/v3/YOUR_KEY".
	EthereumRPC string `mapstructure:"ETHEREUM_RPC"`

	// SubscriptionContract is the SubscriptionManager contract address.
	SubscriptionContract string `mapstructure:"SUBSCRIPTION_CONTRACT"`

	// CallTimeout bounds each contract round trip. Zero disables the bound.
	CallTimeout time.Duration `mapstructure:"CALL_TIMEOUT"`

	// DatabaseURL is the Postgres connection string for the node registry.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// NodeTable is the registry table populated by the approval workflow.
	NodeTable string `mapstructure:"NODE_TABLE"`

	// CORSOrigin is the allowed cross-origin for browser clients.
	CORSOrigin string `mapstructure:"CORS_ORIGIN"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

// Load reads configuration from the environment, overlaid on an optional
// config file when path is non-empty.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("LISTEN_ADDR", ":3006")
	v.SetDefault("ETHEREUM_RPC", "https://rpc.sepolia.org")
	v.SetDefault("CALL_TIMEOUT", 10*time.Second)
	v.SetDefault("NODE_TABLE", "pending_nodes")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.AutomaticEnv()

	// Bind explicitly so the variables appear in Unmarshal
	for _, key := range []string{
		"LISTEN_ADDR", "ETHEREUM_RPC", "SUBSCRIPTION_CONTRACT", "CALL_TIMEOUT",
		"DATABASE_URL", "NODE_TABLE", "CORS_ORIGIN", "LOG_LEVEL", "LOG_FORMAT",
	} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that required fields are set and well-formed.
func (c *Config) Validate() error {
	if c.EthereumRPC == "" {
		return fmt.Errorf("ETHEREUM_RPC is required")
	}
	if c.SubscriptionContract == "" {
		return fmt.Errorf("SUBSCRIPTION_CONTRACT is required")
	}
	if !common.IsHexAddress(c.SubscriptionContract) {
		return fmt.Errorf("SUBSCRIPTION_CONTRACT %q is not a valid address", c.SubscriptionContract)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads the configuration from all sources and returns the merged result
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	Settings.PopulateViperDefaults(v)

	// Set up environment variable handling
	v.SetEnvPrefix("ACSP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Load from config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// It's okay if the config file doesn't exist, but other errors should be reported
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	config := &Config{}

	// Populate server configuration
	config.Server.Address = v.GetString("SERVER_ADDR")
	shutdownTimeout, err := time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	config.Server.ShutdownTimeout = shutdownTimeout

	// Populate metrics configuration
	config.Metrics.Address = v.GetString("METRICS_ADDR")

	// Populate TLS configuration
	config.TLS.Enabled = v.GetBool("TLS_ENABLED")
	config.TLS.CertPath = v.GetString("TLS_CERT_PATH")
	config.TLS.KeyPath = v.GetString("TLS_KEY_PATH")
	config.TLS.CAPath = v.GetString("TLS_CA_PATH")

	// Populate store configuration
	config.Store.Type = v.GetString("STORE_TYPE")
	config.Store.DSN = v.GetString("STORE_DSN")

	// Populate authorization configuration
	config.Authz.AdminSearchRole = v.GetString("AUTHZ_ADMIN_SEARCH_ROLE")
	config.Authz.InternalKeyRole = v.GetString("AUTHZ_INTERNAL_KEY_ROLE")
	lookupTimeout, err := time.ParseDuration(v.GetString("AUTHZ_LOOKUP_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid membership lookup timeout: %w", err)
	}
	config.Authz.MembershipLookupTimeout = lookupTimeout

	// Populate notification provider configuration
	config.Notify.URL = v.GetString("NOTIFY_URL")
	config.Notify.APIKey = v.GetString("NOTIFY_API_KEY")
	notifyTimeout, err := time.ParseDuration(v.GetString("NOTIFY_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid notification timeout: %w", err)
	}
	config.Notify.Timeout = notifyTimeout

	// Populate rate limit configuration
	config.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.Burst = v.GetInt("RATE_LIMIT_BURST")
	config.RateLimit.PerSecond = v.GetInt("RATE_LIMIT_PER_SECOND")

	// Populate observability configuration
	config.Observability.LogLevel = v.GetString("LOG_LEVEL")

	// Validate the configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig performs validation on the loaded configuration
func validateConfig(cfg *Config) error {
	switch cfg.Store.Type {
	case StoreTypePostgres:
		if cfg.Store.DSN == "" {
			return fmt.Errorf("store DSN is required for the postgres store")
		}
	case StoreTypeFixture:
		// No further settings
	default:
		return fmt.Errorf("unknown store type: %q", cfg.Store.Type)
	}

	// Validate TLS configuration
	if cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" {
			return fmt.Errorf("TLS certificate path is required when TLS is enabled")
		}
		if cfg.TLS.KeyPath == "" {
			return fmt.Errorf("TLS key path is required when TLS is enabled")
		}

		// Check if certificate and key files exist
		if _, err := os.Stat(cfg.TLS.CertPath); os.IsNotExist(err) {
			return fmt.Errorf("TLS certificate file not found: %s", cfg.TLS.CertPath)
		}
		if _, err := os.Stat(cfg.TLS.KeyPath); os.IsNotExist(err) {
			return fmt.Errorf("TLS key file not found: %s", cfg.TLS.KeyPath)
		}
	}

	// The notification relay is optional, but URL and key come together
	if (cfg.Notify.URL == "") != (cfg.Notify.APIKey == "") {
		return fmt.Errorf("notification provider URL and API key must be set together")
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.Burst <= 0 || cfg.RateLimit.PerSecond <= 0 {
			return fmt.Errorf("rate limit burst and per-second rate must be positive")
		}
	}

	return nil
}

// internal/config/types.go
package config

import (
	"time"
)

// Store types selectable via configuration
const (
	// StoreTypePostgres backs memberships with a Postgres database
	StoreTypePostgres = "postgres"

	// StoreTypeFixture backs memberships with an in-memory fixture,
	// for local runs and tests
	StoreTypeFixture = "fixture"
)

// Config represents the complete application configuration
type Config struct {
	// Server holds HTTP server configuration
	Server struct {
		// Address is the address to listen on
		Address string
		// ShutdownTimeout is the maximum time to wait for a graceful shutdown
		ShutdownTimeout time.Duration
	}

	// Metrics holds metrics server configuration
	Metrics struct {
		// Address is the address to listen on for the metrics server
		Address string
	}

	// TLS holds TLS configuration
	TLS struct {
		// Enabled indicates whether TLS is enabled
		Enabled bool
		// CertPath is the path to the TLS certificate
		CertPath string
		// KeyPath is the path to the TLS key
		KeyPath string
		// CAPath is the path to an optional root CA certificate
		CAPath string
	}

	// Store holds membership store configuration
	Store struct {
		// Type selects the store backend (postgres, fixture)
		Type string
		// DSN is the Postgres connection string
		DSN string
	}

	// Authz holds authorization pipeline configuration
	Authz struct {
		// AdminSearchRole is the role marker enabling the admin read override
		AdminSearchRole string
		// InternalKeyRole is the role marker required by the internal gate
		InternalKeyRole string
		// MembershipLookupTimeout bounds membership store point reads
		MembershipLookupTimeout time.Duration
	}

	// Notify holds notification provider configuration
	Notify struct {
		// URL is the provider endpoint
		URL string
		// APIKey authenticates this service to the provider
		APIKey string
		// Timeout bounds a single provider call
		Timeout time.Duration
	}

	// RateLimit holds request rate limiting configuration
	RateLimit struct {
		// Enabled indicates whether per-IP rate limiting is applied
		Enabled bool
		// Burst is the token bucket size
		Burst int
		// PerSecond is the bucket refill rate
		PerSecond int
	}

	// Observability holds observability configuration
	Observability struct {
		// LogLevel is the minimum log level to emit
		LogLevel string
	}
}

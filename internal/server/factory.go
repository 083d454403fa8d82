// internal/server/factory.go
package server

import (
	"context"
	stdtls "crypto/tls"
	"fmt"
	"net/http"

	"acspmembers/internal/api"
	"acspmembers/internal/config"
	"acspmembers/internal/membership"
	"acspmembers/internal/notify"
	"acspmembers/internal/observability"
	"acspmembers/internal/observability/logging"
	tlsconfig "acspmembers/internal/tls"
)

// NewFromConfig creates a new server from configuration
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	// Initialize observability
	obs, err := observability.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	// Initialize TLS configuration
	var tlsCfg *stdtls.Config
	if cfg.TLS.Enabled {
		setup := &tlsconfig.Config{
			Logger:     logger,
			RootCAPath: cfg.TLS.CAPath,
			CertPath:   cfg.TLS.CertPath,
			KeyPath:    cfg.TLS.KeyPath,
		}
		tlsCfg, err = setup.GetTLSConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS configuration: %w", err)
		}
	}

	// Initialize membership store
	store, cleanup, err := createStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize membership store: %w", err)
	}

	// Initialize notification client; the relay routes stay registered
	// either way, failing with Bad Gateway when no provider is configured
	var notifier api.Notifier
	if cfg.Notify.URL != "" {
		notifier, err = notify.New(notify.Config{
			BaseURL: cfg.Notify.URL,
			APIKey:  cfg.Notify.APIKey,
			Timeout: cfg.Notify.Timeout,
		}, logger, obs.Metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize notification client: %w", err)
		}
		logger.Info("Notification relay enabled", "url", logging.RedactStringURL(cfg.Notify.URL))
	} else {
		notifier = unconfiguredNotifier{}
		logger.Warn("No notification provider configured")
	}

	// Initialize router with the authorization pipelines
	router := api.New(api.Config{
		AdminSearchRole: cfg.Authz.AdminSearchRole,
		InternalKeyRole: cfg.Authz.InternalKeyRole,
		LookupTimeout:   cfg.Authz.MembershipLookupTimeout,
	}, store, notifier, logger, obs.Metrics)

	// Create complete middleware chain: observability -> rate limit -> router
	var handler http.Handler = router
	if cfg.RateLimit.Enabled {
		handler = api.RateLimit(handler, cfg.RateLimit.Burst, cfg.RateLimit.PerSecond)
	}
	handler = obs.Middleware(handler)

	serverConfig := Config{
		Address:         cfg.Server.Address,
		MetricsAddress:  cfg.Metrics.Address,
		TLSConfig:       tlsCfg,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}

	srv := New(serverConfig, handler, obs.MetricsHandler(), logger)
	srv.cleanup = cleanup
	return srv, nil
}

// createStore builds the membership store selected by configuration.
func createStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (membership.Store, func(), error) {
	switch cfg.Store.Type {
	case config.StoreTypePostgres:
		store, err := membership.OpenPostgres(ctx, cfg.Store.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Membership store ready", "type", cfg.Store.Type)
		return store, store.Close, nil
	case config.StoreTypeFixture:
		logger.Warn("Using empty fixture membership store; all session lookups will miss")
		return membership.NewFixtureStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store type: %q", cfg.Store.Type)
	}
}

// unconfiguredNotifier rejects every relay attempt.
type unconfiguredNotifier struct{}

func (unconfiguredNotifier) SendEmail(ctx context.Context, req notify.EmailRequest) (*notify.SendResult, error) {
	return nil, fmt.Errorf("no notification provider configured")
}

func (unconfiguredNotifier) SendLetter(ctx context.Context, req notify.LetterRequest) (*notify.SendResult, error) {
	return nil, fmt.Errorf("no notification provider configured")
}

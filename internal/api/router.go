// internal/api/router.go
package api

import (
	"context"
	"net/http"
	"time"

	"acspmembers/internal/authz"
	"acspmembers/internal/membership"
	"acspmembers/internal/notify"
	"acspmembers/internal/observability/logging"
	"acspmembers/internal/observability/metrics"

	"github.com/gorilla/mux"
)

// Notifier is the outbound notification collaborator.
type Notifier interface {
	SendEmail(ctx context.Context, req notify.EmailRequest) (*notify.SendResult, error)
	SendLetter(ctx context.Context, req notify.LetterRequest) (*notify.SendResult, error)
}

// Config holds router configuration
type Config struct {
	// AdminSearchRole is the role marker enabling the admin read override
	AdminSearchRole string

	// InternalKeyRole is the role marker required by the internal gate
	InternalKeyRole string

	// LookupTimeout bounds membership store point reads
	LookupTimeout time.Duration
}

// Router wires the authorization pipelines in front of the handlers.
// Membership read routes run the delegated-session pipeline; the
// notification relay routes run the internal gate.
type Router struct {
	*mux.Router
	store    membership.Store
	notifier Notifier
	logger   *logging.Logger
	metrics  *metrics.Collector
}

// New creates the router with its route groups and pipelines.
func New(cfg Config, store membership.Store, notifier Notifier, logger *logging.Logger, collector *metrics.Collector) *Router {
	r := &Router{
		Router:   mux.NewRouter(),
		store:    store,
		notifier: notifier,
		logger:   logger.WithModule("api"),
		metrics:  collector,
	}

	sessionValidator := authz.NewSessionValidator(store, cfg.LookupTimeout, logger, collector)

	readPipeline := authz.NewPipeline("session", logger, collector,
		authz.IdentityStage(),
		authz.AdminStage(authz.NewAdminEvaluator(cfg.AdminSearchRole)),
		authz.SessionStage(sessionValidator),
		authz.ReadCapabilityStage(),
	)

	internalPipeline := authz.NewPipeline("internal", logger, collector,
		authz.InternalGateStage(authz.NewInternalGate(cfg.InternalKeyRole)),
	)

	r.Path("/healthcheck").Methods(http.MethodGet).HandlerFunc(r.healthcheck)

	r.Handle("/acsps/{acspNumber}/memberships",
		readPipeline.Middleware(http.HandlerFunc(r.listMemberships))).Methods(http.MethodGet)
	r.Handle("/memberships/{id}",
		readPipeline.Middleware(http.HandlerFunc(r.getMembership))).Methods(http.MethodGet)

	// No mux method restriction here: the gate itself rejects non-POST
	// calls, so a valid internal credential on a GET still gets the
	// gate's Forbidden rather than a generic 405.
	r.Handle("/notifications/email",
		internalPipeline.Middleware(http.HandlerFunc(r.sendEmail)))
	r.Handle("/notifications/letter",
		internalPipeline.Middleware(http.HandlerFunc(r.sendLetter)))

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.logger.Warn("Request received for undefined route", "path", req.URL.Path)
		r.metrics.RecordRequest(req.Method, req.URL.Path, http.StatusNotFound, 0)
		http.Error(w, "404 page not found", http.StatusNotFound)
	})

	return r
}

func (r *Router) healthcheck(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

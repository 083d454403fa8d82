// internal/authz/pipeline.go
package authz

import (
	"net/http"

	"acspmembers/internal/contextutil"
	"acspmembers/internal/identity"
	"acspmembers/internal/observability/logging"
	"acspmembers/internal/observability/metrics"
	"acspmembers/internal/permissions"

	"github.com/gorilla/mux"
)

// AcspNumberVar is the mux route variable naming the ACSP a route is
// scoped to.
const AcspNumberVar = "acspNumber"

// Stage is one named check in an authorization pipeline.
type Stage struct {
	// Name identifies the stage in logs and metrics
	Name string

	// Check evaluates the stage against the request context. Returning
	// Allow continues the pipeline; anything else short-circuits it.
	Check func(*Request) *Response
}

// Pipeline is an explicit, ordered sequence of authorization stages with
// short-circuit semantics. It is a pure function of
// (headers, method, path, membership store): evaluating it twice for the
// same request yields the same decision, and rejection paths write no
// state.
type Pipeline struct {
	name    string
	stages  []Stage
	logger  *logging.Logger
	metrics *metrics.Collector
}

// NewPipeline creates a pipeline running the given stages in order.
func NewPipeline(name string, logger *logging.Logger, collector *metrics.Collector, stages ...Stage) *Pipeline {
	return &Pipeline{
		name:    name,
		stages:  stages,
		logger:  logger.WithModule("authz.pipeline." + name),
		metrics: collector,
	}
}

// Authorize evaluates the stages in order, stopping at the first stage
// that does not Allow.
func (p *Pipeline) Authorize(req *Request) *Response {
	for _, stage := range p.stages {
		resp := stage.Check(req)
		p.metrics.RecordAuthorization(stage.Name, resp.Decision.String())
		if resp.Decision != Allow {
			return resp
		}
	}
	return allow("all stages passed")
}

// IdentityStage rejects requests whose identity kind could not be
// classified. It runs first in every pipeline: an unrecognizable caller
// is unauthorized regardless of anything else on the request.
func IdentityStage() Stage {
	return Stage{
		Name: "identity",
		Check: func(req *Request) *Response {
			if req.Identity == nil || req.Identity.Kind == identity.KindUnknown {
				return unauthorized("identity kind not recognized")
			}
			return allow("identity classified")
		},
	}
}

// AdminStage wraps the admin evaluator. It always continues.
func AdminStage(evaluator *AdminEvaluator) Stage {
	return Stage{Name: "admin", Check: evaluator.Evaluate}
}

// SessionStage wraps the session-consistency validator.
func SessionStage(validator *SessionValidator) Stage {
	return Stage{Name: "session", Check: validator.Validate}
}

// ReadCapabilityStage guards read endpoints on the baseline read
// capability. It is deliberately independent of session consistency: a
// role-consistent session may still lack the read grant if the claim was
// truncated. The admin override satisfies it.
func ReadCapabilityStage() Stage {
	return Stage{
		Name: "read_capability",
		Check: func(req *Request) *Response {
			if req.AdminPrivilege {
				return allow("admin override")
			}
			if req.Identity != nil && req.Identity.Kind == identity.KindAPIKey {
				return allow("internal caller")
			}
			if req.Permissions.CanReadMembers() {
				return allow("read capability present")
			}
			return deny("read capability missing")
		},
	}
}

// InternalGateStage wraps the internal-service gate.
func InternalGateStage(gate *InternalGate) Stage {
	return Stage{Name: "internal_gate", Check: gate.Check}
}

// Middleware adapts the pipeline to an HTTP middleware. On Allow the
// classified identity, parsed claim and admin flag are attached to the
// request context for the downstream handler; any other decision halts
// the request with the mapped status code before the handler runs.
func (p *Pipeline) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.LoggerFromContext(ctx)
		if logger == nil {
			logger = p.logger
		}

		req := &Request{
			Identity:       identity.FromRequest(r),
			Permissions:    permissions.Parse(r.Header.Get(identity.TokenPermissionsHeader)),
			Method:         r.Method,
			Path:           r.URL.Path,
			PathAcspNumber: mux.Vars(r)[AcspNumberVar],
			Context:        ctx,
		}

		resp := p.Authorize(req)

		switch resp.Decision {
		case Allow:
			logger.Debug("Authorization successful",
				"pipeline", p.name,
				"user_id", req.Identity.UserID,
				"admin_privilege", req.AdminPrivilege,
			)
			ctx = contextutil.WithIdentity(ctx, req.Identity)
			ctx = contextutil.WithTokenPermissions(ctx, req.Permissions)
			ctx = contextutil.WithAdminPrivilege(ctx, req.AdminPrivilege)
			next.ServeHTTP(w, r.WithContext(ctx))

		case Deny:
			logger.Info("Authorization failed: insufficient privilege",
				"pipeline", p.name,
				"user_id", req.Identity.UserID,
				"reason", resp.Reason,
			)
			http.Error(w, "Forbidden", http.StatusForbidden)

		case Unauthorized:
			logger.Info("Authorization failed: no identity",
				"pipeline", p.name,
				"reason", resp.Reason,
			)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)

		case Error:
			logger.Error("Authorization failed: infrastructure error",
				logging.Err(resp.Error),
				"pipeline", p.name,
			)
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		}
	})
}

// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"acspmembers/internal/contextutil"
	"acspmembers/internal/identity"
	"acspmembers/internal/membership"
	"acspmembers/internal/notify"
	"acspmembers/internal/observability/logging"

	"github.com/gorilla/mux"
)

// listMemberships returns the members of an ACSP. Admin callers get the
// removed records as well; everyone else sees active members only.
func (r *Router) listMemberships(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := r.requestLogger(ctx)

	acspNumber := mux.Vars(req)["acspNumber"]
	includeRemoved := contextutil.GetAdminPrivilege(ctx)

	records, err := r.store.ListMemberships(ctx, acspNumber, includeRemoved)
	if err != nil {
		logger.Error("Failed to list memberships", logging.Err(err), "acsp_number", acspNumber)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []membership.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// getMembership returns a single membership record. Records outside the
// caller's own ACSP are reported as not found unless the caller holds
// the admin override or an internal credential.
func (r *Router) getMembership(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := r.requestLogger(ctx)

	id := mux.Vars(req)["id"]
	record, err := r.store.FindMembership(ctx, id)
	if errors.Is(err, membership.ErrNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("Failed to fetch membership", logging.Err(err), "membership_id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !r.callerMaySee(ctx, record) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (r *Router) callerMaySee(ctx context.Context, record *membership.Record) bool {
	if contextutil.GetAdminPrivilege(ctx) {
		return true
	}
	if ident := contextutil.GetIdentity(ctx); ident != nil && ident.Kind == identity.KindAPIKey {
		return true
	}
	perms := contextutil.GetTokenPermissions(ctx)
	return perms != nil && perms.AcspNumber() == record.AcspNumber
}

// sendEmail relays an email notification through the provider.
func (r *Router) sendEmail(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := r.requestLogger(ctx)

	var payload notify.EmailRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := r.notifier.SendEmail(ctx, payload)
	if err != nil {
		logger.Error("Email relay failed", logging.Err(err))
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// sendLetter relays a letter notification through the provider.
func (r *Router) sendLetter(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := r.requestLogger(ctx)

	var payload notify.LetterRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := r.notifier.SendLetter(ctx, payload)
	if err != nil {
		logger.Error("Letter relay failed", logging.Err(err))
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (r *Router) requestLogger(ctx context.Context) *logging.Logger {
	if logger := logging.LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/omhauth/internal/server/services"
	"github.com/go-chi/chi/v5/middleware"
)

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
	State       string `json:"state,omitempty"`
}

func statusFor(r services.Reason) int {
	switch r.Class() {
	case services.ClassAuthentication:
		return http.StatusUnauthorized
	case services.ClassIntegrity:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as an OAuth-style JSON error. Errors without a
// reason are logged and reported as server_error.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error, state string) {
	var e *services.Error
	if !errors.As(err, &e) {
		a.log.Error(r.Context(), "request failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		a.metrics.RecordRejection("Internal")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "server_error", State: state})
		return
	}

	if e.Reason.Class() == services.ClassIntegrity {
		a.log.Error(r.Context(), "integrity failure", "request_id", middleware.GetReqID(r.Context()), "error", err)
	}
	a.metrics.RecordRejection(string(e.Reason))
	writeJSON(w, statusFor(e.Reason), errorBody{Error: e.Reason.OAuthCode(), Description: e.Detail, State: state})
}

// writeProblem reports a request-level problem found before any service
// call.
func (a *API) writeProblem(w http.ResponseWriter, r *http.Request, reason services.Reason, desc, state string) {
	a.writeError(w, r, &services.Error{Reason: reason, Detail: desc}, state)
}

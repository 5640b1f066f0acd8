package api

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/avolve-dao/avolve-sub003/models"
)

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// writeClaimError maps the engine's error taxonomy onto HTTP statuses.
// Conflicts are the user's fault and final; transient exhaustion invites
// a retry; configuration defects and fatal storage errors do not.
func writeClaimError(w http.ResponseWriter, err error) {
	switch {
	case models.IsConflict(err):
		writeError(w, http.StatusConflict, "already_claimed", "challenge already claimed today")
	case errors.Is(err, models.ErrChallengeNotConfigured):
		log.WithError(err).Error("Challenge catalog misconfigured")
		writeError(w, http.StatusServiceUnavailable, "challenge_not_configured", "no challenge configured for today")
	case models.IsTransient(err):
		log.WithError(err).Warn("Claim failed after retries")
		writeError(w, http.StatusServiceUnavailable, "temporarily_unavailable", "please retry shortly")
	case models.IsFatal(err):
		log.WithError(err).Error("Claim failed fatally")
		writeError(w, http.StatusInternalServerError, "storage_error", "claim could not be recorded")
	default:
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	}
}

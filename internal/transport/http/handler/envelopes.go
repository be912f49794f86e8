package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/techcreator/otp-service/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SendOTPEnvelope wraps send-otp responses.
type SendOTPEnvelope struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// VerifyOTPEnvelope wraps verify-otp responses. ActionResult is emitted
// even when null: callers key off its presence for the email_change flow.
type VerifyOTPEnvelope struct {
	Valid        bool                 `json:"valid"`
	Message      string               `json:"message,omitempty"`
	Type         string               `json:"type,omitempty"`
	Email        string               `json:"email,omitempty"`
	ActionResult *domain.ActionResult `json:"action_result"`
	VerifiedAt   *time.Time           `json:"verified_at,omitempty"`
	Error        string               `json:"error,omitempty"`
}

// CleanupEnvelope wraps cleanup responses.
type CleanupEnvelope struct {
	Deleted int    `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinels onto HTTP status codes.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

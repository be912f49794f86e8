package handler

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	otpapp "github.com/techcreator/otp-service/internal/application/otp"
	"github.com/techcreator/otp-service/internal/domain"
	"github.com/techcreator/otp-service/internal/pkg/validate"
)

// OTPHandler exposes the issue/verify/status/cleanup endpoints.
type OTPHandler struct {
	svc      otpapp.Service
	adminKey string
}

func NewOTPHandler(svc otpapp.Service, adminKey string) *OTPHandler {
	return &OTPHandler{svc: svc, adminKey: adminKey}
}

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req otpapp.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, SendOTPEnvelope{Error: "invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, SendOTPEnvelope{Error: "Email and type are required"})
		return
	}

	res, err := h.svc.Send(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadRequest):
			writeJSON(w, http.StatusBadRequest, SendOTPEnvelope{Error: "Email and type are required"})
		case errors.Is(err, domain.ErrRateLimited):
			writeJSON(w, http.StatusTooManyRequests, SendOTPEnvelope{Error: "Too many codes requested. Please try again later."})
		case errors.Is(err, domain.ErrDelivery):
			writeJSON(w, http.StatusInternalServerError, SendOTPEnvelope{Error: "Failed to send OTP email"})
		case errors.Is(err, domain.ErrPersistence):
			writeJSON(w, http.StatusInternalServerError, SendOTPEnvelope{Error: "Failed to store OTP"})
		default:
			writeJSON(w, http.StatusInternalServerError, SendOTPEnvelope{Error: "Internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, SendOTPEnvelope{
		Success:   true,
		Message:   "OTP sent successfully",
		ExpiresAt: &res.ExpiresAt,
	})
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req otpapp.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, VerifyOTPEnvelope{Error: "invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, VerifyOTPEnvelope{Error: "Email, OTP code, and type are required"})
		return
	}

	res, err := h.svc.Verify(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidOTP):
			// One undifferentiated shape for every "code didn't check
			// out" case; no hint which criterion failed.
			writeJSON(w, http.StatusBadRequest, VerifyOTPEnvelope{
				Valid: false,
				Error: "Invalid or expired OTP code",
			})
		case errors.Is(err, domain.ErrBadRequest):
			writeJSON(w, http.StatusBadRequest, VerifyOTPEnvelope{Error: "Email, OTP code, and type are required"})
		default:
			writeJSON(w, http.StatusInternalServerError, VerifyOTPEnvelope{Error: "Failed to verify OTP"})
		}
		return
	}

	writeJSON(w, http.StatusOK, VerifyOTPEnvelope{
		Valid:        true,
		Message:      "OTP verified successfully",
		Type:         string(res.Purpose),
		Email:        res.Email,
		ActionResult: res.ActionResult,
		VerifiedAt:   &res.VerifiedAt,
	})
}

func (h *OTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	purpose := domain.Purpose(r.URL.Query().Get("type"))

	res, err := h.svc.Status(r.Context(), email, purpose)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *OTPHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-Admin-Key")
	if h.adminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.adminKey)) != 1 {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	n, err := h.svc.Cleanup(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, CleanupEnvelope{Error: "Failed to delete expired OTPs"})
		return
	}
	writeJSON(w, http.StatusOK, CleanupEnvelope{Deleted: n})
}

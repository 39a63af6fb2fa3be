package otp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Rup-source226/maa-care-ai/pkg/logging"
)

// Handler exposes the standalone verification endpoints the portal's forms
// call directly (/send_otp, /verify_otp).
type Handler struct {
	store *Store
	// echoCodes returns the issued code in the HTTP response. Demo-only and
	// insecure; off unless explicitly enabled.
	echoCodes bool
	logger    *logging.Logger
}

func NewHandler(store *Store, echoCodes bool, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, echoCodes: echoCodes, logger: logger}
}

// Send handles POST /send_otp.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	mobile := strings.TrimSpace(r.PostFormValue("mobile"))
	if mobile == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Mobile number required"})
		return
	}

	code, err := h.store.Issue(r.Context(), mobile)
	if err != nil {
		h.logger.Error("failed to issue verification code", "error", err, "mobile", mobile)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Could not send OTP"})
		return
	}

	resp := map[string]string{"message": "OTP sent successfully"}
	if h.echoCodes {
		resp["otp"] = code
	}
	writeJSON(w, http.StatusOK, resp)
}

// Verify handles POST /verify_otp.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	mobile := strings.TrimSpace(r.PostFormValue("mobile"))
	code := strings.TrimSpace(r.PostFormValue("otp"))
	if mobile == "" || code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Mobile and OTP required"})
		return
	}

	err := h.store.Verify(r.Context(), mobile, code)
	if errors.Is(err, ErrInvalidCode) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid OTP"})
		return
	}
	if err != nil {
		h.logger.Error("verification failed", "error", err, "mobile", mobile)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Could not verify OTP"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP verified successfully"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

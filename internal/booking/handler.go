package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Rup-source226/maa-care-ai/internal/http/middleware"
	"github.com/Rup-source226/maa-care-ai/internal/otp"
	"github.com/Rup-source226/maa-care-ai/pkg/logging"
)

// Handler drives GET|POST /appointments. POST requests carry a "step" form
// field ("1", "2", "3") selecting the workflow transition.
type Handler struct {
	workflow *Workflow
	logger   *logging.Logger
}

func NewHandler(workflow *Workflow, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{workflow: workflow, logger: logger}
}

// Get reports which step the session's booking attempt is on.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return
	}

	pb, err := h.workflow.Current(r.Context(), sess.ID)
	if err != nil {
		h.serverError(w, err)
		return
	}

	step := "1"
	switch {
	case pb == nil:
	case pb.Phase == PhaseAwaitingOTP:
		step = "2"
	case pb.Phase == PhaseAwaitingPayment:
		step = "3"
	}
	respond(w, http.StatusOK, map[string]string{"step": step})
}

// Post dispatches a booking step.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return
	}

	step := r.PostFormValue("step")
	if step == "" {
		step = "1"
	}
	switch step {
	case "1":
		h.start(w, r, sess.ID)
	case "2":
		h.verify(w, r, sess.ID)
	case "3":
		h.confirm(w, r, sess.ID)
	default:
		respond(w, http.StatusBadRequest, map[string]string{"error": "unknown booking step"})
	}
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request, sessionID string) {
	doctorID, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("doctor_id")), 10, 64)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "doctor_id must be a number", "step": "1"})
		return
	}

	in := StartInput{
		DoctorID: doctorID,
		Date:     strings.TrimSpace(r.PostFormValue("date")),
		Time:     strings.TrimSpace(r.PostFormValue("time")),
		Reason:   strings.TrimSpace(r.PostFormValue("reason")),
		Contact:  strings.TrimSpace(r.PostFormValue("mobile")),
	}

	switch err := h.workflow.Start(r.Context(), sessionID, in); {
	case errors.Is(err, ErrValidation):
		respond(w, http.StatusBadRequest, map[string]string{"error": "doctor, date, time and mobile are required", "step": "1"})
	case errors.Is(err, ErrDoctorNotFound):
		respond(w, http.StatusNotFound, map[string]string{"error": "Doctor not found.", "step": "1"})
	case err != nil:
		h.serverError(w, err)
	default:
		respond(w, http.StatusOK, map[string]string{
			"message": "OTP sent to your mobile number",
			"step":    "2",
			"mobile":  in.Contact,
		})
	}
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request, sessionID string) {
	contact := strings.TrimSpace(r.PostFormValue("mobile"))
	code := strings.TrimSpace(r.PostFormValue("otp"))
	if contact == "" || code == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "mobile and otp are required", "step": "2"})
		return
	}

	switch err := h.workflow.SubmitCode(r.Context(), sessionID, contact, code); {
	case errors.Is(err, ErrNoActiveBooking), errors.Is(err, ErrStepOutOfOrder):
		respond(w, http.StatusConflict, map[string]string{"error": "No booking in progress. Please start over.", "step": "1"})
	case errors.Is(err, otp.ErrInvalidCode):
		respond(w, http.StatusBadRequest, map[string]string{"error": "Invalid OTP. Please try again.", "step": "2"})
	case err != nil:
		h.serverError(w, err)
	default:
		respond(w, http.StatusOK, map[string]string{"message": "OTP verified", "step": "3"})
	}
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request, sessionID string) {
	details := PatientDetails{
		FirstName:   strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:    strings.TrimSpace(r.PostFormValue("last_name")),
		PatientType: strings.TrimSpace(r.PostFormValue("patient_type")),
		RiskLevel:   strings.TrimSpace(r.PostFormValue("risk_level")),
	}

	confirmation, err := h.workflow.Confirm(r.Context(), sessionID, details)
	switch {
	case errors.Is(err, ErrBookingExpired), errors.Is(err, ErrNoActiveBooking):
		respond(w, http.StatusConflict, map[string]string{"error": "Session expired. Please start over.", "step": "1"})
	case errors.Is(err, ErrStepOutOfOrder):
		respond(w, http.StatusConflict, map[string]string{"error": "Verify your OTP first.", "step": "2"})
	case errors.Is(err, ErrPaymentDeclined):
		respond(w, http.StatusPaymentRequired, map[string]string{"error": "Payment was declined.", "step": "3"})
	case err != nil:
		h.serverError(w, err)
	default:
		respond(w, http.StatusOK, map[string]any{
			"message":        "Appointment booked successfully!",
			"step":           "1",
			"patient_id":     confirmation.PatientID,
			"appointment_id": confirmation.AppointmentID,
		})
	}
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.logger.Error("booking request failed", "error", err)
	respond(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

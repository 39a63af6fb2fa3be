package booking

import (
	"errors"
	"time"
)

// Phase is the explicit position of a session's booking attempt in the
// three-step flow. It travels inside the pending record rather than being
// inferred from which session keys happen to exist.
type Phase string

const (
	PhaseAwaitingOTP     Phase = "awaiting_otp"
	PhaseAwaitingPayment Phase = "awaiting_payment"
)

var (
	// ErrDoctorNotFound rejects step 1 when the chosen doctor does not exist.
	ErrDoctorNotFound = errors.New("booking: doctor not found")
	// ErrNoActiveBooking rejects steps 2 and 3 when the session has no
	// pending booking; the client must restart from step 1.
	ErrNoActiveBooking = errors.New("booking: no booking in progress")
	// ErrBookingExpired rejects step 3 when the pending booking vanished
	// between steps (session expiry); the flow resets to step 1.
	ErrBookingExpired = errors.New("booking: session expired, start over")
	// ErrStepOutOfOrder rejects a step submitted against the wrong phase.
	ErrStepOutOfOrder = errors.New("booking: step out of order")
	// ErrValidation rejects missing or malformed step fields.
	ErrValidation = errors.New("booking: missing required fields")
	// ErrPaymentDeclined surfaces a payment provider rejection.
	ErrPaymentDeclined = errors.New("booking: payment declined")
)

// PendingBooking is the transient state of one in-progress booking attempt.
// It exists only between step 1 and step 3, belongs to exactly one session,
// and is never persisted to the record store until finalized. Two attempts
// racing inside the same session share the single slot; last write wins.
type PendingBooking struct {
	Phase     Phase     `json:"phase"`
	DoctorID  int64     `json:"doctor_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Reason    string    `json:"reason"`
	Contact   string    `json:"contact"`
	StartedAt time.Time `json:"started_at"`
}

// StartInput carries step 1's form fields.
type StartInput struct {
	DoctorID int64
	Date     string
	Time     string
	Reason   string
	Contact  string
}

// PatientDetails names the patient the appointment is for. Blank fields fall
// back to a stand-in identity so a bare confirmation still books.
type PatientDetails struct {
	FirstName   string
	LastName    string
	PatientType string
	RiskLevel   string
}

// Confirmation reports the records created by a completed booking.
type Confirmation struct {
	PatientID     int64 `json:"patient_id"`
	AppointmentID int64 `json:"appointment_id"`
}

package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rup-source226/maa-care-ai/internal/observability/metrics"
	"github.com/Rup-source226/maa-care-ai/internal/otp"
	"github.com/Rup-source226/maa-care-ai/internal/records"
	"github.com/Rup-source226/maa-care-ai/pkg/logging"
)

// RecordStore is the slice of the record store the workflow needs.
type RecordStore interface {
	GetDoctor(ctx context.Context, id int64) (*records.Doctor, error)
	CreatePatient(ctx context.Context, firstName, lastName, patientType, riskLevel string, doctorID *int64) (int64, error)
	CreateAppointment(ctx context.Context, patientID, doctorID int64, date, timeOfDay, reason string) (int64, error)
}

// ChallengeStore issues and verifies the step 2 codes.
type ChallengeStore interface {
	Issue(ctx context.Context, contact string) (string, error)
	Verify(ctx context.Context, contact, code string) error
}

// Workflow drives the three-step booking flow: doctor selection, code
// verification, payment and persistence. All transient state lives in the
// pending store keyed by session, one active booking per session.
type Workflow struct {
	store      RecordStore
	challenges ChallengeStore
	pending    *PendingStore
	payments   PaymentProvider
	deposit    int
	metrics    *metrics.BookingMetrics
	logger     *logging.Logger
}

func NewWorkflow(store RecordStore, challenges ChallengeStore, pending *PendingStore, payments PaymentProvider, depositCents int, m *metrics.BookingMetrics, logger *logging.Logger) *Workflow {
	if logger == nil {
		logger = logging.Default()
	}
	if payments == nil {
		payments = NewFakePaymentProvider(logger)
	}
	return &Workflow{
		store:      store,
		challenges: challenges,
		pending:    pending,
		payments:   payments,
		deposit:    depositCents,
		metrics:    m,
		logger:     logger,
	}
}

// Current returns the session's in-progress booking, nil when none exists.
func (w *Workflow) Current(ctx context.Context, sessionID string) (*PendingBooking, error) {
	return w.pending.Load(ctx, sessionID)
}

// Start handles step 1: validates the doctor, issues a verification code for
// the contact, and parks the booking details in the session's pending slot.
// A failed lookup leaves any existing pending booking untouched.
func (w *Workflow) Start(ctx context.Context, sessionID string, in StartInput) error {
	if in.DoctorID <= 0 || in.Date == "" || in.Time == "" || in.Contact == "" {
		w.metrics.ObserveStep("start", "invalid")
		return ErrValidation
	}

	doctor, err := w.store.GetDoctor(ctx, in.DoctorID)
	if err != nil {
		return fmt.Errorf("booking: look up doctor: %w", err)
	}
	if doctor == nil {
		w.metrics.ObserveStep("start", "doctor_not_found")
		return ErrDoctorNotFound
	}

	if _, err := w.challenges.Issue(ctx, in.Contact); err != nil {
		return fmt.Errorf("booking: issue challenge: %w", err)
	}

	pb := &PendingBooking{
		Phase:     PhaseAwaitingOTP,
		DoctorID:  in.DoctorID,
		Date:      in.Date,
		Time:      in.Time,
		Reason:    in.Reason,
		Contact:   in.Contact,
		StartedAt: time.Now().UTC(),
	}
	if err := w.pending.Save(ctx, sessionID, pb); err != nil {
		return err
	}

	w.metrics.ObserveStep("start", "ok")
	w.logger.Info("booking started",
		"session_id", sessionID,
		"doctor_id", in.DoctorID,
		"date", in.Date,
		"time", in.Time,
	)
	return nil
}

// SubmitCode handles step 2. An invalid code keeps the booking at the OTP
// phase so the client can retry; a valid one advances it to payment.
func (w *Workflow) SubmitCode(ctx context.Context, sessionID, contact, code string) error {
	pb, err := w.pending.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	if pb == nil {
		w.metrics.ObserveStep("verify", "no_booking")
		return ErrNoActiveBooking
	}
	if pb.Phase != PhaseAwaitingOTP {
		w.metrics.ObserveStep("verify", "out_of_order")
		return ErrStepOutOfOrder
	}

	if err := w.challenges.Verify(ctx, contact, code); err != nil {
		if errors.Is(err, otp.ErrInvalidCode) {
			w.metrics.ObserveStep("verify", "invalid_code")
			return err
		}
		return fmt.Errorf("booking: verify challenge: %w", err)
	}

	pb.Phase = PhaseAwaitingPayment
	if err := w.pending.Save(ctx, sessionID, pb); err != nil {
		return err
	}

	w.metrics.ObserveStep("verify", "ok")
	return nil
}

// Confirm handles step 3: captures the deposit, creates the patient and the
// appointment, and clears the pending slot. When the pending booking has
// expired the flow resets to step 1. A crash between the two inserts leaves
// an orphaned patient row; single-statement writes are all this store does.
func (w *Workflow) Confirm(ctx context.Context, sessionID string, patient PatientDetails) (*Confirmation, error) {
	pb, err := w.pending.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if pb == nil {
		w.metrics.ObserveStep("confirm", "expired")
		return nil, ErrBookingExpired
	}
	if pb.Phase != PhaseAwaitingPayment {
		w.metrics.ObserveStep("confirm", "out_of_order")
		return nil, ErrStepOutOfOrder
	}

	if err := w.payments.Charge(ctx, sessionID, w.deposit); err != nil {
		w.metrics.ObserveStep("confirm", "payment_declined")
		return nil, fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
	}

	patient = patient.withDefaults()
	patientID, err := w.store.CreatePatient(ctx, patient.FirstName, patient.LastName, patient.PatientType, patient.RiskLevel, &pb.DoctorID)
	if err != nil {
		return nil, err
	}
	appointmentID, err := w.store.CreateAppointment(ctx, patientID, pb.DoctorID, pb.Date, pb.Time, pb.Reason)
	if err != nil {
		return nil, err
	}

	if err := w.pending.Delete(ctx, sessionID); err != nil {
		// The booking is already durable; a stale pending slot only blocks
		// this session until its TTL, so log and report success.
		w.logger.Error("failed to clear pending booking", "error", err, "session_id", sessionID)
	}

	w.metrics.ObserveStep("confirm", "ok")
	w.logger.Info("booking completed",
		"session_id", sessionID,
		"patient_id", patientID,
		"appointment_id", appointmentID,
		"doctor_id", pb.DoctorID,
	)
	return &Confirmation{PatientID: patientID, AppointmentID: appointmentID}, nil
}

// withDefaults fills blanks with a generic stand-in identity so a bare
// confirmation still books.
func (d PatientDetails) withDefaults() PatientDetails {
	if d.FirstName == "" {
		d.FirstName = "John"
	}
	if d.LastName == "" {
		d.LastName = "Doe"
	}
	if d.PatientType == "" {
		d.PatientType = records.PatientTypeMother
	}
	if d.RiskLevel == "" {
		d.RiskLevel = records.RiskLow
	}
	return d
}

package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rup-source226/maa-care-ai/internal/otp"
	"github.com/Rup-source226/maa-care-ai/internal/records"
	"github.com/Rup-source226/maa-care-ai/pkg/logging"
)

type fakeRecordStore struct {
	doctors      map[int64]*records.Doctor
	patients     []records.Patient
	appointments []records.Appointment
	nextID       int64
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{
		doctors: map[int64]*records.Doctor{
			3: {ID: 3, Name: "Dr. Anjali Gupta", Specialty: "Pediatrics", Location: "Delhi"},
		},
		nextID: 100,
	}
}

func (f *fakeRecordStore) GetDoctor(_ context.Context, id int64) (*records.Doctor, error) {
	return f.doctors[id], nil
}

func (f *fakeRecordStore) CreatePatient(_ context.Context, firstName, lastName, patientType, riskLevel string, doctorID *int64) (int64, error) {
	f.nextID++
	f.patients = append(f.patients, records.Patient{
		ID:          f.nextID,
		FirstName:   firstName,
		LastName:    lastName,
		PatientType: patientType,
		RiskLevel:   riskLevel,
		DoctorID:    doctorID,
	})
	return f.nextID, nil
}

func (f *fakeRecordStore) CreateAppointment(_ context.Context, patientID, doctorID int64, date, timeOfDay, reason string) (int64, error) {
	f.nextID++
	f.appointments = append(f.appointments, records.Appointment{
		ID:        f.nextID,
		PatientID: &patientID,
		DoctorID:  doctorID,
		Date:      date,
		Time:      timeOfDay,
		Reason:    reason,
		Status:    records.AppointmentBooked,
	})
	return f.nextID, nil
}

func newTestWorkflow(t *testing.T) (*Workflow, *fakeRecordStore, *otp.Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := newFakeRecordStore()
	challenges := otp.NewStore(client, otp.Config{TTL: 5 * time.Minute}, nil, nil, logging.Default())
	pending := NewPendingStore(client, time.Hour)
	wf := NewWorkflow(store, challenges, pending, NewFakePaymentProvider(logging.Default()), 50000, nil, logging.Default())
	return wf, store, challenges
}

func validStart() StartInput {
	return StartInput{DoctorID: 3, Date: "2024-02-01", Time: "09:00", Reason: "Checkup", Contact: "5551234"}
}

func TestWorkflowHappyPath(t *testing.T) {
	ctx := context.Background()
	wf, store, challenges := newTestWorkflow(t)

	require.NoError(t, wf.Start(ctx, "sess-1", validStart()))

	pb, err := wf.Current(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, pb)
	assert.Equal(t, PhaseAwaitingOTP, pb.Phase)

	code, err := challenges.Issue(ctx, "5551234")
	require.NoError(t, err)
	require.NoError(t, wf.SubmitCode(ctx, "sess-1", "5551234", code))

	pb, err = wf.Current(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, pb)
	assert.Equal(t, PhaseAwaitingPayment, pb.Phase)

	conf, err := wf.Confirm(ctx, "sess-1", PatientDetails{})
	require.NoError(t, err)
	assert.NotZero(t, conf.PatientID)
	assert.NotZero(t, conf.AppointmentID)

	require.Len(t, store.patients, 1)
	p := store.patients[0]
	assert.Equal(t, "John", p.FirstName)
	assert.Equal(t, "Doe", p.LastName)
	assert.Equal(t, records.PatientTypeMother, p.PatientType)
	assert.Equal(t, records.RiskLow, p.RiskLevel)
	require.NotNil(t, p.DoctorID)
	assert.EqualValues(t, 3, *p.DoctorID)

	require.Len(t, store.appointments, 1)
	a := store.appointments[0]
	require.NotNil(t, a.PatientID)
	assert.Equal(t, conf.PatientID, *a.PatientID)
	assert.EqualValues(t, 3, a.DoctorID)
	assert.Equal(t, "2024-02-01", a.Date)
	assert.Equal(t, "09:00", a.Time)
	assert.Equal(t, "Checkup", a.Reason)
	assert.Equal(t, records.AppointmentBooked, a.Status)

	pb, err = wf.Current(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, pb, "pending booking must be cleared on completion")
}

func TestWorkflowStartValidation(t *testing.T) {
	ctx := context.Background()
	wf, _, _ := newTestWorkflow(t)

	for name, mutate := range map[string]func(*StartInput){
		"missing date":    func(in *StartInput) { in.Date = "" },
		"missing time":    func(in *StartInput) { in.Time = "" },
		"missing contact": func(in *StartInput) { in.Contact = "" },
	} {
		t.Run(name, func(t *testing.T) {
			in := validStart()
			mutate(&in)
			assert.ErrorIs(t, wf.Start(ctx, "sess-v", in), ErrValidation)
		})
	}
}

func TestWorkflowUnknownDoctor(t *testing.T) {
	wf, _, _ := newTestWorkflow(t)
	in := validStart()
	in.DoctorID = 999
	assert.ErrorIs(t, wf.Start(context.Background(), "sess-d", in), ErrDoctorNotFound)
}

func TestWorkflowConfirmWithoutStart(t *testing.T) {
	wf, store, _ := newTestWorkflow(t)

	_, err := wf.Confirm(context.Background(), "cold-session", PatientDetails{})
	assert.ErrorIs(t, err, ErrBookingExpired)
	assert.Empty(t, store.patients)
	assert.Empty(t, store.appointments)
}

func TestWorkflowSubmitCodeWithoutStart(t *testing.T) {
	wf, _, _ := newTestWorkflow(t)
	err := wf.SubmitCode(context.Background(), "cold-session", "5551234", "123456")
	assert.ErrorIs(t, err, ErrNoActiveBooking)
}

func TestWorkflowStepOutOfOrder(t *testing.T) {
	ctx := context.Background()
	wf, _, challenges := newTestWorkflow(t)

	require.NoError(t, wf.Start(ctx, "sess-o", validStart()))

	// Payment before the OTP was verified.
	_, err := wf.Confirm(ctx, "sess-o", PatientDetails{})
	assert.ErrorIs(t, err, ErrStepOutOfOrder)

	code, err := challenges.Issue(ctx, "5551234")
	require.NoError(t, err)
	require.NoError(t, wf.SubmitCode(ctx, "sess-o", "5551234", code))

	// Second OTP submission after the phase already advanced.
	err = wf.SubmitCode(ctx, "sess-o", "5551234", code)
	assert.ErrorIs(t, err, ErrStepOutOfOrder)
}

func TestWorkflowInvalidCode(t *testing.T) {
	ctx := context.Background()
	wf, _, _ := newTestWorkflow(t)

	require.NoError(t, wf.Start(ctx, "sess-i", validStart()))
	err := wf.SubmitCode(ctx, "sess-i", "5551234", "000000")
	assert.ErrorIs(t, err, otp.ErrInvalidCode)

	// The booking stays at the OTP phase so the caller may retry.
	pb, err := wf.Current(ctx, "sess-i")
	require.NoError(t, err)
	require.NotNil(t, pb)
	assert.Equal(t, PhaseAwaitingOTP, pb.Phase)
}

type decliningPayments struct{}

func (decliningPayments) Charge(context.Context, string, int) error {
	return errors.New("card declined")
}

func TestWorkflowPaymentDeclined(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := newFakeRecordStore()
	challenges := otp.NewStore(client, otp.Config{TTL: 5 * time.Minute}, nil, nil, logging.Default())
	pending := NewPendingStore(client, time.Hour)
	wf := NewWorkflow(store, challenges, pending, decliningPayments{}, 50000, nil, logging.Default())

	require.NoError(t, wf.Start(ctx, "sess-p", validStart()))
	code, err := challenges.Issue(ctx, "5551234")
	require.NoError(t, err)
	require.NoError(t, wf.SubmitCode(ctx, "sess-p", "5551234", code))

	_, err = wf.Confirm(ctx, "sess-p", PatientDetails{})
	assert.ErrorIs(t, err, ErrPaymentDeclined)
	assert.Empty(t, store.patients)

	// The pending booking survives a declined charge.
	pb, err := wf.Current(ctx, "sess-p")
	require.NoError(t, err)
	require.NotNil(t, pb)
	assert.Equal(t, PhaseAwaitingPayment, pb.Phase)
}

func TestWorkflowSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	wf, _, _ := newTestWorkflow(t)

	require.NoError(t, wf.Start(ctx, "sess-a", validStart()))

	err := wf.SubmitCode(ctx, "sess-b", "5551234", "123456")
	assert.ErrorIs(t, err, ErrNoActiveBooking)
}

package records

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func doctorColumns() []string {
	return []string{"id", "name", "specialty", "location", "experience", "photo"}
}

func TestListDoctorsUnfiltered(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(doctorColumns()).
		AddRow(1, "Dr. Sarah Johnson", "Obstetrics & Gynecology", "New York", 10, "doctor1.jpg").
		AddRow(2, "Dr. Michael Chen", "Pediatrics", "Los Angeles", 8, "doctor2.jpg")
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, name, specialty, location, experience, COALESCE(photo, '') FROM doctors ORDER BY id`)).
		WillReturnRows(rows)

	doctors, err := repo.ListDoctors(context.Background(), DoctorFilter{})
	require.NoError(t, err)
	require.Len(t, doctors, 2)
	assert.Equal(t, int64(1), doctors[0].ID)
	assert.Equal(t, "Pediatrics", doctors[1].Specialty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDoctorsComposedFilters(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, name, specialty, location, experience, COALESCE(photo, '') FROM doctors`+
			` WHERE (name ILIKE $1 OR specialty ILIKE $1) AND specialty = $2 AND location = $3 ORDER BY id`)).
		WithArgs("%davis%", "Maternal-Fetal Medicine", "Chicago").
		WillReturnRows(sqlmock.NewRows(doctorColumns()).
			AddRow(3, "Dr. Emily Davis", "Maternal-Fetal Medicine", "Chicago", 12, "doctor3.jpg"))

	doctors, err := repo.ListDoctors(context.Background(), DoctorFilter{
		Text:      "davis",
		Specialty: "Maternal-Fetal Medicine",
		Location:  "Chicago",
	})
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Dr. Emily Davis", doctors[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDoctorsEmptyResultIsNotAnError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, name, specialty").
		WillReturnRows(sqlmock.NewRows(doctorColumns()))

	doctors, err := repo.ListDoctors(context.Background(), DoctorFilter{Text: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, doctors)
	assert.NotNil(t, doctors)
}

func TestGetDoctorMissReturnsNil(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, name, specialty").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(doctorColumns()))

	doctor, err := repo.GetDoctor(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, doctor)
}

func TestGetDoctorFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, name, specialty").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(doctorColumns()).
			AddRow(3, "Dr. Emily Davis", "Maternal-Fetal Medicine", "Chicago", 12, ""))

	doctor, err := repo.GetDoctor(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, doctor)
	assert.Equal(t, "Dr. Emily Davis", doctor.Name)
}

func TestCreatePatientReturnsGeneratedID(t *testing.T) {
	repo, mock := newMockRepo(t)

	doctorID := int64(3)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO patients`)).
		WithArgs("John", "Doe", PatientTypeMother, RiskLow, doctorID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(19))

	id, err := repo.CreatePatient(context.Background(), "John", "Doe", PatientTypeMother, RiskLow, &doctorID)
	require.NoError(t, err)
	assert.Equal(t, int64(19), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAppointmentDefaultsToBooked(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO appointments`)).
		WithArgs(int64(19), int64(3), "2024-02-01", "09:00", "Checkup", AppointmentBooked).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))

	id, err := repo.CreateAppointment(context.Background(), 19, 3, "2024-02-01", "09:00", "Checkup")
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentPatientsUnassignedFallback(t *testing.T) {
	repo, mock := newMockRepo(t)

	created := time.Date(2024, 1, 30, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "patient_type", "risk_level", "name", "created_at"}).
		AddRow(19, "Jane", "Doe", "Mother", "Low Risk", "Unassigned", created).
		AddRow(1, "Sarah", "Connor", "Mother", "High Risk", "Dr. Sarah Johnson", created.Add(-time.Hour))
	mock.ExpectQuery("SELECT p.id, p.first_name").
		WithArgs(10).
		WillReturnRows(rows)

	patients, err := repo.ListRecentPatients(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.Equal(t, "Unassigned", patients[0].DoctorName)
	assert.Equal(t, "Dr. Sarah Johnson", patients[1].DoctorName)
}

func TestDashboardStatsSeededCounts(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT").
		WithArgs(PatientTypeMother, RiskHigh).
		WillReturnRows(sqlmock.NewRows([]string{"mothers", "high", "total"}).AddRow(9, 4, 18))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM appointments`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	stats, err := repo.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, stats.TotalMothers)
	// Only the exact 'High Risk' label counts; the seed's short forms do not.
	assert.Equal(t, 4, stats.HighRisk)
	assert.Equal(t, 18, stats.Monitored)
	assert.Equal(t, 7, stats.TotalReports)
}

func TestRiskDistributionZeroFillsCanonicalLabels(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"risk_level", "count"}).
		AddRow("High Risk", 4).
		AddRow("Normal", 7).
		AddRow("Moderate", 4).
		AddRow("Low Risk", 5)
	mock.ExpectQuery("SELECT risk_level, COUNT").WillReturnRows(rows)

	dist, err := repo.RiskDistribution(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, dist[RiskHigh])
	assert.Equal(t, 5, dist[RiskLow])
	assert.Equal(t, 0, dist[RiskModerate], "canonical label present even when unused")
	assert.Equal(t, 7, dist["Normal"], "stored labels are reported as-is")
	assert.Equal(t, 4, dist["Moderate"])
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("maya", "$2a$10$hash", "5551234", "", "").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := repo.CreateUser(context.Background(), "maya", "$2a$10$hash", "5551234", "", "")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestCreateUserSuccess(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("maya", "$2a$10$hash", "5551234", "", "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	id, err := repo.CreateUser(context.Background(), "maya", "$2a$10$hash", "5551234", "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestGetUserByUsernameMiss(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, username, password_hash").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "mobile", "external_id", "name"}))

	user, err := repo.GetUserByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUpdateUserPartialFieldsOnly(t *testing.T) {
	repo, mock := newMockRepo(t)

	mobile := "5559999"
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET mobile = $1 WHERE username = $2`)).
		WithArgs(mobile, "maya").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateUser(context.Background(), "maya", UserUpdate{Mobile: &mobile})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserEmptyUpdateIsNoop(t *testing.T) {
	repo, mock := newMockRepo(t)

	err := repo.UpdateUser(context.Background(), "maya", UserUpdate{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

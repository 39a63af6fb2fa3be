package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUsernameTaken is returned by CreateUser when the username column's
// uniqueness constraint rejects the insert.
var ErrUsernameTaken = errors.New("records: username already exists")

const pgUniqueViolation = "23505"

// Repository provides CRUD access to doctors, patients, appointments and
// users. Every write is a single statement; there is no multi-statement
// transaction here, so a crash between the patient and appointment inserts
// of a booking leaves an orphaned patient row (known gap, accepted).
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListDoctors returns doctors in insertion (id) order, optionally narrowed
// by the filter. An empty result is not an error.
func (r *Repository) ListDoctors(ctx context.Context, f DoctorFilter) ([]Doctor, error) {
	query := `SELECT id, name, specialty, location, experience, COALESCE(photo, '') FROM doctors`
	var (
		conds []string
		args  []any
	)
	if f.Text != "" {
		args = append(args, "%"+f.Text+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR specialty ILIKE $%d)", n, n))
	}
	if f.Specialty != "" {
		args = append(args, f.Specialty)
		conds = append(conds, fmt.Sprintf("specialty = $%d", len(args)))
	}
	if f.Location != "" {
		args = append(args, f.Location)
		conds = append(conds, fmt.Sprintf("location = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("records: list doctors: %w", err)
	}
	defer rows.Close()

	out := []Doctor{}
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialty, &d.Location, &d.Experience, &d.Photo); err != nil {
			return nil, fmt.Errorf("records: scan doctor: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDoctor returns (nil, nil) when no doctor has the given id.
func (r *Repository) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	var d Doctor
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, specialty, location, experience, COALESCE(photo, '') FROM doctors WHERE id = $1`,
		id).Scan(&d.ID, &d.Name, &d.Specialty, &d.Location, &d.Experience, &d.Photo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("records: get doctor %d: %w", id, err)
	}
	return &d, nil
}

func (r *Repository) ListSpecialties(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT specialty FROM doctors ORDER BY specialty`)
}

func (r *Repository) ListLocations(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT location FROM doctors ORDER BY location`)
}

func (r *Repository) distinct(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("records: distinct values: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("records: scan value: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreatePatient inserts a patient and returns the generated id. doctorID may
// be nil; existence of a referenced doctor is the caller's concern.
func (r *Repository) CreatePatient(ctx context.Context, firstName, lastName, patientType, riskLevel string, doctorID *int64) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO patients (first_name, last_name, patient_type, risk_level, doctor_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		firstName, lastName, patientType, riskLevel, doctorID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("records: create patient: %w", err)
	}
	return id, nil
}

// CreateAppointment inserts an appointment with status Booked and returns the
// generated id.
func (r *Repository) CreateAppointment(ctx context.Context, patientID, doctorID int64, date, timeOfDay, reason string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO appointments (patient_id, doctor_id, date, time, reason, status)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		patientID, doctorID, date, timeOfDay, reason, AppointmentBooked).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("records: create appointment: %w", err)
	}
	return id, nil
}

// ListRecentPatients returns the newest patients first, each joined with its
// doctor's display name, "Unassigned" when no doctor is linked.
func (r *Repository) ListRecentPatients(ctx context.Context, limit int) ([]PatientSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.first_name, p.last_name, p.patient_type, p.risk_level,
		        COALESCE(d.name, 'Unassigned'), p.created_at
		 FROM patients p
		 LEFT JOIN doctors d ON p.doctor_id = d.id
		 ORDER BY p.created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("records: list recent patients: %w", err)
	}
	defer rows.Close()

	out := []PatientSummary{}
	for rows.Next() {
		var p PatientSummary
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.PatientType, &p.RiskLevel, &p.DoctorName, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("records: scan patient summary: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DashboardStats aggregates the dashboard headline counts. HighRisk counts
// only rows whose risk_level is exactly the 'High Risk' label; short-form
// seed labels are deliberately not folded in.
func (r *Repository) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var s DashboardStats
	err := r.db.QueryRowContext(ctx,
		`SELECT
		   COUNT(*) FILTER (WHERE patient_type = $1),
		   COUNT(*) FILTER (WHERE risk_level = $2),
		   COUNT(*)
		 FROM patients`,
		PatientTypeMother, RiskHigh).Scan(&s.TotalMothers, &s.HighRisk, &s.Monitored)
	if err != nil {
		return nil, fmt.Errorf("records: dashboard stats: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&s.TotalReports); err != nil {
		return nil, fmt.Errorf("records: dashboard stats: %w", err)
	}
	return &s, nil
}

// RiskDistribution counts patients per stored risk label. The three canonical
// labels are always present, zero when unused; any other stored label appears
// with its own count.
func (r *Repository) RiskDistribution(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT risk_level, COUNT(*) FROM patients GROUP BY risk_level`)
	if err != nil {
		return nil, fmt.Errorf("records: risk distribution: %w", err)
	}
	defer rows.Close()

	dist := map[string]int{RiskLow: 0, RiskModerate: 0, RiskHigh: 0}
	for rows.Next() {
		var (
			label string
			count int
		)
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("records: scan distribution: %w", err)
		}
		dist[label] = count
	}
	return dist, rows.Err()
}

// RegistrationTrends buckets patient registrations by calendar month.
func (r *Repository) RegistrationTrends(ctx context.Context) ([]TrendPoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, COUNT(*)
		 FROM patients
		 GROUP BY month
		 ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("records: registration trends: %w", err)
	}
	defer rows.Close()

	out := []TrendPoint{}
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Label, &p.Count); err != nil {
			return nil, fmt.Errorf("records: scan trend point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateUser inserts a user and returns the generated id, or ErrUsernameTaken
// when the username is already registered.
func (r *Repository) CreateUser(ctx context.Context, username, passwordHash, mobile, externalID, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, mobile, external_id, name)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, '')) RETURNING id`,
		username, passwordHash, mobile, externalID, name).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("records: create user: %w", err)
	}
	return id, nil
}

// GetUserByUsername returns (nil, nil) when no user matches.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return r.getUser(ctx,
		`SELECT id, username, password_hash, mobile, COALESCE(external_id, ''), COALESCE(name, '')
		 FROM users WHERE username = $1`, username)
}

// GetUserByExternalID returns (nil, nil) when no user carries the external
// identity subject id.
func (r *Repository) GetUserByExternalID(ctx context.Context, externalID string) (*User, error) {
	return r.getUser(ctx,
		`SELECT id, username, password_hash, mobile, COALESCE(external_id, ''), COALESCE(name, '')
		 FROM users WHERE external_id = $1`, externalID)
}

func (r *Repository) getUser(ctx context.Context, query, arg string) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Mobile, &u.ExternalID, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("records: get user: %w", err)
	}
	return &u, nil
}

// UpdateUser rewrites only the supplied fields of the named user. A fully
// empty update is a no-op.
func (r *Repository) UpdateUser(ctx context.Context, username string, upd UserUpdate) error {
	var (
		sets []string
		args []any
	)
	if upd.Mobile != nil {
		args = append(args, *upd.Mobile)
		sets = append(sets, fmt.Sprintf("mobile = $%d", len(args)))
	}
	if upd.ExternalID != nil {
		args = append(args, *upd.ExternalID)
		sets = append(sets, fmt.Sprintf("external_id = $%d", len(args)))
	}
	if upd.Name != nil {
		args = append(args, *upd.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, username)
	query := fmt.Sprintf("UPDATE users SET %s WHERE username = $%d", strings.Join(sets, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("records: update user: %w", err)
	}
	return nil
}

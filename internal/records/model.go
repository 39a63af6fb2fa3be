package records

import "time"

// Patient type labels used throughout the portal.
const (
	PatientTypeMother = "Mother"
	PatientTypeChild  = "Child"
)

// Canonical risk level labels. Seed data predates this vocabulary and also
// contains 'Moderate' and 'Normal'; RiskDistribution reports whatever is
// stored instead of normalizing.
const (
	RiskLow      = "Low Risk"
	RiskModerate = "Moderate Risk"
	RiskHigh     = "High Risk"
)

// AppointmentBooked is the status assigned to newly created appointments.
// The status column is an open set ('Completed', 'Scheduled', 'Cancelled'
// also appear in seed data).
const AppointmentBooked = "Booked"

type Doctor struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Specialty  string `json:"specialty"`
	Location   string `json:"location"`
	Experience int    `json:"experience"`
	Photo      string `json:"photo,omitempty"`
}

type Patient struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PatientType string    `json:"patient_type"`
	RiskLevel   string    `json:"risk_level"`
	DoctorID    *int64    `json:"doctor_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PatientSummary is a patient row joined with its doctor's display name for
// the dashboard's recent-patients listing.
type PatientSummary struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PatientType string    `json:"patient_type"`
	RiskLevel   string    `json:"risk_level"`
	DoctorName  string    `json:"doctor_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type Appointment struct {
	ID        int64     `json:"id"`
	PatientID *int64    `json:"patient_id,omitempty"`
	DoctorID  int64     `json:"doctor_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Reason    string    `json:"reason,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Mobile       string `json:"mobile"`
	ExternalID   string `json:"-"`
	Name         string `json:"name,omitempty"`
}

// DoctorFilter narrows ListDoctors. Zero-value fields are ignored; supplied
// fields compose with AND. Text matches name or specialty case-insensitively.
type DoctorFilter struct {
	Text      string
	Specialty string
	Location  string
}

// DashboardStats mirrors the portal dashboard's headline numbers.
type DashboardStats struct {
	TotalMothers int `json:"total_mothers"`
	HighRisk     int `json:"high_risk"`
	Monitored    int `json:"monitored"`
	TotalReports int `json:"total_reports"`
}

// TrendPoint is one month bucket in the registration trend series.
type TrendPoint struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// UserUpdate carries the optional fields of a partial user update. Nil
// pointers leave the corresponding column untouched.
type UserUpdate struct {
	Mobile     *string
	ExternalID *string
	Name       *string
}

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Rup-source226/maa-care-ai/internal/records"
	"github.com/Rup-source226/maa-care-ai/pkg/logging"
)

const defaultRecentPatients = 10

// StatsSource is the slice of the record store the dashboard reads.
type StatsSource interface {
	DashboardStats(ctx context.Context) (*records.DashboardStats, error)
	ListRecentPatients(ctx context.Context, limit int) ([]records.PatientSummary, error)
	RiskDistribution(ctx context.Context) (map[string]int, error)
	RegistrationTrends(ctx context.Context) ([]records.TrendPoint, error)
}

// Dashboard serves the /api/dashboard read-only endpoints.
type Dashboard struct {
	source StatsSource
	logger *logging.Logger
}

func NewDashboard(source StatsSource, logger *logging.Logger) *Dashboard {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dashboard{source: source, logger: logger}
}

// Stats serves the headline numbers.
func (d *Dashboard) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := d.source.DashboardStats(r.Context())
	if err != nil {
		d.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Patients serves the most recent patients, newest first. The limit query
// parameter caps the page; it defaults to 10.
func (d *Dashboard) Patients(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentPatients
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive number"})
			return
		}
		limit = n
	}

	patients, err := d.source.ListRecentPatients(r.Context(), limit)
	if err != nil {
		d.serverError(w, err)
		return
	}
	if patients == nil {
		patients = []records.PatientSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"patients": patients})
}

// RiskDistribution serves patient counts per stored risk label.
func (d *Dashboard) RiskDistribution(w http.ResponseWriter, r *http.Request) {
	dist, err := d.source.RiskDistribution(r.Context())
	if err != nil {
		d.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dist)
}

// RegistrationTrends serves the monthly registration series.
func (d *Dashboard) RegistrationTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := d.source.RegistrationTrends(r.Context())
	if err != nil {
		d.serverError(w, err)
		return
	}
	if trends == nil {
		trends = []records.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"trends": trends})
}

func (d *Dashboard) serverError(w http.ResponseWriter, err error) {
	d.logger.Error("dashboard request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

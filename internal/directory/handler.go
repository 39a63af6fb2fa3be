package directory

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Rup-source226/maa-care-ai/internal/records"
	"github.com/Rup-source226/maa-care-ai/pkg/logging"
)

// Handler serves GET /doctors and GET /doctor/{id}.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// List serves the filtered directory. Filters arrive as query parameters:
// search (name or specialty substring), specialty and location (exact).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	f := records.DoctorFilter{
		Text:      strings.TrimSpace(r.URL.Query().Get("search")),
		Specialty: strings.TrimSpace(r.URL.Query().Get("specialty")),
		Location:  strings.TrimSpace(r.URL.Query().Get("location")),
	}

	listing, err := h.service.Browse(r.Context(), f)
	if err != nil {
		h.logger.Error("doctor listing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// Profile serves one doctor by path id.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid doctor id"})
		return
	}

	doctor, err := h.service.Profile(r.Context(), id)
	if err != nil {
		h.logger.Error("doctor lookup failed", "error", err, "doctor_id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if doctor == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Doctor not found."})
		return
	}
	writeJSON(w, http.StatusOK, doctor)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

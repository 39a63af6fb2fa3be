package risk

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Rup-source226/maa-care-ai/pkg/logging"
)

// Handler serves POST /api/risk/maternal and POST /api/risk/child.
type Handler struct {
	predictor Predictor
	logger    *logging.Logger
}

func NewHandler(predictor Predictor, logger *logging.Logger) *Handler {
	if predictor == nil {
		predictor = Heuristic{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{predictor: predictor, logger: logger}
}

type maternalRequest struct {
	Age        string `json:"age"`
	BMI        string `json:"bmi"`
	BP         string `json:"bp"`
	Hemoglobin string `json:"hb"`
	BloodSugar string `json:"sugar"`
}

// Maternal scores a maternal vitals panel. All five fields are required;
// blood pressure accepts either a bare systolic value or "120/80" form.
func (h *Handler) Maternal(w http.ResponseWriter, r *http.Request) {
	var in maternalRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	for _, field := range []string{in.Age, in.BMI, in.BP, in.Hemoglobin, in.BloodSugar} {
		if strings.TrimSpace(field) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "All fields are required."})
			return
		}
	}

	age, err1 := parseNumber(in.Age)
	bmi, err2 := parseNumber(in.BMI)
	bp, err3 := parseBP(in.BP)
	hb, err4 := parseNumber(in.Hemoglobin)
	sugar, err5 := parseNumber(in.BloodSugar)
	for _, err := range []error{err1, err2, err3, err4, err5} {
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid input. Please enter numeric values."})
			return
		}
	}

	result, err := h.predictor.Maternal(r.Context(), MaternalInput{
		Age:        age,
		BMI:        bmi,
		SystolicBP: bp,
		Hemoglobin: hb,
		BloodSugar: sugar,
	})
	if err != nil {
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

type childRequest struct {
	Age    string `json:"age"`
	Height string `json:"height"`
	Weight string `json:"weight"`
	Gender string `json:"gender"`
}

// Child classifies a child's growth from age, height and weight.
func (h *Handler) Child(w http.ResponseWriter, r *http.Request) {
	var in childRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	age, err1 := parseNumber(in.Age)
	height, err2 := parseNumber(in.Height)
	weight, err3 := parseNumber(in.Weight)
	for _, err := range []error{err1, err2, err3} {
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid input. Please enter numeric values."})
			return
		}
	}
	if height <= 0 || weight <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "height and weight must be positive"})
		return
	}

	status, err := h.predictor.Child(r.Context(), ChildInput{
		Age:    age,
		Height: height,
		Weight: weight,
		Gender: strings.TrimSpace(in.Gender),
	})
	if err != nil {
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func parseNumber(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

// parseBP reads "120/80" style readings as their systolic component.
func parseBP(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if systolic, _, found := strings.Cut(raw, "/"); found {
		return parseNumber(systolic)
	}
	return parseNumber(raw)
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.logger.Error("risk assessment failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

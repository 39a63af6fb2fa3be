package risk

import "context"

// Growth status labels for child assessments.
const (
	StatusUnderweight = "Underweight"
	StatusNormal      = "Normal"
	StatusOverweight  = "Overweight"
)

// MaternalInput is the vitals panel a maternal assessment runs on. BP is the
// systolic reading; "120/80" style input is split upstream.
type MaternalInput struct {
	Age        float64
	BMI        float64
	SystolicBP float64
	Hemoglobin float64
	BloodSugar float64
}

// ChildInput is the measurements panel for a child growth assessment.
type ChildInput struct {
	Age    float64
	Height float64 // cm
	Weight float64 // kg
	Gender string
}

// Predictor scores assessments. A trained model can sit behind this; the
// shipped implementation is the heuristic the portal falls back on when no
// model is loaded.
type Predictor interface {
	Maternal(ctx context.Context, in MaternalInput) (string, error)
	Child(ctx context.Context, in ChildInput) (string, error)
}

// Heuristic is the rule-based fallback predictor.
type Heuristic struct{}

// Maternal flags pregnancies at or past 30 as high risk.
func (Heuristic) Maternal(_ context.Context, in MaternalInput) (string, error) {
	if in.Age < 30 {
		return "Low Risk", nil
	}
	return "High Risk", nil
}

// Child classifies growth by BMI computed from height and weight.
func (Heuristic) Child(_ context.Context, in ChildInput) (string, error) {
	meters := in.Height / 100
	bmi := in.Weight / (meters * meters)
	switch {
	case bmi < 18.5:
		return StatusUnderweight, nil
	case bmi < 25:
		return StatusNormal, nil
	default:
		return StatusOverweight, nil
	}
}

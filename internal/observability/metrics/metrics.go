package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the booking funnel and OTP traffic.
type BookingMetrics struct {
	bookingSteps *prometheus.CounterVec
	otpIssued    prometheus.Counter
	otpVerified  *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "maacare",
			Subsystem: "booking",
			Name:      "steps_total",
			Help:      "Booking workflow step transitions",
		}, []string{"step", "status"}),
		otpIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "maacare",
			Subsystem: "otp",
			Name:      "issued_total",
			Help:      "Verification codes issued",
		}),
		otpVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "maacare",
			Subsystem: "otp",
			Name:      "verify_total",
			Help:      "Verification attempts by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingSteps, m.otpIssued, m.otpVerified)
	return m
}

// ObserveStep records one workflow step transition outcome.
func (m *BookingMetrics) ObserveStep(step, status string) {
	if m == nil {
		return
	}
	m.bookingSteps.WithLabelValues(step, status).Inc()
}

// ObserveOTPIssued records a code issue.
func (m *BookingMetrics) ObserveOTPIssued() {
	if m == nil {
		return
	}
	m.otpIssued.Inc()
}

// ObserveOTPVerify records a verification attempt outcome ("ok", "invalid").
func (m *BookingMetrics) ObserveOTPVerify(outcome string) {
	if m == nil {
		return
	}
	m.otpVerified.WithLabelValues(outcome).Inc()
}

package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Rup-source226/maa-care-ai/internal/booking"
	"github.com/Rup-source226/maa-care-ai/internal/chat"
	"github.com/Rup-source226/maa-care-ai/internal/directory"
	"github.com/Rup-source226/maa-care-ai/internal/http/handlers"
	httpmiddleware "github.com/Rup-source226/maa-care-ai/internal/http/middleware"
	"github.com/Rup-source226/maa-care-ai/internal/otp"
	"github.com/Rup-source226/maa-care-ai/internal/risk"
	"github.com/Rup-source226/maa-care-ai/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Sessions           *httpmiddleware.Sessions
	Auth               *handlers.Auth
	Dashboard          *handlers.Dashboard
	Directory          *directory.Handler
	Booking            *booking.Handler
	OTP                *otp.Handler
	Chat               *chat.Handler
	Risk               *risk.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates the Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.Auth != nil {
			public.Route("/api/auth", func(r chi.Router) {
				r.Post("/signup", cfg.Auth.Signup)
				r.Post("/login", cfg.Auth.Login)
				r.Post("/logout", cfg.Auth.Logout)
				r.Post("/external", cfg.Auth.External)
			})
		}
	})

	// Everything else needs a session.
	r.Group(func(private chi.Router) {
		private.Use(cfg.Sessions.Require)

		if cfg.Directory != nil {
			private.Get("/doctors", cfg.Directory.List)
			private.Get("/doctor/{id}", cfg.Directory.Profile)
		}
		if cfg.Booking != nil {
			private.Get("/appointments", cfg.Booking.Get)
			private.Post("/appointments", cfg.Booking.Post)
		}
		if cfg.OTP != nil {
			private.Post("/send_otp", cfg.OTP.Send)
			private.Post("/verify_otp", cfg.OTP.Verify)
		}
		if cfg.Dashboard != nil {
			private.Route("/api/dashboard", func(r chi.Router) {
				r.Get("/stats", cfg.Dashboard.Stats)
				r.Get("/patients", cfg.Dashboard.Patients)
				r.Get("/risk-distribution", cfg.Dashboard.RiskDistribution)
				r.Get("/registration-trends", cfg.Dashboard.RegistrationTrends)
			})
		}
		if cfg.Auth != nil {
			private.Get("/api/profile", cfg.Auth.Profile)
			private.Put("/api/profile", cfg.Auth.UpdateProfile)
		}
		if cfg.Chat != nil {
			private.Post("/chat", cfg.Chat.Message)
			private.Get("/chat/ws", cfg.Chat.Socket)
		}
		if cfg.Risk != nil {
			private.Route("/api/risk", func(r chi.Router) {
				r.Post("/maternal", cfg.Risk.Maternal)
				r.Post("/child", cfg.Risk.Child)
			})
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Rup-source226/maa-care-ai/internal/api/router"
	"github.com/Rup-source226/maa-care-ai/internal/booking"
	"github.com/Rup-source226/maa-care-ai/internal/chat"
	appconfig "github.com/Rup-source226/maa-care-ai/internal/config"
	"github.com/Rup-source226/maa-care-ai/internal/directory"
	"github.com/Rup-source226/maa-care-ai/internal/http/handlers"
	httpmiddleware "github.com/Rup-source226/maa-care-ai/internal/http/middleware"
	"github.com/Rup-source226/maa-care-ai/internal/notify"
	"github.com/Rup-source226/maa-care-ai/internal/observability/metrics"
	"github.com/Rup-source226/maa-care-ai/internal/otp"
	"github.com/Rup-source226/maa-care-ai/internal/records"
	"github.com/Rup-source226/maa-care-ai/internal/risk"
	appmigrations "github.com/Rup-source226/maa-care-ai/migrations"
	"github.com/Rup-source226/maa-care-ai/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting maa-care API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.SessionSecret == "" {
		logger.Error("SESSION_SECRET is required")
		os.Exit(1)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	if err := db.Ping(); err != nil {
		logger.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	if err := appmigrations.Up(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	repo := records.NewRepository(db)
	if err := repo.Seed(context.Background()); err != nil {
		logger.Error("failed to seed records", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("failed to reach redis", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bookingMetrics := metrics.NewBookingMetrics(registry)

	sessions := httpmiddleware.NewSessions(cfg.SessionSecret, cfg.SessionCookieName, cfg.SessionTTL, cfg.Env == "production")

	otpStore := otp.NewStore(redisClient, otp.Config{TTL: cfg.OTPTTL, Length: cfg.OTPLength}, otpDelivery(cfg, logger), bookingMetrics, logger)
	pendingStore := booking.NewPendingStore(redisClient, cfg.SessionTTL)

	var payments booking.PaymentProvider
	if cfg.AllowFakePayments {
		payments = booking.NewFakePaymentProvider(logger)
	} else {
		logger.Error("no payment provider configured and fake payments are disabled")
		os.Exit(1)
	}

	workflow := booking.NewWorkflow(repo, otpStore, pendingStore, payments, cfg.DepositAmountCents, bookingMetrics, logger)

	var chatHandler *chat.Handler
	if cfg.OpenAIAPIKey != "" {
		chatService := chat.NewService(openai.NewClient(cfg.OpenAIAPIKey), redisClient, cfg.ChatModel, cfg.ChatHistTTL, logger)
		chatHandler = chat.NewHandler(chatService, logger)
	} else {
		logger.Warn("OPENAI_API_KEY not set; chat endpoints disabled")
	}

	routerCfg := &router.Config{
		Logger:             logger,
		Sessions:           sessions,
		Auth:               handlers.NewAuth(repo, sessions, nil, logger),
		Dashboard:          handlers.NewDashboard(repo, logger),
		Directory:          directory.NewHandler(directory.NewService(repo), logger),
		Booking:            booking.NewHandler(workflow, logger),
		OTP:                otp.NewHandler(otpStore, cfg.OTPEchoCodes, logger),
		Chat:               chatHandler,
		Risk:               risk.NewHandler(risk.Heuristic{}, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// otpDelivery picks the verification-code channel from config: SendGrid, SES,
// or log-only when neither is configured.
func otpDelivery(cfg *appconfig.Config, logger *logging.Logger) otp.Delivery {
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return otp.NewEmailDelivery(sender)
		}
		logger.Warn("sendgrid selected but SENDGRID_API_KEY is empty; falling back to log delivery")
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Warn("failed to load AWS config; falling back to log delivery", "error", err)
			break
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender != nil {
			return otp.NewEmailDelivery(sender)
		}
	}
	return otp.NewLogDelivery(logger)
}

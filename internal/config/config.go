package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Session cookie settings. The JWT secret signs the session cookie that
	// carries the principal and the per-browser session id.
	SessionSecret     string
	SessionCookieName string
	SessionTTL        time.Duration

	// OTP challenge policy. Zero OTP_TTL keeps codes until verified or
	// replaced.
	OTPTTL       time.Duration
	OTPLength    int
	OTPEchoCodes bool

	// Booking
	AllowFakePayments  bool
	DepositAmountCents int

	// Chat assistant
	OpenAIAPIKey string
	ChatModel    string
	ChatHistTTL  time.Duration

	// OTP delivery email (optional; log-only delivery when unset)
	EmailProvider     string
	SendGridAPIKey    string
	SESFromEmail      string
	SESFromName       string
	AWSRegion         string
	SendGridFromEmail string
	SendGridFromName  string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		SessionSecret:     getEnv("SESSION_SECRET", ""),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "maacare_session"),
		SessionTTL:        getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		OTPTTL:       getEnvAsDuration("OTP_TTL", 5*time.Minute),
		OTPLength:    getEnvAsInt("OTP_LENGTH", 6),
		OTPEchoCodes: getEnvAsBool("OTP_ECHO_CODES", false),

		AllowFakePayments:  getEnvAsBool("ALLOW_FAKE_PAYMENTS", true),
		DepositAmountCents: getEnvAsInt("DEPOSIT_AMOUNT_CENTS", 0),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		ChatModel:    getEnv("CHAT_MODEL", "gpt-4o-mini"),
		ChatHistTTL:  getEnvAsDuration("CHAT_HISTORY_TTL", 24*time.Hour),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", ""))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Maa Care"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Maa Care"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS"),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(raw); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

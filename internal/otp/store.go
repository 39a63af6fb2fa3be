package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rup-source226/maa-care-ai/internal/observability/metrics"
	"github.com/Rup-source226/maa-care-ai/pkg/logging"
)

// ErrInvalidCode is returned by Verify when no pending code exists for the
// contact or the supplied code does not match. The pending code, if any,
// stays untouched so the caller may retry.
var ErrInvalidCode = errors.New("otp: invalid code")

const defaultCodeLength = 6

// Store issues and verifies single-use verification codes keyed by contact
// identifier. Codes live in Redis under a configurable TTL; a zero TTL keeps
// a code until it is verified or overwritten.
type Store struct {
	redis    *redis.Client
	ttl      time.Duration
	length   int
	delivery Delivery
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	tracer   trace.Tracer
}

// Config controls code shape and lifetime.
type Config struct {
	TTL    time.Duration
	Length int
}

func NewStore(redisClient *redis.Client, cfg Config, delivery Delivery, m *metrics.BookingMetrics, logger *logging.Logger) *Store {
	if redisClient == nil {
		panic("otp: redis client cannot be nil")
	}
	if cfg.Length <= 0 {
		cfg.Length = defaultCodeLength
	}
	if delivery == nil {
		delivery = NewLogDelivery(logger)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		redis:    redisClient,
		ttl:      cfg.TTL,
		length:   cfg.Length,
		delivery: delivery,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("maacare.internal.otp"),
	}
}

// Issue generates a fresh code for the contact, replacing any pending one,
// hands it to the delivery collaborator, and returns it. Delivery failures
// are logged but do not invalidate the issued code; the contact can be
// re-sent a code by calling Issue again.
func (s *Store) Issue(ctx context.Context, contact string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "otp.issue")
	defer span.End()

	code, err := generateCode(s.length)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("otp: generate code: %w", err)
	}

	if err := s.redis.Set(ctx, challengeKey(contact), code, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("otp: store code: %w", err)
	}
	s.metrics.ObserveOTPIssued()

	if err := s.delivery.Deliver(ctx, contact, code); err != nil {
		s.logger.Error("otp delivery failed", "error", err, "contact", contact)
	}
	return code, nil
}

// Verify checks the supplied code against the pending one for the contact.
// On success the code is deleted (single-use); on failure nothing changes
// and ErrInvalidCode is returned.
func (s *Store) Verify(ctx context.Context, contact, code string) error {
	ctx, span := s.tracer.Start(ctx, "otp.verify")
	defer span.End()

	stored, err := s.redis.Get(ctx, challengeKey(contact)).Result()
	if err == redis.Nil {
		s.metrics.ObserveOTPVerify("invalid")
		return ErrInvalidCode
	}
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("otp: load code: %w", err)
	}
	if stored != code {
		s.metrics.ObserveOTPVerify("invalid")
		return ErrInvalidCode
	}

	if err := s.redis.Del(ctx, challengeKey(contact)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("otp: consume code: %w", err)
	}
	s.metrics.ObserveOTPVerify("ok")
	return nil
}

func challengeKey(contact string) string {
	return fmt.Sprintf("otp:challenge:%s", contact)
}

func generateCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

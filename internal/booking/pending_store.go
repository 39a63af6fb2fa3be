package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// PendingStore keeps each session's in-progress booking in Redis under the
// session TTL. Keys are scoped by session id, so bookings from different
// sessions never interact.
type PendingStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewPendingStore(redisClient *redis.Client, ttl time.Duration) *PendingStore {
	if redisClient == nil {
		panic("booking: redis client cannot be nil")
	}
	return &PendingStore{
		redis:  redisClient,
		ttl:    ttl,
		tracer: otel.Tracer("maacare.internal.booking.pending"),
	}
}

// Save writes the session's pending booking, overwriting any prior one.
func (s *PendingStore) Save(ctx context.Context, sessionID string, pb *PendingBooking) error {
	ctx, span := s.tracer.Start(ctx, "booking.save_pending")
	defer span.End()

	data, err := json.Marshal(pb)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("booking: marshal pending booking: %w", err)
	}
	if err := s.redis.Set(ctx, pendingKey(sessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("booking: persist pending booking: %w", err)
	}
	return nil
}

// Load returns (nil, nil) when the session has no pending booking.
func (s *PendingStore) Load(ctx context.Context, sessionID string) (*PendingBooking, error) {
	ctx, span := s.tracer.Start(ctx, "booking.load_pending")
	defer span.End()

	data, err := s.redis.Get(ctx, pendingKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("booking: load pending booking: %w", err)
	}

	var pb PendingBooking
	if err := json.Unmarshal(data, &pb); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("booking: decode pending booking: %w", err)
	}
	return &pb, nil
}

// Delete clears the session's pending booking.
func (s *PendingStore) Delete(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "booking.delete_pending")
	defer span.End()

	if err := s.redis.Del(ctx, pendingKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("booking: delete pending booking: %w", err)
	}
	return nil
}

func pendingKey(sessionID string) string {
	return fmt.Sprintf("booking:pending:%s", sessionID)
}

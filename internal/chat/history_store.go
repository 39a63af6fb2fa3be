package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type historyStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func newHistoryStore(redisClient *redis.Client, ttl time.Duration, tracer trace.Tracer) *historyStore {
	if redisClient == nil {
		panic("chat: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("maacare.internal.chat.history")
	}
	return &historyStore{redis: redisClient, ttl: ttl, tracer: tracer}
}

func (s *historyStore) Save(ctx context.Context, sessionID string, history []openai.ChatCompletionMessage) error {
	ctx, span := s.tracer.Start(ctx, "chat.save_history")
	defer span.End()

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: marshal history: %w", err)
	}
	if err := s.redis.Set(ctx, historyKey(sessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: persist history: %w", err)
	}
	return nil
}

// Load returns nil for a session with no stored history.
func (s *historyStore) Load(ctx context.Context, sessionID string) ([]openai.ChatCompletionMessage, error) {
	ctx, span := s.tracer.Start(ctx, "chat.load_history")
	defer span.End()

	data, err := s.redis.Get(ctx, historyKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chat: load history: %w", err)
	}

	var history []openai.ChatCompletionMessage
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chat: decode history: %w", err)
	}
	return history, nil
}

func historyKey(sessionID string) string {
	return fmt.Sprintf("chat:history:%s", sessionID)
}

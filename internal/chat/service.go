package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"

	"github.com/Rup-source226/maa-care-ai/pkg/logging"
)

const systemPrompt = `You are a helpful AI health assistant specializing in maternal and child care. You provide accurate, evidence-based information about:

- Pregnancy and prenatal care
- Child development and growth
- Nutrition for mothers and children
- Common health concerns and preventive care
- General wellness advice

Important guidelines:
- Always emphasize consulting healthcare professionals for medical advice
- Provide general information, not personalized medical diagnoses
- Be supportive and encouraging
- Use clear, simple language
- If asked about serious medical conditions, recommend seeing a doctor

Remember: You are not a substitute for professional medical care.`

const completionTimeout = 30 * time.Second

var chatTracer = otel.Tracer("maacare.internal.chat")

// Client is the slice of the OpenAI API the assistant calls.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Service answers health questions with session-scoped conversation context
// held in Redis under a TTL. Each browser session carries one thread.
type Service struct {
	client  Client
	model   string
	history *historyStore
	logger  *logging.Logger
}

func NewService(client Client, redisClient *redis.Client, model string, historyTTL time.Duration, logger *logging.Logger) *Service {
	if client == nil {
		panic("chat: client cannot be nil")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		client:  client,
		model:   model,
		history: newHistoryStore(redisClient, historyTTL, chatTracer),
		logger:  logger,
	}
}

// Reply continues the session's thread with the user message and returns the
// assistant's answer.
func (s *Service) Reply(ctx context.Context, sessionID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("chat: message required")
	}

	ctx, span := chatTracer.Start(ctx, "chat.reply")
	defer span.End()

	history, err := s.history.Load(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if len(history) == 0 {
		history = []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		}
	}
	history = append(history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	reply, err := s.complete(ctx, history)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	history = append(history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: reply,
	})

	if err := s.history.Save(ctx, sessionID, history); err != nil {
		span.RecordError(err)
		return "", err
	}
	return reply, nil
}

func (s *Service) complete(ctx context.Context, history []openai.ChatCompletionMessage) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    history,
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("chat: completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat: completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

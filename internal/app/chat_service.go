package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"chemsite/internal/ai"
	"chemsite/internal/platform/logging"
)

const assistantSystemPrompt = "You are Nova, the virtual assistant of Nordvale Chemicals, a distributor of " +
	"industrial chemicals, water-treatment products, food ingredients and agrochemicals. " +
	"Answer questions about our product range, applications, safety data sheets, logistics and how to " +
	"request a quote or reach our team. Politely decline topics unrelated to chemical distribution. " +
	"Never give medical or legal advice. Keep every answer under four sentences and reply in the " +
	"language the user writes in."

// Completer performs one chat completion and returns the raw upstream payload.
type Completer interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (json.RawMessage, error)
}

type ChatService struct {
	llmClient  Completer
	llmConfig  ai.ChatConfig
	maxContext int
}

func NewChatService(llmClient Completer, llmConfig ai.ChatConfig, maxContext int) *ChatService {
	if maxContext <= 0 {
		maxContext = 20
	}
	return &ChatService{
		llmClient:  llmClient,
		llmConfig:  llmConfig,
		maxContext: maxContext,
	}
}

// Proxy forwards the caller's transcript to the completion service and
// returns the upstream payload untouched. A nil transcript means the caller
// sent no messages array.
func (s *ChatService) Proxy(ctx context.Context, transcript []ai.ChatMessage) (json.RawMessage, error) {
	if transcript == nil {
		return nil, fmt.Errorf("%w: messages array is required", ErrBadRequest)
	}
	for i, msg := range transcript {
		if msg.Role != ai.RoleUser && msg.Role != ai.RoleAssistant {
			return nil, fmt.Errorf("%w: messages[%d].role must be %q or %q", ErrBadRequest, i, ai.RoleUser, ai.RoleAssistant)
		}
	}
	if strings.TrimSpace(s.llmConfig.APIKey) == "" {
		return nil, ErrLLMConfig
	}

	prompt := s.buildPromptMessages(transcript)

	logger := logging.FromContext(ctx)
	start := time.Now()
	raw, err := s.llmClient.Complete(ctx, s.llmConfig, prompt)
	if err != nil {
		var upstreamErr *ai.UpstreamError
		if errors.As(err, &upstreamErr) {
			logger.Warn("llm upstream rejected request",
				zap.Int("upstream_status", upstreamErr.Status),
				zap.Duration("latency", time.Since(start)),
			)
			return nil, upstreamErr
		}
		logger.Error("llm request failed", zap.Error(err), zap.Duration("latency", time.Since(start)))
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	fields := []zap.Field{
		zap.String("model", s.llmConfig.Model),
		zap.Int("messages", len(prompt)),
		zap.Duration("latency", time.Since(start)),
	}
	if completion, parseErr := ai.ParseCompletion(raw); parseErr == nil {
		fields = append(fields,
			zap.Int("prompt_tokens", completion.PromptTokens),
			zap.Int("completion_tokens", completion.CompletionTokens),
			zap.String("finish_reason", completion.FinishReason),
		)
	}
	logger.Info("llm completion relayed", fields...)
	return raw, nil
}

func (s *ChatService) buildPromptMessages(transcript []ai.ChatMessage) []ai.ChatMessage {
	recent := transcript
	if len(recent) > s.maxContext {
		recent = recent[len(recent)-s.maxContext:]
	}

	messages := make([]ai.ChatMessage, 0, len(recent)+1)
	messages = append(messages, ai.ChatMessage{
		Role:    ai.RoleSystem,
		Content: assistantSystemPrompt,
	})
	return append(messages, recent...)
}

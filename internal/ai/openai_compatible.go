package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	maxResponseBytes = 4 << 20
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// RetryPolicy bounds the upstream call. MaxAttempts counts the first try.
type RetryPolicy struct {
	MaxAttempts     int
	AttemptTimeout  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		AttemptTimeout:  30 * time.Second,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     4 * time.Second,
	}
}

// UpstreamError is a non-2xx answer from the completion service.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("llm response status %d: %s", e.Status, strings.TrimSpace(string(e.Body)))
}

// Retryable reports whether another attempt may succeed.
func (e *UpstreamError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type OpenAICompatibleClient struct {
	httpClient *http.Client
	retry      RetryPolicy
}

type ClientOption func(*OpenAICompatibleClient)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *OpenAICompatibleClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithRetryPolicy(policy RetryPolicy) ClientOption {
	return func(c *OpenAICompatibleClient) {
		if policy.MaxAttempts > 0 {
			c.retry.MaxAttempts = policy.MaxAttempts
		}
		if policy.AttemptTimeout > 0 {
			c.retry.AttemptTimeout = policy.AttemptTimeout
		}
		if policy.InitialInterval > 0 {
			c.retry.InitialInterval = policy.InitialInterval
		}
		if policy.MaxInterval > 0 {
			c.retry.MaxInterval = policy.MaxInterval
		}
	}
}

func NewOpenAICompatibleClient(opts ...ClientOption) *OpenAICompatibleClient {
	c := &OpenAICompatibleClient{
		httpClient: &http.Client{},
		retry:      DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Complete posts the transcript to /chat/completions and returns the raw JSON
// payload. Transport errors and retryable upstream statuses are retried with
// exponential backoff; ctx cancellation stops the loop and aborts the request
// in flight.
func (c *OpenAICompatibleClient) Complete(ctx context.Context, cfg ChatConfig, messages []ChatMessage) (json.RawMessage, error) {
	bodyBytes, err := json.Marshal(chatCompletionRequest{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Stream:      false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal llm request failed: %w", err)
	}
	url := strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.retry.InitialInterval
	expBackoff.MaxInterval = c.retry.MaxInterval
	expBackoff.MaxElapsedTime = 0

	var retries uint64
	if c.retry.MaxAttempts > 1 {
		retries = uint64(c.retry.MaxAttempts - 1)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, retries), ctx)

	var payload json.RawMessage
	err = backoff.Retry(func() error {
		raw, attemptErr := c.attempt(ctx, url, cfg.APIKey, bodyBytes)
		if attemptErr == nil {
			payload = raw
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(attemptErr)
		}
		var upstreamErr *UpstreamError
		if errors.As(attemptErr, &upstreamErr) && !upstreamErr.Retryable() {
			return backoff.Permanent(attemptErr)
		}
		var decodeErr *decodeError
		if errors.As(attemptErr, &decodeErr) {
			return backoff.Permanent(attemptErr)
		}
		return attemptErr
	}, policy)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func (c *OpenAICompatibleClient) attempt(ctx context.Context, url, apiKey string, body []byte) (json.RawMessage, error) {
	attemptCtx := ctx
	if c.retry.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.retry.AttemptTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &decodeError{err: fmt.Errorf("build llm request failed: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read llm response failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: raw}
	}
	if !json.Valid(raw) {
		return nil, &decodeError{err: errors.New("parse llm json failed: invalid payload")}
	}
	return raw, nil
}

// Completion is the part of a completion payload the server inspects for logging.
type Completion struct {
	Content          string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func ParseCompletion(raw []byte) (*Completion, error) {
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse llm json failed: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("empty llm choices")
	}
	return &Completion{
		Content:          parsed.Choices[0].Message.Content,
		FinishReason:     parsed.Choices[0].FinishReason,
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
		TotalTokens:      parsed.Usage.TotalTokens,
	}, nil
}

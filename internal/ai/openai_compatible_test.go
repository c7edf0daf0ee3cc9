package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionPayload = `{"id":"chatcmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"We stock sodium hypochlorite."},"finish_reason":"stop"}],"usage":{"prompt_tokens":42,"completion_tokens":7,"total_tokens":49}}`

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     attempts,
		AttemptTimeout:  2 * time.Second,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func testConfig(baseURL string) ChatConfig {
	return ChatConfig{
		BaseURL:     baseURL + "/",
		APIKey:      "sk-test",
		Model:       "test-model",
		Temperature: 0.7,
		MaxTokens:   500,
	}
}

func TestCompleteRelaysPayloadVerbatim(t *testing.T) {
	var received chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionPayload))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(WithRetryPolicy(fastPolicy(3)))
	raw, err := client.Complete(context.Background(), testConfig(srv.URL), []ChatMessage{
		{Role: RoleSystem, Content: "system"},
		{Role: RoleUser, Content: "Do you sell bleach?"},
	})
	require.NoError(t, err)
	assert.Equal(t, completionPayload, string(raw))

	assert.Equal(t, "test-model", received.Model)
	assert.InDelta(t, 0.7, received.Temperature, 1e-9)
	assert.Equal(t, 500, received.MaxTokens)
	assert.False(t, received.Stream)
	require.Len(t, received.Messages, 2)
	assert.Equal(t, RoleSystem, received.Messages[0].Role)
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(WithRetryPolicy(fastPolicy(3)))
	_, err := client.Complete(context.Background(), testConfig(srv.URL), nil)
	require.Error(t, err)

	var upstreamErr *UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusUnauthorized, upstreamErr.Status)
	assert.JSONEq(t, `{"error":{"message":"invalid api key"}}`, string(upstreamErr.Body))
	assert.False(t, upstreamErr.Retryable())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(completionPayload))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(WithRetryPolicy(fastPolicy(3)))
	raw, err := client.Complete(context.Background(), testConfig(srv.URL), nil)
	require.NoError(t, err)
	assert.Equal(t, completionPayload, string(raw))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCompleteStopsAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(WithRetryPolicy(fastPolicy(2)))
	_, err := client.Complete(context.Background(), testConfig(srv.URL), nil)

	var upstreamErr *UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusTooManyRequests, upstreamErr.Status)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCompleteRejectsInvalidJSONWithoutRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(WithRetryPolicy(fastPolicy(3)))
	_, err := client.Complete(context.Background(), testConfig(srv.URL), nil)
	require.Error(t, err)

	var upstreamErr *UpstreamError
	assert.False(t, errors.As(err, &upstreamErr))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCompleteAbortsOnContextCancel(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewOpenAICompatibleClient(WithRetryPolicy(fastPolicy(3)))
	start := time.Now()
	_, err := client.Complete(ctx, testConfig(srv.URL), nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCompleteAttemptTimeoutIsRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			// Drain the body so the server can observe the client disconnect.
			_, _ = io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
			return
		}
		_, _ = w.Write([]byte(completionPayload))
	}))
	defer srv.Close()

	policy := fastPolicy(2)
	policy.AttemptTimeout = 50 * time.Millisecond
	client := NewOpenAICompatibleClient(WithRetryPolicy(policy))

	raw, err := client.Complete(context.Background(), testConfig(srv.URL), nil)
	require.NoError(t, err)
	assert.Equal(t, completionPayload, string(raw))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestParseCompletion(t *testing.T) {
	completion, err := ParseCompletion([]byte(completionPayload))
	require.NoError(t, err)
	assert.Equal(t, "We stock sodium hypochlorite.", completion.Content)
	assert.Equal(t, "stop", completion.FinishReason)
	assert.Equal(t, 42, completion.PromptTokens)
	assert.Equal(t, 7, completion.CompletionTokens)
	assert.Equal(t, 49, completion.TotalTokens)

	_, err = ParseCompletion([]byte(`{"choices":[]}`))
	assert.Error(t, err)
}

package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/promptforge/internal/errors"
	"github.com/thomas-vilte/promptforge/internal/models"
)

func collect(t *testing.T, ch <-chan models.StreamEvent) (text string, usage *models.TokenUsage, err error) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return text, usage, err
			}
			text += ev.Delta
			if ev.Usage != nil {
				usage = ev.Usage
			}
			if ev.Err != nil {
				err = ev.Err
			}
		case <-timeout:
			t.Fatal("stream did not close")
		}
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient("   ")

	assert.ErrorIs(t, err, domainErrors.ErrAPIKeyMissing)
}

func TestStreamCompletion_Success(t *testing.T) {
	// Arrange
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-or-test", r.Header.Get("Authorization"))
		assert.Equal(t, "PromptForge", r.Header.Get("X-Title"))
		assert.Equal(t, "https://promptforge.local", r.Header.Get("HTTP-Referer"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": OPENROUTER PROCESSING\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\", world\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"\"},\"finish_reason\":\"stop\"}],\"usage\":{\"prompt_tokens\":12,\"completion_tokens\":3,\"total_tokens\":15}}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	c, err := NewClient("sk-or-test", WithBaseURL(server.URL+"/"), WithSiteInfo("https://promptforge.local", "PromptForge"))
	require.NoError(t, err)

	// Act
	ch, err := c.StreamCompletion(context.Background(), models.CompletionRequest{
		Model:       "deepseek/deepseek-chat-v3-0324",
		Prompt:      "enhance me",
		Temperature: 0.7,
	})
	require.NoError(t, err)
	text, usage, streamErr := collect(t, ch)

	// Assert
	assert.NoError(t, streamErr)
	assert.Equal(t, "Hello, world", text)
	require.NotNil(t, usage)
	assert.Equal(t, 15, usage.TotalTokens)
	assert.Equal(t, "deepseek/deepseek-chat-v3-0324", usage.Model)

	assert.True(t, got.Stream)
	assert.Equal(t, 0.7, got.Temperature)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "enhance me", got.Messages[0].Content)
}

func TestStreamCompletion_HTTPErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantIs    error
		wantMsg   string
		wantCalls int32
	}{
		{
			name:      "unauthorized is not retried",
			status:    http.StatusUnauthorized,
			body:      `{"error":{"code":401,"message":"No auth credentials found"}}`,
			wantIs:    ErrAuthFailed,
			wantMsg:   "No auth credentials found",
			wantCalls: 1,
		},
		{
			name:      "payment required",
			status:    http.StatusPaymentRequired,
			body:      `{"error":{"code":402,"message":"Insufficient credits"}}`,
			wantIs:    ErrInsufficientCredits,
			wantMsg:   "Insufficient credits",
			wantCalls: 1,
		},
		{
			name:      "rate limited is retried",
			status:    http.StatusTooManyRequests,
			body:      `not json`,
			wantIs:    ErrRateLimited,
			wantMsg:   "rate limited",
			wantCalls: 2,
		},
		{
			name:      "bad request passes the message through",
			status:    http.StatusBadRequest,
			body:      `{"error":{"code":"bad_request","message":"deepseek/unknown is not a valid model ID"}}`,
			wantMsg:   "deepseek/unknown is not a valid model ID",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			c, err := NewClient("key", WithBaseURL(server.URL), WithMaxRetries(1))
			require.NoError(t, err)

			ch, err := c.StreamCompletion(context.Background(), models.CompletionRequest{Model: "m", Prompt: "p"})

			assert.Nil(t, ch)
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestStreamCompletion_ServerErrorThenSuccess(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\ndata: [DONE]\n\n")
	}))
	defer server.Close()

	c, err := NewClient("key", WithBaseURL(server.URL), WithMaxRetries(1))
	require.NoError(t, err)

	ch, err := c.StreamCompletion(context.Background(), models.CompletionRequest{Model: "m", Prompt: "p"})
	require.NoError(t, err)
	text, _, streamErr := collect(t, ch)

	assert.NoError(t, streamErr)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestStreamCompletion_InStreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"error\":{\"code\":429,\"message\":\"rate limited\"}}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"never\"}}]}\n\n")
	}))
	defer server.Close()

	c, err := NewClient("key", WithBaseURL(server.URL))
	require.NoError(t, err)

	ch, err := c.StreamCompletion(context.Background(), models.CompletionRequest{Model: "m", Prompt: "p"})
	require.NoError(t, err)
	text, _, streamErr := collect(t, ch)

	assert.Equal(t, "partial", text)
	require.Error(t, streamErr)
	assert.Equal(t, "rate limited", streamErr.Error())
}

func TestStreamCompletion_SkipsMalformedChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {broken\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"fine\"}}]}\n\n")
	}))
	defer server.Close()

	c, err := NewClient("key", WithBaseURL(server.URL))
	require.NoError(t, err)

	ch, err := c.StreamCompletion(context.Background(), models.CompletionRequest{Model: "m", Prompt: "p"})
	require.NoError(t, err)
	text, _, streamErr := collect(t, ch)

	assert.NoError(t, streamErr)
	assert.Equal(t, "fine", text)
}

func TestStreamCompletion_CancelClosesWithoutError(t *testing.T) {
	// Arrange
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"first\"}}]}\n\n")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	c, err := NewClient("key", WithBaseURL(server.URL))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())

	// Act
	ch, err := c.StreamCompletion(ctx, models.CompletionRequest{Model: "m", Prompt: "p"})
	require.NoError(t, err)
	first := <-ch
	cancel()
	text, _, streamErr := collect(t, ch)

	// Assert
	assert.Equal(t, "first", first.Delta)
	assert.Empty(t, text)
	assert.NoError(t, streamErr)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, backoff(0))
	assert.Equal(t, time.Second, backoff(1))
	assert.Equal(t, retryMaxDelay, backoff(10))
}

package gemini

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/promptforge/internal/errors"
	"github.com/thomas-vilte/promptforge/internal/models"
	"google.golang.org/genai"
)

func textResponse(text string, thought bool) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text, Thought: thought}}}},
		},
	}
}

func fakeStream(responses []*genai.GenerateContentResponse, failAt int, failErr error) streamFunc {
	return func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
		return func(yield func(*genai.GenerateContentResponse, error) bool) {
			for i, r := range responses {
				if i == failAt {
					yield(nil, failErr)
					return
				}
				if !yield(r, nil) {
					return
				}
			}
		}
	}
}

func drain(ch <-chan models.StreamEvent) (text string, usage *models.TokenUsage, err error) {
	for ev := range ch {
		text += ev.Delta
		if ev.Usage != nil {
			usage = ev.Usage
		}
		if ev.Err != nil {
			err = ev.Err
		}
	}
	return
}

func TestNewStreamer_RequiresKey(t *testing.T) {
	_, err := NewStreamer(context.Background(), "")

	assert.ErrorIs(t, err, domainErrors.ErrGeminiAPIKeyMissing)
}

func TestStreamer_StreamCompletion(t *testing.T) {
	// Arrange
	last := textResponse(" world", false)
	last.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{
		PromptTokenCount:     10,
		CandidatesTokenCount: 2,
		TotalTokenCount:      12,
	}
	s := &Streamer{stream: fakeStream([]*genai.GenerateContentResponse{
		textResponse("thinking...", true),
		textResponse("Hello", false),
		last,
	}, -1, nil)}

	// Act
	ch, err := s.StreamCompletion(context.Background(), models.CompletionRequest{Model: "google/gemini-2.5-flash", Prompt: "p", Temperature: 0.7})
	require.NoError(t, err)
	text, usage, streamErr := drain(ch)

	// Assert
	assert.NoError(t, streamErr)
	assert.Equal(t, "Hello world", text)
	require.NotNil(t, usage)
	assert.Equal(t, 12, usage.TotalTokens)
	assert.Equal(t, "google/gemini-2.5-flash", usage.Model)
}

func TestStreamer_StreamError(t *testing.T) {
	s := &Streamer{stream: fakeStream([]*genai.GenerateContentResponse{
		textResponse("partial", false),
		nil,
	}, 1, errors.New("resource exhausted"))}

	ch, err := s.StreamCompletion(context.Background(), models.CompletionRequest{Model: "google/gemini-2.5-pro", Prompt: "p"})
	require.NoError(t, err)
	text, _, streamErr := drain(ch)

	assert.Equal(t, "partial", text)
	assert.EqualError(t, streamErr, "resource exhausted")
}

func TestStreamer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &Streamer{stream: fakeStream([]*genai.GenerateContentResponse{textResponse("x", false)}, -1, nil)}

	ch, err := s.StreamCompletion(ctx, models.CompletionRequest{Model: "google/gemini-2.5-pro", Prompt: "p"})
	require.NoError(t, err)
	text, usage, streamErr := drain(ch)

	assert.Empty(t, text)
	assert.Nil(t, usage)
	assert.NoError(t, streamErr)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "gemini-2.5-pro", modelName("google/gemini-2.5-pro"))
	assert.True(t, Supports("google/gemini-2.5-flash"))
	assert.False(t, Supports("anthropic/claude-sonnet-4"))
	assert.Nil(t, extractUsage(nil))
	assert.Empty(t, extractText(&genai.GenerateContentResponse{}))

	cfg := generateConfig("gemini-2.5-pro", 0.7)
	assert.InDelta(t, 0.7, float64(*cfg.Temperature), 0.0001)
	assert.Nil(t, cfg.ThinkingConfig)
	assert.NotNil(t, generateConfig("gemini-3-pro-preview", 0.7).ThinkingConfig)
}

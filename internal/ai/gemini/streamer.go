// Package gemini streams completions for Google models straight from the
// Gemini API instead of going through the routing service.
package gemini

import (
	"context"
	"iter"
	"strings"

	domainErrors "github.com/thomas-vilte/promptforge/internal/errors"
	"github.com/thomas-vilte/promptforge/internal/logger"
	"github.com/thomas-vilte/promptforge/internal/models"
	"github.com/thomas-vilte/promptforge/internal/ports"
	"google.golang.org/genai"
)

var _ ports.CompletionStreamer = (*Streamer)(nil)

type streamFunc func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]

type Streamer struct {
	stream streamFunc
}

func NewStreamer(ctx context.Context, apiKey string) (*Streamer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, domainErrors.ErrGeminiAPIKeyMissing
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, domainErrors.NewAppError(domainErrors.TypeConfiguration, "error creating Gemini client", err)
	}

	return &Streamer{
		stream: func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
			return client.Models.GenerateContentStream(ctx, model, genai.Text(prompt), cfg)
		},
	}, nil
}

func (s *Streamer) StreamCompletion(ctx context.Context, req models.CompletionRequest) (<-chan models.StreamEvent, error) {
	model := modelName(req.Model)
	cfg := generateConfig(model, req.Temperature)
	log := logger.FromContext(ctx)

	log.Debug("opening gemini stream", "model", model, "chars", len(req.Prompt))

	events := make(chan models.StreamEvent)

	go func() {
		defer close(events)

		emit := func(ev models.StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var usage *models.TokenUsage
		for resp, err := range s.stream(ctx, model, req.Prompt, cfg) {
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Error("gemini stream failed", "model", model, "error", err)
				emit(models.StreamEvent{Err: err})
				return
			}
			if u := extractUsage(resp); u != nil {
				usage = u
			}
			if text := extractText(resp); text != "" {
				if !emit(models.StreamEvent{Delta: text}) {
					return
				}
			}
		}

		if usage != nil {
			usage.Model = req.Model
			emit(models.StreamEvent{Usage: usage})
		}
	}()

	return events, nil
}

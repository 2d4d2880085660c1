package openrouter

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/thomas-vilte/promptforge/internal/logger"
	"github.com/thomas-vilte/promptforge/internal/models"
)

const maxLineSize = 1024 * 1024

type streamChunk struct {
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int     `json:"prompt_tokens"`
		CompletionTokens int     `json:"completion_tokens"`
		TotalTokens      int     `json:"total_tokens"`
		Cost             float64 `json:"cost"`
	} `json:"usage"`
	Error *apiErrorBody `json:"error"`
}

func (c *streamChunk) content() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].Delta.Content
	}
	return ""
}

// StreamCompletion posts the prompt as a single user message and streams the
// SSE response. HTTP failures are returned directly; failures after the
// stream opened arrive as an event with Err set. Cancelling ctx closes the
// channel without an error event.
func (c *Client) StreamCompletion(ctx context.Context, req models.CompletionRequest) (<-chan models.StreamEvent, error) {
	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Stream:      true,
		Temperature: req.Temperature,
		Usage:       usageOption{Include: true},
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding request: %w", err)
	}

	logger.Debug(ctx, "opening openrouter stream", "model", req.Model, "chars", len(req.Prompt))

	resp, err := c.send(ctx, body)
	if err != nil {
		return nil, err
	}

	events := make(chan models.StreamEvent)

	go func() {
		defer close(events)
		defer func() { _ = resp.Body.Close() }()

		emit := func(ev models.StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if err := readSSE(ctx, resp.Body, req.Model, emit); err != nil && ctx.Err() == nil {
			emit(models.StreamEvent{Err: err})
		}
	}()

	return events, nil
}

// readSSE parses "data:" lines until [DONE], EOF, an error payload, or ctx ends.
func readSSE(ctx context.Context, r io.Reader, model string, emit func(models.StreamEvent) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			logger.Warn(ctx, "skipping malformed stream chunk", "error", err)
			continue
		}

		if chunk.Error != nil {
			msg := chunk.Error.Message
			if msg == "" {
				msg = "stream failed"
			}
			return errors.New(msg)
		}

		if text := chunk.content(); text != "" {
			if !emit(models.StreamEvent{Delta: text}) {
				return nil
			}
		}

		if chunk.Usage != nil {
			usage := &models.TokenUsage{
				InputTokens:  chunk.Usage.PromptTokens,
				OutputTokens: chunk.Usage.CompletionTokens,
				TotalTokens:  chunk.Usage.TotalTokens,
				CostUSD:      chunk.Usage.Cost,
				Model:        model,
			}
			if !emit(models.StreamEvent{Usage: usage}) {
				return nil
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading stream: %w", err)
	}
	return nil
}

// Package proxy talks to a deployed PromptForge /api/enhance endpoint, which
// holds the routing API key on the server side.
package proxy

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

	domainErrors "github.com/thomas-vilte/promptforge/internal/errors"
	"github.com/thomas-vilte/promptforge/internal/logger"
	"github.com/thomas-vilte/promptforge/internal/models"
	"github.com/thomas-vilte/promptforge/internal/ports"
)

const (
	enhancePath         = "/api/enhance"
	defaultFailureText  = "Failed to enhance prompt"
	maxResponseBodySize = 10 * 1024 * 1024
)

var _ ports.CompletionStreamer = (*Client)(nil)

// EnhanceRequest is the JSON body accepted by /api/enhance.
type EnhanceRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Usage mirrors the token usage reported by the routing API.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// EnhanceResponse is the JSON body returned by /api/enhance. Error is set on
// every non-200 response.
type EnhanceResponse struct {
	Content string `json:"content"`
	Usage   *Usage `json:"usage,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

func NewClient(baseURL, authToken string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, domainErrors.ErrProxyURLMissing
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		baseURL:    baseURL,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// StreamCompletion posts the whole prompt and emits the response as a single
// increment, since the endpoint answers only once the model has finished.
func (c *Client) StreamCompletion(ctx context.Context, req models.CompletionRequest) (<-chan models.StreamEvent, error) {
	temp := req.Temperature
	body, err := json.Marshal(EnhanceRequest{Model: req.Model, Prompt: req.Prompt, Temperature: &temp})
	if err != nil {
		return nil, fmt.Errorf("error encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+enhancePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	logger.Debug(ctx, "calling enhance proxy", "model", req.Model, "url", c.baseURL)

	events := make(chan models.StreamEvent)

	go func() {
		defer close(events)

		emit := func(ev models.StreamEvent) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() == nil {
				emit(models.StreamEvent{Err: fmt.Errorf("request failed: %w", err)})
			}
			return
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
		if err != nil {
			if ctx.Err() == nil {
				emit(models.StreamEvent{Err: fmt.Errorf("error reading response: %w", err)})
			}
			return
		}

		var out EnhanceResponse
		decodeErr := json.Unmarshal(data, &out)

		if resp.StatusCode != http.StatusOK {
			msg := out.Error
			if decodeErr != nil || msg == "" {
				msg = defaultFailureText
			}
			emit(models.StreamEvent{Err: errors.New(msg)})
			return
		}
		if decodeErr != nil {
			emit(models.StreamEvent{Err: fmt.Errorf("error decoding response: %w", decodeErr)})
			return
		}

		if out.Content != "" {
			emit(models.StreamEvent{Delta: out.Content})
		}
		if out.Usage != nil {
			emit(models.StreamEvent{Usage: &models.TokenUsage{
				InputTokens:  out.Usage.PromptTokens,
				OutputTokens: out.Usage.CompletionTokens,
				TotalTokens:  out.Usage.TotalTokens,
				Model:        req.Model,
			}})
		}
	}()

	return events, nil
}

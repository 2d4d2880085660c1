// Package openrouter streams chat completions from the OpenRouter routing API.
package openrouter

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
	"github.com/thomas-vilte/promptforge/internal/ports"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	defaultMaxRetries = 2
	retryBaseDelay    = 500 * time.Millisecond
	retryMaxDelay     = 8 * time.Second
	maxErrorBodySize  = 64 * 1024
)

var (
	ErrAuthFailed          = errors.New("authentication failed")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrModelNotFound       = errors.New("model not found")
	ErrRateLimited         = errors.New("rate limited")
)

var _ ports.CompletionStreamer = (*Client)(nil)

// APIError is a non-2xx response that does not map to one of the sentinels.
type APIError struct {
	Code    string
	Message string
	Status  int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openrouter returned HTTP %d", e.Status)
	}
	return e.Message
}

// StatusError carries the provider's message unchanged and unwraps to the
// sentinel for its status.
type StatusError struct {
	Kind    error
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

func (e *StatusError) Unwrap() error {
	return e.Kind
}

type Client struct {
	apiKey     string
	baseURL    string
	siteURL    string
	siteName   string
	maxRetries int
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient replaces the HTTP client. Streaming requests are bounded by
// the request context, so the client should not set a Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSiteInfo sets the HTTP-Referer and X-Title attribution headers.
func WithSiteInfo(url, name string) Option {
	return func(c *Client) {
		c.siteURL = url
		c.siteName = name
	}
}

func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, domainErrors.ErrAPIKeyMissing
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		siteName:   "PromptForge",
		maxRetries: defaultMaxRetries,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type usageOption struct {
	Include bool `json:"include"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	Usage       usageOption   `json:"usage"`
}

type apiErrorBody struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
}

type apiErrorResponse struct {
	Error apiErrorBody `json:"error"`
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteName != "" {
		req.Header.Set("X-Title", c.siteName)
	}
}

// send posts the request and retries rate limits and 5xx responses before
// any byte of the stream has been consumed.
func (c *Client) send(ctx context.Context, body []byte) (*http.Response, error) {
	url := c.baseURL + "/chat/completions"

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff(attempt - 1)
			logger.Debug(ctx, "retrying openrouter request", "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("error creating request: %w", err)
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("request failed: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return resp, nil
		}

		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		_ = resp.Body.Close()
		lastErr = handleErrorResponse(resp.StatusCode, data)

		if !isRetryable(lastErr) {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func handleErrorResponse(status int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		msg := apiErr.Error.Message
		switch status {
		case http.StatusUnauthorized:
			return &StatusError{Kind: ErrAuthFailed, Message: msg}
		case http.StatusPaymentRequired:
			return &StatusError{Kind: ErrInsufficientCredits, Message: msg}
		case http.StatusNotFound:
			return &StatusError{Kind: ErrModelNotFound, Message: msg}
		case http.StatusTooManyRequests:
			return &StatusError{Kind: ErrRateLimited, Message: msg}
		default:
			return &APIError{Code: strings.Trim(string(apiErr.Error.Code), `"`), Message: msg, Status: status}
		}
	}

	switch status {
	case http.StatusUnauthorized:
		return ErrAuthFailed
	case http.StatusPaymentRequired:
		return ErrInsufficientCredits
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &APIError{Message: strings.TrimSpace(string(body)), Status: status}
	}
}

func isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return false
}

func backoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

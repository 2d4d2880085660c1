package enhancement

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/thomas-vilte/promptforge/internal/ai"
	domainErrors "github.com/thomas-vilte/promptforge/internal/errors"
	"github.com/thomas-vilte/promptforge/internal/logger"
	"github.com/thomas-vilte/promptforge/internal/models"
	"github.com/thomas-vilte/promptforge/internal/ports"
)

// Temperature is the sampling temperature of every enhancement call.
const Temperature = 0.7

type Status string

const (
	StatusIdle      Status = "idle"
	StatusEnhancing Status = "enhancing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// State is the observable part of the controller.
type State struct {
	Status      Status `json:"status"`
	IsEnhancing bool   `json:"is_enhancing"`
	Output      string `json:"output"`
	Error       string `json:"error,omitempty"`
}

type Observer func(State)

// Completion describes a finished enhancement for completion hooks.
type Completion struct {
	Request models.EnhancementRequest
	Result  models.EnhancementResult
	Usage   *models.TokenUsage
}

type CompletionHook func(ctx context.Context, c Completion)

type Option func(*Controller)

// WithCompletionHook registers fn to run after every completed enhancement.
func WithCompletionHook(fn CompletionHook) Option {
	return func(c *Controller) {
		c.hooks = append(c.hooks, fn)
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// Controller runs one enhancement at a time against a CompletionStreamer and
// publishes the accumulated output as it grows.
type Controller struct {
	streamer ports.CompletionStreamer
	identity ports.Identity
	hooks    []CompletionHook
	now      func() time.Time

	mu        sync.Mutex
	state     State
	cancel    context.CancelFunc
	running   bool
	run       uint64
	observers map[int]Observer
	nextObs   int
}

func NewController(streamer ports.CompletionStreamer, identity ports.Identity, opts ...Option) *Controller {
	c := &Controller{
		streamer:  streamer,
		identity:  identity,
		now:       time.Now,
		state:     State{Status: StatusIdle},
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to be called after every state change. The returned
// func removes it.
func (c *Controller) Subscribe(fn Observer) func() {
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// Enhance streams an enhanced version of req.Content. It returns (nil, nil)
// when the request was cancelled.
func (c *Controller) Enhance(ctx context.Context, req models.EnhancementRequest) (*models.EnhancementResult, error) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil, domainErrors.ErrEnhancementInProgress
	}

	if _, ok := c.identity.CurrentUser(ctx); !ok {
		c.failLocked(domainErrors.ErrNotAuthenticated.Message)
		c.mu.Unlock()
		c.notify()
		return nil, domainErrors.ErrNotAuthenticated
	}

	if err := validate(req); err != nil {
		c.failLocked(err.Message)
		c.mu.Unlock()
		c.notify()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.run++
	run := c.run
	c.running = true
	c.cancel = cancel
	c.state = State{Status: StatusEnhancing, IsEnhancing: true}
	c.mu.Unlock()
	c.notify()

	ctx = logger.With(ctx,
		"model", req.Model.ID,
		"technique", req.Technique.ID,
		"format", req.OutputFormat.ID)
	logger.Info(ctx, "enhancement started",
		"chars", utf8.RuneCountInString(req.Content))

	start := c.now()
	prompt := ai.Compose(req.Content, req.Technique, req.OutputFormat, req.CustomInstructions)

	events, err := c.streamer.StreamCompletion(runCtx, models.CompletionRequest{
		Model:       req.Model.ID,
		Prompt:      prompt,
		Temperature: Temperature,
		Parts: &models.PromptParts{
			Content:        req.Content,
			TechniqueID:    req.Technique.ID,
			TechniqueName:  req.Technique.Name,
			FormatName:     req.OutputFormat.Name,
			FormatTemplate: req.OutputFormat.Template,
		},
	})
	if err != nil {
		if runCtx.Err() != nil {
			return c.cancelled(ctx, run)
		}
		return nil, c.failed(ctx, run, err)
	}

	var (
		output strings.Builder
		usage  *models.TokenUsage
	)

	for {
		var (
			ev models.StreamEvent
			ok bool
		)
		select {
		case <-runCtx.Done():
			return c.cancelled(ctx, run)
		case ev, ok = <-events:
		}

		if runCtx.Err() != nil {
			return c.cancelled(ctx, run)
		}
		if !ok {
			break
		}

		if ev.Err != nil {
			return nil, c.failed(ctx, run, ev.Err)
		}
		if ev.Usage != nil {
			usage = ev.Usage
		}
		if ev.Delta == "" {
			continue
		}

		output.WriteString(ev.Delta)
		if !c.publish(run, output.String()) {
			return nil, nil
		}
	}

	text := output.String()
	completedAt := c.now()
	result := &models.EnhancementResult{
		EnhancedText:   text,
		OriginalLength: utf8.RuneCountInString(req.Content),
		EnhancedLength: utf8.RuneCountInString(text),
		ModelName:      req.Model.Name,
		TechniqueName:  req.Technique.Name,
		CompletedAt:    completedAt,
		Duration:       completedAt.Sub(start),
	}
	if usage != nil && usage.TotalTokens > 0 {
		tokens := usage.TotalTokens
		result.TokensUsed = &tokens
	}

	if !c.finish(run, State{Status: StatusCompleted, Output: text}) {
		return nil, nil
	}

	logger.Info(ctx, "enhancement completed",
		"chars", result.EnhancedLength,
		"duration_ms", result.Duration.Milliseconds())

	for _, hook := range c.hooks {
		hook(ctx, Completion{Request: req, Result: *result, Usage: usage})
	}

	return result, nil
}

// Cancel stops the in-flight enhancement, if any.
func (c *Controller) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Reset cancels in-flight work and clears output and error.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.run++
	c.running = false
	c.state = State{Status: StatusIdle}
	c.mu.Unlock()
	c.notify()
}

func validate(req models.EnhancementRequest) *domainErrors.AppError {
	if strings.TrimSpace(req.Content) == "" {
		return domainErrors.ErrEmptyPrompt
	}
	if req.Model.ID == "" || req.Technique.ID == "" || req.OutputFormat.ID == "" {
		return domainErrors.ErrInvalidConfiguration.
			WithContext("model", req.Model.ID).
			WithContext("technique", req.Technique.ID).
			WithContext("format", req.OutputFormat.ID)
	}
	return nil
}

// publish replaces the output of run while it is still current.
func (c *Controller) publish(run uint64, output string) bool {
	c.mu.Lock()
	if c.run != run {
		c.mu.Unlock()
		return false
	}
	c.state.Output = output
	c.mu.Unlock()
	c.notify()
	return true
}

// finish moves run to a terminal state. It reports false when the run was
// superseded by Reset.
func (c *Controller) finish(run uint64, st State) bool {
	c.mu.Lock()
	if c.run != run {
		c.mu.Unlock()
		return false
	}
	c.running = false
	c.cancel = nil
	c.state = st
	c.mu.Unlock()
	c.notify()
	return true
}

func (c *Controller) cancelled(ctx context.Context, run uint64) (*models.EnhancementResult, error) {
	c.mu.Lock()
	output := c.state.Output
	c.mu.Unlock()

	if c.finish(run, State{Status: StatusCancelled, Output: output}) {
		logger.Info(ctx, "enhancement cancelled",
			"chars", utf8.RuneCountInString(output))
	}
	return nil, nil
}

func (c *Controller) failed(ctx context.Context, run uint64, cause error) error {
	c.mu.Lock()
	output := c.state.Output
	c.mu.Unlock()

	msg := cause.Error()
	if appErr, ok := cause.(*domainErrors.AppError); ok {
		msg = appErr.UserMessage()
	}

	if c.finish(run, State{Status: StatusFailed, Output: output, Error: msg}) {
		logger.Error(ctx, "enhancement failed", cause)
	}

	if appErr, ok := cause.(*domainErrors.AppError); ok {
		return appErr
	}
	return domainErrors.ErrProviderFailure.WithError(cause)
}

func (c *Controller) failLocked(msg string) {
	c.state = State{Status: StatusFailed, Error: msg}
}

func (c *Controller) notify() {
	c.mu.Lock()
	st := c.state
	observers := make([]Observer, 0, len(c.observers))
	for id := 0; id < c.nextObs; id++ {
		if fn, ok := c.observers[id]; ok {
			observers = append(observers, fn)
		}
	}
	c.mu.Unlock()

	for _, fn := range observers {
		fn(st)
	}
}

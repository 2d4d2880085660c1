package ports

import (
	"context"

	"github.com/thomas-vilte/promptforge/internal/models"
)

// CompletionStreamer sends a composed prompt to a model and streams back the
// response text.
type CompletionStreamer interface {
	// StreamCompletion starts the request and returns a channel of events.
	// The channel is closed once the response is complete, failed, or ctx is
	// cancelled. A failure after the stream started arrives as an event with Err set.
	StreamCompletion(ctx context.Context, req models.CompletionRequest) (<-chan models.StreamEvent, error)
}

// StreamerProvider builds the model client on demand, so commands that never
// call a model work without an API key.
type StreamerProvider func(ctx context.Context) (CompletionStreamer, error)

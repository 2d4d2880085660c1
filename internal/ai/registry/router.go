package registry

import (
	"context"

	"github.com/thomas-vilte/promptforge/internal/ai/gemini"
	"github.com/thomas-vilte/promptforge/internal/config"
	domainErrors "github.com/thomas-vilte/promptforge/internal/errors"
	"github.com/thomas-vilte/promptforge/internal/logger"
	"github.com/thomas-vilte/promptforge/internal/models"
	"github.com/thomas-vilte/promptforge/internal/ports"
)

var _ ports.CompletionStreamer = (*Router)(nil)

// Router sends every request to the configured provider, except Google
// models which go straight to Gemini whenever a Gemini key is available.
type Router struct {
	primary ports.CompletionStreamer
	gemini  ports.CompletionStreamer
	name    string
}

func NewRouter(ctx context.Context, reg *ProviderRegistry, cfg *config.Config) (*Router, error) {
	factory, ok := reg.Get(cfg.Provider)
	if !ok {
		return nil, domainErrors.ErrUnknownProvider.WithContext("provider", cfg.Provider)
	}

	primary, err := factory.Create(ctx, cfg)
	if err != nil {
		return nil, err
	}

	r := &Router{primary: primary, name: cfg.Provider}

	if cfg.Provider != config.ProviderGemini && cfg.Provider != config.ProviderMock && cfg.GeminiKey() != "" {
		if gf, ok := reg.Get(config.ProviderGemini); ok {
			g, err := gf.Create(ctx, cfg)
			if err != nil {
				logger.Warn(ctx, "gemini routing disabled", "error", err)
			} else {
				r.gemini = g
			}
		}
	}

	return r, nil
}

// Provider is the name of the primary provider.
func (r *Router) Provider() string {
	return r.name
}

func (r *Router) StreamCompletion(ctx context.Context, req models.CompletionRequest) (<-chan models.StreamEvent, error) {
	if r.gemini != nil && gemini.Supports(req.Model) {
		logger.Debug(ctx, "routing to gemini", "model", req.Model)
		return r.gemini.StreamCompletion(ctx, req)
	}
	return r.primary.StreamCompletion(ctx, req)
}

// Package registry builds the model-routing collaborator selected in the
// configuration.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/thomas-vilte/promptforge/internal/ai/gemini"
	"github.com/thomas-vilte/promptforge/internal/ai/mock"
	"github.com/thomas-vilte/promptforge/internal/ai/openrouter"
	"github.com/thomas-vilte/promptforge/internal/ai/proxy"
	"github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/ports"
)

// ProviderFactory creates a streamer for one provider.
type ProviderFactory interface {
	Create(ctx context.Context, cfg *config.Config) (ports.CompletionStreamer, error)
}

// FactoryFunc adapts a function to ProviderFactory.
type FactoryFunc func(ctx context.Context, cfg *config.Config) (ports.CompletionStreamer, error)

func (f FactoryFunc) Create(ctx context.Context, cfg *config.Config) (ports.CompletionStreamer, error) {
	return f(ctx, cfg)
}

type ProviderRegistry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		factories: make(map[string]ProviderFactory),
	}
}

// Default returns a registry with every built-in provider.
func Default() *ProviderRegistry {
	r := NewProviderRegistry()
	_ = r.Register(config.ProviderOpenRouter, FactoryFunc(newOpenRouter))
	_ = r.Register(config.ProviderGemini, FactoryFunc(newGemini))
	_ = r.Register(config.ProviderProxy, FactoryFunc(newProxy))
	_ = r.Register(config.ProviderMock, FactoryFunc(newMock))
	return r
}

func (r *ProviderRegistry) Register(name string, factory ProviderFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("provider '%s' is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

func (r *ProviderRegistry) Get(name string) (ProviderFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[name]
	return f, ok
}

func (r *ProviderRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newOpenRouter(_ context.Context, cfg *config.Config) (ports.CompletionStreamer, error) {
	opts := []openrouter.Option{}
	if cfg.SiteURL != "" {
		opts = append(opts, openrouter.WithSiteInfo(cfg.SiteURL, "PromptForge"))
	}
	return openrouter.NewClient(cfg.OpenRouterKey(), opts...)
}

func newGemini(ctx context.Context, cfg *config.Config) (ports.CompletionStreamer, error) {
	return gemini.NewStreamer(ctx, cfg.GeminiKey())
}

func newProxy(_ context.Context, cfg *config.Config) (ports.CompletionStreamer, error) {
	return proxy.NewClient(cfg.ProxyURL, cfg.AuthToken(), 0)
}

func newMock(_ context.Context, cfg *config.Config) (ports.CompletionStreamer, error) {
	return mock.NewStreamer(time.Duration(cfg.MockDelayMs) * time.Millisecond), nil
}

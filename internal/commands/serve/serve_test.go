package serve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/promptforge/internal/ai/mock"
	"github.com/thomas-vilte/promptforge/internal/catalog"
	"github.com/thomas-vilte/promptforge/internal/config"
	domainErrors "github.com/thomas-vilte/promptforge/internal/errors"
	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/thomas-vilte/promptforge/internal/ports"
	"github.com/thomas-vilte/promptforge/internal/services/cost"
	"github.com/thomas-vilte/promptforge/internal/services/usage"
	"github.com/thomas-vilte/promptforge/internal/storage"
	"github.com/urfave/cli/v3"
)

func newFactory(provider ports.StreamerProvider) *ServeCommandFactory {
	store := storage.NewMemoryStore()
	return NewServeCommandFactory(catalog.NewRegistry(), provider, usage.NewRecorder(store, 0), cost.NewManager(store))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv(config.EnvOpenRouterAPIKey, "")
	t.Setenv(config.EnvAuthToken, "")
	cfg := config.DefaultConfig()
	cfg.PathFile = filepath.Join(t.TempDir(), "config.json")
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.RateLimit = 0
	return cfg
}

func TestBuild_WithoutProvider(t *testing.T) {
	// Arrange
	cfg := testConfig(t)
	f := newFactory(func(context.Context) (ports.CompletionStreamer, error) {
		return nil, domainErrors.ErrAPIKeyMissing
	})

	// Act
	srv, responses, err := f.build(context.Background(), cfg, true)

	// Assert
	require.NoError(t, err)
	assert.Nil(t, responses)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/enhance", strings.NewReader(`{"model":"m","prompt":"p"}`))
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "OpenRouter API key not configured")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuild_WithCache(t *testing.T) {
	// Arrange
	cfg := testConfig(t)
	cfg.Server.CacheTTLSeconds = 60
	f := newFactory(func(context.Context) (ports.CompletionStreamer, error) {
		return mock.NewStreamer(0), nil
	})

	t.Run("should create the cache under the config directory", func(t *testing.T) {
		// Act
		_, responses, err := f.build(context.Background(), cfg, true)

		// Assert
		require.NoError(t, err)
		assert.NotNil(t, responses)
		info, err := os.Stat(filepath.Join(cfg.Dir(), "cache"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("should skip the cache when disabled", func(t *testing.T) {
		// Act
		_, responses, err := f.build(context.Background(), cfg, false)

		// Assert
		require.NoError(t, err)
		assert.Nil(t, responses)
	})
}

func TestServeCommand_StopsOnCancel(t *testing.T) {
	// Arrange
	cfg := testConfig(t)
	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)
	f := newFactory(func(context.Context) (ports.CompletionStreamer, error) {
		return mock.NewStreamer(0), nil
	})
	app := &cli.Command{
		Name:     "promptforge",
		Commands: []*cli.Command{f.CreateCommand(translations, cfg)},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// Act
	go func() {
		done <- app.Run(ctx, []string{"promptforge", "serve"})
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()

	// Assert
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}

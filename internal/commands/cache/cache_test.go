package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/promptforge/internal/cache"
	"github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/urfave/cli/v3"
)

func TestCacheClean(t *testing.T) {
	// Arrange
	cfg := config.DefaultConfig()
	cfg.PathFile = filepath.Join(t.TempDir(), "config.json")
	cfg.Server.CacheTTLSeconds = 3600

	dir := filepath.Join(cfg.Dir(), cache.DirName)
	responses, err := cache.NewCache(dir, 0)
	require.NoError(t, err)
	require.NoError(t, responses.Set(responses.KeyFor("m", "p", 0.7), map[string]string{"content": "x"}))

	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)

	out := &bytes.Buffer{}
	cmd := NewCacheCommand()
	cmd.out = out
	app := &cli.Command{
		Name:     "promptforge",
		Commands: []*cli.Command{cmd.CreateCommand(translations, cfg)},
	}

	// Act
	err = app.Run(context.Background(), []string{"promptforge", "cache", "clean"})

	// Assert
	require.NoError(t, err)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
	assert.Contains(t, out.String(), "Cache cleaned")
}

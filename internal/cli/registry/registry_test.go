package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/urfave/cli/v3"
)

type mockCommandFactory struct {
	name string
}

func (m *mockCommandFactory) CreateCommand(_ *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name: m.name,
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)
	return NewRegistry(&config.Config{}, translations)
}

func TestRegistry_Register(t *testing.T) {
	t.Run("should register new factory successfully", func(t *testing.T) {
		// Arrange
		registry := newTestRegistry(t)

		// Act
		err := registry.Register("test-command", &mockCommandFactory{name: "test-command"})

		// Assert
		assert.NoError(t, err)
		assert.Len(t, registry.factories, 1)
		assert.Contains(t, registry.factories, "test-command")
	})

	t.Run("should return error when registering duplicate factory", func(t *testing.T) {
		// Arrange
		registry := newTestRegistry(t)
		factory := &mockCommandFactory{name: "test-command"}
		_ = registry.Register("test-command", factory)

		// Act
		err := registry.Register("test-command", factory)

		// Assert
		assert.EqualError(t, err, "command factory 'test-command' is already registered")
		assert.Len(t, registry.factories, 1)
	})
}

func TestRegistry_CreateCommands(t *testing.T) {
	t.Run("should create commands ordered by name", func(t *testing.T) {
		// Arrange
		registry := newTestRegistry(t)
		_ = registry.Register("stats", &mockCommandFactory{name: "stats"})
		_ = registry.Register("catalog", &mockCommandFactory{name: "catalog"})
		_ = registry.Register("enhance", &mockCommandFactory{name: "enhance"})

		// Act
		commands := registry.CreateCommands()

		// Assert
		require.Len(t, commands, 3)
		assert.Equal(t, "catalog", commands[0].Name)
		assert.Equal(t, "enhance", commands[1].Name)
		assert.Equal(t, "stats", commands[2].Name)
	})

	t.Run("should return empty slice when no factories registered", func(t *testing.T) {
		// Arrange
		registry := newTestRegistry(t)

		// Act
		commands := registry.CreateCommands()

		// Assert
		assert.Empty(t, commands)
	})
}

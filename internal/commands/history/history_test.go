package history

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/promptforge/internal/config"
	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/thomas-vilte/promptforge/internal/models"
	"github.com/thomas-vilte/promptforge/internal/services/usage"
	"github.com/thomas-vilte/promptforge/internal/storage"
	"github.com/urfave/cli/v3"
)

func setupHistoryTest(t *testing.T, entries ...models.HistoryEntry) (*HistoryCommandFactory, *usage.Recorder, *bytes.Buffer, *i18n.Translations) {
	t.Helper()

	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)

	rec := usage.NewRecorder(storage.NewMemoryStore(), 1000)
	for _, e := range entries {
		rec.RecordToHistory(context.Background(), e)
	}

	out := &bytes.Buffer{}
	f := NewHistoryCommandFactory(rec)
	f.out = out
	f.in = strings.NewReader("")
	return f, rec, out, translations
}

func entry(id, prompt string) models.HistoryEntry {
	return models.HistoryEntry{
		ID:             id,
		OriginalPrompt: prompt,
		ModelID:        "deepseek/deepseek-chat-v3-0324",
		TechniqueID:    "zero-shot",
		OutputFormatID: "text",
		EnhancementResult: models.EnhancementResult{
			EnhancedText:   "Enhanced: " + prompt,
			OriginalLength: len(prompt),
			EnhancedLength: len(prompt) + 10,
			ModelName:      "DeepSeek V3",
			TechniqueName:  "Zero-Shot",
			CompletedAt:    time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		},
	}
}

func run(t *testing.T, f *HistoryCommandFactory, tr *i18n.Translations, args ...string) error {
	t.Helper()
	app := &cli.Command{
		Name:     "promptforge",
		Commands: []*cli.Command{f.CreateCommand(tr, &config.Config{})},
	}
	return app.Run(context.Background(), append([]string{"promptforge", "history"}, args...))
}

func TestHistoryList(t *testing.T) {
	t.Run("should print a friendly message when empty", func(t *testing.T) {
		// Arrange
		f, _, out, tr := setupHistoryTest(t)

		// Act
		err := run(t, f, tr, "list")

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out.String(), "No enhancements recorded yet")
	})

	t.Run("should list newest first and honor the limit", func(t *testing.T) {
		// Arrange
		f, _, out, tr := setupHistoryTest(t,
			entry("aaaa1111", "first prompt"),
			entry("bbbb2222", "second prompt"),
			entry("cccc3333", "third prompt"),
		)

		// Act
		err := run(t, f, tr, "list", "--json", "--limit", "2")

		// Assert
		require.NoError(t, err)
		var got []models.HistoryEntry
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "cccc3333", got[0].ID)
		assert.Equal(t, "bbbb2222", got[1].ID)
	})

	t.Run("should print previews without a subcommand", func(t *testing.T) {
		// Arrange
		f, _, out, tr := setupHistoryTest(t, entry("aaaa1111", "first prompt"))

		// Act
		err := run(t, f, tr)

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out.String(), "aaaa1111")
		assert.Contains(t, out.String(), "first prompt")
	})
}

func TestHistoryShow(t *testing.T) {
	t.Run("should show an entry by id prefix", func(t *testing.T) {
		// Arrange
		f, _, out, tr := setupHistoryTest(t,
			entry("aaaa1111-0000", "first prompt"),
			entry("bbbb2222-0000", "second prompt"),
		)

		// Act
		err := run(t, f, tr, "show", "bbbb")

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out.String(), "second prompt")
		assert.Contains(t, out.String(), "Enhanced: second prompt")
		assert.NotContains(t, out.String(), "first prompt")
	})

	t.Run("should fail for an unknown id", func(t *testing.T) {
		// Arrange
		f, _, _, tr := setupHistoryTest(t, entry("aaaa1111", "first prompt"))

		// Act
		err := run(t, f, tr, "show", "zzzz")

		// Assert
		assert.EqualError(t, err, "No history entry matches 'zzzz'")
	})

	t.Run("should fail without an id", func(t *testing.T) {
		// Arrange
		f, _, _, tr := setupHistoryTest(t)

		// Act
		err := run(t, f, tr, "show")

		// Assert
		assert.Error(t, err)
	})
}

func TestHistoryClear(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		input     string
		wantLeft  int
		wantInOut string
	}{
		{name: "confirmed", args: []string{"clear"}, input: "y\n", wantLeft: 0, wantInOut: "History cleared"},
		{name: "declined", args: []string{"clear"}, input: "n\n", wantLeft: 2, wantInOut: "Operation cancelled"},
		{name: "forced", args: []string{"clear", "--yes"}, input: "", wantLeft: 0, wantInOut: "History cleared"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f, rec, out, tr := setupHistoryTest(t,
				entry("aaaa1111", "first prompt"),
				entry("bbbb2222", "second prompt"),
			)
			f.in = strings.NewReader(tt.input)

			// Act
			err := run(t, f, tr, tt.args...)

			// Assert
			require.NoError(t, err)
			assert.Len(t, rec.LoadHistory(context.Background()), tt.wantLeft)
			assert.Contains(t, out.String(), tt.wantInOut)
		})
	}
}

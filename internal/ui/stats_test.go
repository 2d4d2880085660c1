package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/thomas-vilte/promptforge/internal/models"
)

func newTranslations(t *testing.T) *i18n.Translations {
	t.Helper()
	trans, err := i18n.NewTranslations("en")
	require.NoError(t, err)
	return trans
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		max      int
		expected string
	}{
		{"short", "hello", 10, "hello"},
		{"flattens whitespace", "a\n\tb   c", 10, "a b c"},
		{"cuts long text", "abcdefghij", 5, "abcd…"},
		{"counts runes", "ñandú ñandú", 6, "ñandú…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Preview(tt.in, tt.max))
		})
	}
}

func TestUsageBar(t *testing.T) {
	tests := []struct {
		pct      float64
		expected string
	}{
		{0, "[░░░░░░░░░░]"},
		{35, "[███░░░░░░░]"},
		{100, "[██████████]"},
		{250, "[██████████]"},
		{-5, "[░░░░░░░░░░]"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, usageBar(tt.pct))
	}
}

func TestPrintUsageStats(t *testing.T) {
	t.Run("prints counters and favourites", func(t *testing.T) {
		// Arrange
		var buf bytes.Buffer
		stats := models.UsageStats{
			PromptsEnhanced:          3,
			TokensUsed:               420,
			TotalCharacters:          900,
			AverageEnhancementTimeMs: 1500,
			FavoriteModel:            "DeepSeek V3",
			FavoriteTechnique:        "Chain of Thought",
			UsagePercentage:          30,
			MonthlyLimit:             10,
		}

		// Act
		PrintUsageStats(&buf, stats, newTranslations(t))

		// Assert
		out := buf.String()
		assert.Contains(t, out, "Usage statistics")
		assert.Contains(t, out, "Prompts enhanced: 3")
		assert.Contains(t, out, "Average enhancement time: 1.5s")
		assert.Contains(t, out, "Favorite model: DeepSeek V3")
		assert.Contains(t, out, "[███░░░░░░░] 30.0% (3/10)")
	})

	t.Run("shows a placeholder without favourites", func(t *testing.T) {
		// Arrange
		var buf bytes.Buffer

		// Act
		PrintUsageStats(&buf, models.UsageStats{MonthlyLimit: 10}, newTranslations(t))

		// Assert
		assert.Contains(t, buf.String(), "Favorite technique: none yet")
	})
}

func TestPrintTokenUsage(t *testing.T) {
	t.Run("prints tokens and estimated cost", func(t *testing.T) {
		// Arrange
		var buf bytes.Buffer
		usage := &models.TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30}

		// Act
		PrintTokenUsage(&buf, usage, 0.0012, true, newTranslations(t))

		// Assert
		out := buf.String()
		assert.Contains(t, out, "Token usage: Input 10 | Output 20 | Total 30")
		assert.Contains(t, out, "Cost: $0.0012 USD (estimated)")
	})

	t.Run("prints nothing without usage or cost", func(t *testing.T) {
		// Arrange
		var buf bytes.Buffer

		// Act
		PrintTokenUsage(&buf, nil, 0, false, newTranslations(t))

		// Assert
		assert.Empty(t, buf.String())
	})
}

func TestPrintHistory(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		// Arrange
		var buf bytes.Buffer

		// Act
		PrintHistory(&buf, nil, newTranslations(t))

		// Assert
		assert.Contains(t, buf.String(), "No enhancements recorded yet")
	})

	t.Run("lists entries with short ids", func(t *testing.T) {
		// Arrange
		var buf bytes.Buffer
		entries := []models.HistoryEntry{{
			ID:             "0123456789abcdef",
			OriginalPrompt: "write\na poem",
			EnhancementResult: models.EnhancementResult{
				ModelName:     "DeepSeek V3",
				TechniqueName: "Few-Shot Learning",
				CompletedAt:   time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
			},
		}}

		// Act
		PrintHistory(&buf, entries, newTranslations(t))

		// Assert
		out := buf.String()
		assert.Contains(t, out, "1 recent enhancement\n")
		assert.Contains(t, out, "01234567  ")
		assert.NotContains(t, out, "89abcdef")
		assert.Contains(t, out, "DeepSeek V3 · Few-Shot Learning")
		assert.Contains(t, out, "write a poem")
	})
}

func TestPrintSpend(t *testing.T) {
	// Arrange
	var buf bytes.Buffer

	// Act
	PrintSpend(&buf, 0.25, 0.75, newTranslations(t))

	// Assert
	assert.Contains(t, buf.String(), "Spent today: $0.2500")
	assert.Contains(t, buf.String(), "Spent this month: $0.7500")
}

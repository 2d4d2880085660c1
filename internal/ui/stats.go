package ui

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/thomas-vilte/promptforge/internal/i18n"
	"github.com/thomas-vilte/promptforge/internal/models"
)

const previewRunes = 60

func PrintTokenUsage(w io.Writer, usage *models.TokenUsage, costUSD float64, estimated bool, t *i18n.Translations) {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	if usage != nil && usage.TotalTokens > 0 {
		_, _ = fmt.Fprint(w, cyan.Sprint("📊 "))
		_, _ = fmt.Fprintf(w, "%s: ", t.GetMessage("ui.token_usage", 0, nil))
		_, _ = fmt.Fprintf(w, "%s %d | ", t.GetMessage("ui.input", 0, nil), usage.InputTokens)
		_, _ = fmt.Fprintf(w, "%s %d | ", t.GetMessage("ui.output", 0, nil), usage.OutputTokens)
		_, _ = fmt.Fprintf(w, "%s %d\n", t.GetMessage("ui.total", 0, nil), usage.TotalTokens)
	}
	if costUSD > 0 {
		_, _ = fmt.Fprint(w, yellow.Sprint("💰 "))
		_, _ = fmt.Fprintf(w, "%s: ", t.GetMessage("ui.cost", 0, nil))
		_, _ = fmt.Fprint(w, yellow.Sprintf("$%.4f USD", costUSD))
		if estimated {
			_, _ = fmt.Fprint(w, Dim.Sprintf(" (%s)", t.GetMessage("ui.estimated", 0, nil)))
		}
		_, _ = fmt.Fprintln(w)
	}
}

func PrintUsageStats(w io.Writer, stats models.UsageStats, t *i18n.Translations) {
	_, _ = fmt.Fprintf(w, "\n%s %s\n", StatsEmoji, Info.Sprint(t.GetMessage("stats.header", 0, nil)))
	_, _ = fmt.Fprintln(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	none := t.GetMessage("stats.none", 0, nil)
	favModel, favTechnique := stats.FavoriteModel, stats.FavoriteTechnique
	if favModel == "" {
		favModel = none
	}
	if favTechnique == "" {
		favTechnique = none
	}

	PrintKeyValue(w, t.GetMessage("stats.prompts", 0, nil), fmt.Sprintf("%d", stats.PromptsEnhanced))
	PrintKeyValue(w, t.GetMessage("stats.tokens", 0, nil), fmt.Sprintf("%d", stats.TokensUsed))
	PrintKeyValue(w, t.GetMessage("stats.characters", 0, nil), fmt.Sprintf("%d", stats.TotalCharacters))
	PrintKeyValue(w, t.GetMessage("stats.avg_time", 0, nil),
		(time.Duration(stats.AverageEnhancementTimeMs) * time.Millisecond).Round(time.Millisecond).String())
	PrintKeyValue(w, t.GetMessage("stats.favorite_model", 0, nil), favModel)
	PrintKeyValue(w, t.GetMessage("stats.favorite_technique", 0, nil), favTechnique)
	PrintKeyValue(w, t.GetMessage("stats.usage", 0, nil),
		fmt.Sprintf("%s %.1f%% (%d/%d)", usageBar(stats.UsagePercentage), stats.UsagePercentage, stats.PromptsEnhanced, stats.MonthlyLimit))
}

func PrintSpend(w io.Writer, today, month float64, t *i18n.Translations) {
	yellow := color.New(color.FgYellow)
	PrintKeyValue(w, t.GetMessage("stats.spend_today", 0, nil), yellow.Sprintf("$%.4f", today))
	PrintKeyValue(w, t.GetMessage("stats.spend_month", 0, nil), yellow.Sprintf("$%.4f", month))
}

// usageBar renders pct as a ten cell bar.
func usageBar(pct float64) string {
	filled := int(pct / 10)
	if filled > 10 {
		filled = 10
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + "]"
}

func PrintHistory(w io.Writer, entries []models.HistoryEntry, t *i18n.Translations) {
	if len(entries) == 0 {
		PrintInfo(w, t.GetMessage("history.empty", 0, nil))
		return
	}

	_, _ = fmt.Fprintf(w, "\n%s\n\n", Info.Sprint(t.GetMessage("history.header", len(entries), map[string]interface{}{
		"Count": len(entries),
	})))
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s  %s  %s\n",
			Accent.Sprint(shortID(e.ID)),
			Dim.Sprint(e.CompletedAt.Local().Format("2006-01-02 15:04")),
			Dim.Sprintf("%s · %s", e.ModelName, e.TechniqueName))
		_, _ = fmt.Fprintf(w, "          %s\n", Preview(e.OriginalPrompt, previewRunes))
	}
	_, _ = fmt.Fprintln(w)
}

func PrintHistoryEntry(w io.Writer, e models.HistoryEntry, t *i18n.Translations) {
	PrintSectionBanner(w, t.GetMessage("history.entry_title", 0, map[string]interface{}{
		"ID": e.ID,
	}))
	PrintKeyValue(w, t.GetMessage("history.model", 0, nil), fmt.Sprintf("%s (%s)", e.ModelName, e.ModelID))
	PrintKeyValue(w, t.GetMessage("history.technique", 0, nil), fmt.Sprintf("%s (%s)", e.TechniqueName, e.TechniqueID))
	PrintKeyValue(w, t.GetMessage("history.format", 0, nil), e.OutputFormatID)
	PrintKeyValue(w, t.GetMessage("history.completed_at", 0, nil), e.CompletedAt.Local().Format(time.RFC1123))
	PrintKeyValue(w, t.GetMessage("history.lengths", 0, nil), fmt.Sprintf("%d → %d", e.OriginalLength, e.EnhancedLength))
	if e.TokensUsed != nil {
		PrintKeyValue(w, t.GetMessage("stats.tokens", 0, nil), fmt.Sprintf("%d", *e.TokensUsed))
	}

	_, _ = fmt.Fprintf(w, "\n%s\n%s\n", Info.Sprint(t.GetMessage("history.original", 0, nil)), e.OriginalPrompt)
	_, _ = fmt.Fprintf(w, "\n%s\n%s\n\n", Info.Sprint(t.GetMessage("history.enhanced", 0, nil)), e.EnhancedText)
}

// Preview flattens s to one line and cuts it to max runes.
func Preview(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

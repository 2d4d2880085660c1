package usage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/thomas-vilte/promptforge/internal/logger"
	"github.com/thomas-vilte/promptforge/internal/models"
	"github.com/thomas-vilte/promptforge/internal/ports"
)

const (
	HistoryKey          = "promptforge-history"
	StatsKey            = "promptforge-usage-stats"
	MaxHistoryEntries   = 50
	DefaultMonthlyLimit = 1000
)

// Recorder keeps the history log and usage counters. The in-memory copies
// are read-through caches of the store; persistence failures are logged and
// never returned.
type Recorder struct {
	store        ports.KVStore
	monthlyLimit int

	mu            sync.Mutex
	history       []models.HistoryEntry
	stats         models.UsageStats
	historyLoaded bool
	statsLoaded   bool
}

func NewRecorder(store ports.KVStore, monthlyLimit int) *Recorder {
	if monthlyLimit <= 0 {
		monthlyLimit = DefaultMonthlyLimit
	}
	return &Recorder{
		store:        store,
		monthlyLimit: monthlyLimit,
	}
}

// DefaultStats is what a fresh install reports.
func DefaultStats(monthlyLimit int) models.UsageStats {
	if monthlyLimit <= 0 {
		monthlyLimit = DefaultMonthlyLimit
	}
	return models.UsageStats{
		MonthlyLimit:    monthlyLimit,
		ModelCounts:     map[string]int{},
		TechniqueCounts: map[string]int{},
	}
}

// RecordToHistory prepends entry and keeps the newest MaxHistoryEntries.
func (r *Recorder) RecordToHistory(ctx context.Context, entry models.HistoryEntry) []models.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.historyLoaded {
		r.history = r.readHistory(ctx)
		r.historyLoaded = true
	}

	next := make([]models.HistoryEntry, 0, min(len(r.history)+1, MaxHistoryEntries))
	next = append(next, entry)
	next = append(next, r.history...)
	if len(next) > MaxHistoryEntries {
		next = next[:MaxHistoryEntries]
	}
	r.history = next

	if err := r.store.Set(ctx, HistoryKey, r.history); err != nil {
		logger.Warn(ctx, "failed to persist history",
			"entries", len(r.history),
			"error", err)
	} else {
		logger.Debug(ctx, "history entry saved",
			"id", entry.ID,
			"total_entries", len(r.history))
	}

	return copyHistory(r.history)
}

// UpdateStats folds one completed enhancement into the counters and persists them.
func (r *Recorder) UpdateStats(ctx context.Context, result models.EnhancementResult, elapsed time.Duration) models.UsageStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.statsLoaded {
		r.stats = r.readStats(ctx)
		r.statsLoaded = true
	}

	r.stats = FoldStats(r.stats, result, elapsed.Milliseconds())

	if err := r.store.Set(ctx, StatsKey, r.stats); err != nil {
		logger.Warn(ctx, "failed to persist usage stats",
			"error", err)
	} else {
		logger.Debug(ctx, "usage stats saved",
			"prompts_enhanced", r.stats.PromptsEnhanced,
			"usage_percentage", r.stats.UsagePercentage)
	}

	return cloneStats(r.stats)
}

// FoldStats returns prev updated with one result. Favourites are the most
// frequent model and technique; on a tie the latest result wins.
func FoldStats(prev models.UsageStats, result models.EnhancementResult, elapsedMs int64) models.UsageStats {
	next := cloneStats(prev)
	if next.MonthlyLimit <= 0 {
		next.MonthlyLimit = DefaultMonthlyLimit
	}
	if next.ModelCounts == nil {
		next.ModelCounts = map[string]int{}
	}
	if next.TechniqueCounts == nil {
		next.TechniqueCounts = map[string]int{}
	}

	next.PromptsEnhanced++
	if result.TokensUsed != nil {
		next.TokensUsed += *result.TokensUsed
	}
	next.TotalCharacters += result.EnhancedLength

	n := float64(next.PromptsEnhanced)
	next.AverageEnhancementTimeMs = (prev.AverageEnhancementTimeMs*(n-1) + float64(elapsedMs)) / n

	next.ModelCounts[result.ModelName]++
	if next.ModelCounts[result.ModelName] >= next.ModelCounts[next.FavoriteModel] {
		next.FavoriteModel = result.ModelName
	}
	next.TechniqueCounts[result.TechniqueName]++
	if next.TechniqueCounts[result.TechniqueName] >= next.TechniqueCounts[next.FavoriteTechnique] {
		next.FavoriteTechnique = result.TechniqueName
	}

	next.UsagePercentage = math.Min(100, float64(next.PromptsEnhanced)/float64(next.MonthlyLimit)*100)

	return next
}

// LoadHistory re-reads the history from the store. Absent or malformed data
// yields an empty list.
func (r *Recorder) LoadHistory(ctx context.Context) []models.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = r.readHistory(ctx)
	r.historyLoaded = true
	return copyHistory(r.history)
}

// LoadStats re-reads the counters from the store. Absent or malformed data
// yields DefaultStats.
func (r *Recorder) LoadStats(ctx context.Context) models.UsageStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats = r.readStats(ctx)
	r.statsLoaded = true
	return cloneStats(r.stats)
}

// FindEntry looks up a history entry by id or by unique id prefix.
func (r *Recorder) FindEntry(ctx context.Context, id string) (models.HistoryEntry, bool) {
	var match *models.HistoryEntry
	for _, e := range r.LoadHistory(ctx) {
		if e.ID == id {
			return e, true
		}
		if id != "" && strings.HasPrefix(e.ID, id) {
			if match != nil {
				return models.HistoryEntry{}, false
			}
			entry := e
			match = &entry
		}
	}
	if match == nil {
		return models.HistoryEntry{}, false
	}
	return *match, true
}

func (r *Recorder) ClearHistory(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = nil
	r.historyLoaded = true
	if err := r.store.Delete(ctx, HistoryKey); err != nil {
		return fmt.Errorf("error clearing history: %w", err)
	}
	return nil
}

func (r *Recorder) ResetStats(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats = DefaultStats(r.monthlyLimit)
	r.statsLoaded = true
	if err := r.store.Delete(ctx, StatsKey); err != nil {
		return fmt.Errorf("error resetting stats: %w", err)
	}
	return nil
}

func (r *Recorder) readHistory(ctx context.Context) []models.HistoryEntry {
	var entries []models.HistoryEntry
	if err := r.store.Get(ctx, HistoryKey, &entries); err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			logger.Warn(ctx, "ignoring unreadable history", "error", err)
		}
		return []models.HistoryEntry{}
	}
	if len(entries) > MaxHistoryEntries {
		entries = entries[:MaxHistoryEntries]
	}
	return entries
}

func (r *Recorder) readStats(ctx context.Context) models.UsageStats {
	var stats models.UsageStats
	if err := r.store.Get(ctx, StatsKey, &stats); err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			logger.Warn(ctx, "ignoring unreadable usage stats", "error", err)
		}
		return DefaultStats(r.monthlyLimit)
	}
	stats.MonthlyLimit = r.monthlyLimit
	stats.UsagePercentage = math.Min(100, float64(stats.PromptsEnhanced)/float64(stats.MonthlyLimit)*100)
	if stats.ModelCounts == nil {
		stats.ModelCounts = map[string]int{}
	}
	if stats.TechniqueCounts == nil {
		stats.TechniqueCounts = map[string]int{}
	}
	return stats
}

func copyHistory(in []models.HistoryEntry) []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(in))
	copy(out, in)
	return out
}

func cloneStats(s models.UsageStats) models.UsageStats {
	out := s
	if s.ModelCounts != nil {
		out.ModelCounts = make(map[string]int, len(s.ModelCounts))
		for k, v := range s.ModelCounts {
			out.ModelCounts[k] = v
		}
	}
	if s.TechniqueCounts != nil {
		out.TechniqueCounts = make(map[string]int, len(s.TechniqueCounts))
		for k, v := range s.TechniqueCounts {
			out.TechniqueCounts[k] = v
		}
	}
	return out
}

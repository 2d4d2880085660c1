package usage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/promptforge/internal/models"
	"github.com/thomas-vilte/promptforge/internal/storage"
)

type failingStore struct {
	mock.Mock
}

func (m *failingStore) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *failingStore) Set(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *failingStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *failingStore) Close() error {
	return nil
}

func intPtr(v int) *int { return &v }

func result(model, technique string, chars int, tokens *int) models.EnhancementResult {
	return models.EnhancementResult{
		EnhancedText:   "x",
		EnhancedLength: chars,
		ModelName:      model,
		TechniqueName:  technique,
		CompletedAt:    time.Now(),
		TokensUsed:     tokens,
	}
}

func TestRecordToHistory_CapsAtFiftyNewestFirst(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := storage.NewMemoryStore()
	rec := NewRecorder(store, 0)

	// Act
	var history []models.HistoryEntry
	for i := 0; i < 60; i++ {
		history = rec.RecordToHistory(ctx, models.HistoryEntry{ID: fmt.Sprintf("e-%02d", i)})
	}

	// Assert
	require.Len(t, history, MaxHistoryEntries)
	assert.Equal(t, "e-59", history[0].ID)
	assert.Equal(t, "e-10", history[MaxHistoryEntries-1].ID)

	var persisted []models.HistoryEntry
	require.NoError(t, store.Get(ctx, HistoryKey, &persisted))
	assert.Len(t, persisted, MaxHistoryEntries)
	assert.Equal(t, "e-59", persisted[0].ID)
}

func TestRecordToHistory_AppendsToPersistedHistory(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, HistoryKey, []models.HistoryEntry{{ID: "old"}}))
	rec := NewRecorder(store, 0)

	history := rec.RecordToHistory(ctx, models.HistoryEntry{ID: "new"})

	require.Len(t, history, 2)
	assert.Equal(t, "new", history[0].ID)
	assert.Equal(t, "old", history[1].ID)
}

func TestRecordToHistory_WriteFailureIsSwallowed(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := new(failingStore)
	store.On("Get", ctx, HistoryKey, mock.Anything).Return(errors.New("disk unavailable"))
	store.On("Set", ctx, HistoryKey, mock.Anything).Return(errors.New("disk full"))
	rec := NewRecorder(store, 0)

	// Act
	history := rec.RecordToHistory(ctx, models.HistoryEntry{ID: "a"})
	history = rec.RecordToHistory(ctx, models.HistoryEntry{ID: "b"})

	// Assert
	require.Len(t, history, 2)
	assert.Equal(t, "b", history[0].ID)
	store.AssertNumberOfCalls(t, "Set", 2)
	store.AssertNumberOfCalls(t, "Get", 1)
}

func TestUpdateStats_WriteFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	store := new(failingStore)
	store.On("Get", ctx, StatsKey, mock.Anything).Return(errors.New("locked"))
	store.On("Set", ctx, StatsKey, mock.Anything).Return(errors.New("disk full"))
	rec := NewRecorder(store, 10)

	stats := rec.UpdateStats(ctx, result("DeepSeek v3", "Zero-Shot Prompting", 100, nil), time.Second)

	assert.Equal(t, 1, stats.PromptsEnhanced)
	assert.Equal(t, 10.0, stats.UsagePercentage)
	store.AssertExpectations(t)
}

func TestFoldStats(t *testing.T) {
	t.Run("accumulates counters", func(t *testing.T) {
		// Arrange
		stats := DefaultStats(0)

		// Act
		stats = FoldStats(stats, result("A", "T1", 100, intPtr(40)), 1000)
		stats = FoldStats(stats, result("B", "T2", 50, nil), 3000)

		// Assert
		assert.Equal(t, 2, stats.PromptsEnhanced)
		assert.Equal(t, 40, stats.TokensUsed)
		assert.Equal(t, 150, stats.TotalCharacters)
		assert.InDelta(t, 2000.0, stats.AverageEnhancementTimeMs, 0.001)
		assert.InDelta(t, 0.2, stats.UsagePercentage, 0.0001)
		assert.Equal(t, DefaultMonthlyLimit, stats.MonthlyLimit)
	})

	t.Run("folding results in sequence matches a single fold", func(t *testing.T) {
		results := []models.EnhancementResult{
			result("A", "T", 10, intPtr(1)),
			result("B", "T", 20, nil),
			result("A", "U", 30, intPtr(5)),
		}

		stepwise := DefaultStats(0)
		for _, r := range results {
			stepwise = FoldStats(stepwise, r, 10)
		}

		first := FoldStats(DefaultStats(0), results[0], 10)
		rest := FoldStats(FoldStats(first, results[1], 10), results[2], 10)

		assert.Equal(t, stepwise.PromptsEnhanced, rest.PromptsEnhanced)
		assert.Equal(t, stepwise.TotalCharacters, rest.TotalCharacters)
		assert.Equal(t, 3, stepwise.PromptsEnhanced)
		assert.Equal(t, 60, stepwise.TotalCharacters)
	})

	t.Run("usage percentage never exceeds 100", func(t *testing.T) {
		stats := DefaultStats(2)
		for i := 0; i < 25; i++ {
			stats = FoldStats(stats, result("A", "T", 1, nil), 1)
		}

		assert.Equal(t, 25, stats.PromptsEnhanced)
		assert.Equal(t, 100.0, stats.UsagePercentage)
	})

	t.Run("favourites follow frequency and ties go to the latest", func(t *testing.T) {
		stats := DefaultStats(0)

		stats = FoldStats(stats, result("A", "CoT", 1, nil), 1)
		assert.Equal(t, "A", stats.FavoriteModel)

		stats = FoldStats(stats, result("B", "CoT", 1, nil), 1)
		assert.Equal(t, "B", stats.FavoriteModel, "tie goes to the most recent")

		stats = FoldStats(stats, result("A", "Few", 1, nil), 1)
		assert.Equal(t, "A", stats.FavoriteModel)
		assert.Equal(t, "CoT", stats.FavoriteTechnique)

		stats = FoldStats(stats, result("C", "Few", 1, nil), 1)
		assert.Equal(t, "A", stats.FavoriteModel, "a single use does not beat two")
		assert.Equal(t, "Few", stats.FavoriteTechnique)
	})

	t.Run("does not mutate the previous stats", func(t *testing.T) {
		prev := DefaultStats(0)

		_ = FoldStats(prev, result("A", "T", 1, nil), 1)

		assert.Zero(t, prev.PromptsEnhanced)
		assert.Empty(t, prev.ModelCounts)
	})
}

func TestLoadStats_DefaultsWhenNeverSaved(t *testing.T) {
	// Arrange
	rec := NewRecorder(storage.NewMemoryStore(), 0)

	// Act
	stats := rec.LoadStats(context.Background())

	// Assert
	assert.Equal(t, 0, stats.PromptsEnhanced)
	assert.Equal(t, 0, stats.TokensUsed)
	assert.Equal(t, 0, stats.TotalCharacters)
	assert.Equal(t, 0.0, stats.AverageEnhancementTimeMs)
	assert.Empty(t, stats.FavoriteModel)
	assert.Empty(t, stats.FavoriteTechnique)
	assert.Equal(t, 0.0, stats.UsagePercentage)
	assert.Equal(t, 1000, stats.MonthlyLimit)
}

func TestLoad_MalformedDataFallsBack(t *testing.T) {
	// Arrange
	store := storage.NewMemoryStore()
	store.SetRaw(HistoryKey, []byte(`{"not":"a list"`))
	store.SetRaw(StatsKey, []byte(`[1,2,3]`))
	rec := NewRecorder(store, 0)
	ctx := context.Background()

	// Act
	history := rec.LoadHistory(ctx)
	stats := rec.LoadStats(ctx)

	// Assert
	assert.Empty(t, history)
	assert.Equal(t, DefaultStats(0), stats)
}

func TestUpdateStats_PersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	rec := NewRecorder(store, 0)

	rec.UpdateStats(ctx, result("A", "T", 12, intPtr(3)), 200*time.Millisecond)
	reloaded := NewRecorder(store, 0).LoadStats(ctx)

	assert.Equal(t, 1, reloaded.PromptsEnhanced)
	assert.Equal(t, 3, reloaded.TokensUsed)
	assert.Equal(t, 12, reloaded.TotalCharacters)
	assert.Equal(t, "A", reloaded.FavoriteModel)
	assert.InDelta(t, 200.0, reloaded.AverageEnhancementTimeMs, 0.001)
}

func TestFindEntry(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(storage.NewMemoryStore(), 0)
	rec.RecordToHistory(ctx, models.HistoryEntry{ID: "abc-111"})
	rec.RecordToHistory(ctx, models.HistoryEntry{ID: "abc-222"})
	rec.RecordToHistory(ctx, models.HistoryEntry{ID: "def-333"})

	tests := []struct {
		name   string
		id     string
		wantID string
		found  bool
	}{
		{name: "exact id", id: "abc-111", wantID: "abc-111", found: true},
		{name: "unique prefix", id: "def", wantID: "def-333", found: true},
		{name: "ambiguous prefix", id: "abc", found: false},
		{name: "unknown", id: "zzz", found: false},
		{name: "empty", id: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := rec.FindEntry(ctx, tt.id)

			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.wantID, entry.ID)
			}
		})
	}
}

func TestClearAndReset(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	rec := NewRecorder(store, 50)
	rec.RecordToHistory(ctx, models.HistoryEntry{ID: "a"})
	rec.UpdateStats(ctx, result("A", "T", 1, nil), time.Millisecond)

	require.NoError(t, rec.ClearHistory(ctx))
	require.NoError(t, rec.ResetStats(ctx))

	assert.Empty(t, rec.LoadHistory(ctx))
	stats := rec.LoadStats(ctx)
	assert.Zero(t, stats.PromptsEnhanced)
	assert.Equal(t, 50, stats.MonthlyLimit)
}

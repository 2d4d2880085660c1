package enhancement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thomas-vilte/promptforge/internal/ai"
	"github.com/thomas-vilte/promptforge/internal/logger"
	"github.com/thomas-vilte/promptforge/internal/models"
	"github.com/thomas-vilte/promptforge/internal/services/cost"
)

// Recorder is the part of usage.Recorder the controller feeds.
type Recorder interface {
	RecordToHistory(ctx context.Context, entry models.HistoryEntry) []models.HistoryEntry
	UpdateStats(ctx context.Context, result models.EnhancementResult, elapsed time.Duration) models.UsageStats
}

// WithRecorder appends every completed enhancement to the history log and
// folds it into the usage counters.
func WithRecorder(rec Recorder) Option {
	return WithCompletionHook(func(ctx context.Context, c Completion) {
		rec.RecordToHistory(ctx, NewHistoryEntry(c.Request, c.Result))
		rec.UpdateStats(ctx, c.Result, c.Result.Duration)
	})
}

func NewHistoryEntry(req models.EnhancementRequest, result models.EnhancementResult) models.HistoryEntry {
	return models.HistoryEntry{
		ID:                uuid.NewString(),
		OriginalPrompt:    req.Content,
		ModelID:           req.Model.ID,
		TechniqueID:       req.Technique.ID,
		OutputFormatID:    req.OutputFormat.ID,
		EnhancementResult: result,
	}
}

// SpendLedger is the part of cost.Manager the controller feeds.
type SpendLedger interface {
	SaveActivity(ctx context.Context, record cost.ActivityRecord) error
}

// WithCostTracking prices every completed enhancement and appends it to the
// spend ledger. Without provider usage the token count is estimated from the
// prompt and the output.
func WithCostTracking(calc *cost.Calculator, ledger SpendLedger) Option {
	return WithCompletionHook(func(ctx context.Context, c Completion) {
		tokens := ai.EstimateTokens(c.Request.Content) + ai.EstimateTokens(c.Result.EnhancedText)
		estimated := true
		if c.Usage != nil && c.Usage.TotalTokens > 0 {
			tokens = c.Usage.TotalTokens
			estimated = false
		}

		record := cost.ActivityRecord{
			Timestamp:  c.Result.CompletedAt,
			ModelID:    c.Request.Model.ID,
			Technique:  c.Request.Technique.ID,
			Tokens:     tokens,
			CostUSD:    calc.Cost(c.Request.Model, c.Usage, tokens),
			DurationMs: c.Result.Duration.Milliseconds(),
			Estimated:  estimated,
		}
		if err := ledger.SaveActivity(ctx, record); err != nil {
			logger.Warn(ctx, "failed to record spend", "error", err)
		}
	})
}

package cost

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/thomas-vilte/promptforge/internal/logger"
	"github.com/thomas-vilte/promptforge/internal/ports"
)

const (
	ActivityKey        = "promptforge-activity"
	MaxActivityRecords = 500
)

type ActivityRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	ModelID    string    `json:"model_id"`
	Technique  string    `json:"technique"`
	Tokens     int       `json:"tokens"`
	CostUSD    float64   `json:"cost_usd"`
	DurationMs int64     `json:"duration_ms"`
	Estimated  bool      `json:"estimated"`
}

// Manager keeps a bounded ledger of enhancement spend in the local store.
type Manager struct {
	store ports.KVStore
	mu    sync.Mutex
}

func NewManager(store ports.KVStore) *Manager {
	return &Manager{store: store}
}

// SaveActivity appends a record, dropping the oldest past MaxActivityRecords.
func (m *Manager) SaveActivity(ctx context.Context, record ActivityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	logger.Debug(ctx, "saving activity record",
		"model", record.ModelID,
		"tokens", record.Tokens,
		"cost_usd", record.CostUSD,
		"estimated", record.Estimated)

	records, err := m.loadHistory(ctx)
	if err != nil {
		logger.Warn(ctx, "discarding unreadable activity history", "error", err)
		records = []ActivityRecord{}
	}

	records = append(records, record)
	if len(records) > MaxActivityRecords {
		records = records[len(records)-MaxActivityRecords:]
	}

	if err := m.store.Set(ctx, ActivityKey, records); err != nil {
		logger.Error(ctx, "failed to write activity history", err)
		return fmt.Errorf("error saving activity: %w", err)
	}

	logger.Debug(ctx, "activity record saved successfully",
		"total_records", len(records))

	return nil
}

// GetDailyTotal gets the total spent on the day of now.
func (m *Manager) GetDailyTotal(ctx context.Context, now time.Time) float64 {
	return m.sumWhere(ctx, func(t time.Time) bool {
		return t.Format("2006-01-02") == now.Local().Format("2006-01-02")
	})
}

// GetMonthlyTotal gets the total spent in the month of now.
func (m *Manager) GetMonthlyTotal(ctx context.Context, now time.Time) float64 {
	return m.sumWhere(ctx, func(t time.Time) bool {
		return t.Format("2006-01") == now.Local().Format("2006-01")
	})
}

func (m *Manager) GetHistory(ctx context.Context) ([]ActivityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadHistory(ctx)
}

func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Delete(ctx, ActivityKey); err != nil {
		return fmt.Errorf("error clearing activity: %w", err)
	}
	return nil
}

func (m *Manager) sumWhere(ctx context.Context, match func(time.Time) bool) float64 {
	records, err := m.GetHistory(ctx)
	if err != nil {
		return 0
	}

	var total float64
	for _, record := range records {
		if match(record.Timestamp.Local()) {
			total += record.CostUSD
		}
	}
	return total
}

func (m *Manager) loadHistory(ctx context.Context) ([]ActivityRecord, error) {
	var records []ActivityRecord
	if err := m.store.Get(ctx, ActivityKey, &records); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return []ActivityRecord{}, nil
		}
		return nil, fmt.Errorf("error reading activity: %w", err)
	}
	return records, nil
}

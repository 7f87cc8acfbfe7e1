package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"deal-checker/internal/model"
)

type memoryHistoryRepository struct {
	mu       sync.RWMutex
	records  []model.HistoryRecord
	capacity int
}

// NewMemoryHistoryRepository keeps history in process memory only.
func NewMemoryHistoryRepository(capacity int) HistoryRepository {
	if capacity <= 0 {
		capacity = defaultHistoryCapacity
	}
	return &memoryHistoryRepository{capacity: capacity}
}

func (m *memoryHistoryRepository) Load(_ context.Context) ([]model.HistoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.HistoryRecord(nil), m.records...), nil
}

func (m *memoryHistoryRepository) Append(_ context.Context, record *model.HistoryRecord) error {
	if record == nil {
		return fmt.Errorf("nil history record")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = trimToCapacity(append(m.records, *record), m.capacity)
	return nil
}

func (m *memoryHistoryRepository) Latest(_ context.Context, limit int) ([]model.HistoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return latestOf(m.records, limit), nil
}

func (m *memoryHistoryRepository) DeleteOlderThan(_ context.Context, date time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept, removed := splitOlderThan(m.records, date)
	m.records = kept
	return removed, nil
}

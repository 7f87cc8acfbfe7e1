package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"deal-checker/internal/model"
)

// fileHistoryRepository stores history as one JSON array on local disk.
// Every write replaces the file atomically via a temp file and rename.
type fileHistoryRepository struct {
	mu       sync.RWMutex
	path     string
	capacity int
}

func NewFileHistoryRepository(path string, capacity int) HistoryRepository {
	if capacity <= 0 {
		capacity = defaultHistoryCapacity
	}
	return &fileHistoryRepository{path: path, capacity: capacity}
}

func (f *fileHistoryRepository) Load(_ context.Context) ([]model.HistoryRecord, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.read()
}

func (f *fileHistoryRepository) Append(_ context.Context, record *model.HistoryRecord) error {
	if record == nil {
		return fmt.Errorf("nil history record")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.read()
	if err != nil {
		return err
	}
	return f.write(trimToCapacity(append(records, *record), f.capacity))
}

func (f *fileHistoryRepository) Latest(_ context.Context, limit int) ([]model.HistoryRecord, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	records, err := f.read()
	if err != nil {
		return nil, err
	}
	return latestOf(records, limit), nil
}

func (f *fileHistoryRepository) DeleteOlderThan(_ context.Context, date time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.read()
	if err != nil {
		return 0, err
	}
	kept, removed := splitOlderThan(records, date)
	if removed == 0 {
		return 0, nil
	}
	if err := f.write(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func (f *fileHistoryRepository) read() ([]model.HistoryRecord, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []model.HistoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode history file %s: %w", f.path, err)
	}
	return records, nil
}

func (f *fileHistoryRepository) write(records []model.HistoryRecord) error {
	if records == nil {
		records = []model.HistoryRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp history file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"sort"
	"time"

	"deal-checker/internal/model"
)

// HistoryRepository is the append-only, size-capped log of valuations.
// Load returns records oldest first.
type HistoryRepository interface {
	Load(ctx context.Context) ([]model.HistoryRecord, error)
	Append(ctx context.Context, record *model.HistoryRecord) error
	Latest(ctx context.Context, limit int) ([]model.HistoryRecord, error)
	DeleteOlderThan(ctx context.Context, date time.Time) (int64, error)
}

const defaultHistoryCapacity = 500

// latestOf returns up to limit records newest first.
func latestOf(records []model.HistoryRecord, limit int) []model.HistoryRecord {
	out := make([]model.HistoryRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// trimToCapacity drops the oldest records beyond capacity. records must be
// oldest first.
func trimToCapacity(records []model.HistoryRecord, capacity int) []model.HistoryRecord {
	if capacity <= 0 || len(records) <= capacity {
		return records
	}
	return append([]model.HistoryRecord(nil), records[len(records)-capacity:]...)
}

// splitOlderThan partitions records around date.
func splitOlderThan(records []model.HistoryRecord, date time.Time) (kept []model.HistoryRecord, removed int64) {
	kept = make([]model.HistoryRecord, 0, len(records))
	for _, r := range records {
		if r.Timestamp.Before(date) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	return kept, removed
}

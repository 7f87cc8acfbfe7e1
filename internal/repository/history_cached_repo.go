package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"deal-checker/internal/model"
	"deal-checker/pkg/cache"
	"deal-checker/pkg/common"
	"deal-checker/pkg/logger"
)

// cachedHistoryRepository serves Load and Latest from an in-memory snapshot
// and drops the snapshot on every write. A read that overlaps a write is
// served but not cached, so a stale snapshot never outlives the write.
type cachedHistoryRepository struct {
	next  HistoryRepository
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger

	mu  sync.Mutex
	gen uint64
}

func NewCachedHistoryRepository(next HistoryRepository, c cache.Cache, ttl time.Duration, log *logger.Logger) HistoryRepository {
	return &cachedHistoryRepository{next: next, cache: c, ttl: ttl, log: log}
}

func (r *cachedHistoryRepository) Load(ctx context.Context) ([]model.HistoryRecord, error) {
	if records, ok := cache.GetTyped[[]model.HistoryRecord](r.cache, common.KEY_HISTORY_SNAPSHOT); ok {
		return append([]model.HistoryRecord(nil), records...), nil
	}

	gen := r.generation()
	records, err := r.next.Load(ctx)
	if err != nil {
		return nil, err
	}
	if r.setIfCurrent(gen, common.KEY_HISTORY_SNAPSHOT, records) {
		r.log.DebugContext(ctx, "history snapshot cached", logger.IntField("records", len(records)))
	}
	return append([]model.HistoryRecord(nil), records...), nil
}

func (r *cachedHistoryRepository) Append(ctx context.Context, record *model.HistoryRecord) error {
	defer r.invalidate()
	return r.next.Append(ctx, record)
}

func (r *cachedHistoryRepository) Latest(ctx context.Context, limit int) ([]model.HistoryRecord, error) {
	key := fmt.Sprintf(common.KEY_HISTORY_LATEST, limit)
	if records, ok := cache.GetTyped[[]model.HistoryRecord](r.cache, key); ok {
		return records, nil
	}

	gen := r.generation()
	records, err := r.next.Latest(ctx, limit)
	if err != nil {
		return nil, err
	}
	r.setIfCurrent(gen, key, records)
	return records, nil
}

func (r *cachedHistoryRepository) DeleteOlderThan(ctx context.Context, date time.Time) (int64, error) {
	defer r.invalidate()
	return r.next.DeleteOlderThan(ctx, date)
}

func (r *cachedHistoryRepository) generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// setIfCurrent caches records read at gen unless a write finished since.
func (r *cachedHistoryRepository) setIfCurrent(gen uint64, key string, records []model.HistoryRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return false
	}
	r.cache.Set(key, records, r.ttl)
	return true
}

// invalidate flushes everything; the cache holds nothing but history views.
func (r *cachedHistoryRepository) invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.cache.Flush()
}

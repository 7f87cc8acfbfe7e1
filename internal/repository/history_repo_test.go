package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deal-checker/config"
	"deal-checker/internal/model"
	"deal-checker/pkg/cache"
	"deal-checker/pkg/logger"
)

var baseTime = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func record(i int) *model.HistoryRecord {
	return &model.HistoryRecord{
		ID:         fmt.Sprintf("id-%d", i),
		UniqueAdID: fmt.Sprintf("ad-%d", i),
		Timestamp:  baseTime.Add(time.Duration(i) * time.Hour),
		DealScore:  float64(50 + i),
	}
}

func stores(t *testing.T, capacity int) map[string]HistoryRepository {
	dir := t.TempDir()
	return map[string]HistoryRepository{
		"memory": NewMemoryHistoryRepository(capacity),
		"file":   NewFileHistoryRepository(filepath.Join(dir, "history.json"), capacity),
		"cached": NewCachedHistoryRepository(NewMemoryHistoryRepository(capacity), cache.NewCache(time.Minute, time.Minute), time.Minute, logger.NewNop()),
	}
}

func TestHistoryRepository_AppendLoadCapacity(t *testing.T) {
	ctx := context.Background()
	for name, repo := range stores(t, 3) {
		t.Run(name, func(t *testing.T) {
			records, err := repo.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, records)

			for i := 0; i < 5; i++ {
				require.NoError(t, repo.Append(ctx, record(i)))
			}

			records, err = repo.Load(ctx)
			require.NoError(t, err)
			require.Len(t, records, 3)
			assert.Equal(t, "ad-2", records[0].UniqueAdID)
			assert.Equal(t, "ad-4", records[2].UniqueAdID)

			latest, err := repo.Latest(ctx, 2)
			require.NoError(t, err)
			require.Len(t, latest, 2)
			assert.Equal(t, "ad-4", latest[0].UniqueAdID)
			assert.Equal(t, "ad-3", latest[1].UniqueAdID)

			assert.Error(t, repo.Append(ctx, nil))
		})
	}
}

func TestHistoryRepository_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	for name, repo := range stores(t, 10) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 4; i++ {
				require.NoError(t, repo.Append(ctx, record(i)))
			}

			removed, err := repo.DeleteOlderThan(ctx, baseTime.Add(2*time.Hour))
			require.NoError(t, err)
			assert.Equal(t, int64(2), removed)

			records, err := repo.Load(ctx)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "ad-2", records[0].UniqueAdID)
		})
	}
}

func TestFileHistoryRepository_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.json")

	require.NoError(t, NewFileHistoryRepository(path, 10).Append(ctx, record(1)))

	records, err := NewFileHistoryRepository(path, 10).Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ad-1", records[0].UniqueAdID)
	assert.True(t, records[0].Timestamp.Equal(baseTime.Add(time.Hour)))
}

func TestFileHistoryRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileHistoryRepository(path, 10).Load(context.Background())
	assert.Error(t, err)
}

type countingRepo struct {
	HistoryRepository
	loads int
}

func (c *countingRepo) Load(ctx context.Context) ([]model.HistoryRecord, error) {
	c.loads++
	return c.HistoryRepository.Load(ctx)
}

func TestCachedHistoryRepository_InvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	inner := &countingRepo{HistoryRepository: NewMemoryHistoryRepository(10)}
	repo := NewCachedHistoryRepository(inner, cache.NewCache(time.Minute, time.Minute), time.Minute, logger.NewNop())

	_, err := repo.Load(ctx)
	require.NoError(t, err)
	_, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.loads)

	require.NoError(t, repo.Append(ctx, record(1)))
	records, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 2, inner.loads)
}

// stallingRepo reads its first Load and then waits for release before
// returning, leaving room for a write to land in between.
type stallingRepo struct {
	HistoryRepository
	mu      sync.Mutex
	loads   int
	started chan struct{}
	release chan struct{}
}

func (s *stallingRepo) Load(ctx context.Context) ([]model.HistoryRecord, error) {
	records, err := s.HistoryRepository.Load(ctx)
	s.mu.Lock()
	s.loads++
	first := s.loads == 1
	s.mu.Unlock()
	if first {
		close(s.started)
		<-s.release
	}
	return records, err
}

func TestCachedHistoryRepository_WriteDuringLoad(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		write func(HistoryRepository) error
		want  int
	}{
		{
			name: "delete",
			write: func(repo HistoryRepository) error {
				_, err := repo.DeleteOlderThan(ctx, baseTime.Add(24*time.Hour))
				return err
			},
			want: 0,
		},
		{
			name:  "append",
			write: func(repo HistoryRepository) error { return repo.Append(ctx, record(2)) },
			want:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &stallingRepo{
				HistoryRepository: NewMemoryHistoryRepository(10),
				started:           make(chan struct{}),
				release:           make(chan struct{}),
			}
			require.NoError(t, inner.HistoryRepository.Append(ctx, record(1)))
			repo := NewCachedHistoryRepository(inner, cache.NewCache(time.Minute, time.Minute), time.Minute, logger.NewNop())

			done := make(chan error, 1)
			go func() {
				_, err := repo.Load(ctx)
				done <- err
			}()
			<-inner.started
			require.NoError(t, tt.write(repo))
			close(inner.release)
			require.NoError(t, <-done)

			records, err := repo.Load(ctx)
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
			assert.Equal(t, 2, inner.loads)
		})
	}
}

func TestNewHistoryRepository(t *testing.T) {
	log := logger.NewNop()

	cfg := &config.Config{History: config.History{Backend: "memory", Capacity: 5}}
	repo, err := NewHistoryRepository(cfg, nil, log)
	require.NoError(t, err)
	assert.IsType(t, &memoryHistoryRepository{}, repo)

	cfg.History.CacheTTL = time.Minute
	repo, err = NewHistoryRepository(cfg, nil, log)
	require.NoError(t, err)
	assert.IsType(t, &cachedHistoryRepository{}, repo)

	cfg.History.Backend = "postgres"
	_, err = NewHistoryRepository(cfg, nil, log)
	assert.Error(t, err)

	cfg.History.Backend = "sheets"
	_, err = NewHistoryRepository(cfg, nil, log)
	assert.Error(t, err)
}

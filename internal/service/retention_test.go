package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deal-checker/config"
	"deal-checker/internal/model"
	"deal-checker/internal/repository"
	"deal-checker/pkg/logger"
)

func TestRetentionService_RunOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	history := repository.NewMemoryHistoryRepository(10)
	for i, age := range []int{400, 200, 10, 1} {
		require.NoError(t, history.Append(ctx, &model.HistoryRecord{
			ID:        string(rune('a' + i)),
			Timestamp: now.AddDate(0, 0, -age),
		}))
	}

	svc := NewRetentionService(config.Retention{Days: 180}, logger.NewNop(), history)
	svc.now = func() time.Time { return now }

	deleted, err := svc.RunOnce(ctx, 180)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	left, err := history.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, left, 2)

	_, err = svc.RunOnce(ctx, 0)
	assert.Error(t, err)
}

func TestRetentionService_Start(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Retention
		wantErr bool
	}{
		{name: "disabled", cfg: config.Retention{Enabled: false, Cron: "not a cron"}},
		{name: "valid", cfg: config.Retention{Enabled: true, Cron: "0 3 * * *", Days: 30}},
		{name: "descriptor", cfg: config.Retention{Enabled: true, Cron: "@daily", Days: 30}},
		{name: "bad cron", cfg: config.Retention{Enabled: true, Cron: "every day", Days: 30}, wantErr: true},
		{name: "bad days", cfg: config.Retention{Enabled: true, Cron: "@daily"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewRetentionService(tt.cfg, logger.NewNop(), repository.NewMemoryHistoryRepository(10))

			err := svc.Start(context.Background())
			defer svc.Stop()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"deal-checker/internal/model"
	"deal-checker/pkg/utils"
)

type postgresHistoryRepository struct {
	db       *gorm.DB
	uow      UnitOfWork
	capacity int
}

// NewPostgresHistoryRepository stores history in the history_records table.
// Append and the capacity trim share one transaction.
func NewPostgresHistoryRepository(db *gorm.DB, capacity int) HistoryRepository {
	if capacity <= 0 {
		capacity = defaultHistoryCapacity
	}
	return &postgresHistoryRepository{
		db:       db,
		uow:      NewUnitOfWork(db),
		capacity: capacity,
	}
}

func (p *postgresHistoryRepository) Load(ctx context.Context) ([]model.HistoryRecord, error) {
	var records []model.HistoryRecord
	err := p.db.WithContext(ctx).
		Order("timestamp ASC, created_at ASC").
		Find(&records).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return records, nil
}

func (p *postgresHistoryRepository) Append(ctx context.Context, record *model.HistoryRecord) error {
	if record == nil {
		return fmt.Errorf("nil history record")
	}
	return p.uow.Run(ctx, func(opts ...utils.DBOption) error {
		if err := p.create(ctx, record, opts...); err != nil {
			return err
		}
		return p.trim(ctx, opts...)
	})
}

func (p *postgresHistoryRepository) create(ctx context.Context, record *model.HistoryRecord, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(p.db.WithContext(ctx), opts...)
	if err := db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create history record: %w", err)
	}
	return nil
}

// trim deletes the oldest rows beyond capacity.
func (p *postgresHistoryRepository) trim(ctx context.Context, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(p.db.WithContext(ctx), opts...)

	var count int64
	if err := db.Model(&model.HistoryRecord{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count history: %w", err)
	}
	excess := int(count) - p.capacity
	if excess <= 0 {
		return nil
	}

	oldest := db.Model(&model.HistoryRecord{}).
		Select("id").
		Order("timestamp ASC, created_at ASC").
		Limit(excess)
	if err := db.Where("id IN (?)", oldest).Delete(&model.HistoryRecord{}).Error; err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	return nil
}

func (p *postgresHistoryRepository) Latest(ctx context.Context, limit int) ([]model.HistoryRecord, error) {
	var records []model.HistoryRecord
	query := p.db.WithContext(ctx).Order("timestamp DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest history: %w", err)
	}
	return records, nil
}

func (p *postgresHistoryRepository) DeleteOlderThan(ctx context.Context, date time.Time) (int64, error) {
	db := utils.ApplyOptions(p.db.WithContext(ctx), utils.WithWhere("timestamp < ?", date)).
		Delete(&model.HistoryRecord{})
	if db.Error != nil {
		return 0, fmt.Errorf("failed to delete old history: %w", db.Error)
	}
	return db.RowsAffected, nil
}

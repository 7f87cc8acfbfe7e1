package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"deal-checker/config"
	"deal-checker/internal/repository"
	"deal-checker/pkg/logger"
	"deal-checker/pkg/utils"
)

const retentionJobTimeout = 5 * time.Minute

// RetentionService drops history older than retention.days on a cron
// schedule. It runs alongside the capacity cap of the store.
type RetentionService interface {
	Start(ctx context.Context) error
	Stop() context.Context
	RunOnce(ctx context.Context, days int) (int64, error)
}

type retentionService struct {
	cfg         config.Retention
	log         *logger.Logger
	historyRepo repository.HistoryRepository
	cronParser  cron.Parser
	cron        *cron.Cron
	now         func() time.Time
}

func NewRetentionService(cfg config.Retention, log *logger.Logger, historyRepo repository.HistoryRepository) *retentionService {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &retentionService{
		cfg:         cfg,
		log:         log,
		historyRepo: historyRepo,
		cronParser:  parser,
		cron:        cron.New(cron.WithParser(parser), cron.WithLocation(time.UTC)),
		now:         time.Now,
	}
}

func (r *retentionService) Start(ctx context.Context) error {
	if !r.cfg.Enabled {
		r.log.InfoContext(ctx, "History retention disabled")
		return nil
	}
	if r.cfg.Days <= 0 {
		return fmt.Errorf("retention.days must be positive, got %d", r.cfg.Days)
	}

	schedule, err := r.cronParser.Parse(r.cfg.Cron)
	if err != nil {
		return fmt.Errorf("failed to parse retention cron %q: %w", r.cfg.Cron, err)
	}

	r.cron.Schedule(schedule, cron.FuncJob(func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), retentionJobTimeout)
		defer cancel()
		if _, err := r.RunOnce(jobCtx, r.cfg.Days); err != nil {
			r.log.ErrorContext(jobCtx, "Retention run failed", logger.ErrorField(err))
		}
	}))
	r.cron.Start()

	r.log.InfoContext(ctx, "History retention scheduled",
		logger.StringField("cron", r.cfg.Cron),
		logger.IntField("days", r.cfg.Days),
		logger.StringField("next_run", utils.PrettyDate(schedule.Next(r.now()))),
	)
	return nil
}

// Stop halts the schedule. The returned context is done once a running job
// has finished.
func (r *retentionService) Stop() context.Context {
	return r.cron.Stop()
}

func (r *retentionService) RunOnce(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("days must be positive, got %d", days)
	}
	cutoff := utils.DaysAgo(r.now(), days)
	deleted, err := r.historyRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete history older than %s: %w", utils.PrettyDate(cutoff), err)
	}
	r.log.InfoContext(ctx, "History retention completed",
		logger.StringField("cutoff", utils.PrettyDate(cutoff)),
		logger.IntField("deleted", int(deleted)),
	)
	return deleted, nil
}

package service

import (
	"deal-checker/config"
	"deal-checker/internal/repository"
	"deal-checker/internal/valuation"
	"deal-checker/pkg/logger"
)

type Service struct {
	DealService          DealService
	BatchService         BatchService
	HistoryExportService HistoryExportService
	RetentionService     RetentionService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
) *Service {
	engine := valuation.NewEngine(cfg.Engine, repo.HistoryRepo, log)
	dealService := NewDealService(cfg, log, engine, repo.HistoryRepo, repo.AssessmentRepo)

	return &Service{
		DealService:          dealService,
		BatchService:         NewBatchService(log, dealService),
		HistoryExportService: NewHistoryExportService(log, repo.HistoryRepo),
		RetentionService:     NewRetentionService(cfg.Retention, log, repo.HistoryRepo),
	}
}

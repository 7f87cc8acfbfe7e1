package repository

import (
	"fmt"

	"gorm.io/gorm"

	"deal-checker/config"
	"deal-checker/pkg/cache"
	"deal-checker/pkg/common"
	"deal-checker/pkg/logger"
)

type Repository struct {
	HistoryRepo HistoryRepository
	// AssessmentRepo is nil when no Gemini key is configured.
	AssessmentRepo AssessmentRepository
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	historyRepo, err := NewHistoryRepository(cfg, db, log)
	if err != nil {
		return nil, err
	}

	repo := &Repository{HistoryRepo: historyRepo}

	assessmentRepo, err := NewGeminiAIRepository(cfg.Gemini, log)
	if err != nil {
		log.Warn("Gemini producer unavailable, analyze will use the heuristic fallback", logger.ErrorField(err))
	} else {
		repo.AssessmentRepo = assessmentRepo
	}

	return repo, nil
}

// NewHistoryRepository builds the configured history backend, wrapped in a
// snapshot cache when history.cache_ttl is set.
func NewHistoryRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) (HistoryRepository, error) {
	var repo HistoryRepository
	switch cfg.History.Backend {
	case common.HISTORY_BACKEND_MEMORY:
		repo = NewMemoryHistoryRepository(cfg.History.Capacity)
	case common.HISTORY_BACKEND_FILE, "":
		repo = NewFileHistoryRepository(cfg.History.FilePath, cfg.History.Capacity)
	case common.HISTORY_BACKEND_POSTGRES:
		if db == nil {
			return nil, fmt.Errorf("history backend %q needs a database connection", cfg.History.Backend)
		}
		repo = NewPostgresHistoryRepository(db, cfg.History.Capacity)
	default:
		return nil, fmt.Errorf("unknown history backend %q, expected one of %v", cfg.History.Backend, common.GetHistoryBackendList())
	}

	if cfg.History.CacheTTL > 0 {
		c := cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval)
		repo = NewCachedHistoryRepository(repo, c, cfg.History.CacheTTL, log)
	}
	return repo, nil
}

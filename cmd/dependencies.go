package cmd

import (
	"context"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"deal-checker/config"
	"deal-checker/internal/repository"
	"deal-checker/internal/service"
	"deal-checker/pkg/common"
	"deal-checker/pkg/logger"
	"deal-checker/pkg/postgres"
)

type AppDependency struct {
	db        *postgres.DB
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	repo      *repository.Repository
	services  *service.Service
}

// NewAppDependency wires config, logging, storage and services. The database
// is only opened when history lives in postgres.
func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	var (
		db     *postgres.DB
		gormDB *gorm.DB
	)
	if cfg.History.Backend == common.HISTORY_BACKEND_POSTGRES {
		db, err = postgres.NewDB(cfg.DB, log)
		if err != nil {
			log.Error("Failed to connect to database", zap.Error(err))
			return nil, err
		}
		gormDB = db.DB
	}

	repo, err := repository.NewRepository(cfg, gormDB, log)
	if err != nil {
		log.Error("Failed to create repository", zap.Error(err))
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	return &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		db:        db,
		echo:      echo.New(),
		repo:      repo,
		services:  service.NewService(cfg, log, repo),
	}, nil
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	_ = d.log.Sync()
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
